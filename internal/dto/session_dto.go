package dto

import "github.com/shopspring/decimal"

type OpenSessionRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
	Notes          *string         `json:"notes"`
}

type CloseSessionRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance" validate:"min=0"`
	Notes          *string         `json:"notes"`
}

type CashMovementRequest struct {
	SessionID string          `json:"session_id" validate:"required,uuid"`
	Type      string          `json:"type"       validate:"required,oneof=MANUAL_IN MANUAL_OUT"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
	Reason    string          `json:"reason"     validate:"required,min=3"`
}

type CashMovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      *string         `json:"reason,omitempty"`
	ReferenceID *string         `json:"reference_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type SessionResponse struct {
	ID             string           `json:"id"`
	CashierID      string           `json:"cashier_id"`
	Status         string           `json:"status"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance *decimal.Decimal `json:"closing_balance,omitempty"`
	// ExpectedBalance = opening balance + sum of cash movements. Reported so
	// that callers can reconcile; the close itself never does.
	ExpectedBalance *decimal.Decimal       `json:"expected_balance,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Movements       []CashMovementResponse `json:"movements,omitempty"`
	OpenedAt        string                 `json:"opened_at"`
	ClosedAt        *string                `json:"closed_at,omitempty"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
