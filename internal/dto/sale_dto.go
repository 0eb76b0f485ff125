package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Discount  decimal.Decimal `json:"discount"   validate:"min=0"`
}

type PaymentRequest struct {
	Method string          `json:"method" validate:"required,oneof=CASH CARD PIX TRANSFER"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type FinalizeSaleRequest struct {
	Lines    []SaleLineRequest `json:"lines"    validate:"required,min=1,dive"`
	Payments []PaymentRequest  `json:"payments" validate:"required,min=1,dive"`
	// DiscountAmount applies to the whole sale, after line discounts.
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"min=0"`
	DiscountReason *string         `json:"discount_reason"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date   string `form:"date"`   // YYYY-MM-DD; empty = no date filter
	Status string `form:"status"` // COMPLETED | CANCELLED | REFUNDED | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	CashierID      string             `json:"cashier_id"`
	SessionID      string             `json:"session_id"`
	Lines          []SaleLineResponse `json:"lines"`
	Payments       []PaymentRequest   `json:"payments"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	DiscountReason *string            `json:"discount_reason,omitempty"`
	// Change is the overpayment returned to the customer; never refunded
	// automatically from the drawer ledger.
	Change    decimal.Decimal `json:"change"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
