package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SessionOpen   = "OPEN"
	SessionClosed = "CLOSED"
)

// Cash movement types. SALE and CANCEL reference the originating sale;
// the manual types carry a free-form reason instead.
const (
	CashMovementSale      = "SALE"
	CashMovementCancel    = "CANCEL"
	CashMovementManualIn  = "MANUAL_IN"
	CashMovementManualOut = "MANUAL_OUT"
)

// RegisterSession tracks one cashier's drawer between open and close.
// At most one OPEN session per cashier — enforced by a partial unique index
// (see infra schema patches), not just by the check in the service.
type RegisterSession struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status         string           `gorm:"type:varchar(20);not null;default:'OPEN'"`
	OpeningBalance decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	ClosingBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes          *string
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
	Cashier   *User          `gorm:"foreignKey:CashierID"`
}

// CashMovement is an immutable entry in the drawer ledger. Corrections are
// new compensating movements, never edits.
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason      *string
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}
