package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale statuses. Only COMPLETED is produced by the finalize transaction;
// CANCELLED and REFUNDED are terminal states reached afterwards.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
	SaleStatusRefunded  = "REFUNDED"
)

// Payment methods. Only CASH moves the physical drawer.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentPix      = "PIX"
	PaymentTransfer = "TRANSFER"
)

// Sale is the aggregate root; it exclusively owns its Lines and Payments.
// They are persisted together in one write and never mutated afterwards —
// only the status field transitions.
type Sale struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SessionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountReason *string
	Status         string `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	CreatedAt      time.Time

	Lines    []SaleLine `gorm:"foreignKey:SaleID"`
	Payments []Payment  `gorm:"foreignKey:SaleID"`

	Cashier *User            `gorm:"foreignKey:CashierID"`
	Session *RegisterSession `gorm:"foreignKey:SessionID"`
}

// SaleLine snapshots product name and unit price at sale time; later catalog
// edits must not change how a historical sale renders.
type SaleLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity    int             `gorm:"not null"`
	Discount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

type Payment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method string          `gorm:"type:varchar(20);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
