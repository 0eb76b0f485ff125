package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement types. OUT is written by the sale transaction, IN by a
// cancellation restore, ADJUST by manual stock corrections.
const (
	StockMovementOut    = "OUT"
	StockMovementIn     = "IN"
	StockMovementAdjust = "ADJUST"
)

// StockMovement records every stock change on a product. Append-only.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(20);not null"`
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid"` // originating sale, when applicable
	UserID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
