package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable catalog unit. Stock is only mutated through the
// sale transaction and explicit stock adjustments, both of which record a
// StockMovement. Stock never goes below zero (enforced by a CHECK constraint
// plus the guarded decrement in the repository).
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Barcode   string    `gorm:"uniqueIndex;not null" json:"barcode"`
	SKU       *string   `gorm:"uniqueIndex" json:"sku"`
	Name      string    `gorm:"index;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost_price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	MinStock  int             `gorm:"not null;default:5" json:"min_stock"`
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
