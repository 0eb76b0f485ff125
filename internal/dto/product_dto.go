package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Barcode   string          `json:"barcode"    validate:"required,min=4"`
	SKU       *string         `json:"sku"`
	Name      string          `json:"name"       validate:"required,min=2"`
	Price     decimal.Decimal `json:"price"      validate:"required"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"min=0"`
	Stock     int             `json:"stock"      validate:"min=0"`
	MinStock  int             `json:"min_stock"  validate:"min=0"`
}

type UpdateProductRequest struct {
	Barcode   *string          `json:"barcode"`
	SKU       *string          `json:"sku"`
	Name      *string          `json:"name"`
	Price     *decimal.Decimal `json:"price"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	MinStock  *int             `json:"min_stock"`
}

// AdjustStockRequest performs a manual correction; the delta may be negative.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductFilter struct {
	Barcode string `form:"barcode"`
	Name    string `form:"name"`
	Active  string `form:"active"` // "", "false", "all"
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductResponse struct {
	ID        string          `json:"id"`
	Barcode   string          `json:"barcode"`
	SKU       *string         `json:"sku,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"min_stock"`
	Active    bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// PriceCheckResponse is served by the public barcode endpoint (redis-cached).
type PriceCheckResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type StockMovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=OUT IN ADJUST"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason,omitempty"`
	ReferenceID *string `json:"reference_id,omitempty"`
	UserID      *string `json:"user_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
