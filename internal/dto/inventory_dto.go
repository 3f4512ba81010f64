package dto

import "github.com/shopspring/decimal"

// PurchaseEntryLine is one row of a bulk inventory entry.
type PurchaseEntryLine struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"  validate:"required"`
	Notes     *string         `json:"notes"`
}

// PurchaseEntryRequest registers received merchandise. All lines are applied
// inside one transaction; a single bad line aborts the whole entry.
type PurchaseEntryRequest struct {
	Reference *string             `json:"reference"`
	Entries   []PurchaseEntryLine `json:"entries" validate:"required,min=1,dive"`
}

// AdjustmentRequest applies a manual stock correction.
type AdjustmentRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Type      string  `json:"type"       validate:"required,oneof=ADJUSTMENT_IN ADJUSTMENT_OUT"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
	Reference *string `json:"reference"`
	Notes     *string `json:"notes"`
}

// MovementFilter is bound from the query string of GET /v1/inventory/movements.
type MovementFilter struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"       validate:"omitempty,oneof=PURCHASE_IN SALE_OUT RETURN_IN ADJUSTMENT_IN ADJUSTMENT_OUT"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MovementResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Product   string           `json:"product,omitempty"`
	Type      string           `json:"type"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference *string          `json:"reference,omitempty"`
	OrderID   *string          `json:"order_id,omitempty"`
	UserID    string           `json:"user_id"`
	Notes     *string          `json:"notes,omitempty"`
	CreatedAt string           `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
