package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Name   string `form:"name"`
	Active string `form:"active"` // "false" = inactivos, "all" = todos, default activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Name              string           `json:"name"  validate:"required"`
	Color             *string          `json:"color"`
	Price             decimal.Decimal  `json:"price" validate:"required"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	LowStockThreshold int              `json:"low_stock_threshold" validate:"min=0"`
	ParentProductID   *string          `json:"parent_product_id"   validate:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Color             *string          `json:"color"`
	Price             *decimal.Decimal `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,min=0"`
}

type ProductResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Color             *string          `json:"color,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	// Stock is the variant-stock sum for parent products, the own counter
	// otherwise.
	Stock             int               `json:"stock"`
	LowStockThreshold int               `json:"low_stock_threshold"`
	ParentProductID   *string           `json:"parent_product_id,omitempty"`
	IsParent          bool              `json:"is_parent"`
	Active            bool              `json:"active"`
	Variants          []ProductResponse `json:"variants,omitempty"`
	CreatedAt         string            `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
