package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. A product with ParentProductID set is a
// color variant of its parent; the parent groups variants under one catalog
// entry and does not carry sellable stock of its own — callers must sum the
// variants' stock instead.
type Product struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name  string    `gorm:"index;not null"`
	Color *string
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CostPrice is optional; products without it are excluded from the
	// inventory valuation and restock cost estimates.
	CostPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Stock must equal the signed sum of all StockMovement rows for this
	// product. Only the stock ledger mutates it.
	Stock             int        `gorm:"not null;default:0"`
	LowStockThreshold int        `gorm:"not null;default:3"`
	ParentProductID   *uuid.UUID `gorm:"type:uuid;index"`
	Active            bool       `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Parent   *Product  `gorm:"foreignKey:ParentProductID"`
	Variants []Product `gorm:"foreignKey:ParentProductID"`
}

// IsParent reports whether the product groups variants. Loaded variants are
// required; repositories preload them where the distinction matters.
func (p *Product) IsParent() bool { return len(p.Variants) > 0 }

// VariantStock sums the stock of all loaded variants.
func (p *Product) VariantStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}
