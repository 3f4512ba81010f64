package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType enumerates the kardex entry kinds. Quantity is always a
// positive magnitude; the sign applied to Product.Stock is implied by the type.
type MovementType string

const (
	MovementPurchaseIn    MovementType = "PURCHASE_IN"
	MovementSaleOut       MovementType = "SALE_OUT"
	MovementReturnIn      MovementType = "RETURN_IN"
	MovementAdjustmentIn  MovementType = "ADJUSTMENT_IN"
	MovementAdjustmentOut MovementType = "ADJUSTMENT_OUT"
)

// Inbound reports whether the type increases stock.
func (t MovementType) Inbound() bool {
	switch t {
	case MovementPurchaseIn, MovementReturnIn, MovementAdjustmentIn:
		return true
	}
	return false
}

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchaseIn, MovementSaleOut, MovementReturnIn,
		MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// StockMovement is the append-only inventory ledger (kardex) — the sole
// source of truth for Product.Stock.
type StockMovement struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type       MovementType `gorm:"type:varchar(20);not null;index"`
	Quantity   int          `gorm:"not null"`
	// UnitCost is only meaningful for PURCHASE_IN; it feeds cost-of-goods
	// reporting.
	UnitCost  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Reference *string
	// OrderID links SALE_OUT / RETURN_IN movements to the originating order.
	OrderID   *uuid.UUID `gorm:"type:uuid;index"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null"`
	Notes     *string
	CreatedAt time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Delta returns the signed stock effect of the movement.
func (m *StockMovement) Delta() int {
	if m.Type.Inbound() {
		return m.Quantity
	}
	return -m.Quantity
}

func (StockMovement) TableName() string { return "stock_movements" }
