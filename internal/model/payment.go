package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted by the store.
const (
	MethodBilletera     = "billetera_digital" // Yape/Plin wallet transfer
	MethodTransferencia = "transferencia"
	MethodEfectivo      = "efectivo"
	MethodContraentrega = "contraentrega" // cash collected at hand-off
)

// Payment is an append-only installment against an order's balance. Rows are
// never edited or deleted; a mistaken payment is corrected with a new,
// clearly-annotated compensating record.
type Payment struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method  string          `gorm:"type:varchar(30);not null"`
	// ProofRef points at the uploaded voucher/operation number, if any.
	ProofRef   *string
	Notes      *string
	ReceivedAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}
