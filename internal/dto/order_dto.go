package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type ShippingRequest struct {
	RecipientName   *string         `json:"recipient_name"`
	Address         *string         `json:"address"`
	District        *string         `json:"district"`
	Agency          *string         `json:"agency"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee" validate:"min=0"`
	IsContraentrega bool            `json:"is_contraentrega"`
}

type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Method   string          `json:"method" validate:"required,oneof=billetera_digital transferencia efectivo contraentrega"`
	ProofRef *string         `json:"proof_ref"`
	Notes    *string         `json:"notes"`
}

type CreateOrderRequest struct {
	ClientID     string             `json:"client_id"     validate:"required,uuid"`
	ShippingType string             `json:"shipping_type" validate:"required,oneof=PROVINCIA DELIVERY_LIMA STORE_PICKUP"`
	Items        []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
	Shipping     *ShippingRequest   `json:"shipping"`
	// InitialPayment is optional except for PROVINCIA, which requires full
	// upfront payment.
	InitialPayment *PaymentRequest `json:"initial_payment"`
	Notes          *string         `json:"notes"`
}

// HistoricalOrderRequest backfills an order fulfilled before the system
// existed. It never touches the stock ledger.
type HistoricalOrderRequest struct {
	ClientID     string             `json:"client_id"     validate:"required,uuid"`
	ShippingType string             `json:"shipping_type" validate:"required,oneof=PROVINCIA DELIVERY_LIMA STORE_PICKUP"`
	Items        []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
	Shipping     *ShippingRequest   `json:"shipping"`
	Payments     []PaymentRequest   `json:"payments"      validate:"dive"`
	// Status must be terminal-bound: the goods already left inventory.
	Status    string  `json:"status"     validate:"required,oneof=SHIPPED DELIVERED"`
	CreatedAt string  `json:"created_at" validate:"required"` // RFC 3339, in the past
	Notes     *string `json:"notes"`
}

type AddItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type CancelOrderRequest struct {
	Notes string `json:"notes" validate:"required,min=3"`
}

type ShipOrderRequest struct {
	TrackingCode   *string `json:"tracking_code"`
	DeliveryStatus *string `json:"delivery_status"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

type OrderFilter struct {
	Status   string `form:"status"` // single status or "all"
	Date     string `form:"date"`   // YYYY-MM-DD
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	ProofRef   *string         `json:"proof_ref,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
	ReceivedAt string          `json:"received_at"`
}

type ShippingResponse struct {
	RecipientName   *string         `json:"recipient_name,omitempty"`
	Address         *string         `json:"address,omitempty"`
	District        *string         `json:"district,omitempty"`
	Agency          *string         `json:"agency,omitempty"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	IsContraentrega bool            `json:"is_contraentrega"`
	TrackingCode    *string         `json:"tracking_code,omitempty"`
	DeliveryStatus  *string         `json:"delivery_status,omitempty"`
	ShippedAt       *string         `json:"shipped_at,omitempty"`
	DeliveredAt     *string         `json:"delivered_at,omitempty"`
}

type StatusHistoryResponse struct {
	FromStatus *string `json:"from_status,omitempty"`
	ToStatus   string  `json:"to_status"`
	ChangedBy  string  `json:"changed_by"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type OrderResponse struct {
	ID              string                  `json:"id"`
	OrderNumber     int                     `json:"order_number"`
	ClientID        string                  `json:"client_id"`
	Client          string                  `json:"client,omitempty"`
	Status          string                  `json:"status"`
	ShippingType    string                  `json:"shipping_type"`
	SubtotalAmount  decimal.Decimal         `json:"subtotal_amount"`
	ShippingAmount  decimal.Decimal         `json:"shipping_amount"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	PaidAmount      decimal.Decimal         `json:"paid_amount"`
	RemainingAmount decimal.Decimal         `json:"remaining_amount"`
	Items           []OrderItemResponse     `json:"items"`
	Payments        []PaymentResponse       `json:"payments,omitempty"`
	Shipping        *ShippingResponse       `json:"shipping,omitempty"`
	History         []StatusHistoryResponse `json:"history,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
