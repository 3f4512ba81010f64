package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order state machine states.
type OrderStatus string

const (
	StatusPending        OrderStatus = "PENDING"
	StatusStockReserved  OrderStatus = "STOCK_RESERVED"
	StatusPartialPayment OrderStatus = "PARTIAL_PAYMENT"
	StatusPaid           OrderStatus = "PAID"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
)

// statusTransitions is the single source of truth for allowed status changes.
// DELIVERED and CANCELLED are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusStockReserved, StatusPartialPayment, StatusPaid, StatusCancelled},
	StatusStockReserved:  {StatusPartialPayment, StatusPaid, StatusCancelled},
	StatusPartialPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// CanTransitionTo checks the transition table.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool { return len(statusTransitions[s]) == 0 }

// ShippingType enumerates the sales channels.
type ShippingType string

const (
	ShippingProvincia    ShippingType = "PROVINCIA"
	ShippingDeliveryLima ShippingType = "DELIVERY_LIMA"
	ShippingStorePickup  ShippingType = "STORE_PICKUP"
)

// Order is the root of the sales workflow. Amount invariants:
// TotalAmount = SubtotalAmount + ShippingAmount and
// RemainingAmount = TotalAmount - PaidAmount, recomputed on every payment or
// item change.
type Order struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// OrderNumber is the sequential human-readable number minted from the
	// singleton counter.
	OrderNumber     int             `gorm:"uniqueIndex;not null"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index"`
	ShippingType    ShippingType    `gorm:"type:varchar(20);not null"`
	SubtotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Client   *Client              `gorm:"foreignKey:ClientID"`
	Items    []OrderItem          `gorm:"foreignKey:OrderID"`
	Payments []Payment            `gorm:"foreignKey:OrderID"`
	Shipping *Shipping            `gorm:"foreignKey:OrderID"`
	History  []OrderStatusHistory `gorm:"foreignKey:OrderID"`
}

// OrderItem is immutable once created; orders grow only by appending items.
// UnitPrice is the price at time of sale, independent of the catalog price.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Shipping holds the one-to-one delivery details of an order.
type Shipping struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	RecipientName *string
	Address       *string
	District      *string
	// Agency is the third-party carrier for PROVINCIA shipments.
	Agency      *string
	DeliveryFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// IsContraentrega marks cash-on-delivery; only valid for DELIVERY_LIMA.
	IsContraentrega bool `gorm:"not null;default:false"`
	TrackingCode    *string
	DeliveryStatus  *string `gorm:"type:varchar(30)"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderStatusHistory is the append-only audit trail of status transitions.
// FromStatus is nil for the row recording the order's creation.
type OrderStatusHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	FromStatus *OrderStatus `gorm:"type:varchar(20)"`
	ToStatus   OrderStatus  `gorm:"type:varchar(20);not null"`
	ChangedBy  uuid.UUID    `gorm:"type:uuid;not null"`
	Notes      *string
	CreatedAt  time.Time
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }

// OrderCounter is the singleton row backing order number minting. LastNum is
// incremented in place so concurrent creations never mint duplicates.
type OrderCounter struct {
	ID      int `gorm:"primaryKey"`
	LastNum int `gorm:"not null;default:0"`
}

func (OrderCounter) TableName() string { return "order_counters" }
