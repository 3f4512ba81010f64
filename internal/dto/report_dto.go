package dto

import "github.com/shopspring/decimal"

// ReportWindow is bound from the query string of window-based reports.
type ReportWindow struct {
	Period string `form:"period,default=month" validate:"oneof=week month year"`
}

type FinanceStatsResponse struct {
	Period string `json:"period"`
	From   string `json:"from"`
	To     string `json:"to"`
	// Ingresos: payments received in the window.
	Ingresos decimal.Decimal `json:"ingresos"`
	// Egresos: purchase costs plus Lima delivery fees passed to the carrier.
	Egresos            decimal.Decimal `json:"egresos"`
	Neto               decimal.Decimal `json:"neto"`
	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	InventoryValuation decimal.Decimal `json:"inventory_valuation"`
}

type MethodTotal struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type DailyCloseOrder struct {
	OrderNumber int             `json:"order_number"`
	Client      string          `json:"client"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
}

type DailyCloseResponse struct {
	Date          string            `json:"date"`
	TotalReceived decimal.Decimal   `json:"total_received"`
	ByMethod      []MethodTotal     `json:"by_method"`
	Orders        []DailyCloseOrder `json:"orders"`
}

type PendingPaymentRow struct {
	OrderID     string          `json:"order_id"`
	OrderNumber int             `json:"order_number"`
	Client      string          `json:"client"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	DaysPending int             `json:"days_pending"`
	CreatedAt   string          `json:"created_at"`
}

type TopProductRow struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Color     *string         `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RestockRow struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Color     *string         `json:"color,omitempty"`
	Stock     int             `json:"stock"`
	Threshold int             `json:"threshold"`
	// UnitsNeeded replenishes up to twice the low-stock threshold.
	UnitsNeeded   int             `json:"units_needed"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}
