package repository

import (
	"context"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportRepository is the read side over the accumulated ledger. All queries
// are aggregation-only; nothing here mutates state.
type ReportRepository interface {
	SumPayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumPurchaseCosts(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// SumLimaDeliveryFees totals delivery fees on DELIVERY_LIMA orders in the
	// window; that money passes straight through to the carrier.
	SumLimaDeliveryFees(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	PendingReceivables(ctx context.Context) (decimal.Decimal, error)
	InventoryValuation(ctx context.Context) (decimal.Decimal, error)

	PaymentsByMethodOnDay(ctx context.Context, day string) ([]dto.MethodTotal, error)
	OrdersOnDay(ctx context.Context, day string) ([]model.Order, error)
	PendingOrders(ctx context.Context) ([]model.Order, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]dto.TopProductRow, error)
	// RestockCandidates returns active leaf products at or below their
	// threshold. Parents with variants are excluded: their stock field is not
	// authoritative.
	RestockCandidates(ctx context.Context) ([]model.Product, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) SumPayments(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE received_at >= ? AND received_at < ?`, from, to).Scan(&total).Error
	return total, err
}

func (r *reportRepo) SumPurchaseCosts(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM stock_movements
		WHERE type = 'PURCHASE_IN' AND unit_cost IS NOT NULL
		  AND created_at >= ? AND created_at < ?`, from, to).Scan(&total).Error
	return total, err
}

func (r *reportRepo) SumLimaDeliveryFees(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(s.delivery_fee), 0)
		FROM shippings s
		JOIN orders o ON o.id = s.order_id
		WHERE o.shipping_type = 'DELIVERY_LIMA' AND o.status <> 'CANCELLED'
		  AND o.created_at >= ? AND o.created_at < ?`, from, to).Scan(&total).Error
	return total, err
}

func (r *reportRepo) PendingReceivables(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(remaining_amount), 0) FROM orders
		WHERE remaining_amount > 0 AND status NOT IN ('CANCELLED', 'DELIVERED')`).Scan(&total).Error
	return total, err
}

func (r *reportRepo) InventoryValuation(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(stock * cost_price), 0) FROM products
		WHERE active = true AND cost_price IS NOT NULL`).Scan(&total).Error
	return total, err
}

func (r *reportRepo) PaymentsByMethodOnDay(ctx context.Context, day string) ([]dto.MethodTotal, error) {
	var rows []dto.MethodTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT method, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total
		FROM payments
		WHERE DATE(received_at) = ?
		GROUP BY method
		ORDER BY total DESC`, day).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) OrdersOnDay(ctx context.Context, day string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("DATE(created_at) = ? AND status <> 'CANCELLED'", day).
		Order("order_number ASC").
		Find(&orders).Error
	return orders, err
}

func (r *reportRepo) PendingOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	// Oldest first: the longest-pending balance is the most urgent.
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("remaining_amount > 0 AND status NOT IN ('CANCELLED', 'DELIVERED')").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]dto.TopProductRow, error) {
	var rows []dto.TopProductRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS product_id, p.name, p.color,
		       SUM(i.quantity) AS quantity,
		       COALESCE(SUM(i.subtotal), 0) AS revenue
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE o.status <> 'CANCELLED'
		  AND o.created_at >= ? AND o.created_at < ?
		GROUP BY p.id, p.name, p.color
		ORDER BY quantity DESC
		LIMIT ?`, from, to, limit).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) RestockCandidates(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("active = true AND stock <= low_stock_threshold").
		Where("id NOT IN (SELECT DISTINCT parent_product_id FROM products WHERE parent_product_id IS NOT NULL)").
		Order("stock ASC").
		Find(&products).Error
	return products, err
}
