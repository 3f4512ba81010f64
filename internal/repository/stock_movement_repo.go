package repository

import (
	"context"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	List(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error)
	// SumByProduct returns the signed sum of all movements for a product.
	// Used by integrity checks: it must equal Product.Stock.
	SumByProduct(ctx context.Context, productID uuid.UUID) (int, error)
	// SumForOrder returns the net stock effect of all movements linked to an
	// order; zero for a fully cancelled order.
	SumForOrder(ctx context.Context, orderID uuid.UUID) (int, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) List(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Preload("Product")
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(CASE
			WHEN type IN ('PURCHASE_IN', 'RETURN_IN', 'ADJUSTMENT_IN') THEN quantity
			ELSE -quantity
		END), 0)
		FROM stock_movements WHERE product_id = ?`, productID).Scan(&sum).Error
	return sum, err
}

func (r *stockMovementRepo) SumForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(CASE
			WHEN type IN ('PURCHASE_IN', 'RETURN_IN', 'ADJUSTMENT_IN') THEN quantity
			ELSE -quantity
		END), 0)
		FROM stock_movements WHERE order_id = ?`, orderID).Scan(&sum).Error
	return sum, err
}
