package repository

import (
	"context"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// CreateTx inserts the order graph (items, payments, shipping) in the
	// caller's transaction.
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// FindByIDForUpdateTx locks the order row for the rest of the caller's
	// transaction. Concurrent balance mutations serialize on this lock, so
	// each one reads the amounts the previous one committed.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)

	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)

	// NextOrderNumber increments the singleton counter in place and returns
	// the minted number. Safe under concurrent creations.
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error)

	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error
	UpdateAmountsTx(tx *gorm.DB, id uuid.UUID, subtotal, total, paid, remaining decimal.Decimal) error
	CreateItemTx(tx *gorm.DB, item *model.OrderItem) error
	CreatePaymentTx(tx *gorm.DB, p *model.Payment) error
	CreateHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error
	UpdateShippingTx(tx *gorm.DB, s *model.Shipping) error

	// DB exposes the DB for transaction creation in the service layer.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items.Product").
		Preload("Payments").
		Preload("Shipping").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	// SELECT ... FOR UPDATE on the orders row; preloads run as separate
	// unlocked queries, which is fine: only the amount columns are contended.
	var o model.Order
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Client").
		Preload("Items.Product").
		Preload("Payments").
		Preload("Shipping").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Client").Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Single-row atomic increment-and-return on the singleton counter.
	var num int
	err := tx.WithContext(ctx).
		Raw("UPDATE order_counters SET last_num = last_num + 1 WHERE id = 1 RETURNING last_num").
		Scan(&num).Error
	return num, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) UpdateAmountsTx(tx *gorm.DB, id uuid.UUID, subtotal, total, paid, remaining decimal.Decimal) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"subtotal_amount":  subtotal,
		"total_amount":     total,
		"paid_amount":      paid,
		"remaining_amount": remaining,
		"updated_at":       time.Now(),
	}).Error
}

func (r *orderRepo) CreateItemTx(tx *gorm.DB, item *model.OrderItem) error {
	return tx.Create(item).Error
}

func (r *orderRepo) CreatePaymentTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *orderRepo) CreateHistoryTx(tx *gorm.DB, h *model.OrderStatusHistory) error {
	return tx.Create(h).Error
}

func (r *orderRepo) UpdateShippingTx(tx *gorm.DB, s *model.Shipping) error {
	return tx.Save(s).Error
}
