package service

import (
	"context"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil, which runTx treats as
// "execute directly": the unit tests exercise service logic, not Postgres.

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) FindVariants(_ context.Context, parentID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.ParentProductID != nil && *p.ParentProductID == parentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) DecrementStockGuarded(_ *gorm.DB, id uuid.UUID, quantity int) (bool, error) {
	p, ok := r.products[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	return true, nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, quantity int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += quantity
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID.String() != filter.ProductID {
			continue
		}
		if filter.Type != "" && string(m.Type) != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) SumByProduct(_ context.Context, productID uuid.UUID) (int, error) {
	sum := 0
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.Delta()
		}
	}
	return sum, nil
}

func (r *stubMovementRepo) SumForOrder(_ context.Context, orderID uuid.UUID) (int, error) {
	sum := 0
	for _, m := range r.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			sum += m.Delta()
		}
	}
	return sum, nil
}

func (r *stubMovementRepo) byType(t model.MovementType) []model.StockMovement {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newStubClientRepo(clients ...*model.Client) *stubClientRepo {
	r := &stubClientRepo{clients: make(map[uuid.UUID]*model.Client)}
	for _, c := range clients {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.clients[c.ID] = c
	}
	return r
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) FindByDocumento(_ context.Context, documento string) (*model.Client, error) {
	for _, c := range r.clients {
		if c.Documento != nil && *c.Documento == documento {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ID] = c
	return nil
}

type stubOrderRepo struct {
	orders  map[uuid.UUID]*model.Order
	lastNum int

	// Rows written through the Tx methods, recorded separately so tests can
	// assert on what was persisted.
	items    []model.OrderItem
	payments []model.Payment
	history  []model.OrderStatusHistory

	// beforeLockedRead, when set, mutates the stored row once before the next
	// FindByIDForUpdateTx returns it. Tests use it to simulate another writer
	// committing between a caller's entry and its locked read.
	beforeLockedRead func(*model.Order)
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// A real query returns a row snapshot, not live shared state. Later
	// UPDATEs must not retroactively change what a caller already read.
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if r.beforeLockedRead != nil {
		hook := r.beforeLockedRead
		r.beforeLockedRead = nil
		hook(o)
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) List(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	out := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) NextOrderNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.lastNum++
	return r.lastNum, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	if o, ok := r.orders[id]; ok {
		o.Status = status
	}
	return nil
}

func (r *stubOrderRepo) UpdateAmountsTx(_ *gorm.DB, id uuid.UUID, subtotal, total, paid, remaining decimal.Decimal) error {
	if o, ok := r.orders[id]; ok {
		o.SubtotalAmount = subtotal
		o.TotalAmount = total
		o.PaidAmount = paid
		o.RemainingAmount = remaining
	}
	return nil
}

func (r *stubOrderRepo) CreateItemTx(_ *gorm.DB, item *model.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *stubOrderRepo) CreatePaymentTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubOrderRepo) CreateHistoryTx(_ *gorm.DB, h *model.OrderStatusHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.history = append(r.history, *h)
	return nil
}

func (r *stubOrderRepo) UpdateShippingTx(_ *gorm.DB, s *model.Shipping) error {
	if o, ok := r.orders[s.OrderID]; ok {
		o.Shipping = s
	}
	return nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }
