package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type orderFixture struct {
	orders    *stubOrderRepo
	products  *stubProductRepo
	movements *stubMovementRepo
	clients   *stubClientRepo
	svc       OrderService
	payments  PaymentService
	client    *model.Client
	userID    uuid.UUID
}

func newOrderFixture(products ...*model.Product) *orderFixture {
	client := &model.Client{ID: uuid.New(), Name: "Maria Lopez"}
	f := &orderFixture{
		orders:    newStubOrderRepo(),
		products:  newStubProductRepo(products...),
		movements: &stubMovementRepo{},
		clients:   newStubClientRepo(client),
		client:    client,
		userID:    uuid.New(),
	}
	stock := NewStockService(f.products, f.movements, nil)
	f.svc = NewOrderService(f.orders, f.clients, f.products, stock, nil)
	f.payments = NewPaymentService(f.orders)
	return f
}

func TestCreateOrderFullyPaid(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true, LowStockThreshold: 2}
	base := &model.Product{ID: uuid.New(), Name: "Base Liquida", Price: dec("60.00"), Stock: 5, Active: true, LowStockThreshold: 2}
	f := newOrderFixture(labial, base)

	resp, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items: []dto.OrderItemRequest{
			{ProductID: labial.ID.String(), Quantity: 2, UnitPrice: dec("25.00")},
			{ProductID: base.ID.String(), Quantity: 1, UnitPrice: dec("60.00")},
		},
		InitialPayment: &dto.PaymentRequest{Amount: dec("110.00"), Method: model.MethodEfectivo},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.OrderNumber)
	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.TotalAmount.Equal(dec("110.00")))
	assert.True(t, resp.RemainingAmount.IsZero())

	// One SALE_OUT per line, stock decremented accordingly.
	assert.Len(t, f.movements.byType(model.MovementSaleOut), 2)
	assert.Equal(t, 8, f.products.products[labial.ID].Stock)
	assert.Equal(t, 4, f.products.products[base.ID].Stock)

	// Creation writes the initial history row with no prior status.
	require.Len(t, resp.History, 1)
	assert.Nil(t, resp.History[0].FromStatus)
	assert.Equal(t, "PAID", resp.History[0].ToStatus)
}

func TestCreateOrderInsufficientStockAbortsAll(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	rimel := &model.Product{ID: uuid.New(), Name: "Rimel Negro", Price: dec("35.00"), Stock: 1, Active: true}
	f := newOrderFixture(labial, rimel)

	_, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items: []dto.OrderItemRequest{
			{ProductID: labial.ID.String(), Quantity: 2, UnitPrice: dec("25.00")},
			{ProductID: rimel.ID.String(), Quantity: 3, UnitPrice: dec("35.00")},
		},
	})

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Rimel Negro", insufficient.ProductName)
	assert.Equal(t, 1, insufficient.Available)

	// Nothing persisted: no order, no movements, stock untouched.
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.movements.movements)
	assert.Equal(t, 10, f.products.products[labial.ID].Stock)
	assert.Equal(t, 1, f.products.products[rimel.ID].Stock)
}

func TestCreateOrderProvinciaRequiresFullPayment(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Serum", Price: dec("80.00"), Stock: 5, Active: true}
	f := newOrderFixture(p)

	req := dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "PROVINCIA",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("80.00")}},
		Shipping:     &dto.ShippingRequest{DeliveryFee: dec("15.00")},
		InitialPayment: &dto.PaymentRequest{
			Amount: dec("50.00"), Method: model.MethodTransferencia,
		},
	}
	_, err := f.svc.Create(context.Background(), f.userID, req)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	// Paying the full 95.00 (items + shipping) goes through.
	req.InitialPayment.Amount = dec("95.00")
	resp, err := f.svc.Create(context.Background(), f.userID, req)
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
}

func TestCreateOrderContraentregaOnlyLima(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Serum", Price: dec("80.00"), Stock: 5, Active: true}
	f := newOrderFixture(p)

	_, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("80.00")}},
		Shipping:     &dto.ShippingRequest{IsContraentrega: true},
	})
	assert.ErrorIs(t, err, ErrInvalidShippingConfig)
}

func TestCreateOrderRejectsParentProduct(t *testing.T) {
	parent := &model.Product{ID: uuid.New(), Name: "Labial", Price: dec("25.00"), Active: true}
	variant := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true, ParentProductID: &parent.ID}
	parent.Variants = []model.Product{*variant}
	f := newOrderFixture(parent, variant)

	_, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: parent.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
	})
	assert.ErrorIs(t, err, ErrParentNotSellable)
}

func TestCreateOrderStatusFromInitialPayment(t *testing.T) {
	cases := []struct {
		name    string
		payment *dto.PaymentRequest
		want    string
	}{
		{"sin pago", nil, "PENDING"},
		{"pago parcial", &dto.PaymentRequest{Amount: dec("10.00"), Method: model.MethodBilletera}, "PARTIAL_PAYMENT"},
		{"pago completo", &dto.PaymentRequest{Amount: dec("50.00"), Method: model.MethodBilletera}, "PAID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &model.Product{ID: uuid.New(), Name: "Crema", Price: dec("50.00"), Stock: 20, Active: true}
			f := newOrderFixture(p)
			resp, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
				ClientID:       f.client.ID.String(),
				ShippingType:   "STORE_PICKUP",
				Items:          []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("50.00")}},
				InitialPayment: tc.payment,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Status)
		})
	}
}

func TestOrderNumbersAreSequential(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Crema", Price: dec("50.00"), Stock: 20, Active: true}
	f := newOrderFixture(p)

	for want := 1; want <= 3; want++ {
		resp, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
			ClientID:     f.client.ID.String(),
			ShippingType: "STORE_PICKUP",
			Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("50.00")}},
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.OrderNumber)
	}
}

func TestAddItemGrowsBalanceOnly(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(labial)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:       f.client.ID.String(),
		ShippingType:   "STORE_PICKUP",
		Items:          []dto.OrderItemRequest{{ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
		InitialPayment: &dto.PaymentRequest{Amount: dec("10.00"), Method: model.MethodEfectivo},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	resp, err := f.svc.AddItem(context.Background(), f.userID, orderID, dto.AddItemRequest{
		ProductID: labial.ID.String(), Quantity: 2, UnitPrice: dec("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, resp.SubtotalAmount.Equal(dec("75.00")))
	assert.True(t, resp.PaidAmount.Equal(dec("10.00")), "el pago no debe cambiar al agregar items")
	assert.True(t, resp.RemainingAmount.Equal(dec("65.00")))
	assert.Equal(t, 7, f.products.products[labial.ID].Stock)
	assert.Len(t, f.movements.byType(model.MovementSaleOut), 2)
}

func TestAddItemSeesLatestBalance(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(labial)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	// A payment commits between this caller's entry and its locked read. The
	// amounts written below must grow from that committed balance.
	f.orders.beforeLockedRead = func(stored *model.Order) {
		stored.PaidAmount = dec("25.00")
		stored.RemainingAmount = dec("0.00")
		stored.Status = model.StatusPaid
	}

	resp, err := f.svc.AddItem(context.Background(), f.userID, orderID, dto.AddItemRequest{
		ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00"),
	})
	require.NoError(t, err)

	assert.True(t, resp.SubtotalAmount.Equal(dec("50.00")))
	assert.True(t, resp.PaidAmount.Equal(dec("25.00")))
	assert.True(t, resp.RemainingAmount.Equal(dec("25.00")))
	stored, _ := f.orders.FindByID(context.Background(), orderID)
	assert.True(t, stored.PaidAmount.Equal(dec("25.00")))
	assert.True(t, stored.RemainingAmount.Equal(dec("25.00")))
}

func TestAddItemRejectedAfterShipment(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(labial)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:       f.client.ID.String(),
		ShippingType:   "STORE_PICKUP",
		Items:          []dto.OrderItemRequest{{ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
		InitialPayment: &dto.PaymentRequest{Amount: dec("25.00"), Method: model.MethodEfectivo},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	require.NoError(t, f.svc.MarkShipped(context.Background(), f.userID, orderID, dto.ShipOrderRequest{}))

	_, err = f.svc.AddItem(context.Background(), f.userID, orderID, dto.AddItemRequest{
		ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00"),
	})
	assert.ErrorIs(t, err, ErrOrderNotEditable)
}

func TestCancelRestoresStock(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(labial)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:       f.client.ID.String(),
		ShippingType:   "STORE_PICKUP",
		Items:          []dto.OrderItemRequest{{ProductID: labial.ID.String(), Quantity: 3, UnitPrice: dec("25.00")}},
		InitialPayment: &dto.PaymentRequest{Amount: dec("75.00"), Method: model.MethodTransferencia},
	})
	require.NoError(t, err)
	require.Equal(t, 7, f.products.products[labial.ID].Stock)
	orderID := uuid.MustParse(created.ID)

	notes := "cliente desistio de la compra"
	require.NoError(t, f.svc.Cancel(context.Background(), f.userID, orderID, notes))

	// RETURN_IN restored the 3 units and the order's movements net to zero.
	assert.Equal(t, 10, f.products.products[labial.ID].Stock)
	returns := f.movements.byType(model.MovementReturnIn)
	require.Len(t, returns, 1)
	assert.Equal(t, 3, returns[0].Quantity)
	net, _ := f.movements.SumForOrder(context.Background(), orderID)
	assert.Equal(t, 0, net)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, model.StatusCancelled, order.Status)

	require.Len(t, f.orders.history, 1)
	h := f.orders.history[0]
	require.NotNil(t, h.FromStatus)
	assert.Equal(t, model.StatusPaid, *h.FromStatus)
	assert.Equal(t, model.StatusCancelled, h.ToStatus)
	require.NotNil(t, h.Notes)
	assert.Equal(t, notes, *h.Notes)
}

func TestCancelDeliveredOrderRejected(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(labial)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:       f.client.ID.String(),
		ShippingType:   "STORE_PICKUP",
		Items:          []dto.OrderItemRequest{{ProductID: labial.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
		InitialPayment: &dto.PaymentRequest{Amount: dec("25.00"), Method: model.MethodEfectivo},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	require.NoError(t, f.svc.MarkShipped(context.Background(), f.userID, orderID, dto.ShipOrderRequest{}))
	require.NoError(t, f.svc.MarkDelivered(context.Background(), f.userID, orderID))

	err = f.svc.Cancel(context.Background(), f.userID, orderID, "demasiado tarde")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.StatusDelivered, invalid.From)
	// Stock unchanged.
	assert.Equal(t, 9, f.products.products[labial.ID].Stock)
}

func TestMarkShippedProvinciaNeedsTracking(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Serum", Price: dec("80.00"), Stock: 5, Active: true}
	f := newOrderFixture(p)

	created, err := f.svc.Create(context.Background(), f.userID, dto.CreateOrderRequest{
		ClientID:       f.client.ID.String(),
		ShippingType:   "PROVINCIA",
		Items:          []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("80.00")}},
		Shipping:       &dto.ShippingRequest{DeliveryFee: dec("15.00")},
		InitialPayment: &dto.PaymentRequest{Amount: dec("95.00"), Method: model.MethodTransferencia},
	})
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	err = f.svc.MarkShipped(context.Background(), f.userID, orderID, dto.ShipOrderRequest{})
	assert.ErrorIs(t, err, ErrTrackingCodeRequired)

	tracking := "OLVA-123456"
	require.NoError(t, f.svc.MarkShipped(context.Background(), f.userID, orderID, dto.ShipOrderRequest{TrackingCode: &tracking}))

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, model.StatusShipped, order.Status)
	require.NotNil(t, order.Shipping)
	assert.Equal(t, tracking, *order.Shipping.TrackingCode)
	assert.NotNil(t, order.Shipping.ShippedAt)
}

func TestImportHistoricalSkipsStockLedger(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(p)

	createdAt := time.Now().AddDate(0, -2, 0).Format(time.RFC3339)
	resp, err := f.svc.ImportHistorical(context.Background(), f.userID, dto.HistoricalOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 4, UnitPrice: dec("25.00")}},
		Payments:     []dto.PaymentRequest{{Amount: dec("100.00"), Method: model.MethodEfectivo}},
		Status:       "DELIVERED",
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)

	assert.Equal(t, "DELIVERED", resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
	// The goods left inventory before the system existed: no ledger rows, no
	// stock change.
	assert.Empty(t, f.movements.movements)
	assert.Equal(t, 10, f.products.products[p.ID].Stock)
}

func TestImportHistoricalDeliveredSetsTimestamps(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(p)

	createdAt := time.Now().AddDate(0, -1, 0).Format(time.RFC3339)
	resp, err := f.svc.ImportHistorical(context.Background(), f.userID, dto.HistoricalOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "DELIVERY_LIMA",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
		Payments:     []dto.PaymentRequest{{Amount: dec("25.00"), Method: model.MethodEfectivo}},
		Shipping:     &dto.ShippingRequest{DeliveryFee: dec("0.00")},
		Status:       "DELIVERED",
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Shipping)
	require.NotNil(t, resp.Shipping.ShippedAt)
	require.NotNil(t, resp.Shipping.DeliveredAt)
	require.NotNil(t, resp.Shipping.DeliveryStatus)
	assert.Equal(t, "entregado", *resp.Shipping.DeliveryStatus)
}

func TestImportHistoricalRejectsFutureDate(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Price: dec("25.00"), Stock: 10, Active: true}
	f := newOrderFixture(p)

	_, err := f.svc.ImportHistorical(context.Background(), f.userID, dto.HistoricalOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("25.00")}},
		Status:       "DELIVERED",
		CreatedAt:    time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOrderNotFound))
}

func TestCreateOrderRequiresUser(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Crema", Price: dec("50.00"), Stock: 20, Active: true}
	f := newOrderFixture(p)

	_, err := f.svc.Create(context.Background(), uuid.Nil, dto.CreateOrderRequest{
		ClientID:     f.client.ID.String(),
		ShippingType: "STORE_PICKUP",
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitPrice: dec("50.00")}},
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
