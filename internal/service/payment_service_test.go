package service

import (
	"context"
	"testing"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(f *orderFixture, status model.OrderStatus, total, paid string) *model.Order {
	o := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     f.orders.lastNum + 1,
		ClientID:        f.client.ID,
		UserID:          f.userID,
		Status:          status,
		ShippingType:    model.ShippingStorePickup,
		SubtotalAmount:  dec(total),
		TotalAmount:     dec(total),
		PaidAmount:      dec(paid),
		RemainingAmount: dec(total).Sub(dec(paid)),
	}
	f.orders.lastNum++
	f.orders.orders[o.ID] = o
	return o
}

func TestAddPaymentPartial(t *testing.T) {
	f := newOrderFixture()
	o := seedOrder(f, model.StatusPending, "20.00", "0.00")

	resp, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
		Amount: dec("5.00"), Method: model.MethodBilletera,
	})
	require.NoError(t, err)

	assert.Equal(t, "PARTIAL_PAYMENT", resp.Status)
	assert.True(t, resp.PaidAmount.Equal(dec("5.00")))
	assert.True(t, resp.RemainingAmount.Equal(dec("15.00")))

	require.Len(t, f.orders.payments, 1)
	require.Len(t, f.orders.history, 1)
	h := f.orders.history[0]
	require.NotNil(t, h.FromStatus)
	assert.Equal(t, model.StatusPending, *h.FromStatus)
	assert.Equal(t, model.StatusPartialPayment, h.ToStatus)
}

func TestAddPaymentCompletesBalance(t *testing.T) {
	f := newOrderFixture()
	o := seedOrder(f, model.StatusPartialPayment, "20.00", "5.00")

	resp, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
		Amount: dec("15.00"), Method: model.MethodTransferencia,
	})
	require.NoError(t, err)

	assert.Equal(t, "PAID", resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
}

func TestAddPaymentKeepsPartialWhenShort(t *testing.T) {
	f := newOrderFixture()
	o := seedOrder(f, model.StatusPartialPayment, "20.00", "5.00")

	resp, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
		Amount: dec("5.00"), Method: model.MethodEfectivo,
	})
	require.NoError(t, err)

	// Still short of the total: status stays, no history row.
	assert.Equal(t, "PARTIAL_PAYMENT", resp.Status)
	assert.True(t, resp.RemainingAmount.Equal(dec("10.00")))
	assert.Empty(t, f.orders.history)
}

func TestAddPaymentNeverRegressesShipped(t *testing.T) {
	f := newOrderFixture()
	// Contraentrega flow: the order shipped with an open balance collected at
	// hand-off.
	o := seedOrder(f, model.StatusShipped, "50.00", "20.00")

	resp, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
		Amount: dec("30.00"), Method: model.MethodContraentrega,
	})
	require.NoError(t, err)

	assert.Equal(t, "SHIPPED", resp.Status)
	assert.True(t, resp.RemainingAmount.IsZero())
	assert.Empty(t, f.orders.history)
}

func TestAddPaymentConcurrentWritersAccumulate(t *testing.T) {
	f := newOrderFixture()
	o := seedOrder(f, model.StatusPending, "30.00", "0.00")

	// Another 10.00 payment commits between this caller's entry and its locked
	// read. The locked read must observe that committed balance, so the two
	// payments accumulate instead of the second overwriting the first.
	f.orders.beforeLockedRead = func(stored *model.Order) {
		stored.PaidAmount = dec("10.00")
		stored.RemainingAmount = dec("20.00")
		stored.Status = model.StatusPartialPayment
	}

	resp, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
		Amount: dec("10.00"), Method: model.MethodEfectivo,
	})
	require.NoError(t, err)

	assert.True(t, resp.PaidAmount.Equal(dec("20.00")))
	assert.True(t, resp.RemainingAmount.Equal(dec("10.00")))
	stored, _ := f.orders.FindByID(context.Background(), o.ID)
	assert.True(t, stored.PaidAmount.Equal(dec("20.00")))
}

func TestAddPaymentRejectedOnTerminalStates(t *testing.T) {
	f := newOrderFixture()
	for _, status := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		o := seedOrder(f, status, "20.00", "0.00")
		_, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
			Amount: dec("5.00"), Method: model.MethodEfectivo,
		})
		assert.ErrorIs(t, err, ErrOrderNotPayable, "estado %s", status)
	}
}

func TestAddPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newOrderFixture()
	o := seedOrder(f, model.StatusPending, "20.00", "0.00")

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-5.00")} {
		_, err := f.payments.Add(context.Background(), f.userID, o.ID, dto.PaymentRequest{
			Amount: amount, Method: model.MethodEfectivo,
		})
		require.Error(t, err)
	}
	assert.Empty(t, f.orders.payments)
}

func TestAddPaymentUnknownOrder(t *testing.T) {
	f := newOrderFixture()
	_, err := f.payments.Add(context.Background(), f.userID, uuid.New(), dto.PaymentRequest{
		Amount: dec("5.00"), Method: model.MethodEfectivo,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
