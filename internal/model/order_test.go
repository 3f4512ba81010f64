package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusPending, StatusStockReserved},
		{StatusPending, StatusPartialPayment},
		{StatusPending, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusStockReserved, StatusPartialPayment},
		{StatusStockReserved, StatusPaid},
		{StatusPartialPayment, StatusPaid},
		{StatusPartialPayment, StatusCancelled},
		{StatusPaid, StatusShipped},
		{StatusPaid, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusShipped, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s a %s should be allowed", tc.from, tc.to)
	}

	forbidden := []struct{ from, to OrderStatus }{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusPartialPayment, StatusPending},
		{StatusPartialPayment, StatusShipped},
		{StatusPaid, StatusPartialPayment},
		{StatusPaid, StatusDelivered},
		{StatusShipped, StatusPaid},
		{StatusDelivered, StatusCancelled},
		{StatusDelivered, StatusShipped},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusPaid},
	}
	for _, tc := range forbidden {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s a %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestMovementDelta(t *testing.T) {
	in := &StockMovement{Type: MovementPurchaseIn, Quantity: 5}
	assert.Equal(t, 5, in.Delta())

	ret := &StockMovement{Type: MovementReturnIn, Quantity: 2}
	assert.Equal(t, 2, ret.Delta())

	out := &StockMovement{Type: MovementSaleOut, Quantity: 3}
	assert.Equal(t, -3, out.Delta())

	adj := &StockMovement{Type: MovementAdjustmentOut, Quantity: 1}
	assert.Equal(t, -1, adj.Delta())
}

func TestMovementTypeValid(t *testing.T) {
	assert.True(t, MovementAdjustmentIn.Valid())
	assert.False(t, MovementType("DESARME").Valid())
}
