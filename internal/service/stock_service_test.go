package service

import (
	"context"
	"testing"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPurchaseEntry(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Stock: 2, Active: true}
	base := &model.Product{ID: uuid.New(), Name: "Base Liquida", Stock: 0, Active: true}
	products := newStubProductRepo(labial, base)
	movements := &stubMovementRepo{}
	svc := NewStockService(products, movements, nil)
	userID := uuid.New()

	ref := "Factura F001-2233"
	err := svc.RegisterPurchaseEntry(context.Background(), userID, dto.PurchaseEntryRequest{
		Reference: &ref,
		Entries: []dto.PurchaseEntryLine{
			{ProductID: labial.ID.String(), Quantity: 10, UnitCost: dec("12.50")},
			{ProductID: base.ID.String(), Quantity: 5, UnitCost: dec("30.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, products.products[labial.ID].Stock)
	assert.Equal(t, 5, products.products[base.ID].Stock)

	entries := movements.byType(model.MovementPurchaseIn)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].UnitCost)
	assert.True(t, entries[0].UnitCost.Equal(dec("12.50")))
	assert.Equal(t, userID, entries[0].UserID)
}

func TestRegisterPurchaseEntryBadLineAbortsAll(t *testing.T) {
	labial := &model.Product{ID: uuid.New(), Name: "Labial Rojo", Stock: 2, Active: true}
	products := newStubProductRepo(labial)
	movements := &stubMovementRepo{}
	svc := NewStockService(products, movements, nil)

	err := svc.RegisterPurchaseEntry(context.Background(), uuid.New(), dto.PurchaseEntryRequest{
		Entries: []dto.PurchaseEntryLine{
			{ProductID: uuid.NewString(), Quantity: 5, UnitCost: dec("30.00")},
			{ProductID: labial.ID.String(), Quantity: 10, UnitCost: dec("12.50")},
		},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, movements.movements)
	assert.Equal(t, 2, products.products[labial.ID].Stock)
}

func TestApplyAdjustmentOut(t *testing.T) {
	crema := &model.Product{ID: uuid.New(), Name: "Crema Nutritiva", Stock: 8, Active: true}
	products := newStubProductRepo(crema)
	movements := &stubMovementRepo{}
	svc := NewStockService(products, movements, nil)

	notes := "merma por rotura en almacen"
	resp, err := svc.ApplyAdjustment(context.Background(), uuid.New(), dto.AdjustmentRequest{
		ProductID: crema.ID.String(),
		Type:      "ADJUSTMENT_OUT",
		Quantity:  3,
		Notes:     &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, "ADJUSTMENT_OUT", resp.Type)
	assert.Equal(t, 5, products.products[crema.ID].Stock)

	sum, _ := movements.SumByProduct(context.Background(), crema.ID)
	assert.Equal(t, -3, sum)
}

func TestApplyAdjustmentOutGuardedAtZero(t *testing.T) {
	crema := &model.Product{ID: uuid.New(), Name: "Crema Nutritiva", Stock: 2, Active: true}
	products := newStubProductRepo(crema)
	svc := NewStockService(products, &stubMovementRepo{}, nil)

	_, err := svc.ApplyAdjustment(context.Background(), uuid.New(), dto.AdjustmentRequest{
		ProductID: crema.ID.String(),
		Type:      "ADJUSTMENT_OUT",
		Quantity:  5,
	})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	// Guarded decrement never let the counter go negative.
	assert.Equal(t, 2, products.products[crema.ID].Stock)
}

func TestApplyMovementLedgerMatchesCounter(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Serum", Stock: 0, Active: true}
	products := newStubProductRepo(p)
	movements := &stubMovementRepo{}
	svc := NewStockService(products, movements, nil)
	userID := uuid.New()

	steps := []ApplyMovementInput{
		{ProductID: p.ID, Type: model.MovementPurchaseIn, Quantity: 10, UserID: userID},
		{ProductID: p.ID, Type: model.MovementSaleOut, Quantity: 4, UserID: userID},
		{ProductID: p.ID, Type: model.MovementReturnIn, Quantity: 1, UserID: userID},
		{ProductID: p.ID, Type: model.MovementAdjustmentOut, Quantity: 2, UserID: userID},
	}
	for _, in := range steps {
		_, _, err := svc.ApplyMovementTx(nil, in)
		require.NoError(t, err)
	}

	// The signed ledger sum always reconciles with the stock counter.
	sum, err := movements.SumByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)
	assert.Equal(t, 5, products.products[p.ID].Stock)
}

func TestListMovementsFiltersByType(t *testing.T) {
	p := &model.Product{ID: uuid.New(), Name: "Serum", Stock: 0, Active: true}
	products := newStubProductRepo(p)
	movements := &stubMovementRepo{}
	svc := NewStockService(products, movements, nil)
	userID := uuid.New()

	_, _, err := svc.ApplyMovementTx(nil, ApplyMovementInput{ProductID: p.ID, Type: model.MovementPurchaseIn, Quantity: 10, UserID: userID})
	require.NoError(t, err)
	_, _, err = svc.ApplyMovementTx(nil, ApplyMovementInput{ProductID: p.ID, Type: model.MovementSaleOut, Quantity: 4, UserID: userID})
	require.NoError(t, err)

	resp, err := svc.ListMovements(context.Background(), dto.MovementFilter{Type: "SALE_OUT"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "SALE_OUT", resp.Data[0].Type)
	assert.Equal(t, 4, resp.Data[0].Quantity)
}
