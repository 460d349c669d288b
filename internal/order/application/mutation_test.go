package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	catalogdom "github.com/salaheddinesamid/agrisales-back/internal/catalog/domain"
	inventorydom "github.com/salaheddinesamid/agrisales-back/internal/inventory/domain"
	"github.com/salaheddinesamid/agrisales-back/internal/order/domain"
)

func TestUpdateOrderDeleteLineReleasesStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t,
		line("P001", 1, 100, 5.0),
		line("P002", 1, 50, 4.0),
	)
	require.InDelta(t, 900.0, f.state.stock["P001"], 1e-9)

	victim := o.Lines[0].ID
	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsDeleted: []int64{victim},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	require.InDelta(t, 1000.0, f.state.stock["P001"], 1e-9)
	require.InDelta(t, 200.0, updated.TotalPrice, 1e-9)
	require.InDelta(t, 50.0, updated.TotalWeight, 1e-9)
}

func TestUpdateOrderAddLineReservesStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))

	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsAdded: []LineRequest{line("P002", 2, 60, 4.0)},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 2)
	require.InDelta(t, 140.0, f.state.stock["P002"], 1e-9)
	require.InDelta(t, 100*5+60*4, updated.TotalPrice, 1e-9)
	require.InDelta(t, 160.0, updated.TotalWeight, 1e-9)
}

func TestUpdateOrderChangeWeightAdjustsReservation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))

	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsUpdated: []LineUpdateRequest{{
			LineID:      o.Lines[0].ID,
			ProductCode: "P001",
			Weight:      250,
			PricePerKg:  5.5,
		}},
	})
	require.NoError(t, err)

	require.InDelta(t, 750.0, f.state.stock["P001"], 1e-9)
	require.InDelta(t, 250*5.5, updated.TotalPrice, 1e-9)
	require.InDelta(t, 250.0, updated.TotalWeight, 1e-9)
}

func TestUpdateOrderSwitchProductMovesReservation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsUpdated: []LineUpdateRequest{{
			LineID:      o.Lines[0].ID,
			ProductCode: "P002",
			Weight:      150,
			PricePerKg:  4.0,
		}},
	})
	require.NoError(t, err)

	require.InDelta(t, 1000.0, f.state.stock["P001"], 1e-9)
	require.InDelta(t, 50.0, f.state.stock["P002"], 1e-9)
}

func TestUpdateOrderAtomicAbortOnPartialFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))

	// The delete phase succeeds, then the add phase overdraws P002. The whole
	// delta must roll back including the already-applied delete.
	_, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsDeleted: []int64{o.Lines[0].ID},
		ItemsAdded:   []LineRequest{line("P002", 1, 500, 4.0)},
	})
	require.ErrorIs(t, err, inventorydom.ErrProductLowStock)

	stored := f.state.orders[o.ID]
	require.Len(t, stored.Lines, 1)
	require.InDelta(t, 900.0, f.state.stock["P001"], 1e-9)
	require.InDelta(t, 200.0, f.state.stock["P002"], 1e-9)
	require.InDelta(t, 500.0, stored.TotalPrice, 1e-9)
}

func TestUpdateOrderRejectedLateInLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))
	f.advance(t, o.ID, domain.StatusConfirmed, domain.StatusInProduction, domain.StatusReadyToShip)

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsAdded: []LineRequest{line("P002", 2, 10, 4.0)},
	})
	require.ErrorIs(t, err, domain.ErrOrderCannotBeUpdated)

	f.advance(t, o.ID, domain.StatusShipped)
	_, err = f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{})
	require.ErrorIs(t, err, domain.ErrOrderCannotBeUpdated)
}

func TestUpdateOrderAllowedWhileConfirmed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))
	f.advance(t, o.ID, domain.StatusConfirmed)

	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsAdded: []LineRequest{line("P002", 2, 10, 4.0)},
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 2)
}

func TestUpdateOrderForeignLineRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	a := f.createOrder(t, line("P001", 1, 100, 5.0))
	b := f.createOrder(t, line("P002", 1, 50, 4.0))

	_, err := f.svc.UpdateOrder(context.Background(), a.ID, UpdateOrderRequest{
		ItemsDeleted: []int64{b.Lines[0].ID},
	})
	require.ErrorIs(t, err, ErrLineNotFound)
	require.InDelta(t, 150.0, f.state.stock["P002"], 1e-9)

	_, err = f.svc.UpdateOrder(context.Background(), a.ID, UpdateOrderRequest{
		ItemsUpdated: []LineUpdateRequest{{LineID: b.Lines[0].ID, ProductCode: "P002", Weight: 10}},
	})
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestUpdateOrderUnknownPalletRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	o := f.createOrder(t, line("P001", 1, 100, 5.0))

	_, err := f.svc.UpdateOrder(context.Background(), o.ID, UpdateOrderRequest{
		ItemsAdded: []LineRequest{line("P002", 42, 10, 4.0)},
	})
	require.ErrorIs(t, err, catalogdom.ErrPalletNotFound)
	require.InDelta(t, 200.0, f.state.stock["P002"], 1e-9)
}
