package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

func TestStoreRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	item, err := domain.NewStockItem("s1", "P1", 10, now)
	require.NoError(t, err)
	require.NoError(t, s.InsertStockItem(ctx, item))
	assert.ErrorIs(t, s.InsertStockItem(ctx, item), domain.ErrVersionConflict)

	stale := item
	require.NoError(t, item.Add(1, now))
	require.NoError(t, s.UpdateStockItem(ctx, item, 0))

	require.NoError(t, stale.Add(2, now))
	assert.ErrorIs(t, s.UpdateStockItem(ctx, stale, 0), domain.ErrVersionConflict)

	got, err := s.FindByProductID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 11, got.QuantityAvailable)
}

func TestStoreReservationPairIsUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	item, err := domain.NewStockItem("s1", "P1", 10, now)
	require.NoError(t, err)
	require.NoError(t, s.InsertStockItem(ctx, item))

	first := item
	require.NoError(t, first.Reserve(2, now))
	require.NoError(t, s.InsertReservation(ctx, first, 0, domain.NewReservation("r1", first, "o1", 2, now)))

	second := first
	require.NoError(t, second.Reserve(2, now))
	err = s.InsertReservation(ctx, second, first.Version, domain.NewReservation("r2", second, "o1", 2, now))
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	got, err := s.FindReservation(ctx, "s1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
}

func TestStoreCancelRequiresActiveReservation(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()

	item, err := domain.NewStockItem("s1", "P1", 10, now)
	require.NoError(t, err)
	require.NoError(t, s.InsertStockItem(ctx, item))
	require.NoError(t, item.Reserve(3, now))
	res := domain.NewReservation("r1", item, "o1", 3, now)
	require.NoError(t, s.InsertReservation(ctx, item, 0, res))

	expected := item.Version
	require.NoError(t, item.Release(3, now))
	res.Cancel()
	require.NoError(t, s.CancelReservation(ctx, item, expected, res))
	assert.ErrorIs(t, s.CancelReservation(ctx, item, item.Version, res), domain.ErrVersionConflict)

	_, err = s.GetReservation(ctx, "r2")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}
