package outbox

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/platform/pgtest"
)

func TestPGStoreLeaseCycle(t *testing.T) {
	env := pgtest.Start(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, env.Pool))

	for _, id := range []string{"a", "b"} {
		ev, err := NewEvent("order", id, "OrderConfirmed", map[string]string{"order_id": id}, "")
		require.NoError(t, err)
		require.NoError(t, Insert(ctx, env.Pool, ev))
	}

	s := NewPGStore(slog.New(slog.DiscardHandler), env.Pool, 2)
	batch, err := s.LockBatch(ctx, "relay-1", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].AggregateID)
	assert.Equal(t, "order", batch[0].Headers["aggregate_type"])
	assert.JSONEq(t, `{"order_id":"a"}`, string(batch[0].Payload))

	other, err := s.LockBatch(ctx, "relay-2", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, other, "leased rows must not be handed out twice")

	require.NoError(t, s.ExtendLease(ctx, "relay-1", []int64{batch[0].ID}, time.Minute))
	require.NoError(t, s.MarkSent(ctx, []int64{batch[0].ID}))
	require.NoError(t, s.MarkFailed(ctx, batch[1].ID, "broker down"))

	retry, err := s.LockBatch(ctx, "relay-2", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, retry, 1)
	assert.Equal(t, batch[1].ID, retry[0].ID)
	assert.Equal(t, 1, retry[0].RetryCount)

	require.NoError(t, s.MarkFailed(ctx, retry[0].ID, "broker down"))
	var status string
	require.NoError(t, env.Pool.QueryRow(ctx, `SELECT status FROM outbox WHERE id=$1`, retry[0].ID).Scan(&status))
	assert.Equal(t, string(StatusFailed), status)
}

func TestPGStoreReclaimsExpiredLease(t *testing.T) {
	env := pgtest.Start(t)
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, env.Pool))

	ev, err := NewEvent("stock_item", "P1", "StockAdded", map[string]int{"quantity": 1}, "")
	require.NoError(t, err)
	require.NoError(t, Insert(ctx, env.Pool, ev))

	s := NewPGStore(slog.New(slog.DiscardHandler), env.Pool, 3)
	first, err := s.LockBatch(ctx, "relay-1", 10, time.Millisecond)
	require.NoError(t, err)
	require.Len(t, first, 1)

	time.Sleep(20 * time.Millisecond)
	second, err := s.LockBatch(ctx, "relay-2", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}
