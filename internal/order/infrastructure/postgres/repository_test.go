package postgres_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/order-fulfillment/internal/platform/pgtest"
)

func TestOrderRepositoryRoundTrip(t *testing.T) {
	env := pgtest.Start(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, env.Pool))
	repo := postgres.NewRepository(slog.New(slog.DiscardHandler), env.Pool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	o := domain.NewOrder("o-1", "Alice", now)
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, o.AddLineItem(domain.LineItem{ID: "li-1", ProductID: "P1", ProductName: "Laptop", Quantity: 2, UnitPrice: decimal.RequireFromString("999.99")}))
	require.NoError(t, o.AddLineItem(domain.LineItem{ID: "li-2", ProductID: "P2", ProductName: "Mouse", Quantity: 1, UnitPrice: decimal.RequireFromString("29.99")}))
	_, err := o.ComputeTotal(now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))
	require.NoError(t, o.Confirm(now))
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.True(t, decimal.RequireFromString("2029.97").Equal(got.TotalAmount), got.TotalAmount.String())
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, "Laptop", got.LineItems[0].ProductName)
	assert.True(t, decimal.RequireFromString("29.99").Equal(got.LineItems[1].UnitPrice))

	failed := domain.NewOrder("o-2", "Bob", now.Add(time.Second))
	require.NoError(t, repo.Create(ctx, failed))
	require.NoError(t, failed.Fail(now))
	require.NoError(t, repo.Save(ctx, failed))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o-1", all[0].ID)
	assert.Equal(t, domain.StatusFailed, all[1].Status)
	assert.Empty(t, all[1].LineItems)

	var types []string
	rows, err := env.Pool.Query(ctx, `SELECT type FROM outbox ORDER BY id`)
	require.NoError(t, err)
	for rows.Next() {
		var typ string
		require.NoError(t, rows.Scan(&typ))
		types = append(types, typ)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{domain.EventOrderConfirmed, domain.EventOrderFailed}, types)
}

func TestOrderRepositoryMissing(t *testing.T) {
	env := pgtest.Start(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, env.Pool))
	repo := postgres.NewRepository(slog.New(slog.DiscardHandler), env.Pool)

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.ErrorIs(t, repo.Save(ctx, domain.NewOrder("nope", "x", time.Now())), domain.ErrOrderNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrderRepositorySaveKeepsTerminalOrders(t *testing.T) {
	env := pgtest.Start(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, env.Pool))
	repo := postgres.NewRepository(slog.New(slog.DiscardHandler), env.Pool)

	now := time.Now().UTC().Truncate(time.Millisecond)
	o := domain.NewOrder("o-1", "Alice", now)
	require.NoError(t, repo.Create(ctx, o))
	confirmed := o
	require.NoError(t, confirmed.Confirm(now))
	require.NoError(t, repo.Save(ctx, confirmed))

	failed := o
	require.NoError(t, failed.Fail(now))
	assert.ErrorIs(t, repo.Save(ctx, failed), domain.ErrOrderTerminal)

	got, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	var events int
	require.NoError(t, env.Pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE aggregate_id=$1`, "o-1").Scan(&events))
	assert.Equal(t, 1, events)
}
