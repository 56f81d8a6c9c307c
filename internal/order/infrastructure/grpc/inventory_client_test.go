package grpc_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	invapp "github.com/dmehra2102/order-fulfillment/internal/inventory/application"
	invdomain "github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	invgrpc "github.com/dmehra2102/order-fulfillment/internal/inventory/infrastructure/grpc"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/infrastructure/memory"
	ordergrpc "github.com/dmehra2102/order-fulfillment/internal/order/infrastructure/grpc"
)

func startLedger(t *testing.T) (*invapp.Service, *ordergrpc.InventoryClient) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	svc := invapp.NewService(log, memory.NewStore(), invapp.DefaultConfig())

	lis := bufconn.Listen(1 << 20)
	gs := invgrpc.NewGRPCServer(invgrpc.NewServer(log, svc))
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, err := ordergrpc.NewInventoryClient(log, "passthrough:///bufnet", 2*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return svc, client
}

func TestInventoryClientReserveAndCancel(t *testing.T) {
	svc, client := startLedger(t)
	ctx := context.Background()
	_, err := svc.AddStock(ctx, "P1", 10)
	require.NoError(t, err)

	ref, err := client.Reserve(ctx, "P1", "order-1", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, ref.ID)
	assert.Equal(t, "P1", ref.ProductID)
	assert.Equal(t, 4, ref.Quantity)

	again, err := client.Reserve(ctx, "P1", "order-1", 4)
	require.NoError(t, err)
	assert.Equal(t, ref.ID, again.ID)

	item, err := svc.GetStock(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 6, item.QuantityAvailable)

	require.NoError(t, client.Cancel(ctx, ref.ID))
	require.NoError(t, client.Cancel(ctx, ref.ID))

	item, err = svc.GetStock(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 10, item.QuantityAvailable)
	assert.Equal(t, 0, item.QuantityReserved)
}

func TestInventoryClientRejectsQuantityBeyondWireRange(t *testing.T) {
	svc, client := startLedger(t)
	ctx := context.Background()
	_, err := svc.AddStock(ctx, "P1", 10)
	require.NoError(t, err)

	for _, qty := range []int{math.MaxUint32 + 2, math.MaxInt32 + 1, 0, -1} {
		_, err := client.Reserve(ctx, "P1", "order-1", qty)
		assert.ErrorIs(t, err, invdomain.ErrInvalidArgument, "quantity %d", qty)
	}

	item, err := svc.GetStock(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 10, item.QuantityAvailable)
	assert.Equal(t, 0, item.QuantityReserved)
}

func TestInventoryClientInsufficientStock(t *testing.T) {
	svc, client := startLedger(t)
	ctx := context.Background()
	_, err := svc.AddStock(ctx, "P2", 3)
	require.NoError(t, err)

	_, err = client.Reserve(ctx, "P2", "order-1", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, invdomain.ErrInsufficientStock)

	var insufficient *invdomain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "P2", insufficient.ProductID)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Available)
}

func TestInventoryClientMapsStatusCodes(t *testing.T) {
	_, client := startLedger(t)
	ctx := context.Background()

	_, err := client.Reserve(ctx, "ghost", "order-1", 1)
	assert.ErrorIs(t, err, invdomain.ErrProductNotTracked)

	err = client.Cancel(ctx, "ghost-reservation")
	assert.ErrorIs(t, err, invdomain.ErrReservationNotFound)

	_, err = client.Reserve(ctx, "P1", "order-1", 0)
	assert.ErrorIs(t, err, invdomain.ErrInvalidArgument)
}
