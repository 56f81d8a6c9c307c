package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/order/application"
	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/internal/order/infrastructure/memory"
)

type stubCreator struct {
	repo *memory.Repository
}

func (c stubCreator) CreateOrder(ctx context.Context, customer string, items []domain.ItemRequest) (domain.Order, error) {
	o := domain.NewOrder("o-"+customer, customer, time.Now())
	return o, c.repo.Create(ctx, o)
}

func TestServiceReads(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	svc := application.NewService(repo, stubCreator{repo: repo})

	_, err := svc.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	a, err := svc.CreateOrder(ctx, "alice", nil)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, "bob", nil)
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.CustomerName)

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "o-alice", all[0].ID)
	assert.Equal(t, "o-bob", all[1].ID)
}
