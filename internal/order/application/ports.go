package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) error
	// Save overwrites status, total, timestamps and line items of an
	// existing order.
	Save(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

// OrderCreator runs the order creation saga.
type OrderCreator interface {
	CreateOrder(ctx context.Context, customerName string, items []domain.ItemRequest) (domain.Order, error)
}
