package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
	orderdomain "github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o orderdomain.Order) error
	Save(ctx context.Context, o orderdomain.Order) error
}

type ProductCatalog interface {
	LookupProduct(ctx context.Context, productID string) (orderdomain.Product, error)
}

// StockLedger must make Reserve idempotent per (productID, orderID) and
// Cancel idempotent per reservation.
type StockLedger interface {
	Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.ReservationRef, error)
	Cancel(ctx context.Context, reservationID string) error
}
