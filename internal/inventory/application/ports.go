package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

// StockRepository persists stock items and reservations with conditional
// writes. Every write that takes an expectedVersion must fail with
// domain.ErrVersionConflict when the stored version differs, and must apply
// the item update and the reservation change atomically.
type StockRepository interface {
	FindByProductID(ctx context.Context, productID string) (domain.StockItem, error)
	FindByID(ctx context.Context, id string) (domain.StockItem, error)
	FindReservation(ctx context.Context, stockItemID, orderID string) (domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)

	// InsertStockItem fails with domain.ErrVersionConflict when the product is
	// already tracked.
	InsertStockItem(ctx context.Context, item domain.StockItem) error
	UpdateStockItem(ctx context.Context, item domain.StockItem, expectedVersion int64) error
	// InsertReservation fails with domain.ErrVersionConflict when a reservation
	// for the same (stock item, order) pair already exists.
	InsertReservation(ctx context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error
	// CancelReservation fails with domain.ErrVersionConflict when the stored
	// reservation is no longer active.
	CancelReservation(ctx context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error
}
