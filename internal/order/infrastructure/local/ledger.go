// Package local runs the stock ledger inside the order service process.
package local

import (
	"context"

	invdomain "github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
)

type InventoryLedger interface {
	Reserve(ctx context.Context, productID, orderID string, quantity int) (invdomain.Reservation, error)
	Cancel(ctx context.Context, reservationID string) (invdomain.Reservation, error)
}

type Ledger struct {
	inv InventoryLedger
}

func NewLedger(inv InventoryLedger) *Ledger {
	return &Ledger{inv: inv}
}

func (l *Ledger) Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.ReservationRef, error) {
	res, err := l.inv.Reserve(ctx, productID, orderID, quantity)
	if err != nil {
		return domain.ReservationRef{}, err
	}
	return domain.ReservationRef{ID: res.ID, ProductID: res.ProductID, Quantity: res.Quantity}, nil
}

func (l *Ledger) Cancel(ctx context.Context, reservationID string) error {
	_, err := l.inv.Cancel(ctx, reservationID)
	return err
}
