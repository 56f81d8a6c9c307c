package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotTracked      = errors.New("product not tracked")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrInvalidArgument        = errors.New("invalid argument")

	// ErrVersionConflict is returned by stores when a conditional write loses
	// against a concurrent one. The ledger retries on it and never returns it.
	ErrVersionConflict = errors.New("version conflict")
)

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
