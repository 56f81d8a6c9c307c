package domain

import (
	"fmt"
	"math"
	"time"
)

// MaxQuantity bounds every quantity the ledger accepts and the counters of a
// stock item. It matches the INT columns and the int32 wire fields.
const MaxQuantity = math.MaxInt32

// StockItem holds the counters for one tracked product. Version is bumped by
// every mutator and is what conditional writes compare against.
type StockItem struct {
	ID                string
	ProductID         string
	QuantityAvailable int
	QuantityReserved  int
	Version           int64
	UpdatedAt         time.Time
}

func NewStockItem(id, productID string, quantity int, now time.Time) (StockItem, error) {
	if err := checkQuantity(quantity); err != nil {
		return StockItem{}, err
	}
	return StockItem{
		ID:                id,
		ProductID:         productID,
		QuantityAvailable: quantity,
		UpdatedAt:         now,
	}, nil
}

func (s *StockItem) Reserve(quantity int, now time.Time) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	if quantity > s.QuantityAvailable {
		return &InsufficientStockError{
			ProductID: s.ProductID,
			Requested: quantity,
			Available: s.QuantityAvailable,
		}
	}
	s.QuantityAvailable -= quantity
	s.QuantityReserved += quantity
	s.touch(now)
	return nil
}

func (s *StockItem) Release(quantity int, now time.Time) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	if quantity > s.QuantityReserved {
		return fmt.Errorf("release %d from %s: only %d reserved", quantity, s.ProductID, s.QuantityReserved)
	}
	s.QuantityReserved -= quantity
	s.QuantityAvailable += quantity
	s.touch(now)
	return nil
}

func (s *StockItem) Add(quantity int, now time.Time) error {
	if err := checkQuantity(quantity); err != nil {
		return err
	}
	if quantity > MaxQuantity-s.Total() {
		return fmt.Errorf("%w: adding %d to %s would exceed %d units", ErrInvalidArgument, quantity, s.ProductID, MaxQuantity)
	}
	s.QuantityAvailable += quantity
	s.touch(now)
	return nil
}

// Total is available plus reserved; reserve and release leave it unchanged.
func (s StockItem) Total() int {
	return s.QuantityAvailable + s.QuantityReserved
}

func (s *StockItem) touch(now time.Time) {
	s.Version++
	s.UpdatedAt = now
}

func checkQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity %d exceeds %d", ErrInvalidArgument, quantity, MaxQuantity)
	}
	return nil
}
