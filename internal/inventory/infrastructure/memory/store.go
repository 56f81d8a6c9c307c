package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

type pairKey struct {
	stockItemID string
	orderID     string
}

// Store keeps stock items and reservations in maps. The mutex only guards the
// compare-and-swap of each write; callers never hold it across a read and the
// following write.
type Store struct {
	mu           sync.RWMutex
	items        map[string]domain.StockItem
	byProduct    map[string]string
	reservations map[string]domain.Reservation
	byPair       map[pairKey]string
}

func NewStore() *Store {
	return &Store{
		items:        make(map[string]domain.StockItem),
		byProduct:    make(map[string]string),
		reservations: make(map[string]domain.Reservation),
		byPair:       make(map[pairKey]string),
	}
}

func (s *Store) FindByProductID(_ context.Context, productID string) (domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProduct[productID]
	if !ok {
		return domain.StockItem{}, domain.ErrProductNotTracked
	}
	return s.items[id], nil
}

func (s *Store) FindByID(_ context.Context, id string) (domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.StockItem{}, domain.ErrProductNotTracked
	}
	return item, nil
}

func (s *Store) FindReservation(_ context.Context, stockItemID, orderID string) (domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPair[pairKey{stockItemID, orderID}]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return s.reservations[id], nil
}

func (s *Store) GetReservation(_ context.Context, id string) (domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return res, nil
}

func (s *Store) InsertStockItem(_ context.Context, item domain.StockItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byProduct[item.ProductID]; ok {
		return domain.ErrVersionConflict
	}
	s.items[item.ID] = item
	s.byProduct[item.ProductID] = item.ID
	return nil
}

func (s *Store) UpdateStockItem(_ context.Context, item domain.StockItem, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersion(item.ID, expectedVersion); err != nil {
		return err
	}
	s.items[item.ID] = item
	return nil
}

func (s *Store) InsertReservation(_ context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersion(item.ID, expectedVersion); err != nil {
		return err
	}
	key := pairKey{res.StockItemID, res.OrderID}
	if _, ok := s.byPair[key]; ok {
		return domain.ErrVersionConflict
	}
	s.items[item.ID] = item
	s.reservations[res.ID] = res
	s.byPair[key] = res.ID
	return nil
}

func (s *Store) CancelReservation(_ context.Context, item domain.StockItem, expectedVersion int64, res domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersion(item.ID, expectedVersion); err != nil {
		return err
	}
	stored, ok := s.reservations[res.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if !stored.Active() {
		return domain.ErrVersionConflict
	}
	s.items[item.ID] = item
	s.reservations[res.ID] = res
	return nil
}

func (s *Store) checkVersion(id string, expected int64) error {
	stored, ok := s.items[id]
	if !ok {
		return domain.ErrProductNotTracked
	}
	if stored.Version != expected {
		return domain.ErrVersionConflict
	}
	return nil
}
