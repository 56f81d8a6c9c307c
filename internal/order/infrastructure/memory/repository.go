package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	seq    []string
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

func (r *Repository) Create(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	r.orders[o.ID] = clone(o)
	r.seq = append(r.seq, o.ID)
	return nil
}

func (r *Repository) Save(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.Terminal() {
		return fmt.Errorf("%w: order %s is already %s", domain.ErrOrderTerminal, o.ID, stored.Status)
	}
	r.orders[o.ID] = clone(o)
	return nil
}

func (r *Repository) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return clone(o), nil
}

// List returns orders in creation order.
func (r *Repository) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.seq))
	for _, id := range r.seq {
		out = append(out, clone(r.orders[id]))
	}
	return out, nil
}

func clone(o domain.Order) domain.Order {
	o.LineItems = slices.Clone(o.LineItems)
	return o
}
