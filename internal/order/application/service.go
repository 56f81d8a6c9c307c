package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type Service struct {
	repo    OrderRepository
	creator OrderCreator
}

func NewService(repo OrderRepository, creator OrderCreator) *Service {
	return &Service{repo: repo, creator: creator}
}

func (s *Service) CreateOrder(ctx context.Context, customerName string, items []domain.ItemRequest) (domain.Order, error) {
	return s.creator.CreateOrder(ctx, customerName, items)
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}
