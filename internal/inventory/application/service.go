package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

type Config struct {
	// MaxAttempts bounds how many times one operation is run against fresh
	// reads before ErrConcurrentModification is returned.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
	}
}

// Service is the stock ledger. All mutations follow read, compute, conditional
// write and restart from a fresh read when the write loses a version race.
type Service struct {
	log    *slog.Logger
	repo   StockRepository
	cfg    Config
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

func NewService(log *slog.Logger, repo StockRepository, cfg Config) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		log:    log,
		repo:   repo,
		cfg:    cfg,
		tracer: otel.Tracer("inventory-ledger"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *Service) Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Reserve", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.String("order_id", orderID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if err := requireID("product id", productID); err != nil {
		return domain.Reservation{}, err
	}
	if err := requireID("order id", orderID); err != nil {
		return domain.Reservation{}, err
	}
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return domain.Reservation{}, fmt.Errorf("%w: quantity must be in 1..%d, got %d", domain.ErrInvalidArgument, domain.MaxQuantity, quantity)
	}

	res, err := withRetry(ctx, s, "reserve", func() (domain.Reservation, error) {
		item, err := s.repo.FindByProductID(ctx, productID)
		if err != nil {
			return domain.Reservation{}, err
		}

		existing, err := s.repo.FindReservation(ctx, item.ID, orderID)
		switch {
		case err == nil:
			return existing, nil
		case !errors.Is(err, domain.ErrReservationNotFound):
			return domain.Reservation{}, err
		}

		expected := item.Version
		now := s.now()
		if err := item.Reserve(quantity, now); err != nil {
			return domain.Reservation{}, err
		}
		res := domain.NewReservation(s.newID(), item, orderID, quantity, now)
		if err := s.repo.InsertReservation(ctx, item, expected, res); err != nil {
			return domain.Reservation{}, err
		}
		return res, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Reservation{}, err
	}
	s.log.Info("stock reserved", "reservation_id", res.ID, "product_id", productID, "order_id", orderID, "quantity", res.Quantity)
	return res, nil
}

// Cancel releases a reservation. Cancelling an already cancelled reservation
// returns it unchanged without touching the stock counters.
func (s *Service) Cancel(ctx context.Context, reservationID string) (domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Cancel", trace.WithAttributes(
		attribute.String("reservation_id", reservationID),
	))
	defer span.End()

	if err := requireID("reservation id", reservationID); err != nil {
		return domain.Reservation{}, err
	}

	res, err := withRetry(ctx, s, "cancel", func() (domain.Reservation, error) {
		res, err := s.repo.GetReservation(ctx, reservationID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if !res.Active() {
			return res, nil
		}

		item, err := s.repo.FindByID(ctx, res.StockItemID)
		if err != nil {
			return domain.Reservation{}, err
		}
		expected := item.Version
		if err := item.Release(res.Quantity, s.now()); err != nil {
			return domain.Reservation{}, err
		}
		res.Cancel()
		if err := s.repo.CancelReservation(ctx, item, expected, res); err != nil {
			return domain.Reservation{}, err
		}
		return res, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Reservation{}, err
	}
	s.log.Info("reservation cancelled", "reservation_id", res.ID, "order_id", res.OrderID)
	return res, nil
}

// AddStock increments the available quantity for productID, creating the
// stock item on first addition.
func (s *Service) AddStock(ctx context.Context, productID string, quantity int) (domain.StockItem, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.AddStock", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	if err := requireID("product id", productID); err != nil {
		return domain.StockItem{}, err
	}
	if quantity <= 0 || quantity > domain.MaxQuantity {
		return domain.StockItem{}, fmt.Errorf("%w: quantity must be in 1..%d, got %d", domain.ErrInvalidArgument, domain.MaxQuantity, quantity)
	}

	item, err := withRetry(ctx, s, "add stock", func() (domain.StockItem, error) {
		item, err := s.repo.FindByProductID(ctx, productID)
		if errors.Is(err, domain.ErrProductNotTracked) {
			item, err = domain.NewStockItem(s.newID(), productID, quantity, s.now())
			if err != nil {
				return domain.StockItem{}, err
			}
			return item, s.repo.InsertStockItem(ctx, item)
		}
		if err != nil {
			return domain.StockItem{}, err
		}

		expected := item.Version
		if err := item.Add(quantity, s.now()); err != nil {
			return domain.StockItem{}, err
		}
		return item, s.repo.UpdateStockItem(ctx, item, expected)
	})
	if err != nil {
		span.RecordError(err)
		return domain.StockItem{}, err
	}
	s.log.Info("stock added", "product_id", productID, "quantity", quantity, "available", item.QuantityAvailable)
	return item, nil
}

func (s *Service) GetStock(ctx context.Context, productID string) (domain.StockItem, error) {
	if err := requireID("product id", productID); err != nil {
		return domain.StockItem{}, err
	}
	return s.repo.FindByProductID(ctx, productID)
}

func (s *Service) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.InitialInterval
	eb.MaxInterval = s.cfg.MaxInterval
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.cfg.MaxAttempts-1)), ctx)
}

// withRetry runs op until it succeeds, fails with something other than a
// version conflict, or the attempt budget runs out.
func withRetry[T any](ctx context.Context, s *Service, name string, op func() (T, error)) (T, error) {
	attempt := 0
	v, err := backoff.RetryWithData(func() (T, error) {
		attempt++
		v, err := op()
		if err != nil && !errors.Is(err, domain.ErrVersionConflict) {
			return v, backoff.Permanent(err)
		}
		if err != nil {
			s.log.Debug("optimistic write lost, retrying", "op", name, "attempt", attempt)
		}
		return v, err
	}, s.backOff(ctx))
	if errors.Is(err, domain.ErrVersionConflict) {
		s.log.Warn("retry budget exhausted", "op", name, "attempts", attempt)
		var zero T
		return zero, fmt.Errorf("%s: %w after %d attempts", name, domain.ErrConcurrentModification, attempt)
	}
	return v, err
}

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, name)
	}
	return nil
}
