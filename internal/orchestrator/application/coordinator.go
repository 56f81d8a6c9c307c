package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
	orderdomain "github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

// Coordinator runs the order creation saga: price every item, then reserve
// every item in request order. A failed reservation cancels the ones already
// held, newest first, and leaves the order FAILED.
//
// Compensation is best effort. A cancel that fails is logged and the stock it
// held stays reserved; nothing retries it later.
type Coordinator struct {
	log            *slog.Logger
	orders         OrderRepository
	catalog        ProductCatalog
	ledger         StockLedger
	tracer         trace.Tracer
	cleanupTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

type Option func(*Coordinator)

// WithCleanupTimeout bounds compensation and the FAILED write. They run even
// when the caller's context is already done.
func WithCleanupTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.cleanupTimeout = d }
}

func NewCoordinator(log *slog.Logger, orders OrderRepository, catalog ProductCatalog, ledger StockLedger, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:            log,
		orders:         orders,
		catalog:        catalog,
		ledger:         ledger,
		tracer:         otel.Tracer("order-saga"),
		cleanupTimeout: 10 * time.Second,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) CreateOrder(ctx context.Context, customerName string, items []orderdomain.ItemRequest) (orderdomain.Order, error) {
	ctx, span := c.tracer.Start(ctx, "saga.CreateOrder", trace.WithAttributes(attribute.Int("items", len(items))))
	defer span.End()

	if err := validate(customerName, items); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return orderdomain.Order{}, err
	}

	order := orderdomain.NewOrder(c.newID(), strings.TrimSpace(customerName), c.now())
	if err := c.orders.Create(ctx, order); err != nil {
		span.RecordError(err)
		return orderdomain.Order{}, fmt.Errorf("create order: %w", err)
	}
	span.SetAttributes(attribute.String("order_id", order.ID))
	log := c.log.With("order_id", order.ID)
	saga := domain.NewSaga(order.ID)

	if err := c.price(ctx, &order, items); err != nil {
		log.Warn("pricing failed", "err", err)
		return c.fail(ctx, span, log, saga, order, err)
	}
	c.advance(log, saga, domain.StatePriced)

	c.advance(log, saga, domain.StateReserving)
	if err := c.reserve(ctx, saga, order); err != nil {
		log.Warn("reservation failed, compensating", "err", err, "held", len(saga.Reserved))
		return c.compensateAndFail(ctx, span, log, saga, order, err)
	}

	confirmed := order
	if err := confirmed.Confirm(c.now()); err != nil {
		return c.compensateAndFail(ctx, span, log, saga, order, err)
	}
	if err := c.orders.Save(ctx, confirmed); err != nil {
		log.Error("persist confirmed order failed, compensating", "err", err)
		return c.compensateAndFail(ctx, span, log, saga, order, fmt.Errorf("persist confirmed order: %w", err))
	}
	c.advance(log, saga, domain.StateConfirmed)
	log.Info("order confirmed", "total", confirmed.TotalAmount.StringFixed(2), "items", len(confirmed.LineItems))
	return confirmed, nil
}

// price looks up every item before touching the order so a pricing failure
// leaves no partial line items behind.
func (c *Coordinator) price(ctx context.Context, order *orderdomain.Order, items []orderdomain.ItemRequest) error {
	ctx, span := c.tracer.Start(ctx, "saga.price")
	defer span.End()

	lines := make([]orderdomain.LineItem, 0, len(items))
	for _, it := range items {
		p, err := c.catalog.LookupProduct(ctx, it.ProductID)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("price product %s: %w", it.ProductID, err)
		}
		li := orderdomain.LineItem{
			ID:          c.newID(),
			ProductID:   it.ProductID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		}
		if err := li.Validate(); err != nil {
			return fmt.Errorf("price product %s: %w", it.ProductID, err)
		}
		lines = append(lines, li)
	}

	for _, li := range lines {
		if err := order.AddLineItem(li); err != nil {
			return err
		}
	}
	if _, err := order.ComputeTotal(c.now()); err != nil {
		return err
	}
	if err := c.orders.Save(ctx, *order); err != nil {
		return fmt.Errorf("persist priced order: %w", err)
	}
	return nil
}

func (c *Coordinator) reserve(ctx context.Context, saga *domain.Saga, order orderdomain.Order) error {
	ctx, span := c.tracer.Start(ctx, "saga.reserve")
	defer span.End()

	for _, li := range order.LineItems {
		ref, err := c.ledger.Reserve(ctx, li.ProductID, order.ID, li.Quantity)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("reserve product %s: %w", li.ProductID, err)
		}
		saga.RecordReservation(ref)
	}
	return nil
}

func (c *Coordinator) compensateAndFail(ctx context.Context, span trace.Span, log *slog.Logger, saga *domain.Saga, order orderdomain.Order, cause error) (orderdomain.Order, error) {
	c.advance(log, saga, domain.StateCompensating)
	c.compensate(ctx, log, saga)
	return c.fail(ctx, span, log, saga, order, cause)
}

func (c *Coordinator) compensate(ctx context.Context, log *slog.Logger, saga *domain.Saga) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cleanupTimeout)
	defer cancel()
	ctx, span := c.tracer.Start(ctx, "saga.compensate", trace.WithAttributes(attribute.Int("reservations", len(saga.Reserved))))
	defer span.End()

	for _, ref := range saga.Compensations() {
		if err := c.ledger.Cancel(ctx, ref.ID); err != nil {
			saga.RecordCompensationFailure(ref, err)
			span.RecordError(err)
			log.Error("compensation failed, stock left reserved",
				"reservation_id", ref.ID, "product_id", ref.ProductID, "quantity", ref.Quantity, "err", err)
			continue
		}
		log.Info("reservation released", "reservation_id", ref.ID, "product_id", ref.ProductID)
	}
}

// fail marks the order FAILED and returns the step error wrapped in a
// CreationError. A failure to persist FAILED is logged, never returned.
func (c *Coordinator) fail(ctx context.Context, span trace.Span, log *slog.Logger, saga *domain.Saga, order orderdomain.Order, cause error) (orderdomain.Order, error) {
	c.advance(log, saga, domain.StateFailed)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cleanupTimeout)
	defer cancel()
	if err := order.Fail(c.now()); err != nil {
		log.Error("cannot mark order failed", "err", err)
	} else if err := c.orders.Save(ctx, order); err != nil {
		log.Error("persist failed order", "err", err)
	}

	span.RecordError(cause)
	span.SetStatus(codes.Error, "order creation failed")
	log.Info("order failed", "cause", cause, "compensation_failures", len(saga.Failures))
	return orderdomain.Order{}, &orderdomain.CreationError{OrderID: order.ID, Err: cause}
}

func (c *Coordinator) advance(log *slog.Logger, saga *domain.Saga, to domain.SagaState) {
	if err := saga.Advance(to); err != nil {
		log.Error("saga state", "err", err)
	}
}

func validate(customerName string, items []orderdomain.ItemRequest) error {
	if strings.TrimSpace(customerName) == "" {
		return fmt.Errorf("%w: customer name is required", orderdomain.ErrInvalidRequest)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item is required", orderdomain.ErrInvalidRequest)
	}
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product id", orderdomain.ErrInvalidRequest, i)
		}
		if it.Quantity <= 0 || it.Quantity > orderdomain.MaxItemQuantity {
			return fmt.Errorf("%w: item %d quantity must be in 1..%d", orderdomain.ErrInvalidRequest, i, orderdomain.MaxItemQuantity)
		}
		// One reservation per product and order.
		if seen[it.ProductID] {
			return fmt.Errorf("%w: product %s listed twice", orderdomain.ErrInvalidRequest, it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}
