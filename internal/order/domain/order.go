package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusFailed    OrderStatus = "FAILED"
)

// Order is created CREATED and moves once to CONFIRMED or FAILED, after which
// it no longer changes.
type Order struct {
	ID           string
	CustomerName string
	Status       OrderStatus
	TotalAmount  decimal.Decimal
	LineItems    []LineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LineItem struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

const (
	// MaxItemQuantity is the largest quantity one line may ask for.
	MaxItemQuantity = math.MaxInt32
	// PriceScale is the number of decimal places prices and totals are
	// stored with.
	PriceScale = 2
)

// Validate rejects lines whose quantity or price cannot be stored exactly.
func (l LineItem) Validate() error {
	if l.Quantity <= 0 || l.Quantity > MaxItemQuantity {
		return fmt.Errorf("%w: quantity must be in 1..%d, got %d", ErrInvalidRequest, MaxItemQuantity, l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: product %s has negative price %s", ErrInvalidRequest, l.ProductID, l.UnitPrice)
	}
	if !l.UnitPrice.Equal(l.UnitPrice.Round(PriceScale)) {
		return fmt.Errorf("%w: product %s price %s has more than %d decimal places", ErrInvalidRequest, l.ProductID, l.UnitPrice, PriceScale)
	}
	return nil
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemRequest is one requested (product, quantity) pair.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

func NewOrder(id, customerName string, now time.Time) Order {
	return Order{
		ID:           id,
		CustomerName: customerName,
		Status:       StatusCreated,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (o Order) Terminal() bool {
	return o.Status == StatusConfirmed || o.Status == StatusFailed
}

func (o *Order) AddLineItem(item LineItem) error {
	if o.Terminal() {
		return fmt.Errorf("%w: order %s is %s", ErrOrderTerminal, o.ID, o.Status)
	}
	if err := item.Validate(); err != nil {
		return err
	}
	o.LineItems = append(o.LineItems, item)
	return nil
}

// ComputeTotal sets TotalAmount to the sum of line item subtotals.
func (o *Order) ComputeTotal(now time.Time) (decimal.Decimal, error) {
	if o.Terminal() {
		return decimal.Decimal{}, fmt.Errorf("%w: order %s is %s", ErrOrderTerminal, o.ID, o.Status)
	}
	total := decimal.Zero
	for _, item := range o.LineItems {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
	o.UpdatedAt = now
	return total, nil
}

func (o *Order) Confirm(now time.Time) error {
	return o.transition(StatusConfirmed, now)
}

func (o *Order) Fail(now time.Time) error {
	return o.transition(StatusFailed, now)
}

func (o *Order) transition(to OrderStatus, now time.Time) error {
	if o.Terminal() {
		return fmt.Errorf("%w: order %s is already %s", ErrOrderTerminal, o.ID, o.Status)
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}
