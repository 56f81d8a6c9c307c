package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTotalIsSumOfSubtotals(t *testing.T) {
	o := domain.NewOrder("o1", "Alice", now)
	require.NoError(t, o.AddLineItem(domain.LineItem{ProductID: "P1", Quantity: 2, UnitPrice: decimal.RequireFromString("999.99")}))
	require.NoError(t, o.AddLineItem(domain.LineItem{ProductID: "P2", Quantity: 1, UnitPrice: decimal.RequireFromString("29.99")}))

	total, err := o.ComputeTotal(now)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2029.97").Equal(total), total.String())
	assert.True(t, total.Equal(o.TotalAmount))
	assert.Equal(t, "1999.98", o.LineItems[0].Subtotal().String())
}

func TestTerminalStatesAreFinal(t *testing.T) {
	o := domain.NewOrder("o1", "Alice", now)
	assert.Equal(t, domain.StatusCreated, o.Status)
	require.NoError(t, o.Confirm(now))

	assert.ErrorIs(t, o.Fail(now), domain.ErrOrderTerminal)
	assert.ErrorIs(t, o.Confirm(now), domain.ErrOrderTerminal)
	assert.ErrorIs(t, o.AddLineItem(domain.LineItem{Quantity: 1}), domain.ErrOrderTerminal)
	_, err := o.ComputeTotal(now)
	assert.ErrorIs(t, err, domain.ErrOrderTerminal)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
}

func TestAddLineItemRejectsNonPositiveQuantity(t *testing.T) {
	o := domain.NewOrder("o1", "Alice", now)
	assert.ErrorIs(t, o.AddLineItem(domain.LineItem{Quantity: 0}), domain.ErrInvalidRequest)
}

func TestAddLineItemRejectsUnstorableValues(t *testing.T) {
	cases := map[string]domain.LineItem{
		"quantity above ceiling": {ProductID: "P1", Quantity: domain.MaxItemQuantity + 1, UnitPrice: decimal.RequireFromString("1.00")},
		"negative price":         {ProductID: "P1", Quantity: 1, UnitPrice: decimal.RequireFromString("-1.00")},
		"sub-cent price":         {ProductID: "P1", Quantity: 2, UnitPrice: decimal.RequireFromString("0.005")},
	}
	for name, item := range cases {
		t.Run(name, func(t *testing.T) {
			o := domain.NewOrder("o1", "Alice", now)
			assert.ErrorIs(t, o.AddLineItem(item), domain.ErrInvalidRequest)
			assert.Empty(t, o.LineItems)
		})
	}

	o := domain.NewOrder("o1", "Alice", now)
	require.NoError(t, o.AddLineItem(domain.LineItem{ProductID: "P1", Quantity: domain.MaxItemQuantity, UnitPrice: decimal.RequireFromString("0.50")}))
}

func TestCreationErrorWrapsCause(t *testing.T) {
	cause := errors.New("insufficient stock")
	err := error(&domain.CreationError{OrderID: "o1", Err: cause})

	assert.ErrorIs(t, err, domain.ErrOrderCreationFailed)
	assert.ErrorIs(t, err, cause)
	var ce *domain.CreationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "o1", ce.OrderID)
}

func TestTerminalEvent(t *testing.T) {
	o := domain.NewOrder("o1", "Alice", now)
	_, _, ok := domain.TerminalEvent(o)
	assert.False(t, ok)

	require.NoError(t, o.AddLineItem(domain.LineItem{ProductID: "P1", Quantity: 2, UnitPrice: decimal.RequireFromString("1.5")}))
	_, err := o.ComputeTotal(now)
	require.NoError(t, err)
	require.NoError(t, o.Confirm(now))

	typ, payload, ok := domain.TerminalEvent(o)
	require.True(t, ok)
	assert.Equal(t, domain.EventOrderConfirmed, typ)
	confirmed := payload.(domain.OrderConfirmed)
	assert.Equal(t, "3.00", confirmed.TotalAmount)
	assert.Len(t, confirmed.Items, 1)
}
