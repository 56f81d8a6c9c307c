package catalog_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/internal/order/infrastructure/catalog"
)

func TestLookupProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/P1":
			_, _ = w.Write([]byte(`{"id":"P1","name":"Laptop","price":999.99}`))
		case "/api/products/P2":
			_, _ = w.Write([]byte(`{"id":"P2","name":"Mouse","price":"29.99"}`))
		case "/api/products/boom":
			http.Error(w, "db down", http.StatusInternalServerError)
		case "/api/products/garbled":
			_, _ = w.Write([]byte(`{"id":`))
		case "/api/products/washer":
			_, _ = w.Write([]byte(`{"id":"washer","name":"Washer","price":"0.005"}`))
		case "/api/products/credit":
			_, _ = w.Write([]byte(`{"id":"credit","name":"Credit","price":-1}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := catalog.NewClient(slog.New(slog.DiscardHandler), srv.URL+"/", time.Second)
	ctx := context.Background()

	p, err := c.LookupProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", p.Name)
	assert.True(t, decimal.RequireFromString("999.99").Equal(p.Price))

	p, err = c.LookupProduct(ctx, "P2")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("29.99").Equal(p.Price))

	_, err = c.LookupProduct(ctx, "P404")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = c.LookupProduct(ctx, "boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), "500")

	_, err = c.LookupProduct(ctx, "garbled")
	assert.Error(t, err)

	_, err = c.LookupProduct(ctx, "washer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decimal places")

	_, err = c.LookupProduct(ctx, "credit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative price")
}

func TestLookupProductTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := catalog.NewClient(slog.New(slog.DiscardHandler), url, 200*time.Millisecond)
	_, err := c.LookupProduct(context.Background(), "P1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProductNotFound)
}
