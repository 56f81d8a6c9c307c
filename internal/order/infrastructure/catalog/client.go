package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

// Client looks products up in the product service over HTTP.
type Client struct {
	log    *slog.Logger
	base   string
	http   *http.Client
	tracer trace.Tracer
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:    log,
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tracer: otel.Tracer("catalog-client"),
	}
}

type productResp struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (c *Client) LookupProduct(ctx context.Context, productID string) (domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.LookupProduct", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/products/"+url.PathEscape(productID), nil)
	if err != nil {
		return domain.Product{}, err
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return domain.Product{}, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Product{}, fmt.Errorf("lookup product %s: unexpected status %d: %s", productID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p productResp
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", productID, err)
	}
	if p.ID == "" {
		p.ID = productID
	}
	if p.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product %s has negative price %s", productID, p.Price)
	}
	if !p.Price.Equal(p.Price.Round(domain.PriceScale)) {
		return domain.Product{}, fmt.Errorf("product %s price %s has more than %d decimal places", productID, p.Price, domain.PriceScale)
	}
	return domain.Product{ID: p.ID, Name: p.Name, Price: p.Price}, nil
}
