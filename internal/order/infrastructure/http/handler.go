package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/httpx"
)

type Orders interface {
	CreateOrder(ctx context.Context, customerName string, items []domain.ItemRequest) (domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

type Handler struct {
	log    *slog.Logger
	orders Orders
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, orders Orders) *Handler {
	return &Handler{
		log:    log,
		orders: orders,
		tracer: otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CustomerName string        `json:"customerName"`
	Items        []itemRequest `json:"items"`
}

type itemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type lineItemResp struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
}

type orderResp struct {
	ID           string         `json:"id"`
	CustomerName string         `json:"customerName"`
	Status       string         `json:"status"`
	TotalAmount  string         `json:"totalAmount"`
	LineItems    []lineItemResp `json:"lineItems"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func (h *Handler) Routes(create ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r, create...)
	return r
}

// Register adds the order API to r. Extra middleware, such as the
// idempotency guard, wraps only order creation.
func (h *Handler) Register(r chi.Router, create ...func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.With(create...).Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	items := make([]domain.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.orders.CreateOrder(ctx, req.CustomerName, items)
	var creation *domain.CreationError
	switch {
	case err == nil:
	case errors.As(err, &creation):
		span.SetAttributes(attribute.String("order_id", creation.OrderID))
		httpx.WriteProblem(w, httpx.Problem{
			Title:  "Order creation failed",
			Status: http.StatusUnprocessableEntity,
			Detail: creation.Err.Error(),
			Extra:  map[string]any{"orderId": creation.OrderID},
		})
		return
	case errors.Is(err, domain.ErrInvalidRequest):
		httpx.Error(w, http.StatusBadRequest, "Invalid order", err.Error())
		return
	default:
		h.log.Error("create order failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}

	span.SetAttributes(attribute.String("order_id", o.ID))
	w.Header().Set("Location", "/api/orders/"+o.ID)
	httpx.JSON(w, http.StatusCreated, toOrderResp(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrOrderNotFound) {
		httpx.Error(w, http.StatusNotFound, "Order not found", err.Error())
		return
	}
	if err != nil {
		h.log.Error("get order failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResp(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.log.Error("list orders failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error", "")
		return
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResp(o))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func toOrderResp(o domain.Order) orderResp {
	lines := make([]lineItemResp, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		lines = append(lines, lineItemResp{
			ID:          li.ID,
			ProductID:   li.ProductID,
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice.StringFixed(2),
			Subtotal:    li.Subtotal().StringFixed(2),
		})
	}
	return orderResp{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount.StringFixed(2),
		LineItems:    lines,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
