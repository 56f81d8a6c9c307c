package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/httpx"
)

type Ledger interface {
	Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.Reservation, error)
	Cancel(ctx context.Context, reservationID string) (domain.Reservation, error)
	AddStock(ctx context.Context, productID string, quantity int) (domain.StockItem, error)
	GetStock(ctx context.Context, productID string) (domain.StockItem, error)
}

type Handler struct {
	log    *slog.Logger
	ledger Ledger
	tracer trace.Tracer
}

func NewHandler(log *slog.Logger, ledger Ledger) *Handler {
	return &Handler{
		log:    log,
		ledger: ledger,
		tracer: otel.Tracer("inventory-http"),
	}
}

type addStockReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type reserveReq struct {
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Quantity  int    `json:"quantity"`
}

type stockResp struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	QuantityAvailable int       `json:"quantityAvailable"`
	QuantityReserved  int       `json:"quantityReserved"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type reservationResp struct {
	ID          string    `json:"id"`
	StockItemID string    `json:"stockItemId"`
	ProductID   string    `json:"productId"`
	OrderID     string    `json:"orderId"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *Handler) Routes(mutating ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r, mutating...)
	return r
}

// Register adds the inventory API to r; mutating wraps the write endpoints.
func (h *Handler) Register(r chi.Router, mutating ...func(http.Handler) http.Handler) {
	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/stock/{productId}", h.getStock)
		r.Group(func(r chi.Router) {
			r.Use(mutating...)
			r.Post("/stock", h.addStock)
			r.Post("/reservations", h.reserve)
			r.Delete("/reservations/{id}", h.cancel)
		})
	})
}

func (h *Handler) addStock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddStock")
	defer span.End()

	var req addStockReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	item, err := h.ledger.AddStock(ctx, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toStockResp(item))
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	item, err := h.ledger.GetStock(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStockResp(item))
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ReserveStock")
	defer span.End()

	var req reserveReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	res, err := h.ledger.Reserve(ctx, req.ProductID, req.OrderID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toReservationResp(res))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CancelReservation")
	defer span.End()

	res, err := h.ledger.Cancel(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReservationResp(res))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		httpx.WriteProblem(w, httpx.Problem{
			Title:  "Insufficient stock",
			Status: http.StatusConflict,
			Detail: err.Error(),
			Extra: map[string]any{
				"productId": insufficient.ProductID,
				"requested": insufficient.Requested,
				"available": insufficient.Available,
			},
		})
	case errors.Is(err, domain.ErrProductNotTracked), errors.Is(err, domain.ErrReservationNotFound):
		httpx.Error(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		httpx.Error(w, http.StatusConflict, "Concurrent modification", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		httpx.Error(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		h.log.Error("inventory request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error", "")
	}
}

func toStockResp(it domain.StockItem) stockResp {
	return stockResp{
		ID:                it.ID,
		ProductID:         it.ProductID,
		QuantityAvailable: it.QuantityAvailable,
		QuantityReserved:  it.QuantityReserved,
		UpdatedAt:         it.UpdatedAt,
	}
}

func toReservationResp(r domain.Reservation) reservationResp {
	return reservationResp{
		ID:          r.ID,
		StockItemID: r.StockItemID,
		ProductID:   r.ProductID,
		OrderID:     r.OrderID,
		Quantity:    r.Quantity,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}
