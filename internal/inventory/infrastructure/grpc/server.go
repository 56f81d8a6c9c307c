package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/infrastructure/grpc/ledgerv1"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

type Ledger interface {
	Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.Reservation, error)
	Cancel(ctx context.Context, reservationID string) (domain.Reservation, error)
	AddStock(ctx context.Context, productID string, quantity int) (domain.StockItem, error)
	GetStock(ctx context.Context, productID string) (domain.StockItem, error)
}

type Server struct {
	log    *slog.Logger
	ledger Ledger
}

func NewServer(log *slog.Logger, ledger Ledger) *Server {
	return &Server{log: log, ledger: ledger}
}

func (s *Server) Reserve(ctx context.Context, req *ledgerv1.ReserveRequest) (*ledgerv1.Reservation, error) {
	res, err := s.ledger.Reserve(ctx, req.ProductID, req.OrderID, int(req.Quantity))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toReservation(res), nil
}

func (s *Server) Cancel(ctx context.Context, req *ledgerv1.CancelRequest) (*ledgerv1.Reservation, error) {
	res, err := s.ledger.Cancel(ctx, req.ReservationID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toReservation(res), nil
}

func (s *Server) AddStock(ctx context.Context, req *ledgerv1.AddStockRequest) (*ledgerv1.StockItem, error) {
	item, err := s.ledger.AddStock(ctx, req.ProductID, int(req.Quantity))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStockItem(item), nil
}

func (s *Server) GetStock(ctx context.Context, req *ledgerv1.GetStockRequest) (*ledgerv1.StockItem, error) {
	item, err := s.ledger.GetStock(ctx, req.ProductID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStockItem(item), nil
}

func (s *Server) toStatus(ctx context.Context, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		_ = grpc.SetTrailer(ctx, metadata.Pairs(ledgerv1.TrailerAvailable, strconv.Itoa(insufficient.Available)))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrProductNotTracked), errors.Is(err, domain.ErrReservationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConcurrentModification):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.log.Error("ledger rpc failed", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func NewGRPCServer(srv *Server) *grpc.Server {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(tracing.UnaryServerInterceptor()))
	ledgerv1.RegisterStockLedgerServer(gs, srv)
	return gs
}

func Run(addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := NewGRPCServer(srv)
	go func() {
		if err := gs.Serve(lis); err != nil {
			srv.log.Error("grpc serve stopped", "err", err)
		}
	}()
	return gs, nil
}

func toReservation(r domain.Reservation) *ledgerv1.Reservation {
	return &ledgerv1.Reservation{
		ID:          r.ID,
		StockItemID: r.StockItemID,
		OrderID:     r.OrderID,
		ProductID:   r.ProductID,
		Quantity:    int32(r.Quantity),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

func toStockItem(it domain.StockItem) *ledgerv1.StockItem {
	return &ledgerv1.StockItem{
		ID:                it.ID,
		ProductID:         it.ProductID,
		QuantityAvailable: int32(it.QuantityAvailable),
		QuantityReserved:  int32(it.QuantityReserved),
		Version:           it.Version,
		UpdatedAt:         it.UpdatedAt,
	}
}
