package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	invdomain "github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/infrastructure/grpc/ledgerv1"
	"github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

// InventoryClient reaches the stock ledger over gRPC and turns status codes
// back into the ledger's error values.
type InventoryClient struct {
	log     *slog.Logger
	conn    *grpc.ClientConn
	cc      ledgerv1.StockLedgerClient
	timeout time.Duration
}

func NewInventoryClient(log *slog.Logger, addr string, timeout time.Duration, opts ...grpc.DialOption) (*InventoryClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(tracing.UnaryClientInterceptor()),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &InventoryClient{
		log:     log,
		conn:    conn,
		cc:      ledgerv1.NewStockLedgerClient(conn),
		timeout: timeout,
	}, nil
}

func (c *InventoryClient) Close() error {
	return c.conn.Close()
}

func (c *InventoryClient) Reserve(ctx context.Context, productID, orderID string, quantity int) (domain.ReservationRef, error) {
	if quantity <= 0 || quantity > invdomain.MaxQuantity {
		return domain.ReservationRef{}, fmt.Errorf("%w: quantity must be in 1..%d, got %d", invdomain.ErrInvalidArgument, invdomain.MaxQuantity, quantity)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var trailer metadata.MD
	res, err := c.cc.Reserve(ctx, &ledgerv1.ReserveRequest{
		ProductID: productID,
		OrderID:   orderID,
		Quantity:  int32(quantity),
	}, grpc.Trailer(&trailer))
	if err != nil {
		if status.Code(err) == codes.FailedPrecondition {
			return domain.ReservationRef{}, &invdomain.InsufficientStockError{
				ProductID: productID,
				Requested: quantity,
				Available: availableFrom(trailer),
			}
		}
		return domain.ReservationRef{}, fromStatus(err, invdomain.ErrProductNotTracked)
	}
	return domain.ReservationRef{ID: res.ID, ProductID: res.ProductID, Quantity: int(res.Quantity)}, nil
}

func (c *InventoryClient) Cancel(ctx context.Context, reservationID string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.cc.Cancel(ctx, &ledgerv1.CancelRequest{ReservationID: reservationID}); err != nil {
		return fromStatus(err, invdomain.ErrReservationNotFound)
	}
	return nil
}

func (c *InventoryClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

func fromStatus(err error, notFound error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var kind error
	switch st.Code() {
	case codes.NotFound:
		kind = notFound
	case codes.Aborted:
		kind = invdomain.ErrConcurrentModification
	case codes.InvalidArgument:
		kind = invdomain.ErrInvalidArgument
	case codes.DeadlineExceeded:
		kind = context.DeadlineExceeded
	case codes.Canceled:
		kind = context.Canceled
	default:
		return err
	}
	return &remoteError{kind: kind, msg: st.Message()}
}

func availableFrom(md metadata.MD) int {
	v := md.Get(ledgerv1.TrailerAvailable)
	if len(v) == 0 {
		return 0
	}
	n, err := strconv.Atoi(v[0])
	if err != nil {
		return 0
	}
	return n
}
