// Package ledgerv1 describes the inventory.v1.StockLedger gRPC service. The
// messages are plain structs carried by the grpcjson codec.
package ledgerv1

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/dmehra2102/order-fulfillment/pkg/grpcjson"
)

const ServiceName = "inventory.v1.StockLedger"

const (
	StockLedger_Reserve_FullMethodName  = "/" + ServiceName + "/Reserve"
	StockLedger_Cancel_FullMethodName   = "/" + ServiceName + "/Cancel"
	StockLedger_AddStock_FullMethodName = "/" + ServiceName + "/AddStock"
	StockLedger_GetStock_FullMethodName = "/" + ServiceName + "/GetStock"
)

// TrailerAvailable carries the available quantity on insufficient stock errors.
const TrailerAvailable = "x-available"

type ReserveRequest struct {
	ProductID string `json:"product_id"`
	OrderID   string `json:"order_id"`
	Quantity  int32  `json:"quantity"`
}

type CancelRequest struct {
	ReservationID string `json:"reservation_id"`
}

type AddStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type GetStockRequest struct {
	ProductID string `json:"product_id"`
}

type Reservation struct {
	ID          string    `json:"id"`
	StockItemID string    `json:"stock_item_id"`
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int32     `json:"quantity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type StockItem struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	QuantityAvailable int32     `json:"quantity_available"`
	QuantityReserved  int32     `json:"quantity_reserved"`
	Version           int64     `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type StockLedgerClient interface {
	Reserve(ctx context.Context, in *ReserveRequest, opts ...grpc.CallOption) (*Reservation, error)
	Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*Reservation, error)
	AddStock(ctx context.Context, in *AddStockRequest, opts ...grpc.CallOption) (*StockItem, error)
	GetStock(ctx context.Context, in *GetStockRequest, opts ...grpc.CallOption) (*StockItem, error)
}

type stockLedgerClient struct {
	cc grpc.ClientConnInterface
}

func NewStockLedgerClient(cc grpc.ClientConnInterface) StockLedgerClient {
	return &stockLedgerClient{cc: cc}
}

func (c *stockLedgerClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(grpcjson.Name)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *stockLedgerClient) Reserve(ctx context.Context, in *ReserveRequest, opts ...grpc.CallOption) (*Reservation, error) {
	out := new(Reservation)
	if err := c.invoke(ctx, StockLedger_Reserve_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stockLedgerClient) Cancel(ctx context.Context, in *CancelRequest, opts ...grpc.CallOption) (*Reservation, error) {
	out := new(Reservation)
	if err := c.invoke(ctx, StockLedger_Cancel_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stockLedgerClient) AddStock(ctx context.Context, in *AddStockRequest, opts ...grpc.CallOption) (*StockItem, error) {
	out := new(StockItem)
	if err := c.invoke(ctx, StockLedger_AddStock_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *stockLedgerClient) GetStock(ctx context.Context, in *GetStockRequest, opts ...grpc.CallOption) (*StockItem, error) {
	out := new(StockItem)
	if err := c.invoke(ctx, StockLedger_GetStock_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type StockLedgerServer interface {
	Reserve(context.Context, *ReserveRequest) (*Reservation, error)
	Cancel(context.Context, *CancelRequest) (*Reservation, error)
	AddStock(context.Context, *AddStockRequest) (*StockItem, error)
	GetStock(context.Context, *GetStockRequest) (*StockItem, error)
}

func RegisterStockLedgerServer(s grpc.ServiceRegistrar, srv StockLedgerServer) {
	s.RegisterService(&StockLedger_ServiceDesc, srv)
}

func unary[Req any](
	method string,
	call func(StockLedgerServer, context.Context, *Req) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StockLedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StockLedgerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var StockLedger_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StockLedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Reserve",
			Handler: unary(StockLedger_Reserve_FullMethodName, func(s StockLedgerServer, ctx context.Context, in *ReserveRequest) (any, error) {
				return s.Reserve(ctx, in)
			}),
		},
		{
			MethodName: "Cancel",
			Handler: unary(StockLedger_Cancel_FullMethodName, func(s StockLedgerServer, ctx context.Context, in *CancelRequest) (any, error) {
				return s.Cancel(ctx, in)
			}),
		},
		{
			MethodName: "AddStock",
			Handler: unary(StockLedger_AddStock_FullMethodName, func(s StockLedgerServer, ctx context.Context, in *AddStockRequest) (any, error) {
				return s.AddStock(ctx, in)
			}),
		},
		{
			MethodName: "GetStock",
			Handler: unary(StockLedger_GetStock_FullMethodName, func(s StockLedgerServer, ctx context.Context, in *GetStockRequest) (any, error) {
				return s.GetStock(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/ledger",
}
