package storefrontv1

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClientConn struct {
	invoke func(context.Context, string, any, any, ...grpc.CallOption) error
}

func (f *fakeClientConn) Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error {
	if f.invoke == nil {
		return errors.New("unexpected Invoke call")
	}
	return f.invoke(ctx, method, args, reply, opts...)
}

func (f *fakeClientConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

type grpcTestOrderWorkflow struct {
	UnimplementedOrderWorkflowServer
}

func (s *grpcTestOrderWorkflow) PlaceOrder(_ context.Context, req *PlaceOrderRequest) (*OrderResponse, error) {
	return &OrderResponse{Order: &Order{Id: "order-" + req.GetCartId(), CartId: req.GetCartId()}}, nil
}

func (s *grpcTestOrderWorkflow) GetOrder(_ context.Context, req *OrderRequest) (*OrderResponse, error) {
	return &OrderResponse{Order: &Order{Id: req.GetOrderId()}}, nil
}

func (s *grpcTestOrderWorkflow) PayOrder(_ context.Context, req *OrderRequest) (*OrderResponse, error) {
	return &OrderResponse{Order: &Order{Id: req.GetOrderId(), Status: OrderStatus_ORDER_STATUS_DELIVERED}}, nil
}

func (s *grpcTestOrderWorkflow) CancelOrder(_ context.Context, req *CancelOrderRequest) (*OrderRemovedResponse, error) {
	return &OrderRemovedResponse{OrderId: req.GetOrderId()}, nil
}

func (s *grpcTestOrderWorkflow) FinishOrder(_ context.Context, req *OrderRequest) (*OrderRemovedResponse, error) {
	return &OrderRemovedResponse{OrderId: req.GetOrderId()}, nil
}

func (s *grpcTestOrderWorkflow) CheckAvailability(_ context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error) {
	return &CheckAvailabilityResponse{CartId: req.GetCartId(), Available: true}, nil
}

func TestOrderWorkflowClientMethods(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		methods := map[string]int{}
		conn := &fakeClientConn{
			invoke: func(_ context.Context, method string, _ any, reply any, _ ...grpc.CallOption) error {
				methods[method]++
				switch out := reply.(type) {
				case *OrderResponse:
					out.Order = &Order{Id: "order-1"}
				case *OrderRemovedResponse:
					out.OrderId = "order-1"
				case *CheckAvailabilityResponse:
					out.Available = true
				default:
					t.Fatalf("unexpected reply type: %T", out)
				}
				return nil
			},
		}

		client := NewOrderWorkflowClient(conn)
		ctx := context.Background()
		if _, err := client.PlaceOrder(ctx, &PlaceOrderRequest{}); err != nil {
			t.Fatalf("PlaceOrder failed: %v", err)
		}
		if _, err := client.GetOrder(ctx, &OrderRequest{}); err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if _, err := client.PayOrder(ctx, &OrderRequest{}); err != nil {
			t.Fatalf("PayOrder failed: %v", err)
		}
		if _, err := client.CancelOrder(ctx, &CancelOrderRequest{}); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		if _, err := client.FinishOrder(ctx, &OrderRequest{}); err != nil {
			t.Fatalf("FinishOrder failed: %v", err)
		}
		if _, err := client.CheckAvailability(ctx, &CheckAvailabilityRequest{}); err != nil {
			t.Fatalf("CheckAvailability failed: %v", err)
		}

		for _, method := range []string{
			OrderWorkflow_PlaceOrder_FullMethodName,
			OrderWorkflow_GetOrder_FullMethodName,
			OrderWorkflow_PayOrder_FullMethodName,
			OrderWorkflow_CancelOrder_FullMethodName,
			OrderWorkflow_FinishOrder_FullMethodName,
			OrderWorkflow_CheckAvailability_FullMethodName,
		} {
			if methods[method] != 1 {
				t.Fatalf("expected method %s called exactly once, got %d", method, methods[method])
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		conn := &fakeClientConn{
			invoke: func(context.Context, string, any, any, ...grpc.CallOption) error {
				return status.Error(codes.Internal, "boom")
			},
		}
		client := NewOrderWorkflowClient(conn)
		ctx := context.Background()

		for name, call := range map[string]func() error{
			"PlaceOrder":  func() error { _, err := client.PlaceOrder(ctx, &PlaceOrderRequest{}); return err },
			"GetOrder":    func() error { _, err := client.GetOrder(ctx, &OrderRequest{}); return err },
			"PayOrder":    func() error { _, err := client.PayOrder(ctx, &OrderRequest{}); return err },
			"CancelOrder": func() error { _, err := client.CancelOrder(ctx, &CancelOrderRequest{}); return err },
			"FinishOrder": func() error { _, err := client.FinishOrder(ctx, &OrderRequest{}); return err },
			"CheckAvailability": func() error {
				_, err := client.CheckAvailability(ctx, &CheckAvailabilityRequest{})
				return err
			},
		} {
			if err := call(); status.Code(err) != codes.Internal {
				t.Fatalf("%s expected Internal error, got %v", name, err)
			}
		}
	})
}

func TestUnimplementedOrderWorkflowServer(t *testing.T) {
	var srv UnimplementedOrderWorkflowServer
	ctx := context.Background()

	for name, call := range map[string]func() error{
		"PlaceOrder":        func() error { _, err := srv.PlaceOrder(ctx, &PlaceOrderRequest{}); return err },
		"GetOrder":          func() error { _, err := srv.GetOrder(ctx, &OrderRequest{}); return err },
		"PayOrder":          func() error { _, err := srv.PayOrder(ctx, &OrderRequest{}); return err },
		"CancelOrder":       func() error { _, err := srv.CancelOrder(ctx, &CancelOrderRequest{}); return err },
		"FinishOrder":       func() error { _, err := srv.FinishOrder(ctx, &OrderRequest{}); return err },
		"CheckAvailability": func() error { _, err := srv.CheckAvailability(ctx, &CheckAvailabilityRequest{}); return err },
	} {
		if err := call(); status.Code(err) != codes.Unimplemented {
			t.Fatalf("%s expected Unimplemented error, got %v", name, err)
		}
	}

	srv.mustEmbedUnimplementedOrderWorkflowServer()
}

type grpcGeneratedHandlerCase struct {
	name   string
	method string
	call   func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error)
}

func TestGeneratedHandlers(t *testing.T) {
	srv := &grpcTestOrderWorkflow{}
	ctx := context.Background()

	cases := []grpcGeneratedHandlerCase{
		{name: "PlaceOrder", method: OrderWorkflow_PlaceOrder_FullMethodName, call: _OrderWorkflow_PlaceOrder_Handler},
		{name: "GetOrder", method: OrderWorkflow_GetOrder_FullMethodName, call: _OrderWorkflow_GetOrder_Handler},
		{name: "PayOrder", method: OrderWorkflow_PayOrder_FullMethodName, call: _OrderWorkflow_PayOrder_Handler},
		{name: "CancelOrder", method: OrderWorkflow_CancelOrder_FullMethodName, call: _OrderWorkflow_CancelOrder_Handler},
		{name: "FinishOrder", method: OrderWorkflow_FinishOrder_FullMethodName, call: _OrderWorkflow_FinishOrder_Handler},
		{name: "CheckAvailability", method: OrderWorkflow_CheckAvailability_FullMethodName, call: _OrderWorkflow_CheckAvailability_Handler},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(srv, ctx, func(interface{}) error { return errors.New("decode failed") }, nil); err == nil {
				t.Fatalf("expected decode error")
			}

			resp, err := tc.call(srv, ctx, decodeFor(tc.name), nil)
			if err != nil {
				t.Fatalf("handler without interceptor failed: %v", err)
			}
			if resp == nil {
				t.Fatalf("expected non-nil response")
			}

			interceptorCalled := false
			resp, err = tc.call(srv, ctx, decodeFor(tc.name), func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
				interceptorCalled = true
				if info.FullMethod != tc.method {
					t.Fatalf("unexpected full method: got %s want %s", info.FullMethod, tc.method)
				}
				return handler(ctx, req)
			})
			if err != nil {
				t.Fatalf("handler with interceptor failed: %v", err)
			}
			if !interceptorCalled {
				t.Fatalf("interceptor was not called")
			}
			if resp == nil {
				t.Fatalf("expected non-nil response")
			}
		})
	}
}

func TestRegisterAndServiceDescriptor(t *testing.T) {
	g := grpc.NewServer()
	RegisterOrderWorkflowServer(g, &grpcTestOrderWorkflow{})

	if got, want := OrderWorkflow_ServiceDesc.ServiceName, "storefront.v1.OrderWorkflow"; got != want {
		t.Fatalf("unexpected service name: got %s want %s", got, want)
	}
	if len(OrderWorkflow_ServiceDesc.Methods) != 6 {
		t.Fatalf("expected 6 method descriptors, got %d", len(OrderWorkflow_ServiceDesc.Methods))
	}
	if _, ok := g.GetServiceInfo()["storefront.v1.OrderWorkflow"]; !ok {
		t.Fatalf("service is not registered")
	}
}

func decodeFor(name string) func(interface{}) error {
	return func(v interface{}) error {
		switch req := v.(type) {
		case *PlaceOrderRequest:
			req.CartId = "cart-1"
		case *OrderRequest:
			req.OrderId = "order-1"
		case *CancelOrderRequest:
			req.OrderId = "order-1"
			req.Reason = "test"
		case *CheckAvailabilityRequest:
			req.CartId = "cart-1"
		default:
			return status.Errorf(codes.Internal, "unexpected request type for %s: %T", name, req)
		}
		return nil
	}
}
