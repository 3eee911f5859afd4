package storefrontv1

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestOrderStatusGeneratedHelpers(t *testing.T) {
	s := OrderStatus_ORDER_STATUS_DELIVERED
	if got := s.Enum(); got == nil || *got != s {
		t.Fatalf("Enum() mismatch: got %v want %v", got, s)
	}
	if got := s.String(); got != "ORDER_STATUS_DELIVERED" {
		t.Fatalf("String() mismatch: got %q", got)
	}
	if s.Type() == nil {
		t.Fatalf("Type() must not be nil")
	}
	if s.Descriptor() == nil {
		t.Fatalf("Descriptor() must not be nil")
	}
	if s.Number() != 2 {
		t.Fatalf("Number() mismatch: got %d", s.Number())
	}
	_, _ = s.EnumDescriptor()

	unknown := OrderStatus(999)
	if unknown.String() == "" {
		t.Fatalf("unknown enum string must not be empty")
	}
}

func TestGeneratedMessageHelpers(t *testing.T) {
	ts := timestamppb.New(time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC))
	messages := []any{
		&PlaceOrderRequest{CartId: "cart-1"},
		&OrderRequest{OrderId: "order-1"},
		&CancelOrderRequest{OrderId: "order-1", Reason: "user-request"},
		&CheckAvailabilityRequest{CartId: "cart-1"},
		&OrderItem{ProductId: "apple", ProductName: "Apple", Category: "food", UnitPriceMinor: 250, Quantity: 3},
		&Order{Id: "order-1", CartId: "cart-1", Status: OrderStatus_ORDER_STATUS_AWAITING_PAYMENT, AmountMinor: 750, Version: 1, Items: []*OrderItem{{ProductId: "apple", Quantity: 3}}, CreatedAt: ts, UpdatedAt: ts},
		&OrderResponse{Order: &Order{Id: "order-1"}},
		&OrderRemovedResponse{OrderId: "order-1"},
		&Shortage{ProductId: "apple", Requested: 5, Available: 2},
		&CheckAvailabilityResponse{CartId: "cart-1", Available: false, Shortages: []*Shortage{{ProductId: "apple", Requested: 5, Available: 2}}},
	}

	for _, msg := range messages {
		t.Run(reflect.TypeOf(msg).Elem().Name(), func(t *testing.T) {
			exerciseGeneratedMessage(t, msg)
		})
	}
}

func TestOrderWireEncoding(t *testing.T) {
	created := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	in := &OrderResponse{Order: &Order{
		Id:          "order-1",
		CartId:      "cart-1",
		Status:      OrderStatus_ORDER_STATUS_DELIVERED,
		AmountMinor: 750,
		Version:     2,
		Items:       []*OrderItem{{ProductId: "apple", ProductName: "Apple", Category: "food", UnitPriceMinor: 250, Quantity: 3}},
		CreatedAt:   timestamppb.New(created),
		UpdatedAt:   timestamppb.New(created.Add(time.Minute)),
	}}

	data, err := proto.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := new(OrderResponse)
	if err := proto.Unmarshal(data, out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !proto.Equal(in, out) {
		t.Fatalf("decoded message differs: got %v want %v", out, in)
	}
	if got := out.GetOrder().GetUpdatedAt().AsTime(); !got.Equal(created.Add(time.Minute)) {
		t.Fatalf("updated_at mismatch: got %v", got)
	}
}

func TestFileDescriptorMetadata(t *testing.T) {
	fd := File_proto_storefront_v1_order_workflow_proto
	if got, want := fd.Path(), "proto/storefront/v1/order_workflow.proto"; got != want {
		t.Fatalf("unexpected descriptor path: got %s want %s", got, want)
	}
	if got, want := string(fd.Package()), "storefront.v1"; got != want {
		t.Fatalf("unexpected package: got %s want %s", got, want)
	}
	if got := fd.Messages().Len(); got != 10 {
		t.Fatalf("expected 10 message descriptors, got %d", got)
	}
	if fd.Enums().Len() != 1 {
		t.Fatalf("expected one enum descriptor")
	}
	svc := fd.Services().ByName("OrderWorkflow")
	if svc == nil {
		t.Fatalf("OrderWorkflow service descriptor is missing")
	}
	if got := svc.Methods().Len(); got != 6 {
		t.Fatalf("expected 6 methods, got %d", got)
	}
	order := fd.Messages().ByName("Order")
	if order == nil {
		t.Fatalf("Order descriptor is missing")
	}
	if got := order.Fields().ByName("created_at").Message().FullName(); got != "google.protobuf.Timestamp" {
		t.Fatalf("created_at must be a Timestamp, got %s", got)
	}
	if got := order.Fields().ByName("cart_id").JSONName(); got != "cartId" {
		t.Fatalf("unexpected json name: %s", got)
	}
}

func exerciseGeneratedMessage(t *testing.T, msg any) {
	t.Helper()

	v := reflect.ValueOf(msg)

	callNoArg(t, v, "String")
	callNoArg(t, v, "ProtoReflect")
	callNoArg(t, v, "Descriptor")
	callGetterMethods(t, v)
	callNoArg(t, v, "Reset")

	nilReceiver := reflect.Zero(v.Type())
	callNoArg(t, nilReceiver, "ProtoReflect")
	callNoArg(t, nilReceiver, "Descriptor")
	callGetterMethods(t, nilReceiver)
}

func callGetterMethods(t *testing.T, v reflect.Value) {
	t.Helper()

	typ := v.Type()
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !strings.HasPrefix(m.Name, "Get") {
			continue
		}
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
			continue
		}
		callNoArg(t, v, m.Name)
	}
}

func callNoArg(t *testing.T, v reflect.Value, method string) {
	t.Helper()

	mv := v.MethodByName(method)
	if !mv.IsValid() {
		return
	}
	if mv.Type().NumIn() != 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("method %s panicked: %v", method, r)
		}
	}()

	_ = mv.Call(nil)
}
