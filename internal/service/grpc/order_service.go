// Package grpcsvc публикует процесс заказа как gRPC-сервис storefront.v1.OrderWorkflow.
package grpcsvc

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	storefrontv1 "github.com/vladislavdragonenkov/storefront/proto/storefront/v1"
)

// IdempotencyKeyHeader — ключ метаданных с ключом идемпотентности PlaceOrder.
const IdempotencyKeyHeader = "idempotency-key"

// ServiceName — полное имя gRPC-сервиса для health-проверок.
const ServiceName = "storefront.v1.OrderWorkflow"

// OrderService реализует storefrontv1.OrderWorkflowServer поверх workflow.Service.
type OrderService struct {
	storefrontv1.UnimplementedOrderWorkflowServer

	workflow *workflow.Service
	guard    *idempotency.Guard
	logger   *log.Entry
}

var _ storefrontv1.OrderWorkflowServer = (*OrderService)(nil)

// NewOrderService конструирует сервис. guard может быть nil: тогда ключ идемпотентности игнорируется.
func NewOrderService(wf *workflow.Service, guard *idempotency.Guard, logger *log.Entry) *OrderService {
	if logger == nil {
		logger = log.WithField("component", "order-workflow-grpc")
	}
	return &OrderService{workflow: wf, guard: guard, logger: logger}
}

// PlaceOrder оформляет заказ из корзины. Повтор с тем же idempotency-key возвращает прежний результат.
func (s *OrderService) PlaceOrder(ctx context.Context, req *storefrontv1.PlaceOrderRequest) (*storefrontv1.OrderResponse, error) {
	cartID := req.GetCartId()
	if strings.TrimSpace(cartID) == "" {
		return nil, status.Error(codes.InvalidArgument, domain.ErrCartIDRequired.Error())
	}

	hash, err := requestHash(storefrontv1.OrderWorkflow_PlaceOrder_FullMethodName, req)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash place request")
		return nil, status.Error(codes.Internal, "failed to hash request")
	}
	body, _, err := s.guard.Do(ctx, readIdempotencyKey(ctx), hash, func(ctx context.Context) ([]byte, error) {
		order, err := s.workflow.Place(ctx, cartID)
		if err != nil {
			return nil, err
		}
		return protojson.Marshal(&storefrontv1.OrderResponse{Order: toProtoOrder(order)})
	})
	if err != nil {
		return nil, s.toStatus(err, "place", cartID)
	}

	resp := new(storefrontv1.OrderResponse)
	if err := protojson.Unmarshal(body, resp); err != nil {
		s.logger.WithError(err).Error("failed to decode stored place response")
		return nil, status.Error(codes.Internal, "failed to decode stored response")
	}
	return resp, nil
}

// GetOrder возвращает заказ.
func (s *OrderService) GetOrder(ctx context.Context, req *storefrontv1.OrderRequest) (*storefrontv1.OrderResponse, error) {
	order, err := s.workflow.Get(ctx, req.GetOrderId())
	if err != nil {
		return nil, s.toStatus(err, "get", req.GetOrderId())
	}
	return &storefrontv1.OrderResponse{Order: toProtoOrder(order)}, nil
}

// PayOrder переводит заказ в DELIVERED.
func (s *OrderService) PayOrder(ctx context.Context, req *storefrontv1.OrderRequest) (*storefrontv1.OrderResponse, error) {
	order, err := s.workflow.Pay(ctx, req.GetOrderId())
	if err != nil {
		return nil, s.toStatus(err, "pay", req.GetOrderId())
	}
	return &storefrontv1.OrderResponse{Order: toProtoOrder(order)}, nil
}

// CancelOrder удаляет заказ в любом статусе.
func (s *OrderService) CancelOrder(ctx context.Context, req *storefrontv1.CancelOrderRequest) (*storefrontv1.OrderRemovedResponse, error) {
	if err := s.workflow.Cancel(ctx, req.GetOrderId(), req.GetReason()); err != nil {
		return nil, s.toStatus(err, "cancel", req.GetOrderId())
	}
	return &storefrontv1.OrderRemovedResponse{OrderId: req.GetOrderId()}, nil
}

// FinishOrder удаляет доставленный заказ.
func (s *OrderService) FinishOrder(ctx context.Context, req *storefrontv1.OrderRequest) (*storefrontv1.OrderRemovedResponse, error) {
	if err := s.workflow.Finish(ctx, req.GetOrderId()); err != nil {
		return nil, s.toStatus(err, "finish", req.GetOrderId())
	}
	return &storefrontv1.OrderRemovedResponse{OrderId: req.GetOrderId()}, nil
}

// CheckAvailability сообщает, хватит ли остатков на всю корзину.
func (s *OrderService) CheckAvailability(ctx context.Context, req *storefrontv1.CheckAvailabilityRequest) (*storefrontv1.CheckAvailabilityResponse, error) {
	availability, err := s.workflow.CheckAvailability(ctx, req.GetCartId())
	if err != nil {
		return nil, s.toStatus(err, "check_availability", req.GetCartId())
	}
	return toProtoAvailability(availability), nil
}

func (s *OrderService) toStatus(err error, operation, id string) error {
	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsInsufficientStock(err), domain.IsBadOrderState(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case domain.IsVersionConflict(err), errors.Is(err, idempotency.ErrRequestInProgress):
		return status.Error(codes.Aborted, err.Error())
	case domain.IsIdempotencyConflict(err):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"id":        id,
	}).Error("order workflow call failed")
	return status.Error(codes.Internal, "internal error")
}

func readIdempotencyKey(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(IdempotencyKeyHeader)
		if len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

// requestHash — отпечаток запроса для проверки повторов с тем же ключом.
func requestHash(method string, req proto.Message) (string, error) {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(req)
	if err != nil {
		return "", err
	}
	return idempotency.RequestHash(method, data), nil
}
