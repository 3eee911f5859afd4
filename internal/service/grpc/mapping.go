package grpcsvc

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	storefrontv1 "github.com/vladislavdragonenkov/storefront/proto/storefront/v1"
)

func toProtoOrder(o domain.Order) *storefrontv1.Order {
	items := make([]*storefrontv1.OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, &storefrontv1.OrderItem{
			ProductId:      item.ProductID,
			ProductName:    item.ProductName,
			Category:       string(item.Category),
			UnitPriceMinor: item.UnitPriceMinor,
			Quantity:       item.Quantity,
		})
	}

	return &storefrontv1.Order{
		Id:          o.ID,
		CartId:      o.CartID,
		Status:      toProtoStatus(o.Status),
		AmountMinor: o.AmountMinor,
		Version:     o.Version,
		Items:       items,
		CreatedAt:   toProtoTime(o.CreatedAt),
		UpdatedAt:   toProtoTime(o.UpdatedAt),
	}
}

func toProtoStatus(status domain.OrderStatus) storefrontv1.OrderStatus {
	switch status {
	case domain.OrderStatusAwaitingPayment:
		return storefrontv1.OrderStatus_ORDER_STATUS_AWAITING_PAYMENT
	case domain.OrderStatusDelivered:
		return storefrontv1.OrderStatus_ORDER_STATUS_DELIVERED
	default:
		return storefrontv1.OrderStatus_ORDER_STATUS_UNSPECIFIED
	}
}

func toProtoTime(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func toProtoAvailability(a workflow.Availability) *storefrontv1.CheckAvailabilityResponse {
	shortages := make([]*storefrontv1.Shortage, 0, len(a.Shortages))
	for _, s := range a.Shortages {
		shortages = append(shortages, &storefrontv1.Shortage{
			ProductId: s.ProductID,
			Requested: s.Requested,
			Available: s.Available,
		})
	}
	return &storefrontv1.CheckAvailabilityResponse{
		CartId:    a.CartID,
		Available: a.Available,
		Shortages: shortages,
	}
}
