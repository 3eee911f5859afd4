package grpcsvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/workflow"
	storefrontv1 "github.com/vladislavdragonenkov/storefront/proto/storefront/v1"
)

func TestToProtoStatus(t *testing.T) {
	assert.Equal(t, storefrontv1.OrderStatus_ORDER_STATUS_AWAITING_PAYMENT, toProtoStatus(domain.OrderStatusAwaitingPayment))
	assert.Equal(t, storefrontv1.OrderStatus_ORDER_STATUS_DELIVERED, toProtoStatus(domain.OrderStatusDelivered))
	assert.Equal(t, storefrontv1.OrderStatus_ORDER_STATUS_UNSPECIFIED, toProtoStatus(domain.OrderStatus("UNKNOWN")))
}

func TestToProtoOrder(t *testing.T) {
	created := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	order := domain.Order{
		ID:          "order-1",
		CartID:      "cart-1",
		Status:      domain.OrderStatusAwaitingPayment,
		AmountMinor: 500,
		Version:     1,
		Items: []domain.OrderItem{{
			ProductID:      "apple",
			ProductName:    "Apple",
			Category:       domain.ProductCategoryFood,
			UnitPriceMinor: 250,
			Quantity:       2,
		}},
		CreatedAt: created,
	}

	out := toProtoOrder(order)
	assert.Equal(t, "order-1", out.GetId())
	assert.Equal(t, "cart-1", out.GetCartId())
	require.Len(t, out.GetItems(), 1)
	assert.Equal(t, string(domain.ProductCategoryFood), out.GetItems()[0].GetCategory())
	assert.True(t, out.GetCreatedAt().AsTime().Equal(created))
	assert.Nil(t, out.GetUpdatedAt(), "нулевое время не передаётся")
}

func TestToProtoAvailabilityEmptyShortages(t *testing.T) {
	out := toProtoAvailability(workflow.Availability{CartID: "cart-1", Available: true})
	assert.True(t, out.GetAvailable())
	assert.Empty(t, out.GetShortages())
}

func TestRequestHashDependsOnPayload(t *testing.T) {
	method := storefrontv1.OrderWorkflow_PlaceOrder_FullMethodName

	first, err := requestHash(method, &storefrontv1.PlaceOrderRequest{CartId: "cart-1"})
	require.NoError(t, err)
	again, err := requestHash(method, &storefrontv1.PlaceOrderRequest{CartId: "cart-1"})
	require.NoError(t, err)
	other, err := requestHash(method, &storefrontv1.PlaceOrderRequest{CartId: "cart-2"})
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
}
