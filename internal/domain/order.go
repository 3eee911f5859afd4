package domain

import (
	"fmt"
	"time"
)

// OrderStatus описывает жизненный цикл заказа. Отмена и завершение удаляют заказ,
// поэтому отдельных терминальных статусов нет.
type OrderStatus string

const (
	// OrderStatusAwaitingPayment — заказ размещён, остатки списаны, ждёт оплаты.
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	// OrderStatusDelivered — заказ оплачен и доставлен.
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusAwaitingPayment || s == OrderStatusDelivered
}

// OrderItem — позиция заказа, снимок корзины на момент размещения.
type OrderItem struct {
	// ID совпадает с ID позиции корзины, из которой снят снимок.
	ID             string
	ProductID      string
	ProductName    string
	Category       ProductCategory
	UnitPriceMinor int64
	Quantity       int64
}

// SubtotalMinor — стоимость позиции в минимальных денежных единицах.
func (i OrderItem) SubtotalMinor() int64 {
	return i.UnitPriceMinor * i.Quantity
}

// Order агрегирует состояние заказа и неизменяемый снимок позиций.
type Order struct {
	ID          string
	CartID      string
	Status      OrderStatus
	AmountMinor int64
	Items       []OrderItem
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder создаёт заказ в статусе AWAITING_PAYMENT и считает сумму по позициям.
func NewOrder(id, cartID string, items []OrderItem, now time.Time) Order {
	order := Order{
		ID:        id,
		CartID:    cartID,
		Status:    OrderStatusAwaitingPayment,
		Items:     cloneItems(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range order.Items {
		order.AmountMinor += item.SubtotalMinor()
	}
	return order
}

// Pay переводит заказ AWAITING_PAYMENT -> DELIVERED.
// Для уже доставленного заказа ничего не делает и возвращает false.
func (o *Order) Pay(now time.Time) bool {
	if o.Status != OrderStatusAwaitingPayment {
		return false
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = now
	return true
}

// EnsureFinishable разрешает завершение только доставленного заказа.
func (o *Order) EnsureFinishable() error {
	if o.Status != OrderStatusDelivered {
		return fmt.Errorf("%w: order %s is %s, expected %s", ErrBadOrderState, o.ID, o.Status, OrderStatusDelivered)
	}
	return nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CartID == "" {
		errs = append(errs, ErrCartIDRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, fmt.Errorf("%w: unknown status %q", ErrBadOrderState, o.Status))
	}

	var calc int64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if item.UnitPriceMinor < 0 {
			errs = append(errs, ErrProductPriceNegative)
		}
		calc += item.SubtotalMinor()
	}
	if calc != o.AmountMinor {
		errs = append(errs, fmt.Errorf("order amount %d does not match items sum %d", o.AmountMinor, calc))
	}

	return errs
}

// Clone возвращает копию заказа, не разделяющую слайс позиций.
func (o Order) Clone() Order {
	clone := o
	clone.Items = cloneItems(o.Items)
	return clone
}

func cloneItems(items []OrderItem) []OrderItem {
	if items == nil {
		return nil
	}
	out := make([]OrderItem, len(items))
	copy(out, items)
	return out
}
