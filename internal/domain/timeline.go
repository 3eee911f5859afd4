package domain

import "time"

// Типы событий таймлайна заказа. Таймлайн переживает удаление заказа.
const (
	TimelineOrderPlaced   = "order_placed"
	TimelineOrderPaid     = "order_paid"
	TimelineOrderCanceled = "order_canceled"
	TimelineOrderFinished = "order_finished"
	TimelineStockRestored = "stock_restored"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
