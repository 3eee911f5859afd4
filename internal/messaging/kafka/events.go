package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// EventType определяет тип события заказа
type EventType string

const (
	EventTypeOrderPlaced   EventType = "order.placed"
	EventTypeOrderPaid     EventType = "order.paid"
	EventTypeOrderCanceled EventType = "order.canceled"
	EventTypeOrderFinished EventType = "order.finished"
)

// Topics для Kafka
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicDeadLetterQueue = "storefront.dlq"
)

// Kafka headers
const (
	HeaderEventType     = "x-event-type"
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
	HeaderReplayedFrom  = "x-replayed-from"
)

// AggregateOrder — тип агрегата в outbox для событий заказа.
const AggregateOrder = "order"

// OrderEventItem — позиция заказа в событии.
type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// OrderEvent описывает изменение заказа. Items заполнены для событий,
// затрагивающих остатки (order.placed, order.canceled).
type OrderEvent struct {
	EventType   EventType        `json:"event_type"`
	OrderID     string           `json:"order_id"`
	CartID      string           `json:"cart_id"`
	Status      string           `json:"status,omitempty"`
	AmountMinor int64            `json:"amount_minor"`
	Items       []OrderEventItem `json:"items,omitempty"`
	Restocked   bool             `json:"restocked,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewOrderEvent создаёт событие по состоянию заказа на момент перехода.
func NewOrderEvent(eventType EventType, order domain.Order, now time.Time) OrderEvent {
	event := OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		CartID:      order.CartID,
		Status:      string(order.Status),
		AmountMinor: order.AmountMinor,
		Timestamp:   now.UTC(),
	}
	if eventType == EventTypeOrderPlaced || eventType == EventTypeOrderCanceled {
		event.Items = make([]OrderEventItem, 0, len(order.Items))
		for _, item := range order.Items {
			event.Items = append(event.Items, OrderEventItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	return event
}

// ProductIDs возвращает товары, остатки которых затронуты событием.
func (e OrderEvent) ProductIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OutboxMessage упаковывает событие в сообщение transactional outbox.
func (e OrderEvent) OutboxMessage() (domain.OutboxMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("marshal %s event: %w", e.EventType, err)
	}
	return domain.OutboxMessage{
		AggregateType: AggregateOrder,
		AggregateID:   e.OrderID,
		EventType:     string(e.EventType),
		Payload:       payload,
		CreatedAt:     e.Timestamp,
	}, nil
}

// Envelope — формат сообщения, которое outbox публикует в топик.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ParseEnvelope разбирает значение сообщения outbox-топика.
func ParseEnvelope(value []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return envelope, nil
}

// OrderEvent извлекает событие заказа из конверта.
func (e Envelope) OrderEvent() (OrderEvent, error) {
	if e.AggregateType != AggregateOrder {
		return OrderEvent{}, fmt.Errorf("unexpected aggregate type %q", e.AggregateType)
	}
	var event OrderEvent
	if err := json.Unmarshal(e.Payload, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("unmarshal order event: %w", err)
	}
	return event, nil
}
