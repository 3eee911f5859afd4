package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CacheInvalidator сбрасывает кэш карточек товаров, остатки которых изменило
// размещение или отмена заказа на любом экземпляре сервиса.
type CacheInvalidator struct {
	cache  domain.ProductCache
	logger *log.Entry
}

// NewCacheInvalidator создаёт обработчик событий заказа.
func NewCacheInvalidator(cache domain.ProductCache, logger *log.Entry) *CacheInvalidator {
	if logger == nil {
		logger = log.WithField("component", "cache-invalidator")
	}
	return &CacheInvalidator{cache: cache, logger: logger}
}

// Handle — MessageHandler для топика событий заказа. Нечитаемые сообщения
// пропускаются: повтор их не исправит.
func (h *CacheInvalidator) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	envelope, err := ParseEnvelope(message.Value)
	if err != nil {
		h.logger.WithError(err).WithField("offset", message.Offset).Warn("skip malformed message")
		return nil
	}

	switch EventType(envelope.EventType) {
	case EventTypeOrderPlaced, EventTypeOrderCanceled:
	default:
		return nil
	}

	event, err := envelope.OrderEvent()
	if err != nil {
		h.logger.WithError(err).WithField("outbox_id", envelope.ID).Warn("skip malformed order event")
		return nil
	}

	ids := event.ProductIDs()
	if len(ids) == 0 {
		return nil
	}
	if err := h.cache.Invalidate(ctx, ids...); err != nil {
		return fmt.Errorf("invalidate products of order %s: %w", event.OrderID, err)
	}

	h.logger.WithFields(log.Fields{
		"order_id":   event.OrderID,
		"event_type": event.EventType,
		"products":   len(ids),
	}).Debug("product cache invalidated")
	return nil
}

