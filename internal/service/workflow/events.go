package workflow

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

// enqueue пишет событие в outbox той же транзакцией, что и изменение заказа.
func (s *Service) enqueue(ctx context.Context, tx domain.Tx, event kafka.OrderEvent) error {
	msg, err := event.OutboxMessage()
	if err != nil {
		return err
	}
	if _, err := tx.Outbox().Enqueue(ctx, msg); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
	return nil
}

// appendTimeline дописывает историю после коммита; ошибка не откатывает операцию.
func (s *Service) appendTimeline(ctx context.Context, orderID, eventType, reason string, occurred time.Time) {
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: occurred,
	}
	if err := s.store.Timeline().Append(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("append timeline event failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

// invalidate сбрасывает закэшированные карточки товаров с изменёнными остатками.
func (s *Service) invalidate(ctx context.Context, productIDs []string) {
	if s.cache == nil || len(productIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, productIDs...); err != nil {
		s.logger.WithError(err).WithField("products", len(productIDs)).Warn("product cache invalidation failed")
	}
}
