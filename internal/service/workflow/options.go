package workflow

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics включает prometheus-метрики операций.
func WithMetrics(m *metrics.WorkflowMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithProductCache задаёт кэш карточек, который сбрасывается после изменения остатков.
func WithProductCache(cache domain.ProductCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithRestockOnCancel включает возврат остатков при отмене заказа.
// По умолчанию отмена остатки не возвращает.
func WithRestockOnCancel(enabled bool) Option {
	return func(s *Service) {
		s.restockOnCancel = enabled
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов заказов.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func defaultClock() time.Time {
	return time.Now().UTC()
}

func defaultOrderID() string {
	return uuid.NewString()
}
