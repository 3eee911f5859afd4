// Package outbox переносит события transactional outbox в брокер.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/resilience"
)

// RelayConfig задаёт расписание опроса и политику повторов публикации.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Retry        resilience.RetryConfig
}

// DefaultRelayConfig возвращает параметры по умолчанию.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval: time.Second,
		BatchSize:    100,
		Retry: resilience.RetryConfig{
			MaxAttempts:   3,
			InitialDelay:  50 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			BackoffFactor: 2,
		},
	}
}

func (c RelayConfig) normalized() RelayConfig {
	def := DefaultRelayConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if c.Retry.InitialDelay < 0 {
		c.Retry.InitialDelay = 0
	}
	return c
}

// FlushResult — итог одного прохода по outbox.
type FlushResult struct {
	Pulled       int
	Sent         int
	DeadLettered int
	// Failed — события, которые не удалось ни доставить, ни переложить в DLQ.
	Failed int
}

// RelayOption настраивает Relay.
type RelayOption func(*Relay)

// WithDeadLetters задаёт publisher, куда уходят события после исчерпания повторов.
func WithDeadLetters(publisher domain.OutboxPublisher) RelayOption {
	return func(r *Relay) { r.deadLetters = publisher }
}

// WithMetrics задаёт метрики фоновых процессов.
func WithMetrics(m *metrics.BackgroundMetrics) RelayOption {
	return func(r *Relay) { r.metrics = m }
}

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) RelayOption {
	return func(r *Relay) {
		if now != nil {
			r.now = now
		}
	}
}

// Relay забирает pending-события из outbox и публикует их в брокер.
type Relay struct {
	repo        domain.OutboxRepository
	publisher   domain.OutboxPublisher
	deadLetters domain.OutboxPublisher
	cfg         RelayConfig
	metrics     *metrics.BackgroundMetrics
	logger      *log.Entry
	now         func() time.Time
}

// NewRelay создаёт Relay.
func NewRelay(repo domain.OutboxRepository, publisher domain.OutboxPublisher, cfg RelayConfig, opts ...RelayOption) *Relay {
	r := &Relay{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg.normalized(),
		logger:    log.WithField("component", "outbox-relay"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run опрашивает outbox до отмены ctx. Пока порции приходят полными,
// следующая забирается сразу, без ожидания тика.
func (r *Relay) Run(ctx context.Context) {
	if r.repo == nil || r.publisher == nil {
		r.logger.Warn("outbox relay is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		for ctx.Err() == nil {
			res, err := r.Flush(ctx)
			if err != nil {
				r.logger.WithError(err).Warn("outbox flush failed")
				break
			}
			if res.Pulled < r.cfg.BatchSize {
				break
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Flush обрабатывает одну порцию pending-событий.
func (r *Relay) Flush(ctx context.Context) (FlushResult, error) {
	var res FlushResult
	if err := ctx.Err(); err != nil {
		return res, err
	}

	batch, err := r.repo.PullPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return res, fmt.Errorf("pull pending outbox events: %w", err)
	}
	res.Pulled = len(batch)
	r.metrics.RecordRelayBatch(len(batch))

	for _, msg := range batch {
		if ctx.Err() != nil {
			break
		}
		r.deliver(ctx, msg, &res)
	}

	r.refreshBacklog(ctx)
	return res, nil
}

func (r *Relay) deliver(ctx context.Context, msg domain.OutboxMessage, res *FlushResult) {
	entry := r.logger.WithFields(log.Fields{"outbox_id": msg.ID, "event_type": msg.EventType})

	attempts := 0
	publishErr := resilience.Retry(ctx, r.cfg.Retry, "outbox publish", entry, func(context.Context) error {
		attempts++
		if err := r.publisher.Publish(msg); err != nil {
			r.metrics.RecordRelayAttempt(metrics.RelayPublishError)
			return err
		}
		r.metrics.RecordRelayAttempt(metrics.RelayPublished)
		return nil
	})

	if publishErr == nil {
		if err := r.repo.MarkSent(ctx, msg.ID); err != nil {
			entry.WithError(err).Warn("outbox event published but not marked as sent")
			return
		}
		res.Sent++
		return
	}
	// Остановка сервиса: событие остаётся pending и уйдёт после рестарта.
	if ctx.Err() != nil {
		return
	}

	entry = entry.WithField("attempts", attempts)
	entry.WithError(publishErr).Error("outbox event undeliverable")
	if err := r.sendDeadLetter(msg, attempts, publishErr); err != nil {
		r.metrics.RecordRelayAttempt(metrics.RelayDeadLetterFailed)
		entry.WithError(err).Warn("dead letter publish failed")
		res.Failed++
	} else if r.deadLetters != nil {
		r.metrics.RecordRelayAttempt(metrics.RelayDeadLettered)
		res.DeadLettered++
	} else {
		res.Failed++
	}
	if err := r.repo.MarkFailed(ctx, msg.ID); err != nil {
		entry.WithError(err).Warn("outbox event not marked as failed")
	}
}

// deadLetter — payload записи DLQ; исходное событие вложено целиком.
type deadLetter struct {
	OutboxID       string          `json:"outbox_id"`
	AggregateType  string          `json:"aggregate_type"`
	AggregateID    string          `json:"aggregate_id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	Attempts       int             `json:"attempts"`
	PublishError   string          `json:"publish_error"`
	DLQPublishedAt time.Time       `json:"dlq_published_at"`
}

func (r *Relay) sendDeadLetter(msg domain.OutboxMessage, attempts int, publishErr error) error {
	if r.deadLetters == nil {
		return nil
	}

	payload, err := json.Marshal(deadLetter{
		OutboxID:       msg.ID,
		AggregateType:  msg.AggregateType,
		AggregateID:    msg.AggregateID,
		EventType:      msg.EventType,
		Payload:        json.RawMessage(msg.Payload),
		Attempts:       attempts,
		PublishError:   publishErr.Error(),
		DLQPublishedAt: r.now(),
	})
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	letter := msg
	letter.Payload = payload
	if err := r.deadLetters.Publish(letter); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}
	return nil
}

func (r *Relay) refreshBacklog(ctx context.Context) {
	stats, err := r.repo.Stats(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("outbox backlog stats unavailable")
		return
	}
	var age time.Duration
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		age = r.now().Sub(stats.OldestPendingAt)
	}
	r.metrics.SetOutboxBacklog(stats.PendingCount, age)
}
