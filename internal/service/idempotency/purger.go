package idempotency

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// ExpiredPurger удаляет просроченные записи идемпотентности порциями.
// Redis-хранилище в нём не нуждается: ключи истекают по TTL.
type ExpiredPurger interface {
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// PurgeConfig задаёт расписание очистки.
type PurgeConfig struct {
	Interval  time.Duration
	BatchSize int
	// MaxBatches ограничивает один проход; остаток дочищается на следующем тике.
	// Ноль снимает ограничение.
	MaxBatches int
}

// DefaultPurgeConfig возвращает расписание по умолчанию.
func DefaultPurgeConfig() PurgeConfig {
	return PurgeConfig{Interval: time.Minute, BatchSize: 500, MaxBatches: 20}
}

func (c PurgeConfig) normalized() PurgeConfig {
	def := DefaultPurgeConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxBatches < 0 {
		c.MaxBatches = 0
	}
	return c
}

// PurgeReport — итог одного прохода очистки.
type PurgeReport struct {
	Deleted int
	Batches int
	// Truncated — проход остановлен по MaxBatches, просроченные ключи ещё остались.
	Truncated bool
}

// Purger периодически удаляет просроченные ключи идемпотентности.
type Purger struct {
	store   ExpiredPurger
	cfg     PurgeConfig
	metrics *metrics.BackgroundMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewPurger создаёт Purger. metrics и logger могут быть nil.
func NewPurger(store ExpiredPurger, cfg PurgeConfig, m *metrics.BackgroundMetrics, logger *log.Entry) *Purger {
	if logger == nil {
		logger = log.WithField("component", "idempotency-purger")
	}
	return &Purger{
		store:   store,
		cfg:     cfg.normalized(),
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run выполняет проход сразу и затем по расписанию, пока ctx не отменён.
func (p *Purger) Run(ctx context.Context) {
	if p.store == nil {
		p.logger.Warn("idempotency purger is disabled: store is nil")
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		p.sweepAndReport(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Purger) sweepAndReport(ctx context.Context) {
	started := time.Now()
	report, err := p.Sweep(ctx, p.now())
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		p.metrics.RecordPurgeRun(metrics.ResultError, time.Since(started))
		p.logger.WithError(err).WithField("deleted", report.Deleted).Warn("idempotency purge failed")
		return
	}

	p.metrics.RecordPurgeRun(metrics.ResultOK, time.Since(started))
	if report.Deleted == 0 {
		return
	}
	entry := p.logger.WithFields(log.Fields{"deleted": report.Deleted, "batches": report.Batches})
	if report.Truncated {
		entry.Warn("idempotency purge hit batch limit, backlog remains")
		return
	}
	entry.Info("expired idempotency keys purged")
}

// Sweep удаляет ключи, истёкшие к моменту before. Порции идут, пока очередная
// не окажется неполной или не будет исчерпан MaxBatches.
func (p *Purger) Sweep(ctx context.Context, before time.Time) (PurgeReport, error) {
	var report PurgeReport
	if before.IsZero() {
		before = p.now()
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if p.cfg.MaxBatches > 0 && report.Batches == p.cfg.MaxBatches {
			report.Truncated = true
			return report, nil
		}

		deleted, err := p.store.DeleteExpired(ctx, before, p.cfg.BatchSize)
		if err != nil {
			return report, err
		}
		report.Batches++
		report.Deleted += deleted
		p.metrics.RecordPurgeBatch(deleted)

		if deleted < p.cfg.BatchSize {
			return report, nil
		}
	}
}
