package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты отдельной попытки доставки события outbox.
const (
	RelayPublished        = "published"
	RelayPublishError     = "publish_error"
	RelayDeadLettered     = "dead_lettered"
	RelayDeadLetterFailed = "dead_letter_failed"
)

// BackgroundMetrics описывает фоновые процессы: очистку ключей идемпотентности
// и ретрансляцию outbox. Методы безопасны для nil-получателя.
type BackgroundMetrics struct {
	purgeRuns     *prometheus.CounterVec
	purgedKeys    prometheus.Counter
	purgeBatch    prometheus.Histogram
	purgeDuration prometheus.Histogram

	relayAttempts *prometheus.CounterVec
	relayBatch    prometheus.Histogram
	backlog       prometheus.Gauge
	oldestPending prometheus.Gauge
}

// NewBackgroundMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewBackgroundMetrics() *BackgroundMetrics {
	return NewBackgroundMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBackgroundMetricsWithRegisterer регистрирует метрики в заданном registerer.
func NewBackgroundMetricsWithRegisterer(registerer prometheus.Registerer) *BackgroundMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	batchBuckets := prometheus.ExponentialBuckets(1, 4, 7)
	return &BackgroundMetrics{
		purgeRuns: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_idempotency_purge_runs_total",
			Help: "Idempotency key purge sweeps grouped by result",
		}, []string{"result"}),
		purgedKeys: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_idempotency_purged_keys_total",
			Help: "Total number of expired idempotency keys removed",
		}),
		purgeBatch: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_idempotency_purge_batch_size",
			Help:    "Number of keys removed by a single purge batch",
			Buckets: batchBuckets,
		}),
		purgeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_idempotency_purge_duration_seconds",
			Help:    "Duration of a full purge sweep in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		relayAttempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_relay_attempts_total",
			Help: "Outbox delivery attempts grouped by result",
		}, []string{"result"}),
		relayBatch: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_outbox_relay_batch_size",
			Help:    "Number of outbox events pulled by a single relay flush",
			Buckets: batchBuckets,
		}),
		backlog: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_outbox_backlog",
			Help: "Number of outbox events waiting for delivery",
		}),
		oldestPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_outbox_oldest_pending_age_seconds",
			Help: "Age of the oldest undelivered outbox event in seconds",
		}),
	}
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[prometheus.Histogram](err, opts.Name)
	}
	return collector
}

// RecordPurgeBatch учитывает одну порцию удалённых ключей.
func (m *BackgroundMetrics) RecordPurgeBatch(deleted int) {
	if m == nil {
		return
	}
	m.purgeBatch.Observe(float64(deleted))
	if deleted > 0 {
		m.purgedKeys.Add(float64(deleted))
	}
}

// RecordPurgeRun учитывает завершённый проход очистки.
func (m *BackgroundMetrics) RecordPurgeRun(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.purgeRuns.WithLabelValues(result).Inc()
	m.purgeDuration.Observe(elapsed.Seconds())
}

// RecordRelayAttempt учитывает попытку доставки события outbox.
func (m *BackgroundMetrics) RecordRelayAttempt(result string) {
	if m == nil {
		return
	}
	m.relayAttempts.WithLabelValues(result).Inc()
}

// RecordRelayBatch учитывает размер выбранной из outbox порции.
func (m *BackgroundMetrics) RecordRelayBatch(pulled int) {
	if m == nil {
		return
	}
	m.relayBatch.Observe(float64(pulled))
}

// SetOutboxBacklog обновляет размер очереди outbox и возраст старейшего события.
func (m *BackgroundMetrics) SetOutboxBacklog(pending int, oldest time.Duration) {
	if m == nil {
		return
	}
	m.backlog.Set(float64(pending))
	m.oldestPending.Set(max(oldest, 0).Seconds())
}
