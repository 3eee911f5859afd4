package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Операции жизненного цикла заказа, используемые как значение label "operation".
const (
	OperationPlace  = "place"
	OperationPay    = "pay"
	OperationCancel = "cancel"
	OperationFinish = "finish"
)

// Результаты операций для label "result".
const (
	ResultOK                = "ok"
	ResultNoop              = "noop"
	ResultNotFound          = "not_found"
	ResultInsufficientStock = "insufficient_stock"
	ResultBadOrderState     = "bad_order_state"
	ResultInvalid           = "invalid"
	ResultError             = "error"
)

// Результаты обращения к кэшу товаров.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// WorkflowMetrics содержит метрики размещения и переходов заказа.
type WorkflowMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	unitsReserved prometheus.Counter
	unitsRestored prometheus.Counter

	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для операций, удерживающих транзакцию прямо сейчас
	inFlight prometheus.Gauge

	cacheLookups *prometheus.CounterVec
}

// NewWorkflowMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewWorkflowMetrics() *WorkflowMetrics {
	return NewWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWorkflowMetricsWithRegisterer регистрирует метрики в заданном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_order_operations_total",
			Help: "Total number of order workflow operations grouped by operation and result",
		}, []string{"operation", "result"}),
		duration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_operation_duration_seconds",
			Help:    "Duration of order workflow operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		unitsReserved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_stock_units_reserved_total",
			Help: "Total number of stock units decremented by order placement",
		}),
		unitsRestored: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_stock_units_restored_total",
			Help: "Total number of stock units returned by order cancellation",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		inFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_order_operations_in_flight",
			Help: "Number of order workflow operations currently running",
		}),
		cacheLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_product_cache_lookups_total",
			Help: "Product cache lookups grouped by result",
		}, []string{"result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[prometheus.Counter](err, opts.Name)
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[*prometheus.CounterVec](err, opts.Name)
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[prometheus.Gauge](err, opts.Name)
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		return existingCollector[*prometheus.HistogramVec](err, opts.Name)
	}
	return collector
}

func existingCollector[T prometheus.Collector](err error, name string) T {
	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(T)
		if !ok {
			panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
		}
		return existing
	}
	panic(fmt.Sprintf("register collector %q: %v", name, err))
}

// Outcome переводит ошибку операции в значение label "result".
func Outcome(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case domain.IsNotFound(err):
		return ResultNotFound
	case domain.IsInsufficientStock(err):
		return ResultInsufficientStock
	case domain.IsBadOrderState(err):
		return ResultBadOrderState
	case domain.IsValidation(err):
		return ResultInvalid
	default:
		return ResultError
	}
}

// StartOperation отмечает начало операции и возвращает функцию завершения.
func (m *WorkflowMetrics) StartOperation(operation string) func(result string) {
	start := time.Now()
	m.inFlight.Inc()
	return func(result string) {
		m.inFlight.Dec()
		m.operations.WithLabelValues(operation, result).Inc()
		m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordUnitsReserved учитывает списанные при размещении единицы.
func (m *WorkflowMetrics) RecordUnitsReserved(units int64) {
	if units > 0 {
		m.unitsReserved.Add(float64(units))
	}
}

// RecordUnitsRestored учитывает единицы, возвращённые на склад при отмене.
func (m *WorkflowMetrics) RecordUnitsRestored(units int64) {
	if units > 0 {
		m.unitsRestored.Add(float64(units))
	}
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *WorkflowMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *WorkflowMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// RecordCacheLookup учитывает обращение к кэшу товаров: hit, miss или error.
func (m *WorkflowMetrics) RecordCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}
