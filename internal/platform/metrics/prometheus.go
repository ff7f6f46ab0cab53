package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exports ledger metrics to Prometheus.
type PrometheusRecorder struct {
	transactions    *prometheus.CounterVec
	operations      *prometheus.CounterVec
	operationTime   *prometheus.HistogramVec
	conflictRetries *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec
	eventsPublished *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder whose metric names share namespace.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	return &PrometheusRecorder{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Transactions recorded, by type and status",
			},
			[]string{"type", "status"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Ledger write operations, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Ledger write operation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 15),
			},
			[]string{"operation"},
		),
		conflictRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflict_retries_total",
				Help:      "Units of work retried after a concurrency conflict",
			},
			[]string{"operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_lookups_total",
				Help:      "Report cache lookups, by result",
			},
			[]string{"result"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Ledger events handed to the broker, by outcome",
			},
			[]string{"type", "outcome"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (pr *PrometheusRecorder) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pr.transactions,
		pr.operations,
		pr.operationTime,
		pr.conflictRetries,
		pr.httpRequests,
		pr.httpLatency,
		pr.cacheLookups,
		pr.circuitState,
		pr.eventsPublished,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransaction counts a recorded transaction.
func (pr *PrometheusRecorder) RecordTransaction(txnType, status string) {
	pr.transactions.WithLabelValues(txnType, status).Inc()
}

// RecordOperation records the outcome and latency of a ledger write.
func (pr *PrometheusRecorder) RecordOperation(operation string, success bool, duration time.Duration) {
	pr.operations.WithLabelValues(operation, outcome(success)).Inc()
	pr.operationTime.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordConflictRetry counts a retried unit of work.
func (pr *PrometheusRecorder) RecordConflictRetry(operation string) {
	pr.conflictRetries.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records a served request.
func (pr *PrometheusRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	pr.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	pr.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheLookup counts a report cache hit or miss.
func (pr *PrometheusRecorder) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pr.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCircuitState records the current breaker state.
func (pr *PrometheusRecorder) RecordCircuitState(name string, state CircuitState) {
	pr.circuitState.WithLabelValues(name).Set(float64(state))
}

// RecordEventPublished counts a publish attempt.
func (pr *PrometheusRecorder) RecordEventPublished(eventType string, success bool) {
	pr.eventsPublished.WithLabelValues(eventType, outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

var (
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = NoOpRecorder{}
)
