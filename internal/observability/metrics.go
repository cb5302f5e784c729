package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helixir/procurement-service/internal/domain"
)

// Outcome label values for OperationsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics contains all Prometheus metrics for the procurement service.
// All counters and histograms are registered via promauto with the default
// Prometheus registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// OperationsTotal counts service operations, labeled by entity, operation and outcome.
	OperationsTotal *prometheus.CounterVec

	// OperationErrors counts failed service operations, labeled by entity, operation and error kind.
	OperationErrors *prometheus.CounterVec

	// OperationDuration observes service operation duration in seconds, labeled by entity and operation.
	OperationDuration *prometheus.HistogramVec

	// PoolExhausted counts connection acquisitions that timed out.
	PoolExhausted prometheus.Counter

	// PoolConnections reports pool connection counts, labeled by state (total, acquired, idle).
	PoolConnections *prometheus.GaugeVec

	// HTTPRequestsTotal counts HTTP requests, labeled by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRateLimited counts requests rejected by the rate limiter.
	HTTPRateLimited prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of data-access operations",
		}, []string{"entity", "operation", "outcome"}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_errors_total",
			Help:      "Total number of failed data-access operations by error kind",
		}, []string{"entity", "operation", "kind"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of data-access operations in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"entity", "operation"}),
		PoolExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      "acquire_timeouts_total",
			Help:      "Total number of connection acquisitions that timed out",
		}),
		PoolConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      "connections",
			Help:      "Number of pooled connections by state",
		}, []string{"state"}),
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),
	}
}

// RecordOperation records the outcome and duration of a data-access operation.
func (m *Metrics) RecordOperation(entity, operation string, durationSeconds float64, err error) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(entity, operation).Observe(durationSeconds)
	if err != nil {
		m.OperationsTotal.WithLabelValues(entity, operation, OutcomeError).Inc()
		m.OperationErrors.WithLabelValues(entity, operation, domain.ErrorKind(err)).Inc()
		return
	}
	m.OperationsTotal.WithLabelValues(entity, operation, OutcomeSuccess).Inc()
}

// RecordPoolExhausted records a connection acquisition timeout.
func (m *Metrics) RecordPoolExhausted() {
	if m == nil {
		return
	}
	m.PoolExhausted.Inc()
}

// ObservePool records the current pool connection counts.
func (m *Metrics) ObservePool(total, acquired, idle int32) {
	if m == nil {
		return
	}
	m.PoolConnections.WithLabelValues("total").Set(float64(total))
	m.PoolConnections.WithLabelValues("acquired").Set(float64(acquired))
	m.PoolConnections.WithLabelValues("idle").Set(float64(idle))
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.HTTPRateLimited.Inc()
}
