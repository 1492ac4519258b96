// Package telemetry holds the Prometheus metrics and OpenTelemetry tracing
// used by the ledger services.
package telemetry

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/malkhana/internal/ledgererr"
)

const namespace = "malkhana"

// Metrics records ledger counters on a private registry. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry             *prometheus.Registry
	operations           *prometheus.CounterVec
	durations            *prometheus.HistogramVec
	transferConflicts    prometheus.Counter
	notificationsCreated prometheus.Counter
	casesClosed          prometheus.Counter
}

// NewMetrics registers the ledger collectors plus Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Ledger operations by name and result code.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		transferConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_conflicts_total",
			Help:      "Custody transfer compare-and-set attempts that lost a race.",
		}),
		notificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Pending-case notifications created by sweeps.",
		}),
		casesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_closed_total",
			Help:      "Cases transitioned from PENDING to DISPOSED.",
		}),
	}
	m.registry.MustRegister(
		m.operations, m.durations, m.transferConflicts, m.notificationsCreated, m.casesClosed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one operation outcome. The result label is "ok" or the
// lower-cased ledger error code.
func (m *Metrics) Observe(_ context.Context, operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, ResultLabel(err)).Inc()
	m.durations.WithLabelValues(operation).Observe(d.Seconds())
}

// TransferConflict counts a lost compare-and-set.
func (m *Metrics) TransferConflict() {
	if m == nil {
		return
	}
	m.transferConflicts.Inc()
}

// NotificationsCreated adds n newly created notifications.
func (m *Metrics) NotificationsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsCreated.Add(float64(n))
}

// CaseClosed counts a case closure.
func (m *Metrics) CaseClosed() {
	if m == nil {
		return
	}
	m.casesClosed.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ResultLabel maps an error to a metrics label.
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := ledgererr.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}
