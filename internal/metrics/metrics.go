// Package metrics exposes Prometheus collectors for statements, comment
// operations and HTTP requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Leahcim-1/rd-comment-service/internal/comment"
	"github.com/Leahcim-1/rd-comment-service/internal/store"
)

const namespace = "bender"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	outcomes        *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "queries_total",
			Help:      "Statements executed, by operation and result.",
		}, []string{"op", "table", "result"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Statement latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comment",
			Name:      "operations_total",
			Help:      "Comment service operations, by errno.",
		}, []string{"op", "errno"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.queries,
		m.queryDuration,
		m.outcomes,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// QueryMiddleware counts and times every statement a repository runs.
func (m *Metrics) QueryMiddleware() store.QueryMiddleware {
	return func(next store.QueryMiddlewareFunc) store.QueryMiddlewareFunc {
		return func(ctx *store.MiddlewareContext) error {
			err := next(ctx)

			result := "ok"
			if err != nil {
				result = "error"
			}
			m.queries.WithLabelValues(string(ctx.Operation), ctx.TableName, result).Inc()
			m.queryDuration.WithLabelValues(string(ctx.Operation)).Observe(time.Since(ctx.StartTime).Seconds())
			return err
		}
	}
}

// ObserveOutcome records a finished comment operation. It matches
// comment.OutcomeObserver.
func (m *Metrics) ObserveOutcome(op string, errno comment.Errno) {
	m.outcomes.WithLabelValues(op, errno.String()).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
