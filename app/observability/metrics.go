package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ServiceMetrics records the outcome of service operations.
type ServiceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// MatchMetrics records match life-cycle events.
type MatchMetrics interface {
	ServiceMetrics
	RecordMatchStarted(ctx context.Context, kind string)
	RecordMatchFinished(ctx context.Context, kind, state string)
	RecordNegotiation(ctx context.Context, kind, outcome string)
	SetActiveMatches(n int)
}

// JudgeMetrics records calls to the external judge.
type JudgeMetrics interface {
	RecordJudgeRequest(ctx context.Context, endpoint, status string, duration time.Duration)
}

// CacheMetrics records catalog cache behaviour.
type CacheMetrics interface {
	RecordCacheHit(ctx context.Context, key string)
	RecordCacheMiss(ctx context.Context, key string)
}

// PrometheusMetrics implements every metrics interface on one registry.
type PrometheusMetrics struct {
	opAttempts    *prometheus.CounterVec
	opSuccess     *prometheus.CounterVec
	opFailure     *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	matchStarted  *prometheus.CounterVec
	matchFinished *prometheus.CounterVec
	negotiations  *prometheus.CounterVec
	activeMatches prometheus.Gauge
	judgeRequests *prometheus.CounterVec
	judgeLatency  *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on registry.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		opAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, []string{"service", "operation"}),
		opSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "operation_success_total",
			Help: "Service operations that completed without an infrastructure error.",
		}, []string{"service", "operation"}),
		opFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "operation_failure_total",
			Help: "Service operations that failed or panicked.",
		}, []string{"service", "operation"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockout", Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		matchStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "matches_started_total",
			Help: "Matches that reached ACTIVE.",
		}, []string{"kind"}),
		matchFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "matches_finished_total",
			Help: "Matches that reached a terminal state.",
		}, []string{"kind", "state"}),
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "negotiations_total",
			Help: "Invitation negotiations by outcome.",
		}, []string{"kind", "outcome"}),
		activeMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lockout", Name: "active_matches",
			Help: "Matches currently held by the registry.",
		}),
		judgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "judge_requests_total",
			Help: "Judge API requests by endpoint and status.",
		}, []string{"endpoint", "status"}),
		judgeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockout", Name: "judge_request_duration_seconds",
			Help:    "Judge API latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockout", Name: "catalog_cache_lookups_total",
			Help: "Catalog cache lookups by result.",
		}, []string{"key", "result"}),
	}

	registry.MustRegister(
		m.opAttempts, m.opSuccess, m.opFailure, m.opDuration,
		m.matchStarted, m.matchFinished, m.negotiations, m.activeMatches,
		m.judgeRequests, m.judgeLatency, m.cacheLookups,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.opAttempts.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.opSuccess.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.opFailure.WithLabelValues(service, operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.opDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordMatchStarted(_ context.Context, kind string) {
	m.matchStarted.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordMatchFinished(_ context.Context, kind, state string) {
	m.matchFinished.WithLabelValues(kind, state).Inc()
}

func (m *PrometheusMetrics) RecordNegotiation(_ context.Context, kind, outcome string) {
	m.negotiations.WithLabelValues(kind, outcome).Inc()
}

func (m *PrometheusMetrics) SetActiveMatches(n int) {
	m.activeMatches.Set(float64(n))
}

func (m *PrometheusMetrics) RecordJudgeRequest(_ context.Context, endpoint, status string, duration time.Duration) {
	m.judgeRequests.WithLabelValues(endpoint, status).Inc()
	m.judgeLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordCacheHit(_ context.Context, key string) {
	m.cacheLookups.WithLabelValues(key, "hit").Inc()
}

func (m *PrometheusMetrics) RecordCacheMiss(_ context.Context, key string) {
	m.cacheLookups.WithLabelValues(key, "miss").Inc()
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() NoopMetrics { return NoopMetrics{} }

func (NoopMetrics) RecordOperationAttempt(context.Context, string, string)                {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string, string)                {}
func (NoopMetrics) RecordOperationFailure(context.Context, string, string)                {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoopMetrics) RecordMatchStarted(context.Context, string)                            {}
func (NoopMetrics) RecordMatchFinished(context.Context, string, string)                   {}
func (NoopMetrics) RecordNegotiation(context.Context, string, string)                     {}
func (NoopMetrics) SetActiveMatches(int)                                                  {}
func (NoopMetrics) RecordJudgeRequest(context.Context, string, string, time.Duration)     {}
func (NoopMetrics) RecordCacheHit(context.Context, string)                                {}
func (NoopMetrics) RecordCacheMiss(context.Context, string)                               {}

var (
	_ MatchMetrics = (*PrometheusMetrics)(nil)
	_ JudgeMetrics = (*PrometheusMetrics)(nil)
	_ CacheMetrics = (*PrometheusMetrics)(nil)
	_ MatchMetrics = NoopMetrics{}
	_ JudgeMetrics = NoopMetrics{}
	_ CacheMetrics = NoopMetrics{}
)
