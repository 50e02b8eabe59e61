// Package leaderboardmetrics holds the Prometheus instruments specific to
// score submission.
package leaderboardmetrics

import (
	"context"

	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// LeaderboardMetrics records submission outcomes alongside the generic
// operation lifecycle.
type LeaderboardMetrics interface {
	observability.OperationMetrics

	RecordSubmission(ctx context.Context, outcome string)
	RecordViolation(ctx context.Context, rule string)
	RecordUpsert(ctx context.Context, scope, outcome string)
	RecordPersistenceError(ctx context.Context, step string)
	RecordCacheLookup(ctx context.Context, hit bool)
}

type prometheusMetrics struct {
	*observability.PrometheusOperationMetrics

	submissions       *prometheus.CounterVec
	violations        *prometheus.CounterVec
	upserts           *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

// NewPrometheus registers the leaderboard collectors on reg.
func NewPrometheus(reg prometheus.Registerer, ops *observability.PrometheusOperationMetrics) LeaderboardMetrics {
	const ns = "leaderboard"
	m := &prometheusMetrics{
		PrometheusOperationMetrics: ops,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "submissions_total",
			Help:      "Score submissions by outcome.",
		}, []string{"outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rule_violations_total",
			Help:      "Anti-cheat rule violations by rule.",
		}, []string{"rule"}),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "upserts_total",
			Help:      "Upsert-if-better results by scope and outcome.",
		}, []string{"scope", "outcome"}),
		persistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "persistence_errors_total",
			Help:      "Failed submission writes by step.",
		}, []string{"step"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "cache_lookups_total",
			Help:      "Top-N cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.submissions, m.violations, m.upserts, m.persistenceErrors, m.cacheLookups)
	return m
}

func (m *prometheusMetrics) RecordSubmission(_ context.Context, outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordViolation(_ context.Context, rule string) {
	m.violations.WithLabelValues(rule).Inc()
}

func (m *prometheusMetrics) RecordUpsert(_ context.Context, scope, outcome string) {
	m.upserts.WithLabelValues(scope, outcome).Inc()
}

func (m *prometheusMetrics) RecordPersistenceError(_ context.Context, step string) {
	m.persistenceErrors.WithLabelValues(step).Inc()
}

func (m *prometheusMetrics) RecordCacheLookup(_ context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

type noop struct {
	observability.NoOpOperationMetrics
}

// NewNoop returns metrics that discard everything.
func NewNoop() LeaderboardMetrics { return noop{} }

func (noop) RecordSubmission(context.Context, string)       {}
func (noop) RecordViolation(context.Context, string)        {}
func (noop) RecordUpsert(context.Context, string, string)   {}
func (noop) RecordPersistenceError(context.Context, string) {}
func (noop) RecordCacheLookup(context.Context, bool)        {}

var (
	_ LeaderboardMetrics = (*prometheusMetrics)(nil)
	_ LeaderboardMetrics = noop{}
)
