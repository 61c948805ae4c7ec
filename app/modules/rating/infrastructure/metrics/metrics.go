// Package ratingmetrics records rating engine metrics.
package ratingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RatingMetrics is the metrics surface used by the rating service.
type RatingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordMatchCreated(ctx context.Context, seasonID string)
	RecordMatchResolved(ctx context.Context, winner string)
	RecordRatingDelta(ctx context.Context, position string, delta int)
	RecordSeasonEnded(ctx context.Context, rankedPlayers int)

	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// PrometheusMetrics implements RatingMetrics with Prometheus collectors.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	matchesCreated     *prometheus.CounterVec
	matchesResolved    *prometheus.CounterVec
	ratingDelta        *prometheus.HistogramVec
	seasonRankedTotal  prometheus.Gauge
	handlerCalls       *prometheus.CounterVec
	handlerDuration    *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them on reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operation_attempts_total",
			Help:      "Rating service operations started.",
		}, []string{"operation"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operation_success_total",
			Help:      "Rating service operations that returned a success result.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operation_failures_total",
			Help:      "Rating service operations that returned an error or panicked.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "operation_duration_seconds",
			Help:      "Rating service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		matchesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "matches_created_total",
			Help:      "Matches created.",
		}, []string{"season_id"}),
		matchesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "matches_resolved_total",
			Help:      "Matches resolved, by winning side.",
		}, []string{"winner"}),
		ratingDelta: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "rating_delta",
			Help:      "Distribution of per-player rating changes.",
			Buckets:   prometheus.LinearBuckets(-60, 10, 13),
		}, []string{"position"}),
		seasonRankedTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "last_season_ranked_players",
			Help:      "Players ranked when the most recent season ended.",
		}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "handler_calls_total",
			Help:      "Event handler invocations by outcome.",
		}, []string{"handler", "outcome"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rating",
			Name:      "handler_duration_seconds",
			Help:      "Event handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	collectors := []prometheus.Collector{
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.matchesCreated,
		m.matchesResolved,
		m.ratingDelta,
		m.seasonRankedTotal,
		m.handlerCalls,
		m.handlerDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operationAttempts.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operationSuccesses.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.operationFailures.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordMatchCreated(_ context.Context, seasonID string) {
	m.matchesCreated.WithLabelValues(seasonID).Inc()
}

func (m *PrometheusMetrics) RecordMatchResolved(_ context.Context, winner string) {
	m.matchesResolved.WithLabelValues(winner).Inc()
}

func (m *PrometheusMetrics) RecordRatingDelta(_ context.Context, position string, delta int) {
	m.ratingDelta.WithLabelValues(position).Observe(float64(delta))
}

func (m *PrometheusMetrics) RecordSeasonEnded(_ context.Context, rankedPlayers int) {
	m.seasonRankedTotal.Set(float64(rankedPlayers))
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlerCalls.WithLabelValues(handlerName, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordMatchCreated(context.Context, string)                     {}
func (NoOpMetrics) RecordMatchResolved(context.Context, string)                    {}
func (NoOpMetrics) RecordRatingDelta(context.Context, string, int)                 {}
func (NoOpMetrics) RecordSeasonEnded(context.Context, int)                         {}
func (NoOpMetrics) RecordHandlerAttempt(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerSuccess(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerFailure(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)   {}

var (
	_ RatingMetrics = (*PrometheusMetrics)(nil)
	_ RatingMetrics = NoOpMetrics{}
)
