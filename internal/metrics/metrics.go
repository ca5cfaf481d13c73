// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store Metrics
	StoreTxnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_transaction_duration_seconds",
			Help:    "Duration of document store transactions in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "mode"},
	)

	StoreTxnTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_transactions_total",
			Help: "Total number of document store transactions by outcome",
		},
		[]string{"backend", "mode", "outcome"}, // outcome: ok, conflict, not_found, duplicate, error
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Catalog Metrics
	ReviewsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_review_writes_total",
			Help: "Total number of committed review writes",
		},
		[]string{"kind"}, // created, updated, deleted, moderated
	)

	RecomputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregator_recompute_duration_seconds",
			Help:    "Duration of rating and rollup recomputes in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"}, // game_rating, category_rollup, play, favorite
	)

	RecomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_recomputes_total",
			Help: "Total number of aggregator recomputes by outcome",
		},
		[]string{"kind", "outcome"},
	)

	ReconcileLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregator_reconcile_last_run_timestamp_seconds",
			Help: "Unix time of the last completed reconcile run",
		},
	)

	ReconcileRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_reconcile_repairs_total",
			Help: "Total number of documents whose derived values changed during reconcile",
		},
		[]string{"kind"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic", "result"}, // result: ok, error, rejected
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_handled_total",
			Help: "Total number of domain events handled by subscribers",
		},
		[]string{"handler", "result"},
	)

	EventHandlingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "events_handling_duration_seconds",
			Help:    "Duration of domain event handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// Authorization Metrics
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"role", "object", "action", "decision"},
	)

	AuthzCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_cache_hits_total",
			Help: "Total number of authorization decisions served from cache",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Backup Metrics
	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_snapshots_total",
			Help: "Total number of store snapshots by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	BackupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "backup_snapshot_duration_seconds",
			Help:    "Duration of store snapshots in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_success_timestamp_seconds",
			Help: "Unix time of the last successful snapshot",
		},
	)

	BackupLastSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_last_size_bytes",
			Help: "Archive size of the last successful snapshot",
		},
	)

	BackupsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backup_snapshots_pruned_total",
			Help: "Total number of snapshots deleted by the retention policy",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordStoreTxn records a document store transaction.
func RecordStoreTxn(backend, mode string, duration time.Duration, outcome string) {
	StoreTxnDuration.WithLabelValues(backend, mode).Observe(duration.Seconds())
	StoreTxnTotal.WithLabelValues(backend, mode, outcome).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by a rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAuthzDecision records one authorization decision.
func RecordAuthzDecision(role, object, action string, allowed, cacheHit bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	AuthzDecisionsTotal.WithLabelValues(role, object, action, decision).Inc()
	if cacheHit {
		AuthzCacheHitsTotal.Inc()
	}
}

// RecordReviewWrite counts a committed review write.
func RecordReviewWrite(kind string) {
	ReviewsSubmitted.WithLabelValues(kind).Inc()
}

// RecordRecompute records one aggregator recompute.
func RecordRecompute(kind string, duration time.Duration, err error) {
	RecomputeDuration.WithLabelValues(kind).Observe(duration.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	RecomputeTotal.WithLabelValues(kind, result).Inc()
}

// RecordReconcile records a finished reconcile run and its repair counts.
func RecordReconcile(repairs map[string]int) {
	for kind, n := range repairs {
		if n > 0 {
			ReconcileRepairs.WithLabelValues(kind).Add(float64(n))
		}
	}
	ReconcileLastRun.Set(float64(time.Now().Unix()))
}

// RecordBackup records a finished snapshot attempt.
func RecordBackup(trigger string, duration time.Duration, size int64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackupsTotal.WithLabelValues(trigger, outcome).Inc()
	BackupDuration.Observe(duration.Seconds())
	if err == nil {
		BackupLastSuccess.Set(float64(time.Now().Unix()))
		BackupLastSize.Set(float64(size))
	}
}

// RecordBackupsPruned counts snapshots removed by retention.
func RecordBackupsPruned(n int) {
	if n > 0 {
		BackupsPruned.Add(float64(n))
	}
}

// RecordEventPublish records a publish attempt for topic.
func RecordEventPublish(topic, result string) {
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventHandled records one handler invocation.
func RecordEventHandled(handler string, duration time.Duration, err error) {
	EventHandlingDuration.WithLabelValues(handler).Observe(duration.Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsHandled.WithLabelValues(handler, result).Inc()
}

// RecordCircuitBreakerTransition sets the breaker gauge and counts the
// transition. An empty from only initializes the gauge.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	if from != "" {
		CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	}
}

// RecordWebSocketConnections sets the number of connected websocket clients.
func RecordWebSocketConnections(n int) {
	WSConnections.Set(float64(n))
}

// RecordWebSocketMessage counts one message written to a websocket client.
func RecordWebSocketMessage() {
	WSMessagesSent.Inc()
}
