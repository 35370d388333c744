// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	EngineEventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedpilot_engine_event_duration_seconds",
			Help:    "Time spent handling one engine event",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"event"},
	)

	EngineHandlerPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_engine_handler_panics_total",
			Help: "Total number of recovered panics in engine handlers",
		},
		[]string{"event"},
	)

	EngineSignalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_engine_signals_dropped_total",
			Help: "Total number of host signals or internal events dropped",
		},
		[]string{"reason"}, // "transient", "stale_sample", "stale_score", "inbox_full", "invalid_message"
	)

	EngineActiveTimers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedpilot_engine_active_timers",
			Help: "Number of timers armed for the live session",
		},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedpilot_sessions_started_total",
			Help: "Total number of video sessions started",
		},
	)

	// Decision Metrics
	ActionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_actions_total",
			Help: "Total number of actuator commands by action, trigger and result",
		},
		[]string{"action", "trigger", "success"},
	)

	Completions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_completions_total",
			Help: "Total number of completed videos by detection method",
		},
		[]string{"method"}, // "ended", "percentage", "stuck_percentage", "stalled_near_end"
	)

	IntentsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_intents_detected_total",
			Help: "Total number of user-intent latches by reason",
		},
		[]string{"reason"},
	)

	FeedbackOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_auto_feedback_outcomes_total",
			Help: "Total number of automatic feedback actions by type and outcome",
		},
		[]string{"type", "outcome"}, // outcome: "confirmed", "overridden"
	)

	// Telemetry Metrics
	TelemetryEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_telemetry_emitted_total",
			Help: "Total number of telemetry events emitted by the engine",
		},
		[]string{"event_type"},
	)

	TelemetryForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_telemetry_forwarded_total",
			Help: "Total number of telemetry events delivered to the scoring service",
		},
		[]string{"event_type", "result"}, // result: "success", "error"
	)

	// Scoring Service Metrics
	ScoringRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedpilot_scoring_request_duration_seconds",
			Help:    "Duration of scoring service requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	ScoringRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_scoring_request_errors_total",
			Help: "Total number of failed scoring service requests",
		},
		[]string{"endpoint", "error_type"}, // error_type: "network", "status", "decode", "circuit_open"
	)

	ScoringRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedpilot_scoring_rate_limited_total",
			Help: "Total number of HTTP 429 responses from the scoring service",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feedpilot_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "channel_status"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedpilot_websocket_connections",
			Help: "Current number of connected host bridges",
		},
	)

	WSMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_websocket_messages_total",
			Help: "Total number of WebSocket messages by direction and type",
		},
		[]string{"direction", "type"}, // direction: "in", "out"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedpilot_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedpilot_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedpilot_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)
)

// RecordEngineEvent records how long one engine event took to handle
func RecordEngineEvent(event string, duration time.Duration) {
	EngineEventDuration.WithLabelValues(event).Observe(duration.Seconds())
}

// RecordHandlerPanic records a recovered handler panic
func RecordHandlerPanic(event string) {
	EngineHandlerPanics.WithLabelValues(event).Inc()
}

// RecordSignalDropped records a dropped signal or event
func RecordSignalDropped(reason string) {
	EngineSignalsDropped.WithLabelValues(reason).Inc()
}

// SetActiveTimers sets the number of armed session timers
func SetActiveTimers(n int) {
	EngineActiveTimers.Set(float64(n))
}

// RecordSessionStarted records a new video session
func RecordSessionStarted() {
	SessionsStarted.Inc()
}

// RecordAction records an actuator command and whether it was delivered
func RecordAction(action, trigger string, err error) {
	ActionsIssued.WithLabelValues(action, trigger, strconv.FormatBool(err == nil)).Inc()
}

// RecordCompletion records a completed video
func RecordCompletion(method string) {
	Completions.WithLabelValues(method).Inc()
}

// RecordIntent records a user-intent latch
func RecordIntent(reason string) {
	IntentsDetected.WithLabelValues(reason).Inc()
}

// RecordFeedbackOutcome records how an automatic feedback action resolved
func RecordFeedbackOutcome(feedbackType, outcome string) {
	FeedbackOutcomes.WithLabelValues(feedbackType, outcome).Inc()
}

// RecordTelemetryEmitted records a telemetry event leaving the engine
func RecordTelemetryEmitted(eventType string) {
	TelemetryEmitted.WithLabelValues(eventType).Inc()
}

// RecordTelemetryForwarded records delivery of a telemetry event to the scoring service
func RecordTelemetryForwarded(eventType string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	TelemetryForwarded.WithLabelValues(eventType, result).Inc()
}

// RecordScoringRequest records a scoring service call. errorType is empty on success.
func RecordScoringRequest(endpoint string, duration time.Duration, errorType string) {
	ScoringRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if errorType != "" {
		ScoringRequestErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}

// RecordScoringRateLimited records an HTTP 429 from the scoring service
func RecordScoringRateLimited() {
	ScoringRateLimited.Inc()
}

// RecordCircuitBreakerTransition records a breaker state change and updates the state gauge.
// States follow gobreaker's ordering: 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, toState int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(toState))
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// TrackWSConnection tracks connected host bridges
func TrackWSConnection(inc bool) {
	if inc {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordWSMessage records a WebSocket message
func RecordWSMessage(direction, msgType string) {
	WSMessages.WithLabelValues(direction, msgType).Inc()
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

// RecordRateLimitHit records a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}
