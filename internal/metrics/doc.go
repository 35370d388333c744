// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://127.0.0.1:8765/metrics

# Available Metrics

Engine:
  - feedpilot_engine_event_duration_seconds (histogram, labels: event)
  - feedpilot_engine_handler_panics_total (counter, labels: event)
  - feedpilot_engine_signals_dropped_total (counter, labels: reason)
  - feedpilot_engine_active_timers (gauge)
  - feedpilot_sessions_started_total (counter)

Decisions:
  - feedpilot_actions_total (counter, labels: action, trigger, success)
  - feedpilot_completions_total (counter, labels: method)
  - feedpilot_intents_detected_total (counter, labels: reason)
  - feedpilot_auto_feedback_outcomes_total (counter, labels: type, outcome)

Telemetry and scoring:
  - feedpilot_telemetry_emitted_total / feedpilot_telemetry_forwarded_total
  - feedpilot_scoring_request_duration_seconds (histogram, labels: endpoint)
  - feedpilot_scoring_request_errors_total (counter, labels: endpoint, error_type)
  - feedpilot_circuit_breaker_state (gauge, 0=closed 1=half-open 2=open)

Transport:
  - feedpilot_websocket_connections, feedpilot_websocket_messages_total
  - feedpilot_api_requests_total, feedpilot_api_request_duration_seconds

# Usage

Record helpers are safe for concurrent use:

	metrics.RecordAction("advance", "completion", nil)
	metrics.RecordScoringRequest("/next", time.Since(start), "")
*/
package metrics
