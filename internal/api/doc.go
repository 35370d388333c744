// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

/*
Package api provides the local HTTP surface of the engine.

The host page connects on /ws; everything it sends travels over that socket.
The /api/v1 routes let a popup or a script read the engine state and request
actions without a page connection. /healthz and /metrics serve operators.

Middleware stack, outermost first:

  - RequestIDWithLogging: request ID doubling as the logging correlation ID
  - chi RealIP and Recoverer
  - PrometheusMetrics: request count, latency and in-flight gauge by route
  - /api/v1 only: go-chi/cors, go-chi/httprate per-IP limit, security headers

Responses use a common envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
*/
package api
