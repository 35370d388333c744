// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler. mw is shared with the handler's
// websocket origin check.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = handler.mw
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi returns the configured chi router.
//
//	GET  /healthz                 liveness
//	GET  /ws                      host page websocket
//	GET  /metrics                 Prometheus
//	GET  /api/v1/state            engine snapshot
//	POST /api/v1/actions/{action} advance, like or dislike
//	POST /api/v1/mood             set mood
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics())

	r.Get("/healthz", router.handler.Health)
	r.Get("/ws", router.handler.WebSocket)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.CORS())
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Get("/state", router.handler.State)
		r.Post("/actions/{action}", router.handler.Action)
		r.Post("/mood", router.handler.Mood)
	})

	return r
}
