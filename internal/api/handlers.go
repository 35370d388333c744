// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
	"github.com/tomtom215/feedpilot/internal/validation"
	ws "github.com/tomtom215/feedpilot/internal/websocket"
)

const maxRequestBody = 4 << 10

// Engine is the part of the engagement engine the HTTP surface needs.
type Engine interface {
	Snapshot() engagement.Snapshot
	Submit(ctx context.Context, ev engagement.Event) error
}

// Handler serves the local HTTP endpoints.
type Handler struct {
	engine    Engine
	hub       *ws.Hub
	mw        *ChiMiddleware
	startTime time.Time
}

// NewHandler creates a handler. hub may be nil, in which case /ws answers 503.
func NewHandler(engine Engine, hub *ws.Hub, mw *ChiMiddleware) *Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Handler{
		engine:    engine,
		hub:       hub,
		mw:        mw,
		startTime: time.Now(),
	}
}

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status         string  `json:"status"`
	ConnectedPages int     `json:"connected_pages"`
	Uptime         float64 `json:"uptime_seconds"`
}

// Health reports liveness and how many host pages are connected.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	pages := 0
	if h.hub != nil {
		pages = h.hub.GetClientCount()
	}
	respondData(w, r, http.StatusOK, HealthStatus{
		Status:         "healthy",
		ConnectedPages: pages,
		Uptime:         time.Since(h.startTime).Seconds(),
	})
}

// State returns the engine's latest snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.engine.Snapshot())
}

// Action requests advance, like or dislike on the current item.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	action, ok := engagement.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_ACTION", "Action must be advance, like or dislike", nil)
		return
	}
	h.submit(w, r, engagement.RequestAction{Action: action})
}

// MoodRequest is the body of POST /api/v1/mood.
type MoodRequest struct {
	Mood string `json:"mood" validate:"required,mood"`
}

// Mood changes the viewer's mood.
func (h *Handler) Mood(w http.ResponseWriter, r *http.Request) {
	var req MoodRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}
	mood, _ := engagement.ParseMood(req.Mood)
	h.submit(w, r, engagement.MoodChanged{Mood: mood})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, ev engagement.Event) {
	if err := h.engine.Submit(r.Context(), ev); err != nil {
		if errors.Is(err, engagement.ErrStopped) {
			respondError(w, r, http.StatusServiceUnavailable, "ENGINE_STOPPED", "Engine is not running", err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "SUBMIT_FAILED", "Event was not accepted", err)
		return
	}
	respondData(w, r, http.StatusAccepted, nil)
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts only browsers on a configured origin. Browser
// websockets always send Origin, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.mw.OriginAllowed(origin) {
		return true
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the host page connection and hands it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		respondError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
