// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/feedpilot/internal/engagement"
	"github.com/tomtom215/feedpilot/internal/logging"
	ws "github.com/tomtom215/feedpilot/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

type fakeEngine struct {
	mu     sync.Mutex
	snap   engagement.Snapshot
	events []engagement.Event
	err    error
}

func (e *fakeEngine) Snapshot() engagement.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

func (e *fakeEngine) Submit(_ context.Context, ev engagement.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, ev)
	return nil
}

func testMiddlewareConfig() *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://www.youtube.com", "chrome-extension://*"}
	return cfg
}

func newTestRouter(engine Engine, hub *ws.Hub, cfg *ChiMiddlewareConfig) http.Handler {
	mw := NewChiMiddleware(cfg)
	return NewRouter(NewHandler(engine, hub, mw), mw).SetupChi()
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
		Meta    *APIMeta        `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return APIResponse{Success: raw.Success, Error: raw.Error, Meta: raw.Meta}
}

func TestStateReturnsSnapshot(t *testing.T) {
	engine := &fakeEngine{snap: engagement.Snapshot{VideoID: "abc", ChannelID: "UC1", Mood: engagement.MoodHappy, WatchedPercent: 42}}
	h := newTestRouter(engine, nil, testMiddlewareConfig())

	rec := serve(t, h, http.MethodGet, "/api/v1/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}

	var snap engagement.Snapshot
	resp := decodeResponse(t, rec, &snap)
	if !resp.Success || resp.Meta == nil || resp.Meta.RequestID == "" {
		t.Errorf("envelope = %+v", resp)
	}
	if snap.VideoID != "abc" || snap.Mood != engagement.MoodHappy || snap.WatchedPercent != 42 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := newTestRouter(&fakeEngine{}, nil, testMiddlewareConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Errorf("X-Request-Id = %q, want req-123", got)
	}
	if resp := decodeResponse(t, rec, nil); resp.Meta.RequestID != "req-123" {
		t.Errorf("meta.request_id = %q", resp.Meta.RequestID)
	}
}

func TestActionEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   engagement.Event
	}{
		{"advance", "/api/v1/actions/advance", http.StatusAccepted, engagement.RequestAction{Action: engagement.ActionAdvance}},
		{"like", "/api/v1/actions/like", http.StatusAccepted, engagement.RequestAction{Action: engagement.ActionLike}},
		{"dislike upper case", "/api/v1/actions/DISLIKE", http.StatusAccepted, engagement.RequestAction{Action: engagement.ActionDislike}},
		{"unknown action", "/api/v1/actions/subscribe", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			rec := serve(t, newTestRouter(engine, nil, testMiddlewareConfig()), http.MethodPost, tt.path, "")
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.want == nil {
				if len(engine.events) != 0 {
					t.Errorf("submitted %v", engine.events)
				}
				return
			}
			if len(engine.events) != 1 || engine.events[0] != tt.want {
				t.Errorf("submitted %v, want %v", engine.events, tt.want)
			}
		})
	}
}

func TestActionEngineStopped(t *testing.T) {
	engine := &fakeEngine{err: engagement.ErrStopped}
	rec := serve(t, newTestRouter(engine, nil, testMiddlewareConfig()), http.MethodPost, "/api/v1/actions/like", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp := decodeResponse(t, rec, nil); resp.Success || resp.Error == nil || resp.Error.Code != "ENGINE_STOPPED" {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestMoodEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"known mood", `{"mood":"Curious"}`, http.StatusAccepted},
		{"unknown mood", `{"mood":"sleepy"}`, http.StatusBadRequest},
		{"missing mood", `{}`, http.StatusBadRequest},
		{"malformed", `{"mood":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			rec := serve(t, newTestRouter(engine, nil, testMiddlewareConfig()), http.MethodPost, "/api/v1/mood", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusAccepted {
				want := engagement.MoodChanged{Mood: engagement.MoodCurious}
				if len(engine.events) != 1 || engine.events[0] != want {
					t.Errorf("submitted %v, want %v", engine.events, want)
				}
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeEngine{}, nil, testMiddlewareConfig()), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var health HealthStatus
	decodeResponse(t, rec, &health)
	if health.Status != "healthy" || health.ConnectedPages != 0 {
		t.Errorf("health = %+v", health)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeEngine{}, nil, testMiddlewareConfig())
	serve(t, h, http.MethodGet, "/api/v1/state", "")

	rec := serve(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `endpoint="/api/v1/state"`) {
		t.Error("request metrics missing route pattern label")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testMiddlewareConfig()
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	h := newTestRouter(&fakeEngine{}, nil, cfg)

	for i := 0; i < 2; i++ {
		if rec := serve(t, h, http.MethodGet, "/api/v1/state", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := serve(t, h, http.MethodGet, "/api/v1/state", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp := decodeResponse(t, rec, nil); resp.Error == nil || resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("envelope = %+v", resp)
	}

	// health is outside the limited group
	if rec := serve(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&fakeEngine{}, nil, testMiddlewareConfig())

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://www.youtube.com", true},
		{"chrome-extension://abcdef", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if (got == tt.origin) != tt.allowed {
				t.Errorf("Access-Control-Allow-Origin = %q, allowed = %v", got, tt.allowed)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	mw := NewChiMiddleware(testMiddlewareConfig())
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://www.youtube.com", true},
		{"https://youtube.com", false},
		{"chrome-extension://abc", true},
		{"chrome-extension://", true},
		{"moz-extension://abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := mw.OriginAllowed(tt.origin); got != tt.want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}

	if !NewChiMiddleware(&ChiMiddlewareConfig{CORSAllowedOrigins: []string{"*"}}).OriginAllowed("http://anything") {
		t.Error("wildcard origin should allow everything")
	}
}

func startHub(t *testing.T) *ws.Hub {
	t.Helper()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	server := httptest.NewServer(newTestRouter(&fakeEngine{}, hub, testMiddlewareConfig()))
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	t.Run("allowed origin", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://www.youtube.com"}})
		if err != nil {
			t.Fatalf("Dial() error = %v", err)
		}
		defer conn.Close()
		if resp.StatusCode != http.StatusSwitchingProtocols {
			t.Errorf("status = %d, want 101", resp.StatusCode)
		}

		deadline := time.Now().Add(time.Second)
		for hub.GetClientCount() != 1 && time.Now().Before(deadline) {
			time.Sleep(2 * time.Millisecond)
		}
		if hub.GetClientCount() != 1 {
			t.Fatalf("client count = %d, want 1", hub.GetClientCount())
		}
	})

	for _, origin := range []string{"", "https://evil.example"} {
		t.Run("rejected origin "+origin, func(t *testing.T) {
			header := http.Header{}
			if origin != "" {
				header.Set("Origin", origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if err == nil {
				conn.Close()
				t.Fatal("expected handshake failure")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %v, want 403", resp)
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeEngine{}, nil, testMiddlewareConfig()).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
