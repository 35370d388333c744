// Feedpilot - Short-form Feed Engagement Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedpilot

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// serveHub upgrades every request into a hub client.
func serveHub(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		client := NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

// dialWebSocket establishes a WebSocket connection to the test server
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readWire(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

func TestNewClient(t *testing.T) {
	hub := NewHub()
	a, b := NewClient(hub, nil), NewClient(hub, nil)
	if b.ID() <= a.ID() {
		t.Errorf("IDs not increasing: %d then %d", a.ID(), b.ID())
	}
	if cap(a.send) != 256 {
		t.Errorf("send capacity = %d, want 256", cap(a.send))
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := startHub(t)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	if msg := readWire(t, conn); msg.Type != MessageTypePong {
		t.Errorf("got %q, want pong", msg.Type)
	}
}

func TestClient_InboundDispatched(t *testing.T) {
	hub := startHub(t)
	handler := &recordingHandler{msgs: make(chan InboundMessage, 4)}
	hub.SetHandler(handler)
	conn := dialWebSocket(t, serveHub(t, hub))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"video_changed","data":{"video_id":"abc"}}`)); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-handler.msgs:
		if msg.Type != "video_changed" || !strings.Contains(string(msg.Data), `"abc"`) {
			t.Errorf("handler got %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not dispatched")
	}
}

func TestClient_RejectedMessageReported(t *testing.T) {
	hub := startHub(t)
	hub.SetHandler(&recordingHandler{msgs: make(chan InboundMessage, 4), err: errors.New("unknown message type")})
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)); err != nil {
		t.Fatal(err)
	}
	msg := readWire(t, conn)
	if msg.Type != MessageTypeError {
		t.Fatalf("got %q, want error", msg.Type)
	}
	var data ErrorData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Type != "bogus" || data.Error != "unknown message type" {
		t.Errorf("error data = %+v", data)
	}
}

func TestClient_MalformedMessage(t *testing.T) {
	hub := startHub(t)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}
	if msg := readWire(t, conn); msg.Type != MessageTypeError {
		t.Errorf("got %q, want error", msg.Type)
	}
}

func TestClient_BroadcastDelivered(t *testing.T) {
	hub := startHub(t)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	hub.BroadcastJSON(MessageTypeCommand, map[string]string{"action": "advance", "video_id": "abc"})
	msg := readWire(t, conn)
	if msg.Type != MessageTypeCommand || string(msg.Data) != `{"action":"advance","video_id":"abc"}` {
		t.Errorf("got %s %s", msg.Type, msg.Data)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitForClients(t, hub, 0)
}

func TestClient_HubShutdownClosesConnection(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	conn := dialWebSocket(t, serveHub(t, hub))
	waitForClients(t, hub, 1)

	cancel()
	<-done

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to be closed after hub shutdown")
	}
}
