package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hexloom/editor/internal/session"
	"hexloom/editor/internal/storage"
	"hexloom/editor/internal/telemetry"
)

func newTestHandler(t *testing.T) (http.Handler, *session.Hub, *telemetry.Counters) {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	counters := telemetry.NewCounters()
	hub := session.NewHub(session.Deps{
		Logger:  telemetry.LoggerFunc(func(string, ...any) {}),
		Metrics: counters,
		Store:   store,
	}, 16)
	handler := NewHTTPHandler(hub, HTTPHandlerConfig{
		Logger:   telemetry.LoggerFunc(func(string, ...any) {}),
		Counters: counters,
	})
	return handler, hub, counters
}

func TestHTTPHealthz(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("expected Content-Type text/plain, got %q", ct)
	}
}

func TestHTTPStatusReportsSession(t *testing.T) {
	handler, hub, counters := newTestHandler(t)

	if err := hub.Enqueue(session.Command{Type: session.CommandNewMap}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	hub.Advance(time.Now(), 1, 1.0/15)
	counters.Store("clients_connected", 0)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 OK, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var payload struct {
		Status  string            `json:"status"`
		Session session.Status    `json:"session"`
		Metrics map[string]uint64 `json:"metrics"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode status payload: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("expected status ok, got %q", payload.Status)
	}
	if !payload.Session.MapOpen {
		t.Fatalf("expected an open map in the status payload")
	}
	if payload.Session.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", payload.Session.Tick)
	}
	if payload.Session.Tilesets != 1 || payload.Session.Layers != 1 {
		t.Fatalf("expected default tileset and layer, got %d/%d", payload.Session.Tilesets, payload.Session.Layers)
	}
	if _, ok := payload.Metrics["clients_connected"]; !ok {
		t.Fatalf("expected metrics in the status payload, got %v", payload.Metrics)
	}
}

func TestHTTPWebsocketRoute(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if frame["type"] != "welcome" {
		t.Fatalf("expected a welcome frame first, got %v", frame["type"])
	}
}
