// Package net assembles the editor's HTTP surface: the websocket
// endpoint plus liveness and status routes.
package net

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/pprof"

	"hexloom/editor/internal/net/ws"
	"hexloom/editor/internal/observability"
	"hexloom/editor/internal/session"
	"hexloom/editor/internal/telemetry"
	"hexloom/editor/logging"
)

type HTTPHandlerConfig struct {
	Logger        telemetry.Logger
	Counters      *telemetry.Counters
	LogRouter     *logging.Router
	Observability observability.Config
}

// NewHTTPHandler builds the route table. `/ws` upgrades editor
// clients, `/healthz` answers liveness probes and `/status` reports
// the session summary plus counters and log router stats.
func NewHTTPHandler(hub *session.Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	mux := nethttp.NewServeMux()

	handler := ws.NewHandler(hub, ws.HandlerConfig{Logger: cfg.Logger})
	mux.HandleFunc("/ws", handler.Handle)

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/status", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status  string               `json:"status"`
			Session session.Status       `json:"session"`
			Metrics map[string]uint64    `json:"metrics,omitempty"`
			Logging *logging.RouterStats `json:"logging,omitempty"`
		}{
			Status:  "ok",
			Session: hub.Status(),
			Metrics: cfg.Counters.Snapshot(),
		}
		if cfg.LogRouter != nil {
			stats := cfg.LogRouter.Stats()
			payload.Logging = &stats
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	if cfg.Observability.EnablePprofTrace {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
