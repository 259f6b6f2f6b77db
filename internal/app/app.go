// Package app wires the editor process together: configuration,
// logging, the session hub and loop, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hexloom/editor/internal/journal"
	editornet "hexloom/editor/internal/net"
	"hexloom/editor/internal/observability"
	"hexloom/editor/internal/session"
	"hexloom/editor/internal/storage"
	"hexloom/editor/internal/telemetry"
	"hexloom/editor/logging"
	loggingSinks "hexloom/editor/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger        telemetry.Logger
	Observability observability.Config
}

// Run starts the editor and blocks until ctx is cancelled or the HTTP
// server fails. Shutdown drains the HTTP server with a timeout, stops
// the tick loop and flushes the logging router.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	settings := loadSettings(logger)

	observabilityCfg := cfg.Observability
	if raw := os.Getenv("HEXLOOM_PPROF_TRACE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprofTrace = value
		} else {
			logger.Printf("invalid HEXLOOM_PPROF_TRACE=%q: %v", raw, err)
		}
	}

	store, err := storage.Open(settings.workspace)
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	logger.Printf("workspace rooted at %s", store.Root())

	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = settings.logSinks
	logCfg.MinimumSeverity = severityFromLevel(settings.logLevel)
	if logCfg.HasSink("json") {
		logCfg.JSON.FilePath = filepath.Join(settings.logDir, "editor.log.json")
		logCfg.JSON.MaxSizeMB = settings.logMaxSizeMB
		logCfg.JSON.MaxBackups = settings.logMaxBackups
		logCfg.JSON.MaxAgeDays = settings.logMaxAgeDays
		logCfg.JSON.Compress = settings.logCompress
	}

	var namedSinks []logging.NamedSink
	if logCfg.HasSink("console") {
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "console",
			Sink: loggingSinks.NewConsoleSink(os.Stdout, logCfg.Console),
		})
	}
	if logCfg.HasSink("json") {
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSONFile(logCfg.JSON),
		})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	hub := session.NewHub(session.Deps{
		Logger:    logger,
		Metrics:   counters,
		Clock:     logging.SystemClock{},
		Publisher: router,
		Store:     store,
		Journal:   journal.New(journal.DefaultCapacity, 0),
	}, settings.commandBuffer)

	loop := session.NewLoop(hub, session.LoopConfig{TickRate: settings.tickRate}, session.Hooks{})
	stop := make(chan struct{})
	go loop.Run(stop)
	defer close(stop)

	if settings.autoloadMap != "" {
		cmd := session.Command{
			Type: session.CommandLoadMap,
			Load: &session.LoadMapCommand{Path: settings.autoloadMap},
		}
		if err := hub.Enqueue(cmd); err != nil {
			logger.Printf("failed to queue autoload of %q: %v", settings.autoloadMap, err)
		} else {
			logger.Printf("autoloading map %s", settings.autoloadMap)
		}
	}

	handler := editornet.NewHTTPHandler(hub, editornet.HTTPHandlerConfig{
		Logger:        logger,
		Counters:      counters,
		LogRouter:     router,
		Observability: observabilityCfg,
	})

	srv := &http.Server{Addr: settings.addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Printf("editor listening on %s", srv.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	return nil
}
