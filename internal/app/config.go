package app

import (
	"os"
	"strconv"
	"strings"

	"hexloom/editor/internal/telemetry"
	"hexloom/editor/logging"
)

const (
	defaultAddr          = ":8080"
	defaultWorkspace     = "workspace"
	defaultTickRate      = 15
	defaultCommandBuffer = 256
	defaultLogDir        = "logs"
)

// settings is the environment-driven runtime configuration. Every knob
// has a fallback; parse errors are logged and the fallback kept.
type settings struct {
	addr          string
	workspace     string
	tickRate      int
	commandBuffer int
	autoloadMap   string
	logLevel      string
	logSinks      []string
	logDir        string
	logMaxSizeMB  int
	logMaxBackups int
	logMaxAgeDays int
	logCompress   bool
}

func loadSettings(logger telemetry.Logger) settings {
	defaults := logging.DefaultConfig()
	s := settings{
		addr:          envString("HEXLOOM_ADDR", defaultAddr),
		workspace:     envString("HEXLOOM_WORKSPACE", defaultWorkspace),
		tickRate:      envInt(logger, "HEXLOOM_TICK_RATE", defaultTickRate),
		commandBuffer: envInt(logger, "HEXLOOM_COMMAND_BUFFER", defaultCommandBuffer),
		autoloadMap:   envString("HEXLOOM_MAP", ""),
		logLevel:      envString("HEXLOOM_LOG_LEVEL", "info"),
		logSinks:      defaults.EnabledSinks,
		logDir:        envString("HEXLOOM_LOG_DIR", defaultLogDir),
		logMaxSizeMB:  envInt(logger, "HEXLOOM_LOG_MAX_SIZE_MB", defaults.JSON.MaxSizeMB),
		logMaxBackups: envInt(logger, "HEXLOOM_LOG_MAX_BACKUPS", defaults.JSON.MaxBackups),
		logMaxAgeDays: envInt(logger, "HEXLOOM_LOG_MAX_AGE_DAYS", defaults.JSON.MaxAgeDays),
		logCompress:   envBool(logger, "HEXLOOM_LOG_COMPRESS", defaults.JSON.Compress),
	}
	if raw := os.Getenv("HEXLOOM_LOG_SINKS"); raw != "" {
		var names []string
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			s.logSinks = names
		}
	}
	if s.tickRate < 1 {
		logger.Printf("invalid HEXLOOM_TICK_RATE=%d, using %d", s.tickRate, defaultTickRate)
		s.tickRate = defaultTickRate
	}
	if s.commandBuffer < 1 {
		logger.Printf("invalid HEXLOOM_COMMAND_BUFFER=%d, using %d", s.commandBuffer, defaultCommandBuffer)
		s.commandBuffer = defaultCommandBuffer
	}
	return s
}

func envString(key, fallback string) string {
	if raw := os.Getenv(key); raw != "" {
		return raw
	}
	return fallback
}

func envInt(logger telemetry.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Printf("invalid %s=%q: %v", key, raw, err)
		return fallback
	}
	return value
}

func envBool(logger telemetry.Logger, key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Printf("invalid %s=%q: %v", key, raw, err)
		return fallback
	}
	return value
}

// severityFromLevel maps the shared log-level knob onto the event
// router's severity floor.
func severityFromLevel(level string) logging.Severity {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return logging.SeverityDebug
	case "warn", "warning":
		return logging.SeverityWarn
	case "error", "fatal", "panic":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
