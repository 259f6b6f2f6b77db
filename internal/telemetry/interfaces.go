package telemetry

// Logger matches the subset of log-style loggers the editor relies on.
// Both *log.Logger and logrus satisfy it directly.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts a plain function to the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf forwards to the wrapped function when it is non-nil.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f != nil {
		f(format, args...)
	}
}

// Metrics captures the counters the editor session exposes. Callers
// that do not care can pass nil and use WrapMetrics.
type Metrics interface {
	// Add increments the named counter by delta.
	Add(name string, delta uint64)
	// Store replaces the named gauge with value.
	Store(name string, value uint64)
}

// WrapLogger returns logger unchanged when non-nil, otherwise a logger
// that discards everything. Keeps call sites free of nil checks.
func WrapLogger(logger Logger) Logger {
	if logger == nil {
		return LoggerFunc(func(string, ...any) {})
	}
	return logger
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// WrapMetrics returns metrics unchanged when non-nil, otherwise a
// sink that drops every sample.
func WrapMetrics(metrics Metrics) Metrics {
	if metrics == nil {
		return nopMetrics{}
	}
	return metrics
}
