package session

import (
	"log"

	"hexloom/editor/internal/journal"
	"hexloom/editor/internal/storage"
	"hexloom/editor/internal/telemetry"
	"hexloom/editor/logging"
)

// Deps carries the shared infrastructure the hub depends on. Store may
// be nil, in which case persistence commands fail with ErrNoWorkspace.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
	Store     *storage.Store
	Journal   *journal.Journal
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	d.Metrics = telemetry.WrapMetrics(d.Metrics)
	if d.Clock == nil {
		d.Clock = logging.SystemClock{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	if d.Journal == nil {
		d.Journal = journal.New(0, 0)
	}
	return d
}
