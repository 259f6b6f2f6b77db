package persistence

import (
	"context"

	"hexloom/editor/logging"
)

const (
	// EventSaveStarted is emitted when a map save task is spawned.
	EventSaveStarted logging.EventType = "persistence.save_started"
	// EventSaveFinished is emitted when a save task completes.
	EventSaveFinished logging.EventType = "persistence.save_finished"
	// EventSaveFailed is emitted when a save task errors.
	EventSaveFailed logging.EventType = "persistence.save_failed"
	// EventLoadStarted is emitted when a map load task is spawned.
	EventLoadStarted logging.EventType = "persistence.load_started"
	// EventLoadFinished is emitted when a load task completes and the
	// document has been instantiated.
	EventLoadFinished logging.EventType = "persistence.load_finished"
	// EventLoadFailed is emitted when a load task errors.
	EventLoadFailed logging.EventType = "persistence.load_failed"
	// EventTileSkipped is emitted for each placement dropped during
	// instantiation because its reference did not resolve.
	EventTileSkipped logging.EventType = "persistence.tile_skipped"
	// EventImportStarted is emitted when a tileset file import task is
	// spawned.
	EventImportStarted logging.EventType = "persistence.import_started"
	// EventImportFinished is emitted when an imported tileset has been
	// spawned into the session.
	EventImportFinished logging.EventType = "persistence.import_finished"
	// EventImportFailed is emitted when a tileset import errors.
	EventImportFailed logging.EventType = "persistence.import_failed"
	// EventExportStarted is emitted when a tileset export task is
	// spawned.
	EventExportStarted logging.EventType = "persistence.export_started"
	// EventExportFinished is emitted when a tileset file has been
	// written.
	EventExportFinished logging.EventType = "persistence.export_finished"
	// EventExportFailed is emitted when a tileset export errors.
	EventExportFailed logging.EventType = "persistence.export_failed"
)

// SaveStartedPayload names the file being written.
type SaveStartedPayload struct {
	Path string `json:"path"`
}

// SaveFinishedPayload captures the outcome of a completed save.
type SaveFinishedPayload struct {
	Path           string `json:"path"`
	Bytes          int    `json:"bytes"`
	DurationMillis int64  `json:"durationMillis"`
}

// SaveFailedPayload captures why a save was not written.
type SaveFailedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LoadStartedPayload names the file being read.
type LoadStartedPayload struct {
	Path string `json:"path"`
}

// LoadFinishedPayload summarizes what a load brought into the session.
type LoadFinishedPayload struct {
	Path       string `json:"path"`
	Tilesets   int    `json:"tilesets"`
	Layers     int    `json:"layers"`
	Placements int    `json:"placements"`
	Skipped    int    `json:"skipped,omitempty"`
}

// LoadFailedPayload captures why a load was abandoned.
type LoadFailedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// TileSkippedPayload locates a placement dropped during instantiation.
type TileSkippedPayload struct {
	Layer  string `json:"layer"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportStartedPayload names the tileset file being read.
type ImportStartedPayload struct {
	Path string `json:"path"`
}

// ImportFinishedPayload describes the tileset added to the session.
type ImportFinishedPayload struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Tiles int    `json:"tiles"`
}

// ImportFailedPayload captures why an import was abandoned.
type ImportFailedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ExportStartedPayload names the tileset and its destination file.
type ExportStartedPayload struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ExportFinishedPayload describes a written tileset file.
type ExportFinishedPayload struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// ExportFailedPayload captures why an export was not written.
type ExportFailedPayload struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SaveStarted publishes a save start event.
func SaveStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SaveStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// SaveFinished publishes a save completion event.
func SaveFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SaveFinishedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveFinished,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// SaveFailed publishes a save failure event.
func SaveFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SaveFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// LoadStarted publishes a load start event.
func LoadStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoadStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// LoadFinished publishes a load completion event.
func LoadFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadFinishedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoadFinished,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// LoadFailed publishes a load failure event.
func LoadFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoadFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// TileSkipped publishes a dropped-placement event.
func TileSkipped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TileSkippedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTileSkipped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ImportStarted publishes an import start event.
func ImportStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ImportStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventImportStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ImportFinished publishes an import completion event.
func ImportFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ImportFinishedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventImportFinished,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ImportFailed publishes an import failure event.
func ImportFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ImportFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventImportFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ExportStarted publishes an export start event.
func ExportStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExportStartedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExportStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ExportFinished publishes an export completion event.
func ExportFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExportFinishedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExportFinished,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}

// ExportFailed publishes an export failure event.
func ExportFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExportFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExportFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  payload,
		Extra:    extra,
	})
}
