package editor

import (
	"context"

	"hexloom/editor/logging"
)

const (
	// EventMapCreated is emitted when a fresh map replaces the session.
	EventMapCreated logging.EventType = "editor.map_created"
	// EventMapClosed is emitted when the open map is torn down.
	EventMapClosed logging.EventType = "editor.map_closed"
	// EventLayerCreated is emitted when a layer is added to the map.
	EventLayerCreated logging.EventType = "editor.layer_created"
	// EventTilesetCreated is emitted when an empty tileset is added.
	EventTilesetCreated logging.EventType = "editor.tileset_created"
	// EventTilesetDeleted is emitted when a tileset and its placements
	// are removed.
	EventTilesetDeleted logging.EventType = "editor.tileset_deleted"
	// EventTilePlaced is emitted for each stamped tile.
	EventTilePlaced logging.EventType = "editor.tile_placed"
	// EventTileErased is emitted for each erased placement.
	EventTileErased logging.EventType = "editor.tile_erased"
	// EventCommandDropped is emitted when the command buffer overflows
	// and the oldest command is discarded.
	EventCommandDropped logging.EventType = "editor.command_dropped"
)

// MapCreatedPayload describes the new map's grid.
type MapCreatedPayload struct {
	Orientation string `json:"orientation"`
}

// MapClosedPayload records whether unsaved work was discarded.
type MapClosedPayload struct {
	UnsavedChanges bool `json:"unsavedChanges"`
}

// LayerCreatedPayload names the new layer.
type LayerCreatedPayload struct {
	Name string `json:"name"`
}

// TilesetCreatedPayload names the new tileset.
type TilesetCreatedPayload struct {
	Name string `json:"name"`
}

// TilesetDeletedPayload counts the placements erased with a tileset.
type TilesetDeletedPayload struct {
	Name   string `json:"name"`
	Erased int    `json:"erased"`
}

// TilePlacedPayload locates a stamped tile.
type TilePlacedPayload struct {
	Layer string `json:"layer"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// TileErasedPayload locates an erased placement.
type TileErasedPayload struct {
	Layer string `json:"layer"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// CommandDroppedPayload reports a discarded command and the running
// overflow total.
type CommandDroppedPayload struct {
	Op      string `json:"op"`
	Dropped uint64 `json:"dropped"`
}

// MapCreated publishes a map creation event.
func MapCreated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MapCreatedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMapCreated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// MapClosed publishes a map close event.
func MapClosed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MapClosedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMapClosed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// LayerCreated publishes a layer creation event.
func LayerCreated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LayerCreatedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLayerCreated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// TilesetCreated publishes a tileset creation event.
func TilesetCreated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TilesetCreatedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTilesetCreated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// TilesetDeleted publishes a tileset deletion event.
func TilesetDeleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TilesetDeletedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTilesetDeleted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// TilePlaced publishes a placement event. Placement chatter is debug
// severity so the default configuration filters it out.
func TilePlaced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TilePlacedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTilePlaced,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// TileErased publishes an erase event at debug severity.
func TileErased(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TileErasedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTileErased,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}

// CommandDropped publishes a buffer overflow warning.
func CommandDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandDropped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEditor,
		Payload:  payload,
		Extra:    extra,
	})
}
