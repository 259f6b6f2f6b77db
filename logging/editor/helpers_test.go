package editor

import (
	"context"
	"testing"

	"hexloom/editor/logging"
)

func TestPlacementChatterIsDebug(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		events = append(events, event)
	})
	actor := logging.EntityRef{ID: "s1", Kind: logging.EntityKindSession}

	TilePlaced(context.Background(), pub, 1, actor, TilePlacedPayload{Layer: "ground", X: 2, Y: -1}, nil)
	TileErased(context.Background(), pub, 2, actor, TileErasedPayload{Layer: "ground", X: 2, Y: -1}, nil)
	TilesetDeleted(context.Background(), pub, 3, actor, TilesetDeletedPayload{Name: "terrain", Erased: 5}, nil)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Severity != logging.SeverityDebug || events[1].Severity != logging.SeverityDebug {
		t.Fatalf("placement events should be debug, got %+v", events[:2])
	}
	if events[2].Type != EventTilesetDeleted || events[2].Severity != logging.SeverityInfo {
		t.Fatalf("unexpected tileset_deleted event %+v", events[2])
	}
	for i, event := range events {
		if event.Category != logging.CategoryEditor {
			t.Fatalf("event %d has category %q", i, event.Category)
		}
	}
}
