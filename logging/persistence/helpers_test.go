package persistence

import (
	"context"
	"testing"

	"hexloom/editor/logging"
)

func capture(events *[]logging.Event) logging.Publisher {
	return logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		*events = append(*events, event)
	})
}

func TestHelpersTagEvents(t *testing.T) {
	var events []logging.Event
	pub := capture(&events)
	ctx := context.Background()
	actor := logging.EntityRef{ID: "s1", Kind: logging.EntityKindSession}

	SaveStarted(ctx, pub, 1, actor, SaveStartedPayload{Path: "maps/a.map.json"}, nil)
	SaveFailed(ctx, pub, 2, actor, SaveFailedPayload{Path: "maps/a.map.json", Reason: "boom"}, nil)
	TileSkipped(ctx, pub, 3, actor, TileSkippedPayload{Layer: "ground", Index: 4, Reason: "unknown tileset"}, nil)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Type != EventSaveStarted || events[0].Severity != logging.SeverityInfo {
		t.Fatalf("unexpected save_started event %+v", events[0])
	}
	if events[1].Type != EventSaveFailed || events[1].Severity != logging.SeverityError {
		t.Fatalf("failures should be errors, got %+v", events[1])
	}
	if events[2].Type != EventTileSkipped || events[2].Severity != logging.SeverityWarn {
		t.Fatalf("skips should be warnings, got %+v", events[2])
	}
	for i, event := range events {
		if event.Category != logging.CategoryPersistence {
			t.Fatalf("event %d has category %q", i, event.Category)
		}
	}
	payload, ok := events[2].Payload.(TileSkippedPayload)
	if !ok || payload.Index != 4 {
		t.Fatalf("unexpected skip payload %+v", events[2].Payload)
	}
}

func TestHelpersIgnoreNilPublisher(t *testing.T) {
	LoadStarted(context.Background(), nil, 1, logging.EntityRef{}, LoadStartedPayload{}, nil)
	LoadFailed(context.Background(), nil, 1, logging.EntityRef{}, LoadFailedPayload{}, nil)
}
