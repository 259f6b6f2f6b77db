package stableid

import (
	"errors"
	"testing"

	"hexloom/editor/internal/scene"
)

func TestNextEmptyGraph(t *testing.T) {
	g := scene.NewGraph()
	if got := Next(g); got != 0 {
		t.Fatalf("expected 0 on an empty graph, got %d", got)
	}
}

func TestNextSkipsGaps(t *testing.T) {
	g := scene.NewGraph()
	a, _ := g.Spawn(scene.Root)
	b, _ := g.Spawn(scene.Root)
	if err := scene.Attach(g, a, ID(0)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := scene.Attach(g, b, ID(7)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := Next(g); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
}

func TestAssignFreshAndIdempotent(t *testing.T) {
	g := scene.NewGraph()
	a, _ := g.Spawn(scene.Root)
	b, _ := g.Spawn(scene.Root)
	first, err := Assign(g, []scene.ID{a, b})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if first[a] != 0 || first[b] != 1 {
		t.Fatalf("unexpected ids: %v", first)
	}
	second, err := Assign(g, []scene.ID{a, b})
	if err != nil {
		t.Fatalf("assign again: %v", err)
	}
	if second[a] != first[a] || second[b] != first[b] {
		t.Fatalf("assign is not idempotent: %v then %v", first, second)
	}
	if got := Next(g); got != 2 {
		t.Fatalf("expected next 2, got %d", got)
	}
}

func TestAssignMixedBatch(t *testing.T) {
	g := scene.NewGraph()
	old, _ := g.Spawn(scene.Root)
	if err := scene.Attach(g, old, ID(5)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	fresh, _ := g.Spawn(scene.Root)
	got, err := Assign(g, []scene.ID{old, fresh})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got[old] != 5 {
		t.Fatalf("existing id should be kept, got %d", got[old])
	}
	if got[fresh] != 6 {
		t.Fatalf("fresh id should continue past the max, got %d", got[fresh])
	}
}

func TestAssignUnknownObject(t *testing.T) {
	g := scene.NewGraph()
	a, _ := g.Spawn(scene.Root)
	_, err := Assign(g, []scene.ID{a, 999})
	if !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
	if _, ok := scene.Get[ID](g, a); ok {
		t.Fatalf("failed batch must not assign any ids")
	}
}

func TestLookup(t *testing.T) {
	g := scene.NewGraph()
	a, _ := g.Spawn(scene.Root)
	if err := scene.Attach(g, a, ID(3)); err != nil {
		t.Fatalf("attach: %v", err)
	}
	node, ok := Lookup(g, 3)
	if !ok || node != a {
		t.Fatalf("expected node %d, got %d ok=%v", a, node, ok)
	}
	if _, ok := Lookup(g, 4); ok {
		t.Fatalf("expected miss for unused id")
	}
}
