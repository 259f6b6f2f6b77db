package scene

import (
	"errors"
	"testing"
)

type label struct {
	Name string
}

type counter struct {
	Hits int
}

func TestSpawnKeepsChildOrder(t *testing.T) {
	g := NewGraph()
	var want []ID
	for i := 0; i < 5; i++ {
		id, err := g.Spawn(Root)
		if err != nil {
			t.Fatalf("spawn: %v", err)
		}
		want = append(want, id)
	}
	got := g.Children(Root)
	if len(got) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("child %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSpawnUnknownParent(t *testing.T) {
	g := NewGraph()
	if _, err := g.Spawn(99); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestIdsNeverReused(t *testing.T) {
	g := NewGraph()
	first, _ := g.Spawn(Root)
	if err := g.Despawn(first); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	second, _ := g.Spawn(Root)
	if second == first {
		t.Fatalf("node id %d was reused", first)
	}
}

func TestDespawnSubtree(t *testing.T) {
	g := NewGraph()
	layer, _ := g.Spawn(Root)
	tile, _ := g.Spawn(layer)
	if err := Attach(g, tile, label{Name: "grass"}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := g.Despawn(layer); err != nil {
		t.Fatalf("despawn: %v", err)
	}
	if g.Exists(layer) || g.Exists(tile) {
		t.Fatalf("subtree should be gone")
	}
	if _, ok := Get[label](g, tile); ok {
		t.Fatalf("component should be dropped with its node")
	}
	if err := g.Despawn(layer); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestDespawnRootRejected(t *testing.T) {
	g := NewGraph()
	if err := g.Despawn(Root); err == nil {
		t.Fatalf("expected an error despawning the root")
	}
}

func TestAttachReplaces(t *testing.T) {
	g := NewGraph()
	id, _ := g.Spawn(Root)
	if err := Attach(g, id, counter{Hits: 1}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := Attach(g, id, counter{Hits: 2}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	got, ok := Get[counter](g, id)
	if !ok || got.Hits != 2 {
		t.Fatalf("expected replaced component, got %+v ok=%v", got, ok)
	}
	Detach[counter](g, id)
	if _, ok := Get[counter](g, id); ok {
		t.Fatalf("component should be detached")
	}
}

func TestAttachUnknownNode(t *testing.T) {
	g := NewGraph()
	if err := Attach(g, 42, label{}); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestEachVisitsAll(t *testing.T) {
	g := NewGraph()
	seen := make(map[ID]string)
	for _, name := range []string{"a", "b", "c"} {
		id, _ := g.Spawn(Root)
		if err := Attach(g, id, label{Name: name}); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}
	Each(g, func(id ID, l label) bool {
		seen[id] = l.Name
		return true
	})
	if len(seen) != 3 {
		t.Fatalf("expected 3 visits, got %d", len(seen))
	}
}

func TestParent(t *testing.T) {
	g := NewGraph()
	layer, _ := g.Spawn(Root)
	tile, _ := g.Spawn(layer)
	parent, ok := g.Parent(tile)
	if !ok || parent != layer {
		t.Fatalf("expected parent %d, got %d ok=%v", layer, parent, ok)
	}
	if _, ok := g.Parent(Root); ok {
		t.Fatalf("root should have no parent")
	}
}
