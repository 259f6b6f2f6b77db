// Package scene keeps the in-memory object tree for an open map. Nodes
// are cheap integer handles; everything interesting hangs off them as
// typed components. The graph is owned by the session loop goroutine
// and performs no locking of its own.
package scene

import (
	"errors"
	"reflect"
)

// ID identifies a node in a Graph. The zero value addresses the root,
// which always exists. Identifiers are never reused within a Graph.
type ID uint64

// Root is the implicit top node of every Graph.
const Root ID = 0

// ErrUnknownNode reports an operation against a node that was never
// spawned or has been despawned.
var ErrUnknownNode = errors.New("scene: unknown node")

type store map[ID]any

// Graph is an ordered tree of nodes with typed component storage.
// Children keep spawn order, which callers rely on for layer and
// tileset ordering.
type Graph struct {
	next     ID
	parents  map[ID]ID
	children map[ID][]ID
	stores   map[reflect.Type]store
}

// NewGraph returns an empty graph containing only the root node.
func NewGraph() *Graph {
	return &Graph{
		parents:  make(map[ID]ID),
		children: make(map[ID][]ID),
		stores:   make(map[reflect.Type]store),
	}
}

// Spawn creates a node under parent and returns its id.
func (g *Graph) Spawn(parent ID) (ID, error) {
	if !g.Exists(parent) {
		return 0, ErrUnknownNode
	}
	g.next++
	id := g.next
	g.parents[id] = parent
	g.children[parent] = append(g.children[parent], id)
	return id, nil
}

// Exists reports whether id refers to a live node.
func (g *Graph) Exists(id ID) bool {
	if id == Root {
		return true
	}
	_, ok := g.parents[id]
	return ok
}

// Parent returns the parent of id. The root has no parent.
func (g *Graph) Parent(id ID) (ID, bool) {
	parent, ok := g.parents[id]
	return parent, ok
}

// Children returns a copy of the child list of id in spawn order.
func (g *Graph) Children(id ID) []ID {
	kids := g.children[id]
	if len(kids) == 0 {
		return nil
	}
	out := make([]ID, len(kids))
	copy(out, kids)
	return out
}

// Despawn removes a node and its whole subtree along with every
// attached component. Despawning the root is rejected.
func (g *Graph) Despawn(id ID) error {
	if id == Root {
		return errors.New("scene: cannot despawn the root")
	}
	parent, ok := g.parents[id]
	if !ok {
		return ErrUnknownNode
	}
	g.children[parent] = removeID(g.children[parent], id)
	g.drop(id)
	return nil
}

func (g *Graph) drop(id ID) {
	for _, child := range g.children[id] {
		g.drop(child)
	}
	delete(g.children, id)
	delete(g.parents, id)
	for _, s := range g.stores {
		delete(s, id)
	}
}

func removeID(ids []ID, id ID) []ID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Attach sets the component of type T on a node, replacing any value
// already present.
func Attach[T any](g *Graph, id ID, value T) error {
	if !g.Exists(id) {
		return ErrUnknownNode
	}
	key := reflect.TypeOf((*T)(nil)).Elem()
	s, ok := g.stores[key]
	if !ok {
		s = make(store)
		g.stores[key] = s
	}
	s[id] = value
	return nil
}

// Get returns the component of type T attached to a node.
func Get[T any](g *Graph, id ID) (T, bool) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := g.stores[key][id]; ok {
		return v.(T), true
	}
	var zero T
	return zero, false
}

// Detach removes the component of type T from a node, if present.
func Detach[T any](g *Graph, id ID) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	delete(g.stores[key], id)
}

// Each visits every node carrying a component of type T. Iteration
// order is unspecified; callers that need a stable order should walk
// Children instead.
func Each[T any](g *Graph, fn func(ID, T) bool) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	for id, v := range g.stores[key] {
		if !fn(id, v.(T)) {
			return
		}
	}
}
