// Package stableid hands out the persistent identifiers that survive a
// save/load round trip. Scene node ids are runtime-only; anything that
// must be referenced from disk carries a stableid.ID component instead.
package stableid

import (
	"errors"

	"hexloom/editor/internal/scene"
)

// ID is a persistent, non-negative object identifier. It is stable
// across save and load, unlike scene node ids.
type ID int

// ErrUnknownObject reports an assignment request naming a scene node
// that does not exist.
var ErrUnknownObject = errors.New("stableid: unknown object")

// Next returns the id the next assignment would use: one past the
// highest id attached anywhere in the graph, or zero on an empty
// graph. It is recomputed from the live graph every time so that
// loading a document can never collide with later assignments.
func Next(g *scene.Graph) ID {
	next := ID(0)
	scene.Each(g, func(_ scene.ID, id ID) bool {
		if id >= next {
			next = id + 1
		}
		return true
	})
	return next
}

// Assign gives every listed node a stable id and returns the full
// node-to-id mapping for the batch. Nodes that already carry an id
// keep it; the rest receive sequential fresh ids. If any node does not
// exist the graph is left untouched and ErrUnknownObject is returned.
func Assign(g *scene.Graph, nodes []scene.ID) (map[scene.ID]ID, error) {
	for _, node := range nodes {
		if !g.Exists(node) {
			return nil, ErrUnknownObject
		}
	}
	out := make(map[scene.ID]ID, len(nodes))
	next := Next(g)
	for _, node := range nodes {
		if id, ok := scene.Get[ID](g, node); ok {
			out[node] = id
			continue
		}
		if err := scene.Attach(g, node, next); err != nil {
			return nil, err
		}
		out[node] = next
		next++
	}
	return out, nil
}

// Lookup finds the scene node carrying a given stable id.
func Lookup(g *scene.Graph, id ID) (scene.ID, bool) {
	var (
		found scene.ID
		ok    bool
	)
	scene.Each(g, func(node scene.ID, candidate ID) bool {
		if candidate == id {
			found, ok = node, true
			return false
		}
		return true
	})
	return found, ok
}
