package mapdoc

import (
	"fmt"

	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

// SkipFunc is told about each placement Instantiate had to drop,
// together with the layer it sat in, its index there, and the reason.
type SkipFunc func(layer string, index int, inst TileInstance, err error)

// Instantiate builds a live subtree under root from a decoded
// document and returns the stable id to live node mapping. Tilesets
// and layers are spawned in document order and the stable ids from the
// file are attached so later saves reuse them.
//
// A placement whose tileset or tile id does not resolve is reported to
// onSkip and dropped; the rest of the document still loads. Structural
// problems (an unknown root, duplicate stable ids) fail the whole call.
func Instantiate(g *scene.Graph, doc *Document, root scene.ID, onSkip SkipFunc) (map[stableid.ID]scene.ID, error) {
	if onSkip == nil {
		onSkip = func(string, int, TileInstance, error) {}
	}
	if !g.Exists(root) {
		return nil, scene.ErrUnknownNode
	}

	live := make(map[stableid.ID]scene.ID, len(doc.Tilesets))
	for _, entry := range doc.Tilesets {
		if _, dup := live[entry.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, entry.ID)
		}
		node, err := g.Spawn(root)
		if err != nil {
			return nil, err
		}
		if err := scene.Attach(g, node, entry.Tileset); err != nil {
			return nil, err
		}
		if err := scene.Attach(g, node, entry.ID); err != nil {
			return nil, err
		}
		live[entry.ID] = node
	}

	for _, layer := range doc.Layers {
		layerNode, err := g.Spawn(root)
		if err != nil {
			return nil, err
		}
		if err := scene.Attach(g, layerNode, Layer{Name: layer.Name}); err != nil {
			return nil, err
		}
		for i, inst := range layer.Tiles {
			tsNode, ok := live[inst.Tileset]
			if !ok {
				onSkip(layer.Name, i, inst, fmt.Errorf("%w: tileset %d", ErrUnresolvedRef, inst.Tileset))
				continue
			}
			ts, _ := scene.Get[*tileset.Tileset](g, tsNode)
			if _, ok := ts.Tile(inst.TileID); !ok {
				onSkip(layer.Name, i, inst, fmt.Errorf("%w: tile %d in tileset %d", ErrUnresolvedRef, inst.TileID, inst.Tileset))
				continue
			}
			placed, err := g.Spawn(layerNode)
			if err != nil {
				return nil, err
			}
			if err := scene.Attach(g, placed, inst.Location); err != nil {
				return nil, err
			}
			if err := scene.Attach(g, placed, tileset.Ref{Tileset: tsNode, Tile: inst.TileID}); err != nil {
				return nil, err
			}
			if err := scene.Attach(g, placed, inst.Rotation); err != nil {
				return nil, err
			}
		}
	}
	return live, nil
}
