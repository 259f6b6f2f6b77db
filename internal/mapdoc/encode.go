package mapdoc

import (
	"fmt"
	"sort"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

// Encode snapshots the subtree under root into a document. Tilesets
// found under root are batch-assigned stable ids first, so encoding an
// unsaved map mints ids as a side effect; ids already assigned are
// reused untouched. Tileset contents are deep-copied, which keeps the
// snapshot safe to hand to a background save task while the live
// graph keeps changing.
func Encode(g *scene.Graph, root scene.ID, layout grid.Layout) (*Document, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	var tilesetNodes []scene.ID
	for _, child := range g.Children(root) {
		if _, ok := scene.Get[*tileset.Tileset](g, child); ok {
			tilesetNodes = append(tilesetNodes, child)
		}
	}
	ids, err := stableid.Assign(g, tilesetNodes)
	if err != nil {
		return nil, err
	}

	doc := &Document{Version: Version, Layout: layout}
	for _, node := range tilesetNodes {
		ts, _ := scene.Get[*tileset.Tileset](g, node)
		doc.Tilesets = append(doc.Tilesets, TilesetEntry{ID: ids[node], Tileset: ts.Clone()})
	}
	sort.Slice(doc.Tilesets, func(i, j int) bool {
		return doc.Tilesets[i].ID < doc.Tilesets[j].ID
	})

	for _, child := range g.Children(root) {
		layer, ok := scene.Get[Layer](g, child)
		if !ok {
			continue
		}
		snapshot := LayerSnapshot{Name: layer.Name}
		for _, placed := range g.Children(child) {
			ref, ok := scene.Get[tileset.Ref](g, placed)
			if !ok {
				continue
			}
			id, ok := ids[ref.Tileset]
			if !ok {
				return nil, fmt.Errorf("%w: layer %q references node %d", ErrDanglingRef, layer.Name, ref.Tileset)
			}
			loc, _ := scene.Get[grid.Location](g, placed)
			rot, _ := scene.Get[tileset.Rotation](g, placed)
			snapshot.Tiles = append(snapshot.Tiles, TileInstance{
				Location: loc,
				Tileset:  id,
				TileID:   ref.Tile,
				Rotation: rot,
			})
		}
		doc.Layers = append(doc.Layers, snapshot)
	}
	return doc, nil
}
