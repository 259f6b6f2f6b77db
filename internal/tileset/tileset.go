// Package tileset holds the reusable tile collections a map draws
// from. A tileset keeps its tiles in an id-keyed map plus an explicit
// order slice; the slice is the authoritative display and persistence
// order and is maintained exclusively by the methods here so the
// permutation invariant cannot drift.
package tileset

import (
	"errors"
	"path/filepath"
	"strings"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/scene"
)

// TileID identifies a tile within one tileset. Ids are dense,
// assigned by Add in creation order, and never reused; they carry no
// meaning across tilesets.
type TileID int

// Handle refers to runtime-loaded asset state (mesh scenes, thumbnail
// textures). Handles are cache state: they are never persisted and are
// rebuilt after a load. Zero means not loaded.
type Handle uint64

// ErrUnknownTile reports an operation against a tile id that is not
// part of the tileset.
var ErrUnknownTile = errors.New("tileset: unknown tile")

// Tile is one placeable asset. Transform is the base placement
// applied under the grid position whenever the tile is stamped onto a
// layer.
type Tile struct {
	ID        TileID         `json:"id"`
	Name      string         `json:"name"`
	Path      string         `json:"path"`
	Transform grid.Transform `json:"transform"`

	// Runtime-only caches, rebuilt by the asset loader after load.
	Scene     Handle `json:"-"`
	Thumbnail Handle `json:"-"`
}

// Ref marks a placed tile node and points at the tileset node it was
// stamped from. The tileset side is a live scene id; the codec swaps
// it for a stable id at the file boundary.
type Ref struct {
	Tileset scene.ID
	Tile    TileID
}

// Tileset is an ordered tile collection. The zero value is not usable;
// construct with New or decode from JSON.
type Tileset struct {
	Name string

	tiles  map[TileID]Tile
	order  []TileID
	nextID TileID
}

// New returns an empty tileset with the given display name.
func New(name string) *Tileset {
	return &Tileset{
		Name:  name,
		tiles: make(map[TileID]Tile),
	}
}

// Add creates a tile for the asset at path and appends it to the
// display order. The tile name defaults to the file stem and the
// placement transform to identity.
func (t *Tileset) Add(path string) TileID {
	id := t.nextID
	t.nextID++
	t.tiles[id] = Tile{
		ID:        id,
		Name:      stem(path),
		Path:      path,
		Transform: grid.IdentityTransform(),
	}
	t.order = append(t.order, id)
	return id
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Tile returns a copy of the tile with the given id.
func (t *Tileset) Tile(id TileID) (Tile, bool) {
	tile, ok := t.tiles[id]
	return tile, ok
}

// Len returns the number of tiles.
func (t *Tileset) Len() int {
	return len(t.order)
}

// Order returns a copy of the display order.
func (t *Tileset) Order() []TileID {
	if len(t.order) == 0 {
		return nil
	}
	out := make([]TileID, len(t.order))
	copy(out, t.order)
	return out
}

// Tiles returns copies of every tile in display order.
func (t *Tileset) Tiles() []Tile {
	out := make([]Tile, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.tiles[id])
	}
	return out
}

// Rename changes a tile's display name.
func (t *Tileset) Rename(id TileID, name string) error {
	tile, ok := t.tiles[id]
	if !ok {
		return ErrUnknownTile
	}
	tile.Name = name
	t.tiles[id] = tile
	return nil
}

// SetTransform replaces a tile's base placement transform.
func (t *Tileset) SetTransform(id TileID, transform grid.Transform) error {
	tile, ok := t.tiles[id]
	if !ok {
		return ErrUnknownTile
	}
	tile.Transform = transform
	t.tiles[id] = tile
	return nil
}

// SetHandles records the runtime asset handles for a tile.
func (t *Tileset) SetHandles(id TileID, scene, thumbnail Handle) error {
	tile, ok := t.tiles[id]
	if !ok {
		return ErrUnknownTile
	}
	tile.Scene = scene
	tile.Thumbnail = thumbnail
	t.tiles[id] = tile
	return nil
}

// Reorder pulls the given ids out of the display order and reinserts
// them as one block at the insertion point, keeping their relative
// order. The insertion point indexes the order as it was before the
// move; removed tiles sitting before it shift the destination left.
// Unknown or duplicate ids reject the whole move.
func (t *Tileset) Reorder(ids []TileID, insertAt int) error {
	if len(ids) == 0 {
		return nil
	}
	moving := make(map[TileID]bool, len(ids))
	for _, id := range ids {
		if _, ok := t.tiles[id]; !ok {
			return ErrUnknownTile
		}
		if moving[id] {
			return errors.New("tileset: duplicate tile in reorder")
		}
		moving[id] = true
	}
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(t.order) {
		insertAt = len(t.order)
	}
	kept := make([]TileID, 0, len(t.order)-len(ids))
	dest := insertAt
	for i, id := range t.order {
		if moving[id] {
			if i < insertAt {
				dest--
			}
			continue
		}
		kept = append(kept, id)
	}
	next := make([]TileID, 0, len(t.order))
	next = append(next, kept[:dest]...)
	next = append(next, ids...)
	next = append(next, kept[dest:]...)
	t.order = next
	return nil
}

// Clone returns a deep copy. Snapshots handed to background save
// tasks use it so the live tileset can keep mutating.
func (t *Tileset) Clone() *Tileset {
	out := &Tileset{
		Name:   t.Name,
		tiles:  make(map[TileID]Tile, len(t.tiles)),
		order:  make([]TileID, len(t.order)),
		nextID: t.nextID,
	}
	for id, tile := range t.tiles {
		out.tiles[id] = tile
	}
	copy(out.order, t.order)
	return out
}
