// Package mapdoc serializes an open map to its on-disk document form
// and rebuilds a live scene from one. The document is a disposable
// snapshot: it is produced only during save, consumed only during
// load, and never shared with the live session afterwards.
package mapdoc

import (
	"errors"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

// Version is the map file format version. Decoding requires an exact
// match; a mismatch is a hard failure, never a migration.
const Version = 1

var (
	// ErrNotAMap reports data that does not have the shape of a map
	// file, including a missing version tag.
	ErrNotAMap = errors.New("mapdoc: not a map file")

	// ErrUnsupportedVersion reports a map file written by a different
	// format version.
	ErrUnsupportedVersion = errors.New("mapdoc: unsupported format version")

	// ErrDanglingRef reports an encode-time inconsistency: a placed
	// tile references a tileset node that was not part of the encoded
	// set. Reaching it means an encoder bug, so encoding fails loudly
	// instead of dropping the tile.
	ErrDanglingRef = errors.New("mapdoc: dangling tileset reference")

	// ErrUnresolvedRef reports a load-time reference that does not
	// resolve. Individual tiles failing with it are skipped, not
	// fatal, so one corrupt reference cannot lose the rest of a map.
	ErrUnresolvedRef = errors.New("mapdoc: unresolved tileset reference")

	// ErrDuplicateID reports two tilesets sharing a stable id within
	// one document. Documents like that are rejected outright rather
	// than silently merged.
	ErrDuplicateID = errors.New("mapdoc: duplicate tileset stable id")
)

// Layer marks a layer node in the scene and carries its display name.
type Layer struct {
	Name string `json:"name"`
}

// TileInstance is one persisted tile placement inside a layer. The
// tileset reference uses the stable id, not the runtime scene id.
type TileInstance struct {
	Location grid.Location    `json:"location"`
	Tileset  stableid.ID      `json:"tileset"`
	TileID   tileset.TileID   `json:"tile_id"`
	Rotation tileset.Rotation `json:"rotation"`
}

// TilesetEntry pairs a tileset with the stable id it is filed under.
type TilesetEntry struct {
	ID      stableid.ID
	Tileset *tileset.Tileset
}

// LayerSnapshot is the document form of one layer: a name and a flat,
// ordered placement list. Instances have no identity of their own.
type LayerSnapshot struct {
	Name  string         `json:"name"`
	Tiles []TileInstance `json:"tiles"`
}

// Document is the serialized root of a map file. Tilesets keep the
// order they appear in on disk; Encode writes them sorted by stable id
// so files diff cleanly.
type Document struct {
	Version  int
	Layout   grid.Layout
	Tilesets []TilesetEntry
	Layers   []LayerSnapshot
}

// Tileset returns the entry filed under id.
func (d *Document) Tileset(id stableid.ID) (*tileset.Tileset, bool) {
	for _, entry := range d.Tilesets {
		if entry.ID == id {
			return entry.Tileset, true
		}
	}
	return nil, false
}
