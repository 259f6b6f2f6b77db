package tileset

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the tileset file format version. Decoding requires an
// exact match; there is no forward or backward compatibility.
const Version = 1

// ErrNotATileset reports data that does not look like a tileset file
// at all (wrong shape, or no version tag).
var ErrNotATileset = errors.New("tileset: not a tileset file")

// ErrUnsupportedVersion reports a tileset file written by a different
// format version.
var ErrUnsupportedVersion = errors.New("tileset: unsupported format version")

type tilesetWire struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Tiles   []Tile `json:"tiles"`
}

// MarshalJSON writes the versioned wire form. Tiles are emitted in
// display order, never in map iteration order.
func (t Tileset) MarshalJSON() ([]byte, error) {
	return json.Marshal(tilesetWire{
		Version: Version,
		Name:    t.Name,
		Tiles:   t.Tiles(),
	})
}

// UnmarshalJSON rebuilds the tileset from its wire form. The version
// tag must match exactly, and both the id map and the display order
// are reconstructed from the tile sequence in sequence order.
func (t *Tileset) UnmarshalJSON(data []byte) error {
	var shell struct {
		Version *int   `json:"version"`
		Name    string `json:"name"`
		Tiles   []Tile `json:"tiles"`
	}
	if err := json.Unmarshal(data, &shell); err != nil {
		return fmt.Errorf("%w: %v", ErrNotATileset, err)
	}
	if shell.Version == nil {
		return fmt.Errorf("%w: missing version", ErrNotATileset)
	}
	if *shell.Version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, *shell.Version, Version)
	}
	tiles := make(map[TileID]Tile, len(shell.Tiles))
	order := make([]TileID, 0, len(shell.Tiles))
	next := TileID(0)
	for _, tile := range shell.Tiles {
		if tile.ID < 0 {
			return fmt.Errorf("tileset %q: negative tile id %d", shell.Name, tile.ID)
		}
		if _, dup := tiles[tile.ID]; dup {
			return fmt.Errorf("tileset %q: duplicate tile id %d", shell.Name, tile.ID)
		}
		tile.Scene = 0
		tile.Thumbnail = 0
		tiles[tile.ID] = tile
		order = append(order, tile.ID)
		if tile.ID >= next {
			next = tile.ID + 1
		}
	}
	t.Name = shell.Name
	t.tiles = tiles
	t.order = order
	t.nextID = next
	return nil
}
