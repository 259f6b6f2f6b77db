package mapdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/iancoleman/orderedmap"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

type documentWire struct {
	Version  int                    `json:"version"`
	Layout   grid.Layout            `json:"layout"`
	Tilesets *orderedmap.OrderedMap `json:"tilesets"`
	Layers   []LayerSnapshot        `json:"layers"`
}

// MarshalJSON writes the on-disk form. Tileset keys come out in
// document order; Encode sorts entries by stable id, which keeps
// successive saves of the same map byte-comparable.
func (d Document) MarshalJSON() ([]byte, error) {
	sets := orderedmap.New()
	for _, entry := range d.Tilesets {
		if entry.ID < 0 {
			return nil, fmt.Errorf("mapdoc: cannot encode negative stable id %d", entry.ID)
		}
		sets.Set(strconv.Itoa(int(entry.ID)), entry.Tileset)
	}
	layers := make([]LayerSnapshot, len(d.Layers))
	for i, layer := range d.Layers {
		layers[i] = layer
		if layers[i].Tiles == nil {
			layers[i].Tiles = []TileInstance{}
		}
	}
	return json.Marshal(documentWire{
		Version:  d.Version,
		Layout:   d.Layout,
		Tilesets: sets,
		Layers:   layers,
	})
}

// UnmarshalJSON rebuilds a document from its on-disk form. The version
// tag must match exactly and the layout must validate; tileset entries
// keep their file order, and a stable id appearing twice rejects the
// whole document instead of merging two tilesets.
func (d *Document) UnmarshalJSON(data []byte) error {
	var shell struct {
		Version  *int            `json:"version"`
		Layout   grid.Layout     `json:"layout"`
		Tilesets json.RawMessage `json:"tilesets"`
		Layers   json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &shell); err != nil {
		return fmt.Errorf("%w: %v", ErrNotAMap, err)
	}
	if shell.Version == nil {
		return fmt.Errorf("%w: missing version", ErrNotAMap)
	}
	if *shell.Version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, *shell.Version, Version)
	}
	if err := shell.Layout.Validate(); err != nil {
		return err
	}
	if len(shell.Tilesets) == 0 {
		return fmt.Errorf("%w: missing tilesets", ErrNotAMap)
	}
	if len(shell.Layers) == 0 {
		return fmt.Errorf("%w: missing layers", ErrNotAMap)
	}
	entries, err := decodeTilesets(shell.Tilesets)
	if err != nil {
		return err
	}
	var layers []LayerSnapshot
	if err := json.Unmarshal(shell.Layers, &layers); err != nil {
		return fmt.Errorf("%w: layers: %v", ErrNotAMap, err)
	}
	d.Version = *shell.Version
	d.Layout = shell.Layout
	d.Tilesets = entries
	d.Layers = layers
	return nil
}

// decodeTilesets walks the tilesets object token by token so that file
// order survives and duplicate keys are caught; a plain map decode
// would silently keep one of the two.
func decodeTilesets(raw json.RawMessage) ([]TilesetEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: tilesets: %v", ErrNotAMap, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: tilesets must be an object", ErrNotAMap)
	}
	var entries []TilesetEntry
	seen := make(map[stableid.ID]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: tilesets: %v", ErrNotAMap, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: tilesets: non-string key", ErrNotAMap)
		}
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%w: tileset key %q is not a stable id", ErrNotAMap, key)
		}
		if seen[stableid.ID(id)] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		seen[stableid.ID(id)] = true
		ts := &tileset.Tileset{}
		if err := dec.Decode(ts); err != nil {
			return nil, fmt.Errorf("tileset %s: %w", key, err)
		}
		entries = append(entries, TilesetEntry{ID: stableid.ID(id), Tileset: ts})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: tilesets: %v", ErrNotAMap, err)
	}
	return entries, nil
}
