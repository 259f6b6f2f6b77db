package session

import (
	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/journal"
	"hexloom/editor/internal/mapdoc"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

// TilesetView is one tileset of the open map as seen by clients. The
// stable id appears only once the map has been saved or was loaded.
type TilesetView struct {
	Node     scene.ID       `json:"node"`
	StableID *stableid.ID   `json:"stableId,omitempty"`
	Name     string         `json:"name"`
	Tiles    []tileset.Tile `json:"tiles"`
}

// InstanceView is one placed tile. Tileset is the scene id of the
// owning tileset node, usable as a command target.
type InstanceView struct {
	Location grid.Location    `json:"location"`
	Tileset  scene.ID         `json:"tileset"`
	Tile     tileset.TileID   `json:"tile"`
	Rotation tileset.Rotation `json:"rotation"`
}

// LayerView is one layer of the open map in live order.
type LayerView struct {
	Node      scene.ID       `json:"node"`
	Name      string         `json:"name"`
	Instances []InstanceView `json:"instances"`
}

// Snapshot is the full client-visible session state. Built under the
// hub lock and immutable afterwards.
type Snapshot struct {
	Tick          uint64        `json:"tick"`
	MapOpen       bool          `json:"mapOpen"`
	Path          string        `json:"path,omitempty"`
	Unsaved       bool          `json:"unsaved"`
	ActiveLayer   scene.ID      `json:"activeLayer,omitempty"`
	ActiveTileset scene.ID      `json:"activeTileset,omitempty"`
	Layout        *grid.Layout  `json:"layout,omitempty"`
	Tilesets      []TilesetView `json:"tilesets,omitempty"`
	Layers        []LayerView   `json:"layers,omitempty"`
}

// Status is the operational summary served by the status endpoint.
type Status struct {
	Tick         uint64            `json:"tick"`
	Clients      int               `json:"clients"`
	MapOpen      bool              `json:"mapOpen"`
	Path         string            `json:"path,omitempty"`
	Unsaved      bool              `json:"unsaved"`
	Tilesets     int               `json:"tilesets"`
	Layers       int               `json:"layers"`
	Placements   int               `json:"placements"`
	PendingTasks int               `json:"pendingTasks"`
	QueueDepth   int               `json:"queueDepth"`
	Journal      []journal.Outcome `json:"journal,omitempty"`
}

// snapshotLocked walks the open map subtree into a Snapshot. Caller
// holds at least the read lock.
func (h *Hub) snapshotLocked() Snapshot {
	snap := Snapshot{
		Tick:    h.tick,
		MapOpen: h.mapOpen,
	}
	if !h.mapOpen {
		return snap
	}
	snap.Path = h.mapPath
	snap.Unsaved = h.unsaved
	snap.ActiveLayer = h.activeLayer
	snap.ActiveTileset = h.activeTileset
	if layout, ok := scene.Get[grid.Layout](h.graph, h.mapRoot); ok {
		snap.Layout = &layout
	}
	for _, child := range h.graph.Children(h.mapRoot) {
		if ts, ok := scene.Get[*tileset.Tileset](h.graph, child); ok {
			view := TilesetView{Node: child, Name: ts.Name, Tiles: ts.Tiles()}
			if id, ok := scene.Get[stableid.ID](h.graph, child); ok {
				view.StableID = &id
			}
			snap.Tilesets = append(snap.Tilesets, view)
			continue
		}
		if layer, ok := scene.Get[mapdoc.Layer](h.graph, child); ok {
			view := LayerView{Node: child, Name: layer.Name}
			for _, placed := range h.graph.Children(child) {
				ref, ok := scene.Get[tileset.Ref](h.graph, placed)
				if !ok {
					continue
				}
				loc, _ := scene.Get[grid.Location](h.graph, placed)
				rot, _ := scene.Get[tileset.Rotation](h.graph, placed)
				view.Instances = append(view.Instances, InstanceView{
					Location: loc,
					Tileset:  ref.Tileset,
					Tile:     ref.Tile,
					Rotation: rot,
				})
			}
			snap.Layers = append(snap.Layers, view)
		}
	}
	return snap
}
