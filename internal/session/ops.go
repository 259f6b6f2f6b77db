package session

import (
	"context"
	"fmt"
	"time"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/journal"
	"hexloom/editor/internal/mapdoc"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/tileset"
	editorlog "hexloom/editor/logging/editor"
)

func (h *Hub) dispatchLocked(cmd Command, now time.Time) error {
	switch cmd.Type {
	case CommandNewMap:
		return h.applyNewMapLocked(cmd)
	case CommandCloseMap:
		return h.applyCloseMapLocked(cmd)
	case CommandSaveMap:
		if cmd.Save == nil {
			return ErrMissingPayload
		}
		return h.applySaveLocked(cmd, now)
	case CommandLoadMap:
		if cmd.Load == nil {
			return ErrMissingPayload
		}
		return h.applyLoadLocked(cmd, now)
	case CommandCreateLayer:
		if cmd.CreateLayer == nil {
			return ErrMissingPayload
		}
		return h.applyCreateLayerLocked(cmd)
	case CommandSelectLayer:
		if cmd.SelectLayer == nil {
			return ErrMissingPayload
		}
		return h.applySelectLayerLocked(cmd)
	case CommandSelectTileset:
		if cmd.SelectTileset == nil {
			return ErrMissingPayload
		}
		return h.applySelectTilesetLocked(cmd)
	case CommandCreateTileset:
		if cmd.CreateTileset == nil {
			return ErrMissingPayload
		}
		return h.applyCreateTilesetLocked(cmd)
	case CommandDeleteTileset:
		if cmd.DeleteTileset == nil {
			return ErrMissingPayload
		}
		return h.applyDeleteTilesetLocked(cmd, now)
	case CommandAddTiles:
		if cmd.AddTiles == nil {
			return ErrMissingPayload
		}
		return h.applyAddTilesLocked(cmd)
	case CommandReorderTiles:
		if cmd.Reorder == nil {
			return ErrMissingPayload
		}
		return h.applyReorderTilesLocked(cmd)
	case CommandSetTileTransform:
		if cmd.SetTransform == nil {
			return ErrMissingPayload
		}
		return h.applySetTileTransformLocked(cmd)
	case CommandRenameTile:
		if cmd.Rename == nil {
			return ErrMissingPayload
		}
		return h.applyRenameTileLocked(cmd)
	case CommandPlaceTile:
		if cmd.Place == nil {
			return ErrMissingPayload
		}
		return h.applyPlaceTileLocked(cmd)
	case CommandEraseTile:
		if cmd.Erase == nil {
			return ErrMissingPayload
		}
		return h.applyEraseTileLocked(cmd)
	case CommandRotateTile:
		if cmd.Rotate == nil {
			return ErrMissingPayload
		}
		return h.applyRotateTileLocked(cmd)
	case CommandImportTilesets:
		if cmd.Import == nil {
			return ErrMissingPayload
		}
		return h.applyImportTilesetsLocked(cmd, now)
	case CommandExportTileset:
		if cmd.Export == nil {
			return ErrMissingPayload
		}
		return h.applyExportTilesetLocked(cmd, now)
	case CommandListFiles:
		if cmd.List == nil {
			return ErrMissingPayload
		}
		return h.applyListFilesLocked(cmd)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
	}
}

func (h *Hub) applyNewMapLocked(cmd Command) error {
	h.closeMapLocked(cmd)
	root, err := h.graph.Spawn(scene.Root)
	if err != nil {
		return err
	}
	layout := grid.DefaultLayout()
	if err := scene.Attach(h.graph, root, layout); err != nil {
		return err
	}
	h.mapRoot = root
	h.mapOpen = true
	h.mapGen++
	h.mapPath = ""
	h.unsaved = false

	layer, err := h.spawnLayerLocked("Background")
	if err != nil {
		return err
	}
	ts, err := h.spawnTilesetLocked("Default Tileset")
	if err != nil {
		return err
	}
	h.activeLayer = layer
	h.activeTileset = ts
	h.dirty = true
	editorlog.MapCreated(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.MapCreatedPayload{Orientation: string(layout.Orientation)}, nil)
	return nil
}

func (h *Hub) applyCloseMapLocked(cmd Command) error {
	if !h.mapOpen {
		return ErrNoMap
	}
	h.closeMapLocked(cmd)
	return nil
}

// closeMapLocked tears down the open map subtree, if any, and resets
// the session pointers.
func (h *Hub) closeMapLocked(cmd Command) {
	if !h.mapOpen {
		return
	}
	if h.unsaved {
		h.deps.Logger.Printf("closing map %q with unsaved changes", h.mapPath)
	}
	editorlog.MapClosed(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.MapClosedPayload{UnsavedChanges: h.unsaved}, nil)
	_ = h.graph.Despawn(h.mapRoot)
	h.mapRoot = 0
	h.mapOpen = false
	h.mapGen++
	h.mapPath = ""
	h.unsaved = false
	h.activeLayer = 0
	h.activeTileset = 0
	h.dirty = true
}

func (h *Hub) applyCreateLayerLocked(cmd Command) error {
	if !h.mapOpen {
		return ErrNoMap
	}
	name := cmd.CreateLayer.Name
	if name == "" {
		name = fmt.Sprintf("Layer %d", h.layerCountLocked()+1)
	}
	layer, err := h.spawnLayerLocked(name)
	if err != nil {
		return err
	}
	h.activeLayer = layer
	h.unsaved = true
	h.dirty = true
	editorlog.LayerCreated(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.LayerCreatedPayload{Name: name}, nil)
	return nil
}

func (h *Hub) applySelectLayerLocked(cmd Command) error {
	if _, err := h.layerLocked(cmd.SelectLayer.Layer); err != nil {
		return err
	}
	h.activeLayer = cmd.SelectLayer.Layer
	h.dirty = true
	return nil
}

func (h *Hub) applySelectTilesetLocked(cmd Command) error {
	if _, err := h.tilesetLocked(cmd.SelectTileset.Tileset); err != nil {
		return err
	}
	h.activeTileset = cmd.SelectTileset.Tileset
	h.dirty = true
	return nil
}

func (h *Hub) applyCreateTilesetLocked(cmd Command) error {
	if !h.mapOpen {
		return ErrNoMap
	}
	name := cmd.CreateTileset.Name
	if name == "" {
		name = fmt.Sprintf("Tileset %d", h.tilesetCountLocked()+1)
	}
	node, err := h.spawnTilesetLocked(name)
	if err != nil {
		return err
	}
	h.activeTileset = node
	h.unsaved = true
	h.dirty = true
	editorlog.TilesetCreated(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.TilesetCreatedPayload{Name: name}, nil)
	return nil
}

func (h *Hub) applyDeleteTilesetLocked(cmd Command, now time.Time) error {
	node := cmd.DeleteTileset.Tileset
	ts, err := h.tilesetLocked(node)
	if err != nil {
		return err
	}
	erased := h.eraseReferencesLocked(node)
	_ = h.graph.Despawn(node)
	if h.activeTileset == node {
		h.activeTileset = h.firstTilesetLocked()
	}
	h.unsaved = true
	h.dirty = true
	h.deps.Journal.Record(journal.Outcome{
		Op:     journal.OpDeleteTileset,
		Tick:   h.tick,
		Time:   now,
		Erased: erased,
	})
	editorlog.TilesetDeleted(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.TilesetDeletedPayload{Name: ts.Name, Erased: erased}, nil)
	return nil
}

func (h *Hub) applyAddTilesLocked(cmd Command) error {
	ts, err := h.tilesetLocked(cmd.AddTiles.Tileset)
	if err != nil {
		return err
	}
	if len(cmd.AddTiles.Paths) == 0 {
		return nil
	}
	for _, path := range cmd.AddTiles.Paths {
		ts.Add(path)
	}
	h.unsaved = true
	h.dirty = true
	return nil
}

func (h *Hub) applyReorderTilesLocked(cmd Command) error {
	ts, err := h.tilesetLocked(cmd.Reorder.Tileset)
	if err != nil {
		return err
	}
	if err := ts.Reorder(cmd.Reorder.IDs, cmd.Reorder.InsertAt); err != nil {
		return err
	}
	h.unsaved = true
	h.dirty = true
	return nil
}

func (h *Hub) applySetTileTransformLocked(cmd Command) error {
	ts, err := h.tilesetLocked(cmd.SetTransform.Tileset)
	if err != nil {
		return err
	}
	if err := ts.SetTransform(cmd.SetTransform.Tile, cmd.SetTransform.Transform); err != nil {
		return err
	}
	h.unsaved = true
	h.dirty = true
	return nil
}

func (h *Hub) applyRenameTileLocked(cmd Command) error {
	ts, err := h.tilesetLocked(cmd.Rename.Tileset)
	if err != nil {
		return err
	}
	if err := ts.Rename(cmd.Rename.Tile, cmd.Rename.Name); err != nil {
		return err
	}
	h.unsaved = true
	h.dirty = true
	return nil
}

func (h *Hub) applyPlaceTileLocked(cmd Command) error {
	p := cmd.Place
	layer, err := h.layerLocked(p.Layer)
	if err != nil {
		return err
	}
	ts, err := h.tilesetLocked(p.Tileset)
	if err != nil {
		return err
	}
	if _, ok := ts.Tile(p.Tile); !ok {
		return fmt.Errorf("%w: tile %d", tileset.ErrUnknownTile, p.Tile)
	}
	if !p.Rotation.Valid() {
		return fmt.Errorf("session: invalid rotation %d", int(p.Rotation))
	}
	if existing, ok := h.placementAtLocked(p.Layer, p.Location); ok {
		ref, _ := scene.Get[tileset.Ref](h.graph, existing)
		rot, _ := scene.Get[tileset.Rotation](h.graph, existing)
		if ref.Tileset == p.Tileset && ref.Tile == p.Tile && rot == p.Rotation {
			// Identical placement is a no-op and does not mark unsaved.
			return nil
		}
		_ = h.graph.Despawn(existing)
	}
	node, err := h.graph.Spawn(p.Layer)
	if err != nil {
		return err
	}
	if err := scene.Attach(h.graph, node, p.Location); err != nil {
		return err
	}
	if err := scene.Attach(h.graph, node, tileset.Ref{Tileset: p.Tileset, Tile: p.Tile}); err != nil {
		return err
	}
	if err := scene.Attach(h.graph, node, p.Rotation); err != nil {
		return err
	}
	h.unsaved = true
	h.dirty = true
	editorlog.TilePlaced(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.TilePlacedPayload{Layer: layer.Name, X: p.Location.X, Y: p.Location.Y}, nil)
	return nil
}

func (h *Hub) applyEraseTileLocked(cmd Command) error {
	layer, err := h.layerLocked(cmd.Erase.Layer)
	if err != nil {
		return err
	}
	node, ok := h.placementAtLocked(cmd.Erase.Layer, cmd.Erase.Location)
	if !ok {
		// Nothing at the location; erasing stays a no-op.
		return nil
	}
	_ = h.graph.Despawn(node)
	h.unsaved = true
	h.dirty = true
	editorlog.TileErased(context.Background(), h.deps.Publisher, h.tick, actorFor(cmd),
		editorlog.TileErasedPayload{Layer: layer.Name, X: cmd.Erase.Location.X, Y: cmd.Erase.Location.Y}, nil)
	return nil
}

func (h *Hub) applyRotateTileLocked(cmd Command) error {
	if _, err := h.layerLocked(cmd.Rotate.Layer); err != nil {
		return err
	}
	node, ok := h.placementAtLocked(cmd.Rotate.Layer, cmd.Rotate.Location)
	if !ok {
		return ErrNoInstance
	}
	rot, _ := scene.Get[tileset.Rotation](h.graph, node)
	switch cmd.Rotate.Direction {
	case RotateClockwise:
		rot = rot.Clockwise()
	case RotateCounterClockwise:
		rot = rot.CounterClockwise()
	default:
		return fmt.Errorf("session: unknown rotate direction %q", cmd.Rotate.Direction)
	}
	if err := scene.Attach(h.graph, node, rot); err != nil {
		return err
	}
	h.unsaved = true
	h.dirty = true
	return nil
}

// spawnLayerLocked adds a named layer node under the map root.
func (h *Hub) spawnLayerLocked(name string) (scene.ID, error) {
	node, err := h.graph.Spawn(h.mapRoot)
	if err != nil {
		return 0, err
	}
	if err := scene.Attach(h.graph, node, mapdoc.Layer{Name: name}); err != nil {
		return 0, err
	}
	return node, nil
}

// spawnTilesetLocked adds an empty named tileset node under the map root.
func (h *Hub) spawnTilesetLocked(name string) (scene.ID, error) {
	node, err := h.graph.Spawn(h.mapRoot)
	if err != nil {
		return 0, err
	}
	if err := scene.Attach(h.graph, node, tileset.New(name)); err != nil {
		return 0, err
	}
	return node, nil
}

// layerLocked resolves a layer target id under the open map.
func (h *Hub) layerLocked(id scene.ID) (mapdoc.Layer, error) {
	if !h.mapOpen {
		return mapdoc.Layer{}, ErrNoMap
	}
	parent, ok := h.graph.Parent(id)
	if !ok || parent != h.mapRoot {
		return mapdoc.Layer{}, fmt.Errorf("%w: node %d", ErrUnknownLayer, id)
	}
	layer, ok := scene.Get[mapdoc.Layer](h.graph, id)
	if !ok {
		return mapdoc.Layer{}, fmt.Errorf("%w: node %d", ErrUnknownLayer, id)
	}
	return layer, nil
}

// tilesetLocked resolves a tileset target id under the open map.
func (h *Hub) tilesetLocked(id scene.ID) (*tileset.Tileset, error) {
	if !h.mapOpen {
		return nil, ErrNoMap
	}
	parent, ok := h.graph.Parent(id)
	if !ok || parent != h.mapRoot {
		return nil, fmt.Errorf("%w: node %d", ErrUnknownTileset, id)
	}
	ts, ok := scene.Get[*tileset.Tileset](h.graph, id)
	if !ok {
		return nil, fmt.Errorf("%w: node %d", ErrUnknownTileset, id)
	}
	return ts, nil
}

// placementAtLocked finds the placed tile node at a layer cell.
func (h *Hub) placementAtLocked(layer scene.ID, loc grid.Location) (scene.ID, bool) {
	for _, child := range h.graph.Children(layer) {
		at, ok := scene.Get[grid.Location](h.graph, child)
		if ok && at == loc {
			return child, true
		}
	}
	return 0, false
}

// eraseReferencesLocked despawns every placed tile referencing the
// given tileset node and reports how many were removed.
func (h *Hub) eraseReferencesLocked(tilesetNode scene.ID) int {
	erased := 0
	for _, child := range h.graph.Children(h.mapRoot) {
		if _, ok := scene.Get[mapdoc.Layer](h.graph, child); !ok {
			continue
		}
		for _, placed := range h.graph.Children(child) {
			ref, ok := scene.Get[tileset.Ref](h.graph, placed)
			if ok && ref.Tileset == tilesetNode {
				_ = h.graph.Despawn(placed)
				erased++
			}
		}
	}
	return erased
}

func (h *Hub) layerCountLocked() int {
	count := 0
	for _, child := range h.graph.Children(h.mapRoot) {
		if _, ok := scene.Get[mapdoc.Layer](h.graph, child); ok {
			count++
		}
	}
	return count
}

func (h *Hub) tilesetCountLocked() int {
	count := 0
	for _, child := range h.graph.Children(h.mapRoot) {
		if _, ok := scene.Get[*tileset.Tileset](h.graph, child); ok {
			count++
		}
	}
	return count
}

// firstTilesetLocked returns the first remaining tileset child, or 0.
func (h *Hub) firstTilesetLocked() scene.ID {
	for _, child := range h.graph.Children(h.mapRoot) {
		if _, ok := scene.Get[*tileset.Tileset](h.graph, child); ok {
			return child
		}
	}
	return 0
}

// firstLayerLocked returns the first layer child, or 0.
func (h *Hub) firstLayerLocked() scene.ID {
	for _, child := range h.graph.Children(h.mapRoot) {
		if _, ok := scene.Get[mapdoc.Layer](h.graph, child); ok {
			return child
		}
	}
	return 0
}
