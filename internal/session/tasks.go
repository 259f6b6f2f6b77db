package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"hexloom/editor/internal/journal"
	"hexloom/editor/internal/mapdoc"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/task"
	"hexloom/editor/internal/tileset"
	"hexloom/editor/logging"
	persistlog "hexloom/editor/logging/persistence"
)

// pendingTask tracks one in-flight background job. The poll closure
// runs under the hub lock each tick and reports true once the job has
// been absorbed.
type pendingTask struct {
	kind    journal.Op
	path    string
	client  string
	gen     uint64
	started time.Time
	poll    func(h *Hub, now time.Time) bool
}

// pollPendingLocked advances every in-flight task and drops the ones
// that finished.
func (h *Hub) pollPendingLocked(now time.Time) {
	if len(h.pending) == 0 {
		return
	}
	remaining := h.pending[:0]
	for _, p := range h.pending {
		if !p.poll(h, now) {
			remaining = append(remaining, p)
		}
	}
	h.pending = remaining
}

type saveResult struct {
	bytes int
}

type loadResult struct {
	doc *mapdoc.Document
}

type importResult struct {
	ts *tileset.Tileset
}

type exportResult struct {
	bytes int
}

type listResult struct {
	files []string
}

func (h *Hub) applySaveLocked(cmd Command, now time.Time) error {
	if !h.mapOpen {
		return ErrNoMap
	}
	if h.deps.Store == nil {
		return ErrNoWorkspace
	}
	path := cmd.Save.Path
	if path == "" {
		path = h.mapPath
	}
	if path == "" {
		return ErrNoPath
	}
	if _, err := h.deps.Store.Resolve(path); err != nil {
		return err
	}

	actor := actorFor(cmd)
	doc, err := mapdoc.Encode(h.graph, h.mapRoot, h.layoutLocked())
	if err != nil {
		// A dangling reference means the file would lose placements;
		// nothing is written and the failure is reported loudly.
		h.deps.Logger.Printf("save %q aborted: %v", path, err)
		h.deps.Journal.Record(journal.Outcome{
			Op: journal.OpSave, Path: path, Tick: h.tick, Time: now, Err: err.Error(),
		})
		persistlog.SaveFailed(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.SaveFailedPayload{Path: path, Reason: err.Error()}, nil)
		return nil
	}
	// Encoding assigns stable ids to new tilesets; clients see them on
	// the next snapshot.
	h.dirty = true

	persistlog.SaveStarted(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.SaveStartedPayload{Path: path}, nil)

	store := h.deps.Store
	t := task.Spawn(func() (saveResult, error) {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return saveResult{}, err
		}
		data = append(data, '\n')
		if err := store.WriteFile(path, data); err != nil {
			return saveResult{}, err
		}
		return saveResult{bytes: len(data)}, nil
	})

	p := &pendingTask{kind: journal.OpSave, path: path, client: cmd.ClientID, gen: h.mapGen, started: now}
	p.poll = func(h *Hub, now time.Time) bool {
		res, done := t.Poll()
		if !done {
			return false
		}
		h.finishSaveLocked(p, res, now, actor)
		return true
	}
	h.pending = append(h.pending, p)
	return nil
}

func (h *Hub) finishSaveLocked(p *pendingTask, res task.Result[saveResult], now time.Time, actor logging.EntityRef) {
	outcome := journal.Outcome{Op: p.kind, Path: p.path, Tick: h.tick, Time: now}
	if res.Err != nil {
		outcome.Err = res.Err.Error()
		h.deps.Logger.Printf("save %q failed: %v", p.path, res.Err)
		h.deps.Journal.Record(outcome)
		persistlog.SaveFailed(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.SaveFailedPayload{Path: p.path, Reason: res.Err.Error()}, nil)
		return
	}
	outcome.Bytes = res.Value.bytes
	if p.gen == h.mapGen && h.mapOpen {
		h.mapPath = p.path
		h.unsaved = false
		h.dirty = true
	}
	h.deps.Journal.Record(outcome)
	persistlog.SaveFinished(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.SaveFinishedPayload{
			Path:           p.path,
			Bytes:          res.Value.bytes,
			DurationMillis: now.Sub(p.started).Milliseconds(),
		}, nil)
}

func (h *Hub) applyLoadLocked(cmd Command, now time.Time) error {
	if h.deps.Store == nil {
		return ErrNoWorkspace
	}
	path := cmd.Load.Path
	if path == "" {
		return ErrNoPath
	}
	if _, err := h.deps.Store.Resolve(path); err != nil {
		return err
	}

	actor := actorFor(cmd)
	persistlog.LoadStarted(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.LoadStartedPayload{Path: path}, nil)

	store := h.deps.Store
	t := task.Spawn(func() (loadResult, error) {
		data, err := store.ReadFile(path)
		if err != nil {
			return loadResult{}, err
		}
		var doc mapdoc.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return loadResult{}, err
		}
		return loadResult{doc: &doc}, nil
	})

	p := &pendingTask{kind: journal.OpLoad, path: path, client: cmd.ClientID, started: now}
	p.poll = func(h *Hub, now time.Time) bool {
		res, done := t.Poll()
		if !done {
			return false
		}
		h.finishLoadLocked(p, res, now, cmd)
		return true
	}
	h.pending = append(h.pending, p)
	return nil
}

func (h *Hub) finishLoadLocked(p *pendingTask, res task.Result[loadResult], now time.Time, cmd Command) {
	actor := actorFor(cmd)
	outcome := journal.Outcome{Op: p.kind, Path: p.path, Tick: h.tick, Time: now}
	fail := func(err error) {
		outcome.Err = err.Error()
		h.deps.Logger.Printf("load %q failed: %v", p.path, err)
		h.deps.Journal.Record(outcome)
		persistlog.LoadFailed(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.LoadFailedPayload{Path: p.path, Reason: err.Error()}, nil)
	}
	if res.Err != nil {
		fail(res.Err)
		return
	}

	// Build the new map beside the old one so a failed instantiation
	// leaves the open map untouched.
	doc := res.Value.doc
	root, err := h.graph.Spawn(scene.Root)
	if err != nil {
		fail(err)
		return
	}
	if err := scene.Attach(h.graph, root, doc.Layout); err != nil {
		_ = h.graph.Despawn(root)
		fail(err)
		return
	}
	skipped := 0
	onSkip := func(layer string, index int, inst mapdoc.TileInstance, err error) {
		skipped++
		h.deps.Logger.Printf("load %q: dropping tile %d in layer %q: %v", p.path, index, layer, err)
		persistlog.TileSkipped(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.TileSkippedPayload{Layer: layer, Index: index, Reason: err.Error()}, nil)
	}
	if _, err := mapdoc.Instantiate(h.graph, doc, root, onSkip); err != nil {
		_ = h.graph.Despawn(root)
		fail(err)
		return
	}

	h.closeMapLocked(cmd)
	h.mapRoot = root
	h.mapOpen = true
	h.mapGen++
	h.mapPath = p.path
	h.unsaved = false
	h.activeLayer = h.firstLayerLocked()
	h.activeTileset = h.firstTilesetLocked()
	h.dirty = true

	placements := 0
	for _, layer := range doc.Layers {
		placements += len(layer.Tiles)
	}
	placements -= skipped

	outcome.Tilesets = len(doc.Tilesets)
	outcome.Layers = len(doc.Layers)
	outcome.Placements = placements
	outcome.Skipped = skipped
	h.deps.Journal.Record(outcome)
	persistlog.LoadFinished(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.LoadFinishedPayload{
			Path:       p.path,
			Tilesets:   len(doc.Tilesets),
			Layers:     len(doc.Layers),
			Placements: placements,
			Skipped:    skipped,
		}, nil)
}

func (h *Hub) applyImportTilesetsLocked(cmd Command, now time.Time) error {
	if !h.mapOpen {
		return ErrNoMap
	}
	if h.deps.Store == nil {
		return ErrNoWorkspace
	}
	if len(cmd.Import.Paths) == 0 {
		return ErrNoPath
	}
	for _, path := range cmd.Import.Paths {
		if _, err := h.deps.Store.Resolve(path); err != nil {
			return err
		}
	}

	actor := actorFor(cmd)
	store := h.deps.Store
	for _, path := range cmd.Import.Paths {
		persistlog.ImportStarted(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.ImportStartedPayload{Path: path}, nil)

		t := task.Spawn(func() (importResult, error) {
			data, err := store.ReadFile(path)
			if err != nil {
				return importResult{}, err
			}
			var ts tileset.Tileset
			if err := json.Unmarshal(data, &ts); err != nil {
				return importResult{}, err
			}
			return importResult{ts: &ts}, nil
		})

		p := &pendingTask{kind: journal.OpImport, path: path, client: cmd.ClientID, gen: h.mapGen, started: now}
		p.poll = func(h *Hub, now time.Time) bool {
			res, done := t.Poll()
			if !done {
				return false
			}
			h.finishImportLocked(p, res, now, actor)
			return true
		}
		h.pending = append(h.pending, p)
	}
	return nil
}

func (h *Hub) finishImportLocked(p *pendingTask, res task.Result[importResult], now time.Time, actor logging.EntityRef) {
	outcome := journal.Outcome{Op: p.kind, Path: p.path, Tick: h.tick, Time: now}
	if res.Err != nil {
		outcome.Err = res.Err.Error()
		h.deps.Logger.Printf("import %q failed: %v", p.path, res.Err)
		h.deps.Journal.Record(outcome)
		persistlog.ImportFailed(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.ImportFailedPayload{Path: p.path, Reason: res.Err.Error()}, nil)
		return
	}
	if p.gen != h.mapGen || !h.mapOpen {
		outcome.Err = "map closed before import finished"
		h.deps.Logger.Printf("import %q discarded: map closed", p.path)
		h.deps.Journal.Record(outcome)
		return
	}

	ts := res.Value.ts
	node, err := h.graph.Spawn(h.mapRoot)
	if err != nil {
		outcome.Err = err.Error()
		h.deps.Journal.Record(outcome)
		return
	}
	if err := scene.Attach(h.graph, node, ts); err != nil {
		_ = h.graph.Despawn(node)
		outcome.Err = err.Error()
		h.deps.Journal.Record(outcome)
		return
	}
	h.activeTileset = node
	h.unsaved = true
	h.dirty = true
	outcome.Tilesets = 1
	h.deps.Journal.Record(outcome)
	persistlog.ImportFinished(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.ImportFinishedPayload{Path: p.path, Name: ts.Name, Tiles: ts.Len()}, nil)
}

func (h *Hub) applyExportTilesetLocked(cmd Command, now time.Time) error {
	ts, err := h.tilesetLocked(cmd.Export.Tileset)
	if err != nil {
		return err
	}
	if h.deps.Store == nil {
		return ErrNoWorkspace
	}
	path := cmd.Export.Path
	if path == "" {
		return ErrNoPath
	}
	if _, err := h.deps.Store.Resolve(path); err != nil {
		return err
	}

	actor := actorFor(cmd)
	name := ts.Name
	clone := ts.Clone()
	persistlog.ExportStarted(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.ExportStartedPayload{Path: path, Name: name}, nil)

	store := h.deps.Store
	t := task.Spawn(func() (exportResult, error) {
		data, err := json.MarshalIndent(clone, "", "  ")
		if err != nil {
			return exportResult{}, err
		}
		data = append(data, '\n')
		if err := store.WriteFile(path, data); err != nil {
			return exportResult{}, err
		}
		return exportResult{bytes: len(data)}, nil
	})

	p := &pendingTask{kind: journal.OpExport, path: path, client: cmd.ClientID, started: now}
	p.poll = func(h *Hub, now time.Time) bool {
		res, done := t.Poll()
		if !done {
			return false
		}
		h.finishExportLocked(p, res, now, actor, name)
		return true
	}
	h.pending = append(h.pending, p)
	return nil
}

func (h *Hub) finishExportLocked(p *pendingTask, res task.Result[exportResult], now time.Time, actor logging.EntityRef, name string) {
	outcome := journal.Outcome{Op: p.kind, Path: p.path, Tick: h.tick, Time: now}
	if res.Err != nil {
		outcome.Err = res.Err.Error()
		h.deps.Logger.Printf("export %q failed: %v", p.path, res.Err)
		h.deps.Journal.Record(outcome)
		persistlog.ExportFailed(context.Background(), h.deps.Publisher, h.tick, actor,
			persistlog.ExportFailedPayload{Path: p.path, Reason: res.Err.Error()}, nil)
		return
	}
	outcome.Bytes = res.Value.bytes
	h.deps.Journal.Record(outcome)
	persistlog.ExportFinished(context.Background(), h.deps.Publisher, h.tick, actor,
		persistlog.ExportFinishedPayload{Path: p.path, Name: name, Bytes: res.Value.bytes}, nil)
}

func (h *Hub) applyListFilesLocked(cmd Command) error {
	if h.deps.Store == nil {
		return ErrNoWorkspace
	}
	prefix := cmd.List.Path
	store := h.deps.Store
	t := task.Spawn(func() (listResult, error) {
		files, err := store.List(".json")
		if err != nil {
			return listResult{}, err
		}
		if prefix != "" {
			kept := files[:0]
			for _, f := range files {
				if strings.HasPrefix(f, prefix) {
					kept = append(kept, f)
				}
			}
			files = kept
		}
		return listResult{files: files}, nil
	})

	seq := cmd.Seq
	p := &pendingTask{kind: "list", path: prefix, client: cmd.ClientID}
	p.poll = func(h *Hub, now time.Time) bool {
		res, done := t.Poll()
		if !done {
			return false
		}
		if res.Err != nil {
			h.replyLocked(p.client, Outbound{
				Kind: OutboundError,
				Tick: h.tick,
				Err:  &CommandError{Seq: seq, Op: string(CommandListFiles), Reason: res.Err.Error()},
			})
			return true
		}
		h.replyLocked(p.client, Outbound{
			Kind:  OutboundFiles,
			Tick:  h.tick,
			Files: &FileListing{Path: prefix, Files: res.Value.files},
		})
		return true
	}
	h.pending = append(h.pending, p)
	return nil
}
