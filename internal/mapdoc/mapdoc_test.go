package mapdoc

import (
	"encoding/json"
	"errors"
	"testing"

	"hexloom/editor/internal/grid"
	"hexloom/editor/internal/scene"
	"hexloom/editor/internal/stableid"
	"hexloom/editor/internal/tileset"
)

func spawnTileset(t *testing.T, g *scene.Graph, root scene.ID, ts *tileset.Tileset) scene.ID {
	t.Helper()
	node, err := g.Spawn(root)
	if err != nil {
		t.Fatalf("spawn tileset: %v", err)
	}
	if err := scene.Attach(g, node, ts); err != nil {
		t.Fatalf("attach tileset: %v", err)
	}
	return node
}

func spawnLayer(t *testing.T, g *scene.Graph, root scene.ID, name string) scene.ID {
	t.Helper()
	node, err := g.Spawn(root)
	if err != nil {
		t.Fatalf("spawn layer: %v", err)
	}
	if err := scene.Attach(g, node, Layer{Name: name}); err != nil {
		t.Fatalf("attach layer: %v", err)
	}
	return node
}

func place(t *testing.T, g *scene.Graph, layer scene.ID, loc grid.Location, ts scene.ID, tile tileset.TileID, rot tileset.Rotation) scene.ID {
	t.Helper()
	node, err := g.Spawn(layer)
	if err != nil {
		t.Fatalf("spawn placement: %v", err)
	}
	if err := scene.Attach(g, node, loc); err != nil {
		t.Fatalf("attach location: %v", err)
	}
	if err := scene.Attach(g, node, tileset.Ref{Tileset: ts, Tile: tile}); err != nil {
		t.Fatalf("attach ref: %v", err)
	}
	if err := scene.Attach(g, node, rot); err != nil {
		t.Fatalf("attach rotation: %v", err)
	}
	return node
}

func TestEncodeAssignsStableIds(t *testing.T) {
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	a := spawnTileset(t, g, root, tileset.New("terrain"))
	b := spawnTileset(t, g, root, tileset.New("props"))

	doc, err := Encode(g, root, grid.DefaultLayout())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(doc.Tilesets) != 2 || doc.Tilesets[0].ID != 0 || doc.Tilesets[1].ID != 1 {
		t.Fatalf("unexpected entries %+v", doc.Tilesets)
	}
	idA, _ := scene.Get[stableid.ID](g, a)
	idB, _ := scene.Get[stableid.ID](g, b)

	again, err := Encode(g, root, grid.DefaultLayout())
	if err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if again.Tilesets[0].ID != idA && again.Tilesets[0].ID != idB {
		t.Fatalf("second encode changed ids: %+v", again.Tilesets)
	}
	if again.Tilesets[0].ID != doc.Tilesets[0].ID || again.Tilesets[1].ID != doc.Tilesets[1].ID {
		t.Fatalf("encode is not id stable: %+v then %+v", doc.Tilesets, again.Tilesets)
	}
}

func TestEncodeSortsEntriesByStableID(t *testing.T) {
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	first := spawnTileset(t, g, root, tileset.New("late"))
	second := spawnTileset(t, g, root, tileset.New("early"))
	if err := scene.Attach(g, first, stableid.ID(5)); err != nil {
		t.Fatalf("attach id: %v", err)
	}
	if err := scene.Attach(g, second, stableid.ID(2)); err != nil {
		t.Fatalf("attach id: %v", err)
	}
	doc, err := Encode(g, root, grid.DefaultLayout())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if doc.Tilesets[0].ID != 2 || doc.Tilesets[0].Tileset.Name != "early" {
		t.Fatalf("entries not sorted by id: %+v", doc.Tilesets)
	}
	if doc.Tilesets[1].ID != 5 || doc.Tilesets[1].Tileset.Name != "late" {
		t.Fatalf("entries not sorted by id: %+v", doc.Tilesets)
	}
}

func TestEncodeSnapshotIsDetached(t *testing.T) {
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	ts := tileset.New("terrain")
	ts.Add("grass.glb")
	spawnTileset(t, g, root, ts)
	doc, err := Encode(g, root, grid.DefaultLayout())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	ts.Add("water.glb")
	if doc.Tilesets[0].Tileset.Len() != 1 {
		t.Fatalf("live edits leaked into the snapshot")
	}
}

func TestEncodeDanglingRef(t *testing.T) {
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	ts := spawnTileset(t, g, root, tileset.New("terrain"))
	layer := spawnLayer(t, g, root, "ground")
	place(t, g, layer, grid.Location{X: 0, Y: 0}, ts, 0, tileset.RotationNone)
	// Point a second placement at a node that is not an encoded tileset.
	stray, _ := g.Spawn(scene.Root)
	place(t, g, layer, grid.Location{X: 1, Y: 0}, stray, 0, tileset.RotationNone)

	_, err := Encode(g, root, grid.DefaultLayout())
	if !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("expected ErrDanglingRef, got %v", err)
	}
}

type placementKey struct {
	Loc      grid.Location
	Set      string
	Tile     tileset.TileID
	Rotation tileset.Rotation
}

func summarize(t *testing.T, g *scene.Graph, root scene.ID) (names []string, layers map[string][]placementKey) {
	t.Helper()
	setNames := make(map[scene.ID]string)
	for _, child := range g.Children(root) {
		if ts, ok := scene.Get[*tileset.Tileset](g, child); ok {
			setNames[child] = ts.Name
		}
	}
	layers = make(map[string][]placementKey)
	for _, child := range g.Children(root) {
		layer, ok := scene.Get[Layer](g, child)
		if !ok {
			continue
		}
		names = append(names, layer.Name)
		var placements []placementKey
		for _, placed := range g.Children(child) {
			ref, ok := scene.Get[tileset.Ref](g, placed)
			if !ok {
				continue
			}
			loc, _ := scene.Get[grid.Location](g, placed)
			rot, _ := scene.Get[tileset.Rotation](g, placed)
			placements = append(placements, placementKey{
				Loc:      loc,
				Set:      setNames[ref.Tileset],
				Tile:     ref.Tile,
				Rotation: rot,
			})
		}
		layers[layer.Name] = placements
	}
	return names, layers
}

func TestRoundTrip(t *testing.T) {
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)

	terrain := tileset.New("terrain")
	terrain.Add("grass.glb")
	terrain.Add("water.glb")
	terrain.Add("sand.glb")
	if err := terrain.Reorder([]tileset.TileID{0}, 3); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	props := tileset.New("props")
	props.Add("rock.glb")

	terrainNode := spawnTileset(t, g, root, terrain)
	propsNode := spawnTileset(t, g, root, props)

	ground := spawnLayer(t, g, root, "ground")
	place(t, g, ground, grid.Location{X: 0, Y: 0}, terrainNode, 0, tileset.RotationNone)
	place(t, g, ground, grid.Location{X: 1, Y: -2}, terrainNode, 2, tileset.RotationClockwise120)
	place(t, g, ground, grid.Location{X: -3, Y: 4}, propsNode, 0, tileset.RotationCounterClockwise60)
	spawnLayer(t, g, root, "decor")

	// Stray nodes without map components must not leak into the file.
	if _, err := g.Spawn(root); err != nil {
		t.Fatalf("spawn stray: %v", err)
	}

	layout := grid.Layout{
		Orientation: grid.OrientationFlat,
		Size:        grid.Vec2{X: 2, Y: 2},
		Origin:      grid.Vec2{X: 10, Y: -5},
	}
	doc, err := Encode(g, root, layout)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fresh := scene.NewGraph()
	freshRoot, _ := fresh.Spawn(scene.Root)
	skips := 0
	if _, err := Instantiate(fresh, &decoded, freshRoot, func(string, int, TileInstance, error) {
		skips++
	}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if skips != 0 {
		t.Fatalf("clean document should instantiate without skips, got %d", skips)
	}
	if decoded.Layout != layout {
		t.Fatalf("layout drifted: %+v", decoded.Layout)
	}

	wantNames, wantLayers := summarize(t, g, root)
	gotNames, gotLayers := summarize(t, fresh, freshRoot)
	if len(gotNames) != len(wantNames) {
		t.Fatalf("layer names drifted: %v vs %v", gotNames, wantNames)
	}
	for i := range wantNames {
		if gotNames[i] != wantNames[i] {
			t.Fatalf("layer order drifted: %v vs %v", gotNames, wantNames)
		}
	}
	for name, want := range wantLayers {
		got := gotLayers[name]
		if len(got) != len(want) {
			t.Fatalf("layer %q placement count drifted: %d vs %d", name, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("layer %q placement %d drifted: %+v vs %+v", name, i, got[i], want[i])
			}
		}
	}

	// Tileset contents and order survive by name.
	for _, wantEntry := range doc.Tilesets {
		var match *tileset.Tileset
		for _, child := range fresh.Children(freshRoot) {
			if ts, ok := scene.Get[*tileset.Tileset](fresh, child); ok && ts.Name == wantEntry.Tileset.Name {
				match = ts
			}
		}
		if match == nil {
			t.Fatalf("tileset %q missing after round trip", wantEntry.Tileset.Name)
		}
		wantOrder := wantEntry.Tileset.Order()
		gotOrder := match.Order()
		if len(gotOrder) != len(wantOrder) {
			t.Fatalf("tileset %q order drifted", wantEntry.Tileset.Name)
		}
		for i := range wantOrder {
			if gotOrder[i] != wantOrder[i] {
				t.Fatalf("tileset %q order drifted: %v vs %v", wantEntry.Tileset.Name, gotOrder, wantOrder)
			}
		}
	}
}

func TestMarshalShape(t *testing.T) {
	ts := tileset.New("terrain")
	ts.Add("grass.glb")
	doc := Document{
		Version: Version,
		Layout:  grid.DefaultLayout(),
		Tilesets: []TilesetEntry{
			{ID: 0, Tileset: ts},
		},
		Layers: []LayerSnapshot{
			{Name: "ground", Tiles: []TileInstance{
				{Location: grid.Location{X: 2, Y: -1}, Tileset: 0, TileID: 0, Rotation: tileset.RotationClockwise60},
			}},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"version":1,` +
		`"layout":{"orientation":"pointy","size":{"x":1,"y":1},"origin":{"x":0,"y":0}},` +
		`"tilesets":{"0":{"version":1,"name":"terrain","tiles":[{"id":0,"name":"grass","path":"grass.glb",` +
		`"transform":{"translation":{"x":0,"y":0,"z":0},"yaw":0,"scale":{"x":1,"y":1,"z":1}}}]}},` +
		`"layers":[{"name":"ground","tiles":[{"location":{"x":2,"y":-1},"tileset":0,"tile_id":0,"rotation":"Clockwise60"}]}]}`
	if string(data) != want {
		t.Fatalf("wire shape drifted:\n got %s\nwant %s", data, want)
	}
}

func TestDecodeVersionChecks(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"layout":{},"tilesets":{},"layers":[]}`), &doc)
	if !errors.Is(err, ErrNotAMap) {
		t.Fatalf("expected ErrNotAMap for missing version, got %v", err)
	}
	err = json.Unmarshal([]byte(`{"version":99,"layout":{},"tilesets":{},"layers":[]}`), &doc)
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	err = json.Unmarshal([]byte(`[1,2,3]`), &doc)
	if !errors.Is(err, ErrNotAMap) {
		t.Fatalf("expected ErrNotAMap for wrong shape, got %v", err)
	}
}

func TestDecodeRejectsBadLayout(t *testing.T) {
	var doc Document
	data := `{"version":1,"layout":{"orientation":"diagonal","size":{"x":1,"y":1},"origin":{"x":0,"y":0}},"tilesets":{},"layers":[]}`
	if err := json.Unmarshal([]byte(data), &doc); err == nil {
		t.Fatalf("expected layout validation error")
	}
}

func TestDecodeRejectsDuplicateStableIds(t *testing.T) {
	set := `{"version":1,"name":"x","tiles":[]}`
	data := `{"version":1,"layout":{"orientation":"pointy","size":{"x":1,"y":1},"origin":{"x":0,"y":0}},` +
		`"tilesets":{"0":` + set + `,"0":` + set + `},"layers":[]}`
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestDecodeKeepsFileOrder(t *testing.T) {
	set := func(name string) string {
		return `{"version":1,"name":"` + name + `","tiles":[]}`
	}
	data := `{"version":1,"layout":{"orientation":"pointy","size":{"x":1,"y":1},"origin":{"x":0,"y":0}},` +
		`"tilesets":{"5":` + set("late") + `,"2":` + set("early") + `},"layers":[]}`
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Tilesets) != 2 || doc.Tilesets[0].ID != 5 || doc.Tilesets[1].ID != 2 {
		t.Fatalf("file order not kept: %+v", doc.Tilesets)
	}
}

func TestDecodePropagatesTilesetVersionError(t *testing.T) {
	data := `{"version":1,"layout":{"orientation":"pointy","size":{"x":1,"y":1},"origin":{"x":0,"y":0}},` +
		`"tilesets":{"0":{"version":3,"name":"x","tiles":[]}},"layers":[]}`
	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); !errors.Is(err, tileset.ErrUnsupportedVersion) {
		t.Fatalf("expected tileset version error, got %v", err)
	}
}

func TestInstantiateSkipsUnresolved(t *testing.T) {
	ts := tileset.New("terrain")
	ts.Add("grass.glb")
	doc := &Document{
		Version:  Version,
		Layout:   grid.DefaultLayout(),
		Tilesets: []TilesetEntry{{ID: 0, Tileset: ts}},
		Layers: []LayerSnapshot{{
			Name: "ground",
			Tiles: []TileInstance{
				{Location: grid.Location{X: 0, Y: 0}, Tileset: 0, TileID: 0},
				{Location: grid.Location{X: 1, Y: 0}, Tileset: 9, TileID: 0},
				{Location: grid.Location{X: 2, Y: 0}, Tileset: 0, TileID: 42},
			},
		}},
	}
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	var skipped []error
	if _, err := Instantiate(g, doc, root, func(_ string, _ int, _ TileInstance, err error) {
		skipped = append(skipped, err)
	}); err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skips, got %d: %v", len(skipped), skipped)
	}
	for _, err := range skipped {
		if !errors.Is(err, ErrUnresolvedRef) {
			t.Fatalf("expected ErrUnresolvedRef, got %v", err)
		}
	}
	var layerNode scene.ID
	for _, child := range g.Children(root) {
		if _, ok := scene.Get[Layer](g, child); ok {
			layerNode = child
		}
	}
	if got := len(g.Children(layerNode)); got != 1 {
		t.Fatalf("expected 1 surviving placement, got %d", got)
	}
}

func TestInstantiateRejectsDuplicateIds(t *testing.T) {
	doc := &Document{
		Version: Version,
		Layout:  grid.DefaultLayout(),
		Tilesets: []TilesetEntry{
			{ID: 0, Tileset: tileset.New("a")},
			{ID: 0, Tileset: tileset.New("b")},
		},
	}
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	if _, err := Instantiate(g, doc, root, nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestInstantiateKeepsStableIds(t *testing.T) {
	doc := &Document{
		Version: Version,
		Layout:  grid.DefaultLayout(),
		Tilesets: []TilesetEntry{
			{ID: 0, Tileset: tileset.New("a")},
			{ID: 7, Tileset: tileset.New("b")},
		},
	}
	g := scene.NewGraph()
	root, _ := g.Spawn(scene.Root)
	live, err := Instantiate(g, doc, root, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if got, _ := scene.Get[stableid.ID](g, live[7]); got != 7 {
		t.Fatalf("stable id not attached, got %d", got)
	}
	if next := stableid.Next(g); next != 8 {
		t.Fatalf("later assignments must respect loaded ids, next = %d", next)
	}
}
