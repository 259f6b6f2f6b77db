package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.WriteFile("maps/town.map.json", []byte(`{"version":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := store.ReadFile("maps/town.map.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"version":1}` {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestWriteReplacesAtomically(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.WriteFile("a.json", []byte("old")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.WriteFile("a.json", []byte("new")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	data, _ := store.ReadFile("a.json")
	if string(data) != "new" {
		t.Fatalf("expected replacement, got %q", data)
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "a.json" {
			t.Fatalf("unexpected leftover %q", entry.Name())
		}
	}
}

func TestResolveRejectsEscapes(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, name := range []string{
		"/etc/passwd",
		"../outside.json",
		"maps/../../outside.json",
		"..",
	} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("%q: expected ErrOutsideRoot, got %v", name, err)
		}
	}
	if _, err := store.Resolve(""); err == nil {
		t.Fatalf("empty path should be rejected")
	}
	// Interior dotdots that stay inside the root are fine after cleaning.
	if _, err := store.Resolve("maps/../tilesets/x.json"); err != nil {
		t.Fatalf("interior cleanup should pass: %v", err)
	}
}

func TestReadMissing(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.ReadFile("nope.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestList(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	files := []string{"b.map.json", "a.map.json", "sets/terrain.tileset.json"}
	for _, name := range files {
		if err := store.WriteFile(name, []byte("{}")); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := os.MkdirAll(filepath.Join(store.Root(), ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), ".git", "c.map.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write hidden: %v", err)
	}

	got, err := store.List(".map.json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.map.json", "b.map.json"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	all, err := store.List(".json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 json files, got %v", all)
	}
}

func TestOpenCreatesWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh", "workspace")
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	info, err := os.Stat(store.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("workspace not created: %v", err)
	}
}
