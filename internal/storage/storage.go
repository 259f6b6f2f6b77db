// Package storage scopes all file access to a single workspace
// directory. Paths arriving over the wire are treated as hostile:
// anything absolute or escaping the root is rejected before it touches
// the filesystem.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOutsideRoot reports a path that would land outside the workspace.
var ErrOutsideRoot = errors.New("storage: path outside workspace")

// Store reads and writes files under one workspace root.
type Store struct {
	root string
}

// Open prepares a store rooted at dir, creating the directory when it
// does not exist yet.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve workspace %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create workspace %q: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute workspace directory.
func (s *Store) Root() string {
	return s.root
}

// Resolve maps a workspace-relative name to an absolute path. The
// check is lexical: absolute names and names that climb out of the
// root are rejected with ErrOutsideRoot.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" {
		return "", errors.New("storage: empty path")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	full := filepath.Join(s.root, name)
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return full, nil
}

// ReadFile returns the contents of a workspace file.
func (s *Store) ReadFile(name string) ([]byte, error) {
	full, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// WriteFile atomically replaces a workspace file: the data lands in a
// temp file next to the target and is renamed over it, so a crash mid
// write can never leave a half-written document behind. Parent
// directories are created as needed.
func (s *Store) WriteFile(name string, data []byte) error {
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".hexloom-*")
	if err != nil {
		return fmt.Errorf("storage: temp file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %q: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: chmod %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("storage: replace %q: %w", name, err)
	}
	return nil
}

// List returns every workspace file whose name ends with suffix, as
// sorted workspace-relative paths. Dot directories are skipped.
func (s *Store) List(suffix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, suffix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %q: %w", suffix, err)
	}
	sort.Strings(out)
	return out, nil
}
