// Package journal keeps a bounded record of completed persistence work.
// The session loop drains new outcomes into event broadcasts each tick;
// the status endpoint snapshots the retained window.
package journal

import (
	"sync"
	"time"
)

// Op names the kind of work an outcome reports.
type Op string

const (
	OpSave          Op = "save"
	OpLoad          Op = "load"
	OpImport        Op = "import"
	OpExport        Op = "export"
	OpDeleteTileset Op = "delete_tileset"
)

// DefaultCapacity bounds the retained window when the caller does not
// configure one.
const DefaultCapacity = 64

// Outcome records one completed persistence task or destructive edit.
// Err is empty on success; the counter fields are populated per op.
type Outcome struct {
	Op         Op        `json:"op"`
	Path       string    `json:"path,omitempty"`
	Tick       uint64    `json:"tick"`
	Time       time.Time `json:"time"`
	Err        string    `json:"error,omitempty"`
	Bytes      int       `json:"bytes,omitempty"`
	Tilesets   int       `json:"tilesets,omitempty"`
	Layers     int       `json:"layers,omitempty"`
	Placements int       `json:"placements,omitempty"`
	Skipped    int       `json:"skipped,omitempty"`
	Erased     int       `json:"erased,omitempty"`
}

// OK reports whether the outcome completed without an error.
func (o Outcome) OK() bool {
	return o.Err == ""
}

// Journal retains a rolling window of outcomes and stages new ones for
// broadcast. Record may be called from any goroutine; the loop drains.
type Journal struct {
	mu       sync.RWMutex
	retained []Outcome
	pending  []Outcome
	capacity int
	maxAge   time.Duration
}

// New constructs a journal retaining up to capacity outcomes. A zero or
// negative capacity falls back to DefaultCapacity. When maxAge is
// positive, outcomes older than the newest by more than maxAge are
// pruned as well.
func New(capacity int, maxAge time.Duration) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &Journal{
		retained: make([]Outcome, 0, capacity),
		pending:  make([]Outcome, 0),
		capacity: capacity,
		maxAge:   maxAge,
	}
}

// Record appends an outcome to the retained window and stages it for
// the next drain. The oldest entries fall off past capacity.
func (j *Journal) Record(o Outcome) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.retained = append(j.retained, o)
	j.pending = append(j.pending, o)
	j.pruneLocked()
}

// pruneLocked trims the retained window to capacity and, when maxAge is
// set, drops entries older than the newest outcome by more than maxAge.
// Aging against the newest entry keeps pruning deterministic under an
// injected clock.
func (j *Journal) pruneLocked() {
	if excess := len(j.retained) - j.capacity; excess > 0 {
		j.retained = append(j.retained[:0], j.retained[excess:]...)
	}
	if len(j.pending) > j.capacity {
		j.pending = append(j.pending[:0], j.pending[len(j.pending)-j.capacity:]...)
	}
	if j.maxAge <= 0 || len(j.retained) == 0 {
		return
	}
	cutoff := j.retained[len(j.retained)-1].Time.Add(-j.maxAge)
	keep := 0
	for keep < len(j.retained) && j.retained[keep].Time.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		j.retained = append(j.retained[:0], j.retained[keep:]...)
	}
}

// Drain returns the outcomes staged since the last drain and clears the
// stage. Returns nil when nothing is pending.
func (j *Journal) Drain() []Outcome {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.pending) == 0 {
		return nil
	}
	drained := make([]Outcome, len(j.pending))
	copy(drained, j.pending)
	j.pending = j.pending[:0]
	return drained
}

// Restore prepends drained outcomes back onto the stage. Callers use it
// when a broadcast fails after draining so the outcomes are not lost.
func (j *Journal) Restore(outcomes []Outcome) {
	if j == nil || len(outcomes) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	restored := make([]Outcome, 0, len(outcomes)+len(j.pending))
	restored = append(restored, outcomes...)
	restored = append(restored, j.pending...)
	j.pending = restored
}

// Snapshot returns a copy of the retained window, oldest first.
func (j *Journal) Snapshot() []Outcome {
	if j == nil {
		return nil
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.retained) == 0 {
		return nil
	}
	snapshot := make([]Outcome, len(j.retained))
	copy(snapshot, j.retained)
	return snapshot
}

// Len reports the size of the retained window.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.retained)
}
