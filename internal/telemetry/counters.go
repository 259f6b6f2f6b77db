package telemetry

import "sync"

// Counters is a thread-safe Metrics implementation backed by a plain
// map. The status endpoint reads it through Snapshot.
type Counters struct {
	mu     sync.RWMutex
	values map[string]uint64
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]uint64)}
}

// Add increments the named counter by delta.
func (c *Counters) Add(name string, delta uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[name] += delta
	c.mu.Unlock()
}

// Store replaces the named gauge with value.
func (c *Counters) Store(name string, value uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.values[name] = value
	c.mu.Unlock()
}

// Snapshot returns a copy of every counter and gauge.
func (c *Counters) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]uint64, len(c.values))
	for name, value := range c.values {
		out[name] = value
	}
	return out
}
