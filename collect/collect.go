// Package collect provides an in-memory capturing provider, the
// standard way to assert on emitted records in tests. A Collector can
// also be mounted behind an HTTP handler for ad-hoc inspection of a
// running process.
package collect

import (
	"sync"

	"github.com/loomlog/loom"
)

// A Collector retains records in arrival order. All methods are safe
// for concurrent use, and every read returns a consistent view: a
// Snapshot taken while other goroutines log never shows a half-applied
// append.
type Collector struct {
	mu      sync.RWMutex
	recs    []*loom.Record
	latest  *loom.Record
	evicted uint64
	cap     int
}

// An Option configures a Collector.
type Option func(*Collector)

// WithCapacity bounds retention to the newest n records. When full,
// appending evicts the oldest record and increments the eviction
// counter. Zero (the default) means unbounded.
func WithCapacity(n int) Option {
	return func(c *Collector) { c.cap = n }
}

// New returns an empty collector.
func New(opts ...Option) *Collector {
	c := &Collector{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log implements loom.Provider by retaining rec. It never fails.
func (c *Collector) Log(rec *loom.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cap > 0 && len(c.recs) == c.cap {
		copy(c.recs, c.recs[1:])
		c.recs[len(c.recs)-1] = rec
		c.evicted++
	} else {
		c.recs = append(c.recs, rec)
	}
	if c.latest == nil || rec.Sequence >= c.latest.Sequence {
		c.latest = rec
	}
	return nil
}

// Enabled implements loom.Provider. A collector accepts everything;
// filtering belongs to the category threshold or a wrapping provider.
func (c *Collector) Enabled(category string, level loom.Level) bool {
	return true
}

// Snapshot returns a copy of the retained records in arrival order.
// The slice is the caller's to keep; later logging does not modify it.
func (c *Collector) Snapshot() []*loom.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*loom.Record, len(c.recs))
	copy(out, c.recs)
	return out
}

// Latest returns the record with the highest sequence seen so far. It
// remains available even after the record is evicted from retention.
func (c *Collector) Latest() (*loom.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.latest != nil
}

// Count returns the number of retained records.
func (c *Collector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recs)
}

// Evicted returns how many records capacity has pushed out.
func (c *Collector) Evicted() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evicted
}

// Reset discards all state, returning the collector to empty. Handy
// between test cases sharing one registry.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = nil
	c.latest = nil
	c.evicted = 0
}
