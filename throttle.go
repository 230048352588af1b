package loom

import (
	"io"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// A RateLimitedProvider caps the sustained rate of records reaching
// the wrapped provider. Records beyond the limit are dropped and
// counted, never queued, so a log storm degrades to a counter instead
// of unbounded memory.
type RateLimitedProvider struct {
	next    Provider
	lim     *rate.Limiter
	dropped atomic.Uint64
}

// NewRateLimitedProvider wraps next with a token bucket of the given
// sustained limit and burst.
func NewRateLimitedProvider(next Provider, limit rate.Limit, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{next: next, lim: rate.NewLimiter(limit, burst)}
}

// Log forwards rec when a token is available and drops it otherwise.
// Drops are not errors; they are observable through Dropped.
func (p *RateLimitedProvider) Log(rec *Record) error {
	if !p.lim.Allow() {
		p.dropped.Add(1)
		return nil
	}
	return p.next.Log(rec)
}

// Enabled defers to the wrapped provider.
func (p *RateLimitedProvider) Enabled(category string, level Level) bool {
	return p.next.Enabled(category, level)
}

// Dropped returns how many records have been discarded so far.
func (p *RateLimitedProvider) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the wrapped provider if it is an io.Closer.
func (p *RateLimitedProvider) Close() error {
	if c, ok := p.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
