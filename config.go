package loom

import (
	"strings"
	"sync"
	"sync/atomic"
)

// A Config is one immutable generation of logging configuration.
// Readers obtain a generation from a ConfigCell and may consult it
// freely; a generation never changes after it is installed.
type Config struct {
	// MinimumLevel applies to categories with no more specific rule.
	MinimumLevel Level

	// Category maps category name prefixes to level thresholds. The
	// longest dot-separated prefix of a record's category wins, so a
	// rule for "svc.billing" overrides one for "svc".
	Category map[string]Level

	// Colors optionally overrides per-level console colors by name
	// ("red", "cyan", ...). Console writers consult it on every record
	// so replacing the configuration recolors output immediately.
	Colors map[Level]string
}

// DefaultConfig returns the configuration used when none is supplied:
// info and above for every category.
func DefaultConfig() *Config {
	return &Config{MinimumLevel: LevelInfo}
}

// EffectiveLevel resolves the threshold for a category: the rule with
// the longest matching dot-prefix, falling back to MinimumLevel.
func (c *Config) EffectiveLevel(category string) Level {
	if c == nil {
		return LevelInfo
	}
	if len(c.Category) > 0 {
		for name := category; name != ""; {
			if lvl, ok := c.Category[name]; ok {
				return lvl
			}
			i := strings.LastIndexByte(name, '.')
			if i < 0 {
				break
			}
			name = name[:i]
		}
	}
	return c.MinimumLevel
}

// clone deep-copies c so that installed generations cannot be mutated
// through the caller's maps.
func (c *Config) clone() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := &Config{MinimumLevel: c.MinimumLevel}
	if len(c.Category) > 0 {
		out.Category = make(map[string]Level, len(c.Category))
		for k, v := range c.Category {
			out.Category[k] = v
		}
	}
	if len(c.Colors) > 0 {
		out.Colors = make(map[Level]string, len(c.Colors))
		for k, v := range c.Colors {
			out.Colors[k] = v
		}
	}
	return out
}

// A ConfigCell holds the live configuration generation. Reads are a
// single atomic load and never block writers; Replace installs a fresh
// clone and then notifies listeners. In-flight log calls that already
// loaded the previous generation finish under it.
type ConfigCell struct {
	v atomic.Value // *Config

	mu        sync.Mutex // guards listeners and serializes Replace
	listeners map[int]func(old, new *Config)
	nextID    int
}

// NewConfigCell returns a cell seeded with initial, or DefaultConfig
// when initial is nil. The seed is cloned.
func NewConfigCell(initial *Config) *ConfigCell {
	c := &ConfigCell{}
	c.v.Store(initial.clone())
	return c
}

// Current returns the live generation. Callers must not mutate it.
func (c *ConfigCell) Current() *Config {
	return c.v.Load().(*Config)
}

// Replace installs a clone of cfg as the new generation and then calls
// every registered listener with the outgoing and incoming
// generations. Listeners run on the replacing goroutine, after the
// swap is visible, outside the cell's lock.
func (c *ConfigCell) Replace(cfg *Config) {
	next := cfg.clone()
	c.mu.Lock()
	old := c.Current()
	c.v.Store(next)
	fns := make([]func(old, new *Config), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(old, next)
	}
}

// OnChange registers fn to run after each Replace. The returned
// function removes the registration; calling it more than once is
// harmless.
func (c *ConfigCell) OnChange(fn func(old, new *Config)) (remove func()) {
	c.mu.Lock()
	if c.listeners == nil {
		c.listeners = make(map[int]func(old, new *Config))
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
