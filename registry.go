package loom

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// A Registry owns the pieces shared by a process's loggers: the
// provider set, the live configuration cell, the error handler, and
// the sequence stamp. Construct one per process (or per isolated test)
// and hand out category loggers from it; there is no package-level
// default.
type Registry struct {
	cell   *ConfigCell
	errh   ErrorHandler
	now    func() time.Time
	strict bool

	seq atomic.Uint64

	mu        sync.Mutex   // serializes RegisterProvider and Close
	providers atomic.Value // []Provider, copy-on-write
	closed    bool

	loggers sync.Map // category → *Logger
}

// An Option configures a Registry.
type Option func(*Registry)

// WithConfig seeds the registry's configuration cell. Without it the
// registry starts from DefaultConfig.
func WithConfig(cfg *Config) Option {
	return func(r *Registry) { r.cell = NewConfigCell(cfg) }
}

// WithErrorHandler routes provider failures and scope misuse to h.
// Without it such failures are discarded.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Registry) { r.errh = h }
}

// WithProvider registers p during construction. Equivalent to calling
// RegisterProvider afterwards.
func WithProvider(p Provider) Option {
	return func(r *Registry) { r.RegisterProvider(p) }
}

// WithTimestamp overrides the record clock. Intended for tests.
func WithTimestamp(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// StrictScopes makes scope misuse panic instead of going to the error
// handler. Useful under test, where an out-of-order End is a bug worth
// failing loudly on.
func StrictScopes() Option {
	return func(r *Registry) { r.strict = true }
}

// NewRegistry constructs a registry. With no options it has no
// providers, discards internal errors, and filters at info.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		cell: NewConfigCell(nil),
		errh: NewNopErrorHandler(),
		now:  time.Now,
	}
	r.providers.Store([]Provider(nil))
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the logger for a category, creating it on first use.
// Calls with the same category return the same instance, so loggers
// may be fetched on the hot path without caching at the call site.
func (r *Registry) Logger(category string) *Logger {
	if v, ok := r.loggers.Load(category); ok {
		return v.(*Logger)
	}
	v, _ := r.loggers.LoadOrStore(category, &Logger{category: category, reg: r})
	return v.(*Logger)
}

// Config returns the live configuration cell. Replacing the
// configuration through it takes effect for records emitted after the
// swap; in-flight records finish under the generation they loaded.
func (r *Registry) Config() *ConfigCell {
	return r.cell
}

// RegisterProvider appends p to the dispatch order. Registration may
// happen while other goroutines are logging; records already being
// dispatched keep the provider set they started with.
func (r *Registry) RegisterProvider(p Provider) {
	if p == nil {
		panic("loom: nil provider")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.providers.Load().([]Provider)
	next := make([]Provider, len(cur)+1)
	copy(next, cur)
	next[len(cur)] = p
	r.providers.Store(next)
}

// Close closes every registered provider that implements io.Closer,
// in registration order, and returns their joined errors. Further
// Close calls are no-ops.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	providers := r.providers.Load().([]Provider)
	r.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// dispatch hands rec to every willing provider in registration order.
// A provider that returns an error or panics is reported to the error
// handler and never disturbs the remaining providers or the caller.
// The provider snapshot is taken once; no lock is held while providers
// run.
func (r *Registry) dispatch(rec *Record) {
	providers := r.providers.Load().([]Provider)
	for _, p := range providers {
		if !p.Enabled(rec.Category, rec.Level) {
			continue
		}
		if err := consume(p, rec); err != nil {
			r.errh.Handle(fmt.Errorf("loom: provider %T: %w", p, err))
		}
	}
}

func consume(p Provider, rec *Record) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return p.Log(rec)
}

func (r *Registry) scopeError(err error) {
	if r.strict {
		panic(err)
	}
	r.errh.Handle(err)
}
