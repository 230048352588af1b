package loom

import (
	"errors"
	"io"
	"sync"
)

// AsyncProvider intake errors, surfaced through the registry's error
// handler when the buffer cannot accept a record.
var (
	// ErrAsyncStopping is returned by Log after Stop or Close.
	ErrAsyncStopping = errors.New("async provider: stopping")

	// ErrAsyncOverflow is returned by Log when the buffer is full. The
	// record is dropped rather than blocking the logging goroutine.
	ErrAsyncOverflow = errors.New("async provider: buffer full")
)

// An AsyncProvider decouples record consumption from the logging
// goroutine: Log enqueues without blocking and a single background
// goroutine feeds the wrapped provider. Use it around slow sinks so
// that hot paths pay only a channel send.
type AsyncProvider struct {
	mu   sync.Mutex
	err  error
	next Provider
	recC chan *Record

	stopping chan struct{}
	stopped  chan struct{}
}

// NewAsyncProvider wraps next with a buffer of the given size and
// starts the drain goroutine.
func NewAsyncProvider(next Provider, size int) *AsyncProvider {
	p := &AsyncProvider{
		next:     next,
		recC:     make(chan *Record, size),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncProvider) run() {
	defer close(p.stopped)
	for rec := range p.recC {
		if err := p.next.Log(rec); err != nil {
			p.setErr(err)
			p.Stop()
		}
	}
}

// Log enqueues rec. It returns ErrAsyncOverflow when the buffer is
// full, ErrAsyncStopping after Stop, and the sticky write error after
// the wrapped provider has failed.
func (p *AsyncProvider) Log(rec *Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	select {
	case <-p.stopping:
		return ErrAsyncStopping
	default:
	}
	select {
	case p.recC <- rec:
		return nil
	default:
		return ErrAsyncOverflow
	}
}

// Enabled defers to the wrapped provider.
func (p *AsyncProvider) Enabled(category string, level Level) bool {
	return p.next.Enabled(category, level)
}

// Stop closes intake. Records already buffered are still drained;
// Stopped is closed once the drain goroutine exits.
func (p *AsyncProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.stopping:
	default:
		close(p.stopping)
		close(p.recC)
	}
}

// Stopping is closed when intake has been stopped.
func (p *AsyncProvider) Stopping() <-chan struct{} { return p.stopping }

// Stopped is closed when the drain goroutine has exited.
func (p *AsyncProvider) Stopped() <-chan struct{} { return p.stopped }

// Err returns the sticky error from the wrapped provider, if any.
func (p *AsyncProvider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *AsyncProvider) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// Close stops intake, waits for buffered records to drain, and then
// closes the wrapped provider if it is an io.Closer. Registry.Close
// reaches buffered sinks through this.
func (p *AsyncProvider) Close() error {
	p.Stop()
	<-p.stopped
	var errs []error
	if err := p.Err(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := p.next.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
