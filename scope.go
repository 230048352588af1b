package loom

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Scope misuse errors, reported through the registry's error handler
// (or raised as panics under StrictScopes).
var (
	// ErrScopeEnded reports a second End on the same scope.
	ErrScopeEnded = errors.New("loom: scope already ended")

	// ErrScopeOutOfOrder reports an End on a scope that is not the
	// innermost active frame of its stack. The frame is left in place;
	// honoring the call would silently remove an arbitrary frame.
	ErrScopeOutOfOrder = errors.New("loom: scope ended out of order")
)

type scopeKey struct{}

// A scopeStack is the per-operation frame stack carried by a context.
// Every context derived from the one a BeginScope returned shares the
// same stack, so nested calls see their callers' frames.
type scopeStack struct {
	mu     sync.Mutex
	frames []*Scope
}

// A Scope is the handle to one pushed frame. The goroutine that began
// the scope ends it; frames must be ended innermost first.
type Scope struct {
	stack  *scopeStack
	fields Structure
	reg    *Registry
	ended  bool // guarded by stack.mu
}

// BeginScope pushes a frame of ambient fields and returns a context
// carrying it together with the handle that releases it. Keys prefixed
// with "@" destructure their values exactly as template placeholders
// do. Records emitted with the returned context (or any context
// derived from it) carry the frame until End is called.
func (l *Logger) BeginScope(ctx context.Context, keyvals ...interface{}) (context.Context, *Scope) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, ok := ctx.Value(scopeKey{}).(*scopeStack)
	if !ok {
		st = &scopeStack{}
		ctx = context.WithValue(ctx, scopeKey{}, st)
	}
	sc := &Scope{stack: st, fields: frameFromKeyvals(keyvals), reg: l.reg}
	st.mu.Lock()
	st.frames = append(st.frames, sc)
	st.mu.Unlock()
	return ctx, sc
}

// End releases the frame. Ending a frame twice, or ending a frame
// while an inner frame is still active, leaves the stack untouched and
// reports the misuse loudly instead.
func (s *Scope) End() {
	if s == nil {
		return
	}
	st := s.stack
	st.mu.Lock()
	if s.ended {
		st.mu.Unlock()
		s.reg.scopeError(fmt.Errorf("%w: frame %v", ErrScopeEnded, s.fields))
		return
	}
	n := len(st.frames)
	if n == 0 || st.frames[n-1] != s {
		st.mu.Unlock()
		s.reg.scopeError(fmt.Errorf("%w: frame %v", ErrScopeOutOfOrder, s.fields))
		return
	}
	st.frames[n-1] = nil
	st.frames = st.frames[:n-1]
	s.ended = true
	st.mu.Unlock()
}

// Fields returns the frame's captured fields.
func (s *Scope) Fields() Structure {
	return s.fields
}

// scopeFrames snapshots the active frames of ctx, outermost first. The
// returned slice is independent of later pushes and pops; the frames
// themselves are immutable once captured.
func scopeFrames(ctx context.Context) []Structure {
	if ctx == nil {
		return nil
	}
	st, ok := ctx.Value(scopeKey{}).(*scopeStack)
	if !ok {
		return nil
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.frames) == 0 {
		return nil
	}
	out := make([]Structure, len(st.frames))
	for i, sc := range st.frames {
		out[i] = sc.fields
	}
	return out
}
