package loom

import "time"

// An EventID names a well-known event within a category so that
// occurrences can be counted and correlated across deployments. Zero
// means unclassified.
type EventID int

// A Record is one fully-captured log event. The registry builds a
// record, stamps it, and hands the same pointer to every provider:
// records and everything reachable from them must be treated as
// immutable after dispatch.
type Record struct {
	// Category is the name of the logger that produced the record.
	Category string

	// Level is the severity the caller logged at. Never LevelNone.
	Level Level

	// Event identifies the kind of occurrence, when the caller staged
	// one.
	Event EventID

	// Message is the rendered template text.
	Message string

	// State is the ordered structured payload. The first entry is
	// always {OriginalFormat, template text}; placeholder captures
	// follow in template order.
	State []Field

	// Scopes are the ambient frames active in the originating context
	// at emission time, outermost first.
	Scopes []Structure

	// Exception is the captured error chain, if the caller staged an
	// error with WithError.
	Exception *Exception

	// Sequence is a registry-assigned monotone stamp. Records emitted
	// later from the same registry always carry larger sequences.
	Sequence uint64

	// Time is the wall-clock emission time.
	Time time.Time
}

// StateValue returns the first state entry with the given key.
func (r *Record) StateValue(key string) (interface{}, bool) {
	return Structure(r.State).Get(key)
}

// ScopeValue searches the scope frames innermost first and returns the
// first match, so the nearest enclosing scope wins for duplicated keys.
func (r *Record) ScopeValue(key string) (interface{}, bool) {
	for i := len(r.Scopes) - 1; i >= 0; i-- {
		if v, ok := r.Scopes[i].Get(key); ok {
			return v, true
		}
	}
	return nil, false
}
