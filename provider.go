package loom

import (
	"fmt"
	"io"
)

// A Provider consumes dispatched records. Implementations must be safe
// for concurrent use and must treat records as read-only.
//
// A provider that also implements io.Closer is closed by
// Registry.Close, so buffered providers can flush on shutdown.
type Provider interface {
	// Log consumes one record. A returned error is routed to the
	// registry's error handler; it never reaches the logging call
	// site.
	Log(rec *Record) error

	// Enabled reports whether the provider wants records of the given
	// category and level. The registry consults it per record, after
	// the category threshold check.
	Enabled(category string, level Level) bool
}

// ProviderFunc adapts a function to the Provider interface, accepting
// every category and level.
type ProviderFunc func(rec *Record) error

// Log implements Provider by calling f.
func (f ProviderFunc) Log(rec *Record) error { return f(rec) }

// Enabled implements Provider. It always returns true.
func (f ProviderFunc) Enabled(category string, level Level) bool { return true }

// An ErrorHandler receives failures that must not propagate to logging
// call sites: provider errors, provider panics, and scope misuse.
type ErrorHandler interface {
	Handle(err error)
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(err error)

// Handle implements ErrorHandler by calling f.
func (f ErrorHandlerFunc) Handle(err error) { f(err) }

// NewWriterErrorHandler returns an ErrorHandler that writes one line
// per failure to w. It is the place to point a diagnostic stream
// (typically os.Stderr) without risking feedback through the logging
// pipeline itself.
func NewWriterErrorHandler(w io.Writer) ErrorHandler {
	return ErrorHandlerFunc(func(err error) {
		fmt.Fprintf(w, "loom: %v\n", err)
	})
}

// NewNopErrorHandler returns an ErrorHandler that discards failures.
// It is the default when a registry is built without one.
func NewNopErrorHandler() ErrorHandler {
	return ErrorHandlerFunc(func(error) {})
}
