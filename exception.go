package loom

import (
	"fmt"
	"strings"

	"github.com/go-stack/stack"
	"github.com/pkg/errors"
)

// An Exception is the log-friendly snapshot of an error attached to a
// record. It survives independently of the error value: sinks may
// retain or serialize it long after the originating error is gone.
type Exception struct {
	// Message is the error text at this link of the chain.
	Message string

	// Type is the dynamic Go type of the error value.
	Type string

	// Stack holds one formatted frame per entry, innermost first.
	// When the error carries its own stack trace (github.com/pkg/errors
	// style) that trace is used; otherwise the trace is captured at
	// the emitting log call.
	Stack []string

	// Cause is the next wrapped error, if any.
	Cause *Exception
}

// String returns this link's message. Use Flatten for the full cause
// chain.
func (e *Exception) String() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Flatten returns the messages of the whole cause chain, outermost
// first.
func (e *Exception) Flatten() []string {
	var out []string
	for x := e; x != nil; x = x.Cause {
		out = append(out, x.Message)
	}
	return out
}

// stackTracer is the interface github.com/pkg/errors values satisfy.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// newException converts err into an Exception chain. The outermost
// link gets a call-site stack when the error itself does not carry
// one; inner links only get the stacks they carry themselves, so a
// single capture site is not repeated down the chain.
func newException(err error) *Exception {
	return buildException(err, true)
}

func buildException(err error, captureSite bool) *Exception {
	if err == nil {
		return nil
	}
	e := &Exception{
		Message: err.Error(),
		Type:    fmt.Sprintf("%T", err),
	}
	if st, ok := err.(stackTracer); ok {
		e.Stack = formatStackTrace(st.StackTrace())
	} else if captureSite {
		e.Stack = captureStack()
	}
	if cause := unwrapOnce(err); cause != nil {
		e.Cause = buildException(cause, false)
	}
	return e
}

// unwrapOnce peels one layer off err, understanding both the stdlib
// Unwrap convention and the pkg/errors Cause convention.
func unwrapOnce(err error) error {
	type wrapper interface {
		Unwrap() error
	}
	type causer interface {
		Cause() error
	}
	switch x := err.(type) {
	case wrapper:
		return x.Unwrap()
	case causer:
		return x.Cause()
	}
	return nil
}

func formatStackTrace(st errors.StackTrace) []string {
	out := make([]string, 0, len(st))
	for _, f := range st {
		// %+v renders "function\n\tfile:line"; fold it to one line.
		text := fmt.Sprintf("%+v", f)
		text = strings.ReplaceAll(text, "\n\t", " ")
		out = append(out, text)
	}
	return out
}

func captureStack() []string {
	trace := stack.Trace().TrimRuntime()
	out := make([]string, 0, len(trace))
	for _, call := range trace {
		out = append(out, fmt.Sprintf("%+v", call))
	}
	return out
}
