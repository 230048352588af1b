package loom

import "context"

// A Logger emits records for one category. Loggers are cheap handles:
// all of them share their registry's providers and configuration, and
// a logger is safe for concurrent use by any number of goroutines.
//
// Event and WithError return derived loggers with staged metadata for
// a single emission site; they never mutate the shared category
// logger.
type Logger struct {
	category string
	reg      *Registry
	event    EventID
	err      error
}

// Category returns the logger's category name.
func (l *Logger) Category() string { return l.category }

// Enabled reports whether records at the given level would currently
// be emitted for this category. It is a fast check against the live
// configuration; callers can guard expensive argument preparation
// with it.
func (l *Logger) Enabled(level Level) bool {
	if level < LevelTrace || level >= LevelNone {
		return false
	}
	return level >= l.reg.cell.Current().EffectiveLevel(l.category)
}

// Event stages an event identifier on a derived logger.
//
//	log.Event(1002).Warn(ctx, "Payment retry {Attempt}", n)
func (l *Logger) Event(id EventID) *Logger {
	d := *l
	d.event = id
	return &d
}

// WithError stages err on a derived logger; the next emission captures
// it as the record's Exception. The capture is deferred until the
// record is actually emitted, so a suppressed level costs nothing.
func (l *Logger) WithError(err error) *Logger {
	d := *l
	d.err = err
	return &d
}

// Log captures args against the message template and dispatches one
// record. When the level is suppressed for this category the call
// returns before any capture work: the template is not parsed, no
// state is built, and Fielder values are not consulted.
//
// Logging never returns an error and never panics; provider failures
// are routed to the registry's error handler.
func (l *Logger) Log(ctx context.Context, level Level, template string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	msg, state := buildState(cachedTemplate(template), args)
	rec := &Record{
		Category:  l.category,
		Level:     level,
		Event:     l.event,
		Message:   msg,
		State:     state,
		Scopes:    scopeFrames(ctx),
		Exception: newException(l.err),
		Sequence:  l.reg.seq.Add(1),
		Time:      l.reg.now(),
	}
	l.reg.dispatch(rec)
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelTrace, template, args...)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelDebug, template, args...)
}

// Info logs at LevelInfo.
func (l *Logger) Info(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelInfo, template, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelWarn, template, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelError, template, args...)
}

// Crit logs at LevelCrit.
func (l *Logger) Crit(ctx context.Context, template string, args ...interface{}) {
	l.Log(ctx, LevelCrit, template, args...)
}
