// Package zerolog provides a provider that forwards records to a
// zerolog logger as structured JSON events.
package zerolog

import (
	"github.com/rs/zerolog"

	"github.com/loomlog/loom"
)

// A Provider forwards records to a zerolog logger. State fields are
// appended in capture order, including the OriginalFormat entry, so
// JSON consumers can group events by message shape. LevelCrit maps to
// zerolog's fatal level label without its exit behavior.
type Provider struct {
	logger *zerolog.Logger
	min    loom.Level
}

// An Option configures a Provider.
type Option func(*Provider)

// WithMinLevel sets a static floor below which records are declined.
func WithMinLevel(min loom.Level) Option {
	return func(p *Provider) { p.min = min }
}

// NewProvider returns a provider feeding logger.
func NewProvider(logger *zerolog.Logger, opts ...Option) *Provider {
	p := &Provider{logger: logger, min: loom.LevelTrace}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enabled implements loom.Provider.
func (p *Provider) Enabled(category string, level loom.Level) bool {
	return level >= p.min
}

// Log implements loom.Provider.
func (p *Provider) Log(rec *loom.Record) error {
	e := p.logger.WithLevel(zerologLevel(rec.Level))
	e.Str("category", rec.Category)
	e.Uint64("sequence", rec.Sequence)
	if rec.Event != 0 {
		e.Int("event", int(rec.Event))
	}
	for _, frame := range rec.Scopes {
		for _, f := range frame {
			e.Interface(f.Key, eventValue(f.Value))
		}
	}
	for _, f := range rec.State {
		e.Interface(f.Key, eventValue(f.Value))
	}
	if exc := rec.Exception; exc != nil {
		e.Str("error", exc.Message)
		e.Str("error_type", exc.Type)
		if exc.Cause != nil {
			e.Strs("error_chain", exc.Flatten())
		}
	}
	e.Msg(rec.Message)
	return nil
}

func zerologLevel(level loom.Level) zerolog.Level {
	switch level {
	case loom.LevelTrace:
		return zerolog.TraceLevel
	case loom.LevelDebug:
		return zerolog.DebugLevel
	case loom.LevelInfo:
		return zerolog.InfoLevel
	case loom.LevelWarn:
		return zerolog.WarnLevel
	case loom.LevelError:
		return zerolog.ErrorLevel
	case loom.LevelCrit:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

// eventValue converts captured values into clean JSON shapes:
// structures become nested maps, errors their messages.
func eventValue(v interface{}) interface{} {
	switch x := v.(type) {
	case loom.Structure:
		m := make(map[string]interface{}, len(x))
		for _, f := range x {
			m[f.Key] = eventValue(f.Value)
		}
		return m
	case error:
		return x.Error()
	}
	return v
}
