// Package logrus provides a provider that forwards records to a
// logrus logger, for processes that already ship logs through one.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/loomlog/loom"
)

// A Provider forwards records to a logrus FieldLogger. Scope and state
// fields become logrus fields; because logrus fields are a map,
// duplicate keys collapse and the latest (innermost) value wins.
// LevelTrace maps to logrus debug and LevelCrit to logrus error, the
// nearest levels that do not terminate the process.
type Provider struct {
	logger logrus.FieldLogger
	min    loom.Level
}

// An Option configures a Provider.
type Option func(*Provider)

// WithMinLevel sets a static floor below which records are declined.
func WithMinLevel(min loom.Level) Option {
	return func(p *Provider) { p.min = min }
}

// NewProvider returns a provider feeding logger.
func NewProvider(logger logrus.FieldLogger, opts ...Option) *Provider {
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
	fields := logrus.Fields{
		"category": rec.Category,
		"sequence": rec.Sequence,
	}
	if rec.Event != 0 {
		fields["event"] = int(rec.Event)
	}
	for _, frame := range rec.Scopes {
		for _, f := range frame {
			fields[f.Key] = fieldValue(f.Value)
		}
	}
	for _, f := range rec.State {
		if f.Key == loom.OriginalFormatKey {
			continue
		}
		fields[f.Key] = fieldValue(f.Value)
	}
	if exc := rec.Exception; exc != nil {
		fields[logrus.ErrorKey] = exc.Message
		fields["error_type"] = exc.Type
	}

	entry := p.logger.WithFields(fields)
	switch rec.Level {
	case loom.LevelTrace, loom.LevelDebug:
		entry.Debug(rec.Message)
	case loom.LevelInfo:
		entry.Info(rec.Message)
	case loom.LevelWarn:
		entry.Warn(rec.Message)
	case loom.LevelError, loom.LevelCrit:
		entry.Error(rec.Message)
	default:
		entry.Info(rec.Message)
	}
	return nil
}

// fieldValue converts captured values into shapes logrus formatters
// handle well: structures become nested maps, errors their messages.
func fieldValue(v interface{}) interface{} {
	switch x := v.(type) {
	case loom.Structure:
		m := make(map[string]interface{}, len(x))
		for _, f := range x {
			m[f.Key] = fieldValue(f.Value)
		}
		return m
	case error:
		return x.Error()
	}
	return v
}
