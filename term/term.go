// Package term provides a console provider that renders records as
// colored logfmt lines when the destination is a terminal.
package term

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"

	"github.com/loomlog/loom"
)

// A Provider writes one logfmt line per record. Lines carry ts, level,
// category, optional event, msg, then scope fields outermost first,
// then state fields in capture order (the OriginalFormat entry is
// omitted; the rendered msg already reflects it), then err/cause for
// records with an exception.
//
// Coloring consults the live configuration on every record, so
// replacing the configuration recolors output immediately. Each record
// is written with a single Write call.
type Provider struct {
	w          io.Writer
	cell       *loom.ConfigCell
	min        loom.Level
	color      bool
	timeFormat string
	bufPool    sync.Pool
}

// An Option configures a Provider.
type Option func(*Provider)

// WithMinLevel sets a static floor below which the provider declines
// records regardless of category thresholds.
func WithMinLevel(min loom.Level) Option {
	return func(p *Provider) { p.min = min }
}

// WithColor forces coloring on or off, overriding terminal detection.
func WithColor(on bool) Option {
	return func(p *Provider) { p.color = on }
}

// WithTimeFormat sets the ts layout. The default is time.RFC3339.
func WithTimeFormat(layout string) Option {
	return func(p *Provider) { p.timeFormat = layout }
}

// NewProvider returns a console provider writing to w. When w is a
// terminal, output is colored by level; cell supplies per-level color
// overrides and may be nil for the defaults.
func NewProvider(w io.Writer, cell *loom.ConfigCell, opts ...Option) *Provider {
	w, isTerm := colorCapable(w)
	p := &Provider{
		cell:       cell,
		min:        loom.LevelTrace,
		color:      isTerm,
		timeFormat: time.RFC3339,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.w = NewSyncWriter(w)
	p.bufPool.New = func() interface{} { return &bytes.Buffer{} }
	return p
}

// Enabled implements loom.Provider.
func (p *Provider) Enabled(category string, level loom.Level) bool {
	return level >= p.min
}

// Log implements loom.Provider.
func (p *Provider) Log(rec *loom.Record) error {
	buf := p.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer p.bufPool.Put(buf)

	color := p.recordColor(rec.Level)
	colored := p.color && !color.IsZero()
	if colored {
		if color.Fg != NoColor {
			buf.Write(fgColorBytes[color.Fg])
		}
		if color.Bg != NoColor {
			buf.Write(bgColorBytes[color.Bg])
		}
	}

	// Encode errors mean an unrepresentable key; the pair is skipped
	// and the line stays well formed.
	enc := logfmt.NewEncoder(buf)
	enc.EncodeKeyval("ts", rec.Time.Format(p.timeFormat))
	enc.EncodeKeyval("level", rec.Level.String())
	enc.EncodeKeyval("category", rec.Category)
	if rec.Event != 0 {
		enc.EncodeKeyval("event", int(rec.Event))
	}
	enc.EncodeKeyval("msg", rec.Message)
	for _, frame := range rec.Scopes {
		for _, f := range frame {
			enc.EncodeKeyval(f.Key, encodable(f.Value))
		}
	}
	for _, f := range rec.State {
		if f.Key == loom.OriginalFormatKey {
			continue
		}
		enc.EncodeKeyval(f.Key, encodable(f.Value))
	}
	if exc := rec.Exception; exc != nil {
		enc.EncodeKeyval("err", exc.Message)
		if chain := exc.Flatten(); len(chain) > 1 {
			enc.EncodeKeyval("cause", strings.Join(chain[1:], ": "))
		}
	}

	if colored {
		buf.Write(resetColorBytes)
	}
	enc.EndRecord()

	_, err := p.w.Write(buf.Bytes())
	return err
}

// recordColor picks the line color: the live configuration's override
// for the level if one parses, otherwise the built-in mapping.
func (p *Provider) recordColor(level loom.Level) FgBgColor {
	if p.cell != nil {
		if name, ok := p.cell.Current().Colors[level]; ok {
			if c, ok := ParseColor(name); ok {
				return FgBgColor{Fg: c}
			}
		}
	}
	return levelColor(level)
}

func levelColor(level loom.Level) FgBgColor {
	switch level {
	case loom.LevelDebug:
		return FgBgColor{Fg: Green}
	case loom.LevelWarn:
		return FgBgColor{Fg: Yellow}
	case loom.LevelError:
		return FgBgColor{Fg: Red}
	case loom.LevelCrit:
		return FgBgColor{Fg: Default, Bg: Red}
	}
	return FgBgColor{}
}

// encodable flattens values logfmt cannot take natively. Nested
// structures render in their braced form; everything else that is not
// a basic type goes through fmt.
func encodable(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, time.Time:
		return v
	case loom.Structure:
		return x.String()
	case error:
		return x.Error()
	}
	return fmt.Sprint(v)
}
