package loom

import (
	"context"
	"log/slog"
	"strings"
)

// NewSlogHandler returns a slog.Handler that emits through l's
// registry. Code written against log/slog then shares providers,
// category thresholds, and context scopes with template-based callers.
// The slog message is carried verbatim as both Message and the
// OriginalFormat entry; attrs follow as state fields with group names
// joined by dots.
func NewSlogHandler(l *Logger) slog.Handler {
	return &slogHandler{logger: l}
}

type slogHandler struct {
	logger *Logger
	attrs  []Field
	groups []string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(levelFromSlog(level))
}

func (h *slogHandler) Handle(ctx context.Context, r slog.Record) error {
	state := make([]Field, 0, len(h.attrs)+r.NumAttrs()+1)
	state = append(state, Field{OriginalFormatKey, r.Message})
	state = append(state, h.attrs...)
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		state = appendAttr(state, prefix, a)
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = h.logger.reg.now()
	}
	rec := &Record{
		Category: h.logger.category,
		Level:    levelFromSlog(r.Level),
		Message:  r.Message,
		State:    state,
		Scopes:   scopeFrames(ctx),
		Sequence: h.logger.reg.seq.Add(1),
		Time:     t,
	}
	h.logger.reg.dispatch(rec)
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	d := h.clone()
	prefix := d.prefix()
	for _, a := range attrs {
		d.attrs = appendAttr(d.attrs, prefix, a)
	}
	return d
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	d := h.clone()
	d.groups = append(d.groups, name)
	return d
}

func (h *slogHandler) clone() *slogHandler {
	return &slogHandler{
		logger: h.logger,
		attrs:  append([]Field(nil), h.attrs...),
		groups: append([]string(nil), h.groups...),
	}
}

func (h *slogHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func appendAttr(state []Field, prefix string, a slog.Attr) []Field {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		gp := prefix
		if a.Key != "" {
			gp = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			state = appendAttr(state, gp, ga)
		}
		return state
	}
	if a.Key == "" {
		return state
	}
	return append(state, Field{prefix + a.Key, v.Any()})
}

// levelFromSlog maps the open-ended slog scale onto the six levels:
// below debug is trace, above error is crit.
func levelFromSlog(level slog.Level) Level {
	switch {
	case level < slog.LevelDebug:
		return LevelTrace
	case level < slog.LevelInfo:
		return LevelDebug
	case level < slog.LevelWarn:
		return LevelInfo
	case level < slog.LevelError:
		return LevelWarn
	case level <= slog.LevelError+3:
		return LevelError
	}
	return LevelCrit
}
