package loom

import (
	"fmt"
	"strings"
)

// Level indicates the severity of a log record. Levels are ordered:
// a record is emitted when its level is at or above the effective
// threshold of its category.
type Level int

const (
	// LevelTrace is for the most detailed diagnostic output. It often
	// contains sensitive payloads and should stay disabled outside
	// development.
	LevelTrace Level = iota

	// LevelDebug is for interactive debugging during development.
	LevelDebug

	// LevelInfo tracks the general flow of the application.
	LevelInfo

	// LevelWarn highlights abnormal or unexpected events that do not
	// stop the application.
	LevelWarn

	// LevelError records failures of the current operation.
	LevelError

	// LevelCrit records failures that require immediate attention,
	// such as data loss or an unrecoverable application state.
	LevelCrit

	// LevelNone is a threshold sentinel: a category configured at
	// LevelNone emits nothing, and logging at LevelNone is a no-op.
	// It is never carried by a record.
	LevelNone
)

// String returns the lowercase name of the level. Out-of-range levels
// render as "level(n)".
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	case LevelNone:
		return "none"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel converts a level name to a Level. It accepts the short
// names produced by String as well as the common long forms
// ("warning", "critical", "information"). Matching is
// case-insensitive. Unknown names return LevelInfo and a non-nil
// error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "information":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "crit", "critical":
		return LevelCrit, nil
	case "none":
		return LevelNone, nil
	}
	return LevelInfo, fmt.Errorf("loom: unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
