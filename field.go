package loom

import (
	"errors"
	"fmt"
	"strings"
)

// OriginalFormatKey is the key of the first entry of every template
// built state. Its value is the unexpanded template text, so sinks
// that index by message shape can group records independently of the
// captured argument values.
const OriginalFormatKey = "OriginalFormat"

// ErrMissing is the placeholder value captured for a template hole or
// a scope key that has no corresponding argument.
var ErrMissing = errors.New("(MISSING)")

// A Field is one named value captured from a message template or a
// scope frame. Order is significant wherever fields travel in slices.
type Field struct {
	Key   string
	Value interface{}
}

// A Structure is an ordered set of fields produced by destructuring a
// value or by capturing a scope frame. Unlike a map it preserves
// capture order and tolerates duplicate keys.
type Structure []Field

// Get returns the value of the first field with the given key.
func (s Structure) Get(key string) (interface{}, bool) {
	for _, f := range s {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String renders the structure as {k1=v1 k2=v2 ...}, nesting
// recursively. It is what placeholders expand to when a destructured
// value is rendered into a message.
func (s Structure) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(f.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

// A Fielder exposes a value's loggable fields. Values passed to a
// destructuring placeholder ({@Name}) or a destructuring scope key
// ("@Name") are decomposed through this interface; values that do not
// implement it are captured as opaque scalars. Implementations choose
// exactly which fields leak into logs, so secrets stay out by
// construction rather than by reflection filters.
type Fielder interface {
	LogFields() []Field
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case Structure:
		return x.String()
	}
	return fmt.Sprint(v)
}

// keyField coerces an arbitrary keyval key to a string key.
func keyField(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
