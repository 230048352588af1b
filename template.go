package loom

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Markers substituted for values the destructurer refuses to expand.
const (
	// CyclicMarker replaces a Fielder already being expanded on the
	// current path.
	CyclicMarker = "<cyclic>"

	// TruncatedMarker replaces a Fielder nested deeper than the
	// expansion bound.
	TruncatedMarker = "<truncated>"
)

// maxDestructureDepth bounds recursive Fielder expansion.
const maxDestructureDepth = 8

// maxCachedTemplates bounds the global parse cache. Beyond it,
// templates are still parsed per call but no longer retained, which
// keeps dynamically generated template strings from growing the cache
// without bound.
const maxCachedTemplates = 1024

// A template is the parsed form of a message template such as
// "Processing order {OrderId} for amount {Amount}".
//
// Parse rules:
//
//   - {Name} is a placeholder consuming one positional argument.
//   - A leading @ ({@Name}) requests destructuring; the @ is not part
//     of the captured key.
//   - A suffix after ':' or ',' inside the braces is a format hint; it
//     is excluded from the key and ignored for rendering.
//   - {{ and }} are literal braces.
//   - An unterminated or empty brace pair is literal text.
type template struct {
	text  string
	segs  []segment
	holes int
}

// A segment is either literal text (name == "") or a placeholder.
type segment struct {
	lit         string
	name        string
	destructure bool
}

var (
	templateCache sync.Map // template text → *template
	templateCount atomic.Int32
)

func cachedTemplate(text string) *template {
	if v, ok := templateCache.Load(text); ok {
		return v.(*template)
	}
	t := parseTemplate(text)
	if templateCount.Load() < maxCachedTemplates {
		if _, loaded := templateCache.LoadOrStore(text, t); !loaded {
			templateCount.Add(1)
		}
	}
	return t
}

func parseTemplate(text string) *template {
	t := &template{text: text}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{lit: lit.String()})
			lit.Reset()
		}
	}
	i := 0
	for i < len(text) {
		c := text[i]
		if c == '}' {
			if i+1 < len(text) && text[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			lit.WriteByte('}')
			i++
			continue
		}
		if c != '{' {
			j := strings.IndexAny(text[i:], "{}")
			if j < 0 {
				lit.WriteString(text[i:])
				break
			}
			lit.WriteString(text[i : i+j])
			i += j
			continue
		}
		if i+1 < len(text) && text[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		end := strings.IndexByte(text[i+1:], '}')
		if end < 0 {
			lit.WriteString(text[i:])
			break
		}
		name, ok := placeholderName(text[i+1 : i+1+end])
		if !ok {
			lit.WriteString(text[i : i+end+2])
			i += end + 2
			continue
		}
		flush()
		seg := segment{name: name}
		if strings.HasPrefix(name, "@") && len(name) > 1 {
			seg.name = name[1:]
			seg.destructure = true
		}
		t.segs = append(t.segs, seg)
		t.holes++
		i += end + 2
	}
	flush()
	return t
}

// placeholderName extracts the key from the text between braces,
// dropping any format hint. It rejects shapes that cannot be keys so
// that stray braces in a message degrade to literal text.
func placeholderName(inner string) (string, bool) {
	if j := strings.IndexAny(inner, ":,"); j >= 0 {
		inner = inner[:j]
	}
	if inner == "" || inner == "@" || strings.ContainsAny(inner, "{} ") {
		return "", false
	}
	return inner, true
}

// buildState captures args against the template and renders the final
// message. The returned state always starts with the OriginalFormat
// entry, followed by one entry per placeholder in template order, then
// one argN entry per surplus argument. Placeholders beyond the last
// argument capture ErrMissing.
func buildState(tmpl *template, args []interface{}) (string, []Field) {
	state := make([]Field, 0, tmpl.holes+1)
	state = append(state, Field{OriginalFormatKey, tmpl.text})

	captured := make([]interface{}, 0, tmpl.holes)
	argIdx := 0
	for _, seg := range tmpl.segs {
		if seg.name == "" {
			continue
		}
		var v interface{} = ErrMissing
		if argIdx < len(args) {
			v = args[argIdx]
			if seg.destructure {
				v = destructureValue(v)
			}
		}
		argIdx++
		captured = append(captured, v)
		state = append(state, Field{seg.name, v})
	}
	for ; argIdx < len(args); argIdx++ {
		state = append(state, Field{"arg" + strconv.Itoa(argIdx), args[argIdx]})
	}

	var sb strings.Builder
	sb.Grow(len(tmpl.text))
	hole := 0
	for _, seg := range tmpl.segs {
		if seg.name == "" {
			sb.WriteString(seg.lit)
			continue
		}
		sb.WriteString(formatValue(captured[hole]))
		hole++
	}
	return sb.String(), state
}

// destructureValue expands v through the Fielder interface. Values
// that do not implement Fielder pass through unchanged.
func destructureValue(v interface{}) interface{} {
	return destructure(v, nil, 0)
}

func destructure(v interface{}, path []uintptr, depth int) interface{} {
	f, ok := v.(Fielder)
	if !ok {
		return v
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return v
	}
	if depth >= maxDestructureDepth {
		return TruncatedMarker
	}
	if id, ok := pointerOf(v); ok {
		for _, seen := range path {
			if seen == id {
				return CyclicMarker
			}
		}
		path = append(path, id)
	}
	fields := f.LogFields()
	out := make(Structure, 0, len(fields))
	for _, fd := range fields {
		out = append(out, Field{fd.Key, destructure(fd.Value, path, depth+1)})
	}
	return out
}

// pointerOf yields a cycle-detection identity for reference kinds.
// Value kinds cannot close a cycle without a reference on the path, so
// they carry no identity.
func pointerOf(v interface{}) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.Pointer(), true
	}
	return 0, false
}

// frameFromKeyvals pairs keyvals into a Structure, honoring the "@"
// destructuring prefix on keys. A trailing key without a value
// captures ErrMissing, and non-string keys are stringified.
func frameFromKeyvals(keyvals []interface{}) Structure {
	frame := make(Structure, 0, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := keyField(keyvals[i])
		var value interface{} = ErrMissing
		if i+1 < len(keyvals) {
			value = keyvals[i+1]
		}
		if strings.HasPrefix(key, "@") && len(key) > 1 {
			key = key[1:]
			value = destructureValue(value)
		}
		frame = append(frame, Field{key, value})
	}
	return frame
}
