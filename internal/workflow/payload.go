package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is the structured data extracted from a matched event. Values may
// be nested maps, addressed with dotted paths such as "post.title".
type Payload map[string]interface{}

// Lookup resolves path against p. An exact key wins over a nested walk, so a
// flat "post.title" key shadows post -> title.
func (p Payload) Lookup(path string) (interface{}, bool) {
	if p == nil || path == "" {
		return nil, false
	}
	if v, ok := p[path]; ok {
		return v, true
	}

	var current interface{} = map[string]interface{}(p)
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil, false
		}
		next, ok := child(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func child(node interface{}, key string) (interface{}, bool) {
	switch m := node.(type) {
	case map[string]interface{}:
		v, ok := m[key]
		return v, ok
	case Payload:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	case []interface{}:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(m) {
			return nil, false
		}
		return m[i], true
	default:
		return nil, false
	}
}

// Values returns the values named by fields in order, nil for misses.
func (p Payload) Values(fields ...string) []interface{} {
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		out[i], _ = p.Lookup(f)
	}
	return out
}

// Clone copies the top level of p. Nested maps are shared.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with extra keys added. Existing keys win.
func (p Payload) Merge(extra map[string]interface{}) Payload {
	out := p.Clone()
	for k, v := range extra {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Format renders v for substitution into message text. JSON numbers arrive
// as float64; integral ones print without a fraction.
func Format(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// UserID normalises an identity value from a payload or event argument.
// Zero and empty values yield "".
func UserID(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int:
		if t <= 0 {
			return ""
		}
	case int64:
		if t <= 0 {
			return ""
		}
	case float64:
		if t <= 0 {
			return ""
		}
	}
	return Format(v)
}
