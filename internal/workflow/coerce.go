package workflow

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coercion converts an action-link argument to a declared type.
type Coercion struct {
	name string
	fn   func(v interface{}) (interface{}, error)
}

// Built-in coercions for LinkArgs schemas. Int yields int64, Float float64,
// String the Format rendering and Bool a bool.
var (
	Int    = Coercion{name: "int", fn: toInt}
	Float  = Coercion{name: "float", fn: toFloat}
	String = Coercion{name: "string", fn: toString}
	Bool   = Coercion{name: "bool", fn: toBool}
)

func (c Coercion) String() string {
	return c.name
}

func (c Coercion) valid() bool {
	return c.fn != nil
}

// Coerce converts v to the target type or reports why it cannot.
func (c Coercion) Coerce(v interface{}) (interface{}, error) {
	if c.fn == nil {
		return nil, fmt.Errorf("undefined coercion")
	}
	return c.fn(v)
}

func toInt(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", t)
		}
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("value %v is not an integer", t)
		}
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return nil, fmt.Errorf("value %v overflows int64", t)
		}
		return int64(t), nil
	case float32:
		return toInt(float64(t))
	case json.Number:
		return toInt(string(t))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not an integer", t)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to int", v)
	}
}

func toFloat(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case json.Number:
		return toFloat(string(t))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", t)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to float", v)
	}
}

func toString(v interface{}) (interface{}, error) {
	switch v.(type) {
	case nil:
		return nil, fmt.Errorf("value is missing")
	case map[string]interface{}, []interface{}:
		return nil, fmt.Errorf("cannot coerce %T to string", v)
	default:
		return Format(v), nil
	}
}

func toBool(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("value %q is not a boolean", t)
		}
		return b, nil
	case int:
		return t != 0, nil
	case int64:
		return t != 0, nil
	case float64:
		return t != 0, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to bool", v)
	}
}
