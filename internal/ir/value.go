package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface representing a single parameter value.
// Only Null, String, Int, Float, Bool, and Time implement this.
type Value interface {
	value() // Sealed - only these types implement it

	// String renders the value the way it would appear in a query string.
	String() string
}

// Null represents an explicitly absent value (JSON null, Go nil).
// A key bound to Null is treated as absent by Params.Lookup.
type Null struct{}

func (Null) value() {}

// String implements Value.
func (Null) String() string { return "" }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) value() {}

// String implements Value.
func (s String) String() string { return string(s) }

// Int represents an integer value. Always int64.
type Int int64

func (Int) value() {}

// String implements Value.
func (n Int) String() string { return strconv.FormatInt(int64(n), 10) }

// Float represents a floating point value.
type Float float64

func (Float) value() {}

// String implements Value.
// Uses the shortest representation that round-trips.
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// String implements Value.
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Time represents a timestamp. Construct with NewTime to keep it in UTC.
type Time struct {
	t time.Time
}

func (Time) value() {}

// NewTime creates a Time value normalized to UTC.
func NewTime(t time.Time) Time {
	return Time{t: t.UTC()}
}

// Time returns the underlying time.Time (UTC).
func (t Time) Time() time.Time { return t.t }

// String implements Value. Dates without a clock component render as 2006-01-02.
func (t Time) String() string {
	if t.t.Hour() == 0 && t.t.Minute() == 0 && t.t.Second() == 0 && t.t.Nanosecond() == 0 {
		return t.t.Format(time.DateOnly)
	}
	return t.t.Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler for Time.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// IsBlank reports whether v carries no usable value: nil, Null, or a
// whitespace-only String.
func IsBlank(v Value) bool {
	if IsNull(v) {
		return true
	}
	if s, ok := v.(String); ok {
		return strings.TrimSpace(string(s)) == ""
	}
	return false
}

// FromAny converts a Go value into a Value.
//
// Supported inputs: nil, Value, string, []byte, all integer kinds, float32,
// float64, bool, time.Time, json.Number and fmt.Stringer. Integral floats are
// kept as Float so the caller's intent is preserved; coercion to a column type
// happens later.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case bool:
		return Bool(val), nil
	case time.Time:
		return NewTime(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Float(f), nil
	case fmt.Stringer:
		return String(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported parameter type: %T", v)
	}
}

// Native converts a Value into the Go type database/sql drivers accept.
// Null becomes nil.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Time:
		return val.t
	default:
		return nil
	}
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
