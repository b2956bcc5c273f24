// Package schema describes the comparable types of entity columns and
// coerces parameter values to them before they reach a predicate.
package schema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/syto/internal/ir"
)

// ErrUnparsable is wrapped by every coercion failure.
var ErrUnparsable = errors.New("value cannot be coerced to column type")

// ColumnType is the comparable type of a column.
type ColumnType string

const (
	Text      ColumnType = "text"
	Integer   ColumnType = "integer"
	Real      ColumnType = "real"
	Bool      ColumnType = "bool"
	Date      ColumnType = "date"
	Timestamp ColumnType = "timestamp"
)

// ParseColumnType accepts the canonical names plus common SQL spellings.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "varchar":
		return Text, nil
	case "integer", "int", "bigint":
		return Integer, nil
	case "real", "float", "double", "decimal", "numeric":
		return Real, nil
	case "bool", "boolean":
		return Bool, nil
	case "date":
		return Date, nil
	case "timestamp", "datetime", "time":
		return Timestamp, nil
	default:
		return "", fmt.Errorf("unknown column type %q", s)
	}
}

// SQLType returns the SQLite declared type for the column.
func (t ColumnType) SQLType() string {
	switch t {
	case Integer, Bool:
		return "INTEGER"
	case Real:
		return "REAL"
	case Date:
		return "DATE"
	case Timestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// Columns maps column names to their types. Lookups accept qualified names.
type Columns map[string]ColumnType

// Lookup returns the type of field. A qualified field ("entities.weight")
// matches either its exact entry or its unqualified column.
func (c Columns) Lookup(field string) (ColumnType, bool) {
	if t, ok := c[field]; ok {
		return t, true
	}
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		t, ok := c[field[i+1:]]
		return t, ok
	}
	return "", false
}

// Coerce converts field's value to the field's comparable type. Fields
// without a declared type pass through unchanged.
func (c Columns) Coerce(field string, v ir.Value) (ir.Value, error) {
	t, ok := c.Lookup(field)
	if !ok {
		return v, nil
	}
	return Coerce(t, v)
}

// Coerce converts v to type t. Null passes through.
//
// Numeric strings become Int or Float, ISO dates and timestamps become Time
// (UTC). Failures wrap ErrUnparsable.
func Coerce(t ColumnType, v ir.Value) (ir.Value, error) {
	if ir.IsNull(v) {
		return ir.Null{}, nil
	}

	switch t {
	case Text:
		return coerceText(v), nil
	case Integer:
		return coerceInteger(v)
	case Real:
		return coerceReal(v)
	case Bool:
		return coerceBool(v)
	case Date:
		return coerceTime(v, true)
	case Timestamp:
		return coerceTime(v, false)
	default:
		return v, nil
	}
}

func coerceText(v ir.Value) ir.Value {
	if s, ok := v.(ir.String); ok {
		return s
	}
	return ir.String(v.String())
}

func coerceInteger(v ir.Value) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Int:
		return val, nil
	case ir.Float:
		f := float64(val)
		if !integral(f) {
			return nil, unparsable(v, Integer)
		}
		return ir.Int(int64(f)), nil
	case ir.String:
		s := strings.TrimSpace(string(val))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ir.Int(n), nil
		}
		// "200.0" is still an integer
		if f, err := strconv.ParseFloat(s, 64); err == nil && integral(f) {
			return ir.Int(int64(f)), nil
		}
		return nil, unparsable(v, Integer)
	case ir.Bool:
		if val {
			return ir.Int(1), nil
		}
		return ir.Int(0), nil
	default:
		return nil, unparsable(v, Integer)
	}
}

// integral reports whether f is a whole number that converts to int64
// exactly. 2^63 itself is out of range.
func integral(f float64) bool {
	return f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63
}

func coerceReal(v ir.Value) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Float:
		return val, nil
	case ir.Int:
		return ir.Float(float64(val)), nil
	case ir.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, unparsable(v, Real)
		}
		return ir.Float(f), nil
	default:
		return nil, unparsable(v, Real)
	}
}

func coerceBool(v ir.Value) (ir.Value, error) {
	switch val := v.(type) {
	case ir.Bool:
		return val, nil
	case ir.Int:
		if val == 0 || val == 1 {
			return ir.Bool(val == 1), nil
		}
		return nil, unparsable(v, Bool)
	case ir.String:
		b, err := strconv.ParseBool(strings.TrimSpace(string(val)))
		if err != nil {
			return nil, unparsable(v, Bool)
		}
		return ir.Bool(b), nil
	default:
		return nil, unparsable(v, Bool)
	}
}

// timeLayouts are tried in order. All are unambiguous ISO forms.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	time.DateTime,
	time.DateOnly,
}

func coerceTime(v ir.Value, dateOnly bool) (ir.Value, error) {
	var t time.Time
	switch val := v.(type) {
	case ir.Time:
		t = val.Time()
	case ir.String:
		parsed, err := ParseTime(string(val))
		if err != nil {
			if dateOnly {
				return nil, unparsable(v, Date)
			}
			return nil, unparsable(v, Timestamp)
		}
		t = parsed
	default:
		if dateOnly {
			return nil, unparsable(v, Date)
		}
		return nil, unparsable(v, Timestamp)
	}

	if dateOnly {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return ir.NewTime(t), nil
}

// ParseTime parses an ISO date or timestamp. Values without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO date or timestamp", ErrUnparsable, s)
}

func unparsable(v ir.Value, t ColumnType) error {
	return fmt.Errorf("%w: %q is not a valid %s", ErrUnparsable, v.String(), t)
}
