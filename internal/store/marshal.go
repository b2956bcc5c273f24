package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/schema"
)

// marshalColumns converts column types to canonical JSON TEXT for the
// catalog.
func marshalColumns(cols schema.Columns) (string, error) {
	obj := make(map[string]any, len(cols))
	for name, t := range cols {
		obj[name] = string(t)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal columns: %w", err)
	}
	return string(data), nil
}

// unmarshalColumns parses catalog JSON back into column types.
func unmarshalColumns(data string) (schema.Columns, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	cols := make(schema.Columns, len(raw))
	for name, t := range raw {
		ct, err := schema.ParseColumnType(t)
		if err != nil {
			return nil, fmt.Errorf("unmarshal columns: column %s: %w", name, err)
		}
		cols[name] = ct
	}
	return cols, nil
}

// bindValue converts a row value into something go-sqlite3 binds. ir values
// are unwrapped; times are normalized to UTC so stored text sorts correctly.
func bindValue(v any) any {
	switch val := v.(type) {
	case ir.Value:
		return bindValue(ir.Native(val))
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}

// scanValue normalizes a driver value read from a row. TEXT may arrive as
// []byte depending on the declared type.
func scanValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}
