package harness

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/roach88/syto/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes the case name and both sides of the comparison.
type AssertionError struct {
	Case     string // Case name
	Type     string // Field that failed: sql, args, ids, count, error, key, warnings
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("case %s: %s mismatch\n  Expected: %s\n  Actual: %s", e.Case, e.Type, e.Expected, e.Actual)
}

// CheckExpect compares a case outcome against its expect clause and returns
// every failed expectation. A nil clause checks nothing.
func CheckExpect(expect *Expect, cr CaseResult) []*AssertionError {
	if expect == nil {
		return nil
	}

	var failures []*AssertionError
	fail := func(typ, expected, actual string) {
		failures = append(failures, &AssertionError{Case: cr.Name, Type: typ, Expected: expected, Actual: actual})
	}

	if expect.Error != "" {
		if cr.ErrorCode != expect.Error {
			fail("error", expect.Error, describeError(cr))
		}
		if expect.Key != "" && cr.ErrorKey != expect.Key {
			fail("key", expect.Key, cr.ErrorKey)
		}
	} else if cr.Error != "" {
		fail("error", "no error", cr.Error)
	}

	if expect.SQL != "" && cr.SQL != expect.SQL {
		fail("sql", expect.SQL, cr.SQL)
	}

	if expect.Args != nil {
		want, wantErr := ir.MarshalCanonical(normalizeArgs(expect.Args))
		got, gotErr := ir.MarshalCanonical(cr.Args)
		switch {
		case wantErr != nil:
			fail("args", fmt.Sprintf("encodable args (%v)", wantErr), string(got))
		case gotErr != nil:
			fail("args", string(want), fmt.Sprintf("unencodable args (%v)", gotErr))
		case !bytes.Equal(want, got):
			fail("args", string(want), string(got))
		}
	}

	if expect.IDs != nil {
		if !cr.Executed() {
			fail("ids", fmt.Sprint(expect.IDs), "query not executed (table not seeded)")
		} else if !slices.Equal(expect.IDs, cr.IDs) {
			fail("ids", fmt.Sprint(expect.IDs), fmt.Sprint(cr.IDs))
		}
	}

	if expect.Count != nil {
		if !cr.Executed() {
			fail("count", fmt.Sprint(*expect.Count), "query not executed (table not seeded)")
		} else if len(cr.IDs) != *expect.Count {
			fail("count", fmt.Sprint(*expect.Count), fmt.Sprint(len(cr.IDs)))
		}
	}

	if expect.Warnings != nil && !slices.Equal(expect.Warnings, cr.Warnings) {
		fail("warnings", fmt.Sprint(expect.Warnings), fmt.Sprint(cr.Warnings))
	}

	return failures
}

// normalizeArgs converts YAML scalars into canonical-JSON-encodable values.
func normalizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if v, err := ir.FromAny(a); err == nil {
			out[i] = v
		} else {
			out[i] = a
		}
	}
	return out
}

func describeError(cr CaseResult) string {
	if cr.Error == "" {
		return "no error"
	}
	return cr.ErrorCode + " (" + cr.Error + ")"
}
