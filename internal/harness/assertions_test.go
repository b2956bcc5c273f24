package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestCheckExpect_NilExpectChecksNothing(t *testing.T) {
	assert.Empty(t, CheckExpect(nil, CaseResult{Name: "a", Error: "boom"}))
}

func TestCheckExpect_Match(t *testing.T) {
	cr := CaseResult{
		Name:     "a",
		SQL:      `SELECT "t".* FROM "t" ORDER BY "t"."id" ASC`,
		Args:     []any{"green", int64(50), 0.5, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		IDs:      []int64{1, 2},
		Warnings: []string{"UNCONFIGURED_FILTER"},
	}
	expect := &Expect{
		SQL:      cr.SQL,
		Args:     []any{"green", 50, 0.5, "2021-01-01"},
		IDs:      []int64{1, 2},
		Count:    intPtr(2),
		Warnings: []string{"UNCONFIGURED_FILTER"},
	}
	assert.Empty(t, CheckExpect(expect, cr))
}

func TestCheckExpect_Mismatches(t *testing.T) {
	cr := CaseResult{Name: "a", SQL: "SELECT 1", Args: []any{int64(1)}, IDs: []int64{1}}

	tests := []struct {
		name   string
		expect Expect
		typ    string
	}{
		{"sql", Expect{SQL: "SELECT 2"}, "sql"},
		{"args", Expect{Args: []any{2}}, "args"},
		{"ids", Expect{IDs: []int64{2}}, "ids"},
		{"count", Expect{Count: intPtr(3)}, "count"},
		{"warnings", Expect{Warnings: []string{"UNCONFIGURED_FILTER"}}, "warnings"},
		{"expected error", Expect{Error: "INVALID_PARAMETER"}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := CheckExpect(&tt.expect, cr)
			require.Len(t, failures, 1)
			assert.Equal(t, tt.typ, failures[0].Type)
			assert.Equal(t, "a", failures[0].Case)
		})
	}
}

func TestCheckExpect_Errors(t *testing.T) {
	failed := CaseResult{
		Name:      "bad",
		Error:     `INVALID_PARAMETER: parameter "wgt_from" for field weight`,
		ErrorCode: "INVALID_PARAMETER",
		ErrorKey:  "wgt_from",
	}

	assert.Empty(t, CheckExpect(&Expect{Error: "INVALID_PARAMETER", Key: "wgt_from"}, failed))

	failures := CheckExpect(&Expect{Error: "INVALID_PARAMETER", Key: "wgt_to"}, failed)
	require.Len(t, failures, 1)
	assert.Equal(t, "key", failures[0].Type)

	failures = CheckExpect(&Expect{IDs: []int64{1}}, failed)
	require.Len(t, failures, 2)
	assert.Equal(t, "error", failures[0].Type)
	assert.Equal(t, "ids", failures[1].Type)
}

func TestCheckExpect_NotExecuted(t *testing.T) {
	cr := CaseResult{Name: "a", SQL: "SELECT 1", Args: []any{}}

	failures := CheckExpect(&Expect{IDs: []int64{}, Count: intPtr(0)}, cr)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Actual, "not executed")
	assert.Contains(t, failures[1].Actual, "not executed")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Case: "c", Type: "ids", Expected: "[1]", Actual: "[2]"}
	assert.Equal(t, "case c: ids mismatch\n  Expected: [1]\n  Actual: [2]", err.Error())
}
