package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_Entities(t *testing.T) {
	result, err := Run(loadTestScenario(t, "entities"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Cases, 16)
}

func TestRun_Comments(t *testing.T) {
	result, err := Run(loadTestScenario(t, "comments"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_RecordsOutcomes(t *testing.T) {
	result, err := Run(loadTestScenario(t, "entities"))
	require.NoError(t, err)

	byName := make(map[string]CaseResult, len(result.Cases))
	for _, c := range result.Cases {
		byName[c.Name] = c
	}

	invalid := byName["invalid_weight"]
	assert.Equal(t, "INVALID_PARAMETER", invalid.ErrorCode)
	assert.Equal(t, "wgt_from", invalid.ErrorKey)
	assert.Empty(t, invalid.SQL)
	assert.False(t, invalid.Executed())

	widget := byName["widget_unconfigured"]
	assert.Equal(t, "Widget", widget.Entity)
	assert.Equal(t, []string{"UNCONFIGURED_FILTER"}, widget.Warnings)
	assert.False(t, widget.Executed(), "widgets table is not seeded")

	// warnings do not leak between cases
	assert.Empty(t, byName["combined"].Warnings)
	assert.Equal(t, []int64{1}, byName["combined"].IDs)
}

func TestRun_FailingExpectation(t *testing.T) {
	s := loadTestScenario(t, "comments")
	s.Cases = []Case{{
		Name:   "wrong_ids",
		Params: map[string]any{"author": 1},
		Expect: &Expect{IDs: []int64{2}},
	}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "case wrong_ids: ids mismatch")
}

func TestRun_UnknownEntity(t *testing.T) {
	s := loadTestScenario(t, "comments")
	s.Cases = []Case{{Name: "ghost", Entity: "Ghost", Params: map[string]any{}}}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown entity "Ghost"`)
}

func TestRun_SeedErrors(t *testing.T) {
	t.Run("table without entity", func(t *testing.T) {
		s := loadTestScenario(t, "comments")
		s.Seed = map[string][]map[string]any{"ghosts": {{"id": 1}}}
		_, err := Run(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no entity with declared columns")
	})

	t.Run("uncoercible value", func(t *testing.T) {
		s := loadTestScenario(t, "comments")
		s.Seed = map[string][]map[string]any{"comments": {{"user_id": "abc"}}}
		_, err := Run(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column user_id")
	})
}

func TestRun_BadSpecs(t *testing.T) {
	s := loadTestScenario(t, "comments")
	s.Specs = "testdata/nowhere"
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load specs")
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(loadTestScenario(t, "entities"))
	require.NoError(t, err)
	second, err := Run(loadTestScenario(t, "entities"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Run(loadTestScenario(t, "comments"), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"scenario completed"`)
	assert.Contains(t, buf.String(), `"query_id":"harness-query"`)
}
