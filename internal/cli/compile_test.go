package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syto/internal/compiler"
)

const testSpecsDir = "testdata/specs"

func executeCompile(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileValidSpecs(t *testing.T) {
	output, err := executeCompile(t, "text", testSpecsDir)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ Compiled 3 entity(ies)")
	assert.Contains(t, output, "Entity (table entities, filter EntityFilter)")
	assert.Contains(t, output, "entity equality serial_number <- serial_number")
	assert.Contains(t, output, "entity equality entities.model_number <- model")
	assert.Contains(t, output, "entity value name <- full_name (case-insensitive)")
	assert.Contains(t, output, "entity range entities.size_y <- height_from..height_to")
	assert.Contains(t, output, "filter range weight <- wgt_from..wgt_to")
	assert.Contains(t, output, "filter threshold price < <- price_less_than")
	assert.Contains(t, output, "range created_at <- start_date..end_date")
	assert.Contains(t, output, "Widget (table widgets, filter WidgetFilter)\n  no filters defined")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	output, err := executeCompile(t, "json", testSpecsDir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Entities, 3)

	var ent EntitySummary
	for _, e := range resp.Data.Entities {
		if e.Name == "Entity" {
			ent = e
		}
	}
	require.Len(t, ent.Rules, 10)
	assert.Equal(t, RuleSummary{Kind: "equality", Field: "serial_number", Param: "serial_number", Level: "entity"}, ent.Rules[0])
	assert.Equal(t, RuleSummary{Kind: "range", Field: "weight", From: "wgt_from", To: "wgt_to", Level: "filter"}, ent.Rules[7])
	assert.Equal(t, []ThresholdSummary{{Param: "price_less_than", Field: "price", Op: "<"}}, ent.Thresholds)
	assert.Equal(t, "integer", ent.Columns["weight"])
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	output, err := executeCompile(t, "text", testSpecsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote normalized entities to")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Entities, 3)
}

func TestCompileBrokenSpecs(t *testing.T) {
	output, err := executeCompile(t, "text", "testdata/broken")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 2 error(s)")

	assert.Contains(t, output, "✗ Compilation failed")
	assert.Contains(t, output, compiler.ErrCodeTable)
	assert.Contains(t, output, compiler.ErrCodeColumns)
}

func TestCompileBrokenSpecsJSON(t *testing.T) {
	output, err := executeCompile(t, "json", "testdata/broken")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Error  CLIError   `json:"error"`
		Data   []CLIError `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, compiler.ErrCodeTable, resp.Error.Code)
}

func TestCompileMissingDir(t *testing.T) {
	output, err := executeCompile(t, "text", "testdata/nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, compiler.ErrCodeNotFound)
}

func TestDescribeRule(t *testing.T) {
	tests := []struct {
		rule RuleSummary
		want string
	}{
		{RuleSummary{Kind: "equality", Field: "a", Param: "a"}, "equality a <- a"},
		{RuleSummary{Kind: "value", Field: "b", Param: "k", CaseInsensitive: true}, "value b <- k (case-insensitive)"},
		{RuleSummary{Kind: "range", Field: "c", From: "c_from", To: "c_to"}, "range c <- c_from..c_to"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeRule(tt.rule))
	}
}
