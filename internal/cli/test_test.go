package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommand_Passing(t *testing.T) {
	output, err := executeTest(t, "text", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ filters (3 case(s))")
	assert.Contains(t, output, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_SingleFile(t *testing.T) {
	output, err := executeTest(t, "text", "testdata/scenarios/filters.yaml")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ filters")
}

func TestTestCommand_Failing(t *testing.T) {
	output, err := executeTest(t, "text", "testdata/failing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ wrong")
	assert.Contains(t, output, "case by_author: ids mismatch")
	assert.Contains(t, output, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_JSON(t *testing.T) {
	output, err := executeTest(t, "json", "testdata/scenarios", "testdata/failing")
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTestCommand_Filter(t *testing.T) {
	output, err := executeTest(t, "text", "testdata/scenarios", "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found.")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, err := executeTest(t, "text", "testdata/nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_GoldenMismatchAndUpdate(t *testing.T) {
	dir := t.TempDir()
	copyFile(t, "testdata/scenarios/filters.yaml", filepath.Join(dir, "scenarios", "filters.yaml"))
	for _, name := range []string{"entities.cue", "comments.cue"} {
		copyFile(t, filepath.Join(testSpecsDir, name), filepath.Join(dir, "specs", name))
	}
	golden := filepath.Join(dir, "scenarios", "golden", "filters.golden")
	require.NoError(t, os.MkdirAll(filepath.Dir(golden), 0o755))
	require.NoError(t, os.WriteFile(golden, []byte("stale\n"), 0o644))

	output, err := executeTest(t, "text", filepath.Join(dir, "scenarios"))
	require.Error(t, err)
	assert.Contains(t, output, "golden file mismatch")

	output, err = executeTest(t, "text", filepath.Join(dir, "scenarios"), "--update")
	require.NoError(t, err)
	assert.Contains(t, output, "✓ filters (golden updated)")

	want, err := os.ReadFile("testdata/scenarios/golden/filters.golden")
	require.NoError(t, err)
	got, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	_, err = executeTest(t, "text", filepath.Join(dir, "scenarios"))
	require.NoError(t, err)
}

func TestFindScenarioFiles_SkipsGolden(t *testing.T) {
	files, err := findScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("testdata", "scenarios", "filters.yaml")}, files)

	_, err = findScenarioFiles("testdata/scenarios", "[")
	assert.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("a", "b", "golden", "c.golden"),
		goldenFilePath(filepath.Join("a", "b", "c.yaml")))
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
