package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syto/internal/testutil"
)

func TestLoadSpecs(t *testing.T) {
	result, errs := LoadSpecs("testdata/specs", LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Entities, 3)

	ent := result.Entity("Entity")
	require.NotNil(t, ent)
	assert.Equal(t, testutil.Entities().AttributeMap().Rules(), ent.AttributeMap().Rules())

	comment := result.Entity("Comment")
	require.NotNil(t, comment)
	assert.Equal(t, testutil.Comments().AttributeMap().Rules(), comment.AttributeMap().Rules())

	widget := result.Entity("Widget")
	require.NotNil(t, widget)
	assert.True(t, widget.AttributeMap().IsEmpty())

	assert.Nil(t, result.Entity("Missing"))
}

func TestLoadSpecs_CollectAll(t *testing.T) {
	result, errs := LoadSpecs("testdata/broken", LoadModeCollectAll)
	require.Len(t, errs, 2)
	require.NotNil(t, result)
	assert.Len(t, result.Entities, 1)

	var le *LoadError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, ErrCodeTable, le.Code)
	assert.Contains(t, le.Message, "entity.NoTable")

	require.True(t, errors.As(errs[1], &le))
	assert.Equal(t, ErrCodeColumns, le.Code)
	assert.True(t, le.Pos.IsValid())
}

func TestLoadSpecs_FailFast(t *testing.T) {
	_, errs := LoadSpecs("testdata/broken", LoadModeFailFast)
	assert.Len(t, errs, 1)
}

func TestLoadSpecs_PathErrors(t *testing.T) {
	testCases := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") }, ErrCodeNotFound},
		{"file", func(t *testing.T) string {
			path := filepath.Join(t.TempDir(), "x.cue")
			require.NoError(t, os.WriteFile(path, []byte("package x"), 0644))
			return path
		}, ErrCodeNotFound},
		{"empty", func(t *testing.T) string { return t.TempDir() }, ErrCodeNoFiles},
		{"no entities", func(t *testing.T) string {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "x.cue"), []byte("package x\n\nother: 1\n"), 0644))
			return dir
		}, ErrCodeGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := LoadSpecs(tc.dir(t), LoadModeFailFast)
			require.Len(t, errs, 1)
			var le *LoadError
			require.True(t, errors.As(errs[0], &le))
			assert.Equal(t, tc.code, le.Code)
		})
	}
}

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeAttrs, MapFieldToErrorCode("attrs"))
	assert.Equal(t, ErrCodeFilter, MapFieldToErrorCode("filter.attrs"))
	assert.Equal(t, ErrCodeThreshold, MapFieldToErrorCode("filter.thresholds"))
	assert.Equal(t, ErrCodeGeneric, MapFieldToErrorCode("cue"))
}
