package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/engine"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/testutil"
)

func TestValidate_Fixtures(t *testing.T) {
	assert.Empty(t, Validate(testutil.Entities()))
	assert.Empty(t, Validate(testutil.Comments()))
	assert.Empty(t, Validate(testutil.Unconfigured()))
}

func TestValidate_DuplicateParamKey(t *testing.T) {
	ent := &engine.Entity{
		Name:  "E",
		Table: "t",
		Attrs: attrmap.MustBuild(attrmap.Name("color")),
		Filter: &engine.Filter{
			Attrs: attrmap.MustBuild(attrmap.Options("color", attrmap.Opts{CaseInsensitive: true})),
		},
	}

	errs := Validate(ent)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateParamKey, errs[0].Code)
	assert.Contains(t, errs[0].Message, `"color"`)
}

func TestValidate_Thresholds(t *testing.T) {
	ent := testutil.Entities()
	ent.Filter.Extension = engine.Thresholds{
		Rules: []engine.Threshold{
			{Param: "color", Field: "price", Op: queryir.OpLt},
			{Param: "cheap", Field: "cost", Op: queryir.OpLt},
		},
		Columns: ent.Columns,
	}

	errs := Validate(ent)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrThresholdShadows, errs[0].Code)
	assert.Equal(t, ErrThresholdUndeclared, errs[1].Code)
}

func TestValidate_InvalidEntity(t *testing.T) {
	errs := Validate(&engine.Entity{Table: "t"})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEntityInvalid, errs[0].Code)

	errs = Validate(nil)
	require.Len(t, errs, 1)
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "attrs", Message: "dup", Code: ErrDuplicateParamKey}
	assert.Equal(t, "[E202] attrs: dup", err.Error())
}
