package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/schema"
	"github.com/roach88/syto/internal/testutil"
)

func TestSelect_Unfiltered(t *testing.T) {
	s := createTestStore(t)
	seedEntities(t, s)

	rows, err := s.Select(context.Background(), queryir.Select{From: "entities"})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	first := rows[0]
	assert.Equal(t, int64(1), first.ID())
	assert.Equal(t, "Alpha", first["name"])
	assert.Equal(t, int64(100), first["weight"])
	assert.Equal(t, 0.5, first["rate"])
	assert.Equal(t, testutil.Date(2021, time.January, 1), first["created_at"])
}

func TestSelect_Predicates(t *testing.T) {
	s := createTestStore(t)
	seedEntities(t, s)
	ctx := context.Background()

	testCases := []struct {
		name   string
		filter queryir.Predicate
		ids    []int64
	}{
		{
			name:   "equals",
			filter: queryir.Equals{Field: "serial_number", Value: ir.String("34294WA")},
			ids:    []int64{1},
		},
		{
			name:   "qualified equals",
			filter: queryir.Equals{Field: "entities.model_number", Value: ir.String("118d")},
			ids:    []int64{1, 3},
		},
		{
			name:   "case-insensitive membership",
			filter: queryir.FoldIn{Field: "color", Values: []string{"green"}},
			ids:    []int64{1, 2, 4},
		},
		{
			name:   "closed range is inclusive",
			filter: queryir.Range{Field: "weight", Lo: ir.Int(100), Hi: ir.Int(200)},
			ids:    []int64{1, 2, 3},
		},
		{
			name:   "open upper",
			filter: queryir.Range{Field: "weight", Lo: ir.Int(200)},
			ids:    []int64{3, 4},
		},
		{
			name:   "open lower",
			filter: queryir.Range{Field: "weight", Hi: ir.Int(100)},
			ids:    []int64{1},
		},
		{
			name:   "float range",
			filter: queryir.Range{Field: "rate", Lo: ir.Float(0.5), Hi: ir.Float(0.7)},
			ids:    []int64{1, 2, 3},
		},
		{
			name: "date range",
			filter: queryir.Range{
				Field: "created_at",
				Lo:    ir.NewTime(testutil.Date(2021, time.January, 1)),
				Hi:    ir.NewTime(testutil.Date(2022, time.November, 22)),
			},
			ids: []int64{1, 2, 3},
		},
		{
			name:   "threshold",
			filter: queryir.Compare{Field: "price", Op: queryir.OpLt, Value: ir.Int(38)},
			ids:    []int64{1, 4},
		},
		{
			name: "conjunction",
			filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.FoldIn{Field: "color", Values: []string{"green"}},
				queryir.Range{Field: "weight", Lo: ir.Int(100), Hi: ir.Int(200)},
			}},
			ids: []int64{1, 2},
		},
		{
			name:   "no match",
			filter: queryir.Equals{Field: "name", Value: ir.String("Omega")},
			ids:    []int64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := s.SelectIDs(ctx, queryir.Select{From: "entities", Filter: tc.filter})
			require.NoError(t, err)
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestSelect_NoInjection(t *testing.T) {
	s := createTestStore(t)
	seedEntities(t, s)
	ctx := context.Background()

	rows, err := s.Select(ctx, queryir.Select{
		From:   "entities",
		Filter: queryir.Equals{Field: "name", Value: ir.String("'; DROP TABLE entities; --")},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.Select(ctx, queryir.Select{From: "entities"})
	require.NoError(t, err)
	assert.Len(t, rows, 4, "table must survive")
}

func TestSelect_Projection(t *testing.T) {
	s := createTestStore(t)
	seedEntities(t, s)

	rows, err := s.Select(context.Background(), queryir.Select{
		From:    "entities",
		Columns: []string{"id", "name"},
		OrderBy: "name",
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{"id": int64(1), "name": "Alpha"}, rows[0])
	assert.Equal(t, "Beta", rows[1]["name"])
	assert.Equal(t, "Delta", rows[2]["name"])
}

func TestSelect_CompileError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Select(context.Background(), queryir.Select{From: "bad table"})
	require.Error(t, err)
}

func TestColumns_UnknownTable(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Columns(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestSelect_FoldInFoldsASCIIOnly(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureTable(ctx, "fruit", schema.Columns{"name": schema.Text}))
	_, err := s.InsertAll(ctx, "fruit", []map[string]any{
		{"name": "ÄPFEL"},
		{"name": "äpfel"},
		{"name": "APPLE"},
	})
	require.NoError(t, err)

	ids, err := s.SelectIDs(ctx, queryir.Select{
		From:   "fruit",
		Filter: queryir.FoldIn{Field: "name", Values: []string{"äpfel", "apple"}},
	})
	require.NoError(t, err)
	// SQLite's LOWER leaves Ä untouched, so only the stored lower-case
	// spelling matches the folded value.
	assert.Equal(t, []int64{2, 3}, ids)
}
