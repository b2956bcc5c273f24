package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syto/internal/ir"
)

func TestSelect_ImplementsQuery(t *testing.T) {
	var q Query = Select{From: "entities"}
	assert.NotNil(t, q)

	switch q.(type) {
	case Select:
		// Expected
	default:
		t.Fatal("unexpected type")
	}
}

func TestPredicates_ImplementPredicate(t *testing.T) {
	// Compile-time check via assignment
	var _ Predicate = Equals{}
	var _ Predicate = FoldIn{}
	var _ Predicate = Range{}
	var _ Predicate = Compare{}
	var _ Predicate = And{}
	var _ Predicate = &Equals{}
}

func TestRange_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		r     Range
		hasLo bool
		hasHi bool
	}{
		{"closed", Range{Field: "weight", Lo: ir.Int(100), Hi: ir.Int(200)}, true, true},
		{"open upper", Range{Field: "weight", Lo: ir.Int(100)}, true, false},
		{"open lower", Range{Field: "weight", Hi: ir.Int(200)}, false, true},
		{"explicit null", Range{Field: "weight", Lo: ir.Null{}, Hi: ir.Int(200)}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasLo, tt.r.HasLo())
			assert.Equal(t, tt.hasHi, tt.r.HasHi())
		})
	}
}

func TestParseOp(t *testing.T) {
	for _, s := range []string{"<", "<=", ">", ">=", "!=", "="} {
		op, err := ParseOp(s)
		require.NoError(t, err)
		assert.Equal(t, Op(s), op)
	}

	_, err := ParseOp("LIKE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIKE")
}

func TestConjoin(t *testing.T) {
	a := Equals{Field: "a", Value: ir.Int(1)}
	b := Equals{Field: "b", Value: ir.Int(2)}
	c := Range{Field: "c", Lo: ir.Int(3)}

	assert.Equal(t, a, Conjoin(nil, a))

	ab := Conjoin(a, b)
	assert.Equal(t, And{Predicates: []Predicate{a, b}}, ab)

	abc := Conjoin(ab, c)
	assert.Equal(t, And{Predicates: []Predicate{a, b, c}}, abc, "conjoin flattens")

	// The earlier conjunction is not mutated
	assert.Len(t, ab.(And).Predicates, 2)
}

func TestConjoin_PointerAnd(t *testing.T) {
	a := Equals{Field: "a", Value: ir.Int(1)}
	b := Equals{Field: "b", Value: ir.Int(2)}

	got := Conjoin(&And{Predicates: []Predicate{a}}, b)
	assert.Equal(t, And{Predicates: []Predicate{a, b}}, got)
}

func TestFlatten(t *testing.T) {
	a := Equals{Field: "a", Value: ir.Int(1)}
	b := FoldIn{Field: "b", Values: []string{"x"}}
	c := Compare{Field: "c", Op: OpLt, Value: ir.Int(3)}

	nested := And{Predicates: []Predicate{a, &And{Predicates: []Predicate{b, c}}}}

	assert.Equal(t, []Predicate{a, b, c}, Flatten(nested))
	assert.Nil(t, Flatten(nil))
	assert.Equal(t, []Predicate{a}, Flatten(a))
}

func TestFieldOf(t *testing.T) {
	assert.Equal(t, "a", FieldOf(Equals{Field: "a"}))
	assert.Equal(t, "b", FieldOf(&FoldIn{Field: "b"}))
	assert.Equal(t, "c", FieldOf(Range{Field: "c"}))
	assert.Equal(t, "d", FieldOf(Compare{Field: "d"}))
	assert.Equal(t, "", FieldOf(And{}))
}
