package queryir

import (
	"fmt"

	"github.com/roach88/syto/internal/ir"
)

// Query represents an abstract query in the IR.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition in the IR.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select represents access to one entity table with an optional filter.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order_by>
//
// Fields inside predicates may be bare ("weight") or qualified
// ("entities.weight"); backends qualify bare names with From.
type Select struct {
	From    string    // Table name (e.g., "entities")
	Filter  Predicate // WHERE conditions (nil = no filter)
	Columns []string  // Projected columns (nil = all columns of From)
	OrderBy string    // Stable ordering key (empty = backend default)
}

func (Select) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// FoldIn represents a case-insensitive membership predicate. Values are
// already lower-cased by the producer. The SQLite rendering folds the column
// with LOWER, which only folds ASCII letters.
//
// Semantics:
//
//	LOWER(<field>) IN (<values>...)
type FoldIn struct {
	Field  string
	Values []string
}

func (FoldIn) predicateNode() {}

// Range represents an inclusive range with optional ends. A nil (or Null)
// bound leaves that end open.
//
// Semantics:
//
//	Lo and Hi  →  <field> BETWEEN <lo> AND <hi>
//	Lo only    →  <field> >= <lo>
//	Hi only    →  <field> <= <hi>
type Range struct {
	Field string
	Lo    ir.Value
	Hi    ir.Value
}

func (Range) predicateNode() {}

// HasLo reports whether the lower bound is set.
func (r Range) HasLo() bool { return !ir.IsNull(r.Lo) }

// HasHi reports whether the upper bound is set.
func (r Range) HasHi() bool { return !ir.IsNull(r.Hi) }

// Op is a comparison operator for Compare.
type Op string

const (
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
	OpNe Op = "!="
	OpEq Op = "="
)

// ParseOp validates a comparison operator.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpLt, OpLe, OpGt, OpGe, OpNe, OpEq:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported comparison operator %q", s)
	}
}

// Compare represents a field-vs-literal comparison, used by custom filters
// such as "price below a threshold".
//
// Semantics:
//
//	<field> <op> <value>
type Compare struct {
	Field string
	Op    Op
	Value ir.Value
}

func (Compare) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is vacuously true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Conjoin appends p to an existing filter, flattening into a single And.
// A nil filter yields p itself.
func Conjoin(filter, p Predicate) Predicate {
	switch f := filter.(type) {
	case nil:
		return p
	case And:
		preds := make([]Predicate, 0, len(f.Predicates)+1)
		preds = append(preds, f.Predicates...)
		return And{Predicates: append(preds, p)}
	case *And:
		return Conjoin(*f, p)
	default:
		return And{Predicates: []Predicate{filter, p}}
	}
}

// Flatten returns the predicates of filter as a flat list.
func Flatten(filter Predicate) []Predicate {
	switch f := filter.(type) {
	case nil:
		return nil
	case And:
		var out []Predicate
		for _, p := range f.Predicates {
			out = append(out, Flatten(p)...)
		}
		return out
	case *And:
		return Flatten(*f)
	default:
		return []Predicate{filter}
	}
}

// FieldOf returns the field a leaf predicate constrains, or "" for And.
func FieldOf(p Predicate) string {
	switch pred := p.(type) {
	case Equals:
		return pred.Field
	case *Equals:
		return pred.Field
	case FoldIn:
		return pred.Field
	case *FoldIn:
		return pred.Field
	case Range:
		return pred.Field
	case *Range:
		return pred.Field
	case Compare:
		return pred.Field
	case *Compare:
		return pred.Field
	default:
		return ""
	}
}
