package queryir

import (
	"fmt"

	"github.com/roach88/syto/internal/ir"
)

// ValidationResult contains the findings of Validate.
type ValidationResult struct {
	// Valid is true when no problems were found.
	Valid bool

	// Problems lists every structural issue found, in traversal order.
	Problems []string
}

// Validate checks that a query is well formed before it reaches a backend:
//  1. Select has a table
//  2. Every leaf predicate names a field
//  3. Range has at least one bound
//  4. FoldIn has at least one value
//  5. Compare uses a known operator
//  6. Equals is never against Null (absent parameters must be skipped instead)
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		problems: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case nil:
		v.addProblem("nil query")
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addProblem("select has no table")
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case FoldIn:
		v.validateFoldIn(pred)
	case *FoldIn:
		v.validateFoldIn(*pred)
	case Range:
		v.validateRange(pred)
	case *Range:
		v.validateRange(*pred)
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	v.requireField("equals", eq.Field)
	if ir.IsNull(eq.Value) {
		v.addProblem("field '%s' compared to NULL", eq.Field)
	}
}

func (v *validator) validateFoldIn(in FoldIn) {
	v.requireField("fold-in", in.Field)
	if len(in.Values) == 0 {
		v.addProblem("field '%s' has an empty membership set", in.Field)
	}
}

func (v *validator) validateRange(r Range) {
	v.requireField("range", r.Field)
	if !r.HasLo() && !r.HasHi() {
		v.addProblem("field '%s' range has no bounds", r.Field)
	}
}

func (v *validator) validateCompare(c Compare) {
	v.requireField("compare", c.Field)
	if _, err := ParseOp(string(c.Op)); err != nil {
		v.addProblem("field '%s': %v", c.Field, err)
	}
	if ir.IsNull(c.Value) {
		v.addProblem("field '%s' compared to NULL", c.Field)
	}
}

func (v *validator) validateAnd(and And) {
	for _, sub := range and.Predicates {
		v.validatePredicate(sub)
	}
}

func (v *validator) requireField(kind, field string) {
	if field == "" {
		v.addProblem("%s predicate has no field", kind)
	}
}
