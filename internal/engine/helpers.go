package engine

import (
	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/schema"
)

// Helpers lets extension hooks reuse the declarative Value and Range
// semantics (presence checks, coercion, case folding, open bounds) for
// constraints decided at call time.
type Helpers struct {
	Columns schema.Columns
}

// Value applies a Value rule reading key and constraining field.
func (h Helpers) Value(q relation.Query, params ir.Params, key, field string, caseInsensitive bool) (relation.Query, error) {
	rule, err := attrmap.NewValue(field, key, caseInsensitive)
	if err != nil {
		return nil, err
	}
	return ApplyRule(rule, h.Columns, params, q)
}

// Range applies a Range rule reading fromKey and toKey and constraining field.
func (h Helpers) Range(q relation.Query, params ir.Params, field, fromKey, toKey string) (relation.Query, error) {
	rule, err := attrmap.NewRange(field, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return ApplyRule(rule, h.Columns, params, q)
}
