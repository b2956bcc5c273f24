package engine

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/schema"
)

// Apply folds the attribute map over q, in rule order, and returns the
// resulting query. Each rule applies at most one predicate:
//
//	Equality  params[ParamKey] present  → WhereEquals
//	Value     params[ParamKey] present  → WhereCaseInsensitiveIn (string, folded)
//	                                       or WhereEquals
//	Range     either bound not blank     → WhereBetween (missing end open)
//
// Absent parameters skip their rule. Values are coerced to the column types
// in cols before they reach q; a value that cannot be coerced aborts with an
// *InvalidParameterError naming the parameter.
//
// Apply is deterministic and never mutates params.
func Apply(m attrmap.AttributeMap, cols schema.Columns, params ir.Params, q relation.Query) (relation.Query, error) {
	err := m.Each(func(_ int, rule attrmap.Rule) error {
		next, err := ApplyRule(rule, cols, params, q)
		if err != nil {
			return err
		}
		q = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ApplyRule applies a single rule. Extension hooks use it to reuse the
// Value and Range semantics for rules built on the fly.
func ApplyRule(rule attrmap.Rule, cols schema.Columns, params ir.Params, q relation.Query) (relation.Query, error) {
	switch rule.Kind() {
	case attrmap.KindEquality:
		return applyEquality(rule, cols, params, q)
	case attrmap.KindValue:
		return applyValue(rule, cols, params, q)
	case attrmap.KindRange:
		return applyRange(rule, cols, params, q)
	default:
		return nil, fmt.Errorf("unsupported rule kind: %s", rule.Kind())
	}
}

func applyEquality(rule attrmap.Rule, cols schema.Columns, params ir.Params, q relation.Query) (relation.Query, error) {
	raw, ok := params.Lookup(rule.ParamKey())
	if !ok {
		return q, nil
	}
	v, err := coerce(cols, rule.Target(), rule.ParamKey(), raw)
	if err != nil {
		return nil, err
	}
	return q.WhereEquals(rule.Target(), v), nil
}

func applyValue(rule attrmap.Rule, cols schema.Columns, params ir.Params, q relation.Query) (relation.Query, error) {
	raw, ok := params.Lookup(rule.ParamKey())
	if !ok {
		return q, nil
	}

	// Only strings fold; anything else falls back to plain equality.
	if s, isString := raw.(ir.String); isString && rule.CaseInsensitive() {
		return q.WhereCaseInsensitiveIn(rule.Target(), []string{Fold(string(s))}), nil
	}

	v, err := coerce(cols, rule.Target(), rule.ParamKey(), raw)
	if err != nil {
		return nil, err
	}
	return q.WhereEquals(rule.Target(), v), nil
}

func applyRange(rule attrmap.Rule, cols schema.Columns, params ir.Params, q relation.Query) (relation.Query, error) {
	if params.Blank(rule.FromKey()) && params.Blank(rule.ToKey()) {
		return q, nil
	}

	lo, err := bound(cols, rule.Target(), rule.FromKey(), params)
	if err != nil {
		return nil, err
	}
	hi, err := bound(cols, rule.Target(), rule.ToKey(), params)
	if err != nil {
		return nil, err
	}
	return q.WhereBetween(rule.Target(), lo, hi), nil
}

// bound returns the coerced bound for key, or nil when blank.
func bound(cols schema.Columns, field, key string, params ir.Params) (ir.Value, error) {
	if params.Blank(key) {
		return nil, nil
	}
	return coerce(cols, field, key, params.Get(key))
}

func coerce(cols schema.Columns, field, key string, raw ir.Value) (ir.Value, error) {
	v, err := cols.Coerce(field, raw)
	if err != nil {
		return nil, &InvalidParameterError{
			Key:   key,
			Field: field,
			Value: raw,
			Stage: StageDeclarative,
			Err:   err,
		}
	}
	return v, nil
}

// Fold lower-cases s for case-insensitive matching. A new Caser is created
// per call since Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
