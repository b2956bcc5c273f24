package engine

import (
	"fmt"

	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/schema"
)

// Extender is the extension hook: it runs after the declarative pass over
// the same accumulator and may add any predicates the attribute map cannot
// express.
type Extender interface {
	Extend(q relation.Query, params ir.Params) (relation.Query, error)
}

// ExtenderFunc adapts a function to Extender.
type ExtenderFunc func(q relation.Query, params ir.Params) (relation.Query, error)

// Extend implements Extender.
func (f ExtenderFunc) Extend(q relation.Query, params ir.Params) (relation.Query, error) {
	return f(q, params)
}

// NoExtension is the default hook. It returns q unchanged.
var NoExtension Extender = ExtenderFunc(func(q relation.Query, _ ir.Params) (relation.Query, error) {
	return q, nil
})

// Chain runs extenders in order, threading the query through each.
// Nil entries are skipped.
func Chain(extenders ...Extender) Extender {
	return ExtenderFunc(func(q relation.Query, params ir.Params) (relation.Query, error) {
		for _, ext := range extenders {
			if ext == nil {
				continue
			}
			next, err := ext.Extend(q, params)
			if err != nil {
				return nil, err
			}
			q = next
		}
		return q, nil
	})
}

// Threshold compares Field against the value of Param with Op whenever the
// parameter is present, e.g. price_less_than=38 → price < 38.
type Threshold struct {
	Param string
	Field string
	Op    queryir.Op
}

// Thresholds is a declarative Extender built from threshold comparisons.
// Values are coerced with Columns like attribute map values.
type Thresholds struct {
	Rules   []Threshold
	Columns schema.Columns
}

// Extend implements Extender.
func (t Thresholds) Extend(q relation.Query, params ir.Params) (relation.Query, error) {
	for _, th := range t.Rules {
		raw, ok := params.Lookup(th.Param)
		if !ok || ir.IsBlank(raw) {
			continue
		}
		if _, err := queryir.ParseOp(string(th.Op)); err != nil {
			return nil, fmt.Errorf("threshold %s: %w", th.Param, err)
		}
		v, err := t.Columns.Coerce(th.Field, raw)
		if err != nil {
			return nil, &InvalidParameterError{
				Key:   th.Param,
				Field: th.Field,
				Value: raw,
				Stage: StageExtended,
				Err:   err,
			}
		}
		q = q.Where(queryir.Compare{Field: th.Field, Op: th.Op, Value: v})
	}
	return q, nil
}
