// Package relation provides the query accumulator the filter engine folds
// predicates onto.
//
// Query is the collaborator contract; Relation is the in-memory
// implementation backed by the query IR. A Relation is an immutable value:
// every Where* call returns a new Relation and leaves the receiver
// untouched, so a base relation can be shared across concurrent filter
// calls.
package relation

import (
	"github.com/roach88/syto/internal/ir"
	"github.com/roach88/syto/internal/queryir"
)

// Query is the accumulator contract the filter engine depends on.
//
// Field identifiers may be qualified ("entities.size_x"); interpreting the
// qualifier is the implementation's concern.
type Query interface {
	// WhereEquals adds field = v.
	WhereEquals(field string, v ir.Value) Query

	// WhereCaseInsensitiveIn adds LOWER(field) IN (values...). Values are
	// expected to be lower-cased already. SQLite's LOWER folds ASCII only,
	// so stored non-ASCII capitals ("ÄPFEL") never match a folded value.
	WhereCaseInsensitiveIn(field string, values []string) Query

	// WhereBetween adds an inclusive range. A nil or Null bound leaves that
	// end open.
	WhereBetween(field string, lo, hi ir.Value) Query

	// Where adds an arbitrary IR predicate. Used by extension hooks for
	// constraints the attribute map cannot express.
	Where(p queryir.Predicate) Query
}

// Relation is the IR-backed Query. Repeated constraints on the same field
// are ANDed; nothing is ever overwritten.
type Relation struct {
	table   string
	columns []string
	orderBy string
	filter  queryir.Predicate
}

// Option configures a new Relation.
type Option func(*Relation)

// WithColumns restricts the projection. The default is every column.
func WithColumns(cols ...string) Option {
	return func(r *Relation) {
		r.columns = append([]string(nil), cols...)
	}
}

// WithOrderBy sets the stable ordering key. The default is the backend's.
func WithOrderBy(col string) Option {
	return func(r *Relation) {
		r.orderBy = col
	}
}

// New creates an unfiltered relation over table.
func New(table string, opts ...Option) Relation {
	r := Relation{table: table}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Table returns the table name.
func (r Relation) Table() string {
	return r.table
}

// Filter returns the accumulated predicate, nil when unfiltered.
func (r Relation) Filter() queryir.Predicate {
	return r.filter
}

// Predicates returns the accumulated predicates in application order.
func (r Relation) Predicates() []queryir.Predicate {
	return queryir.Flatten(r.filter)
}

// Select returns the IR for this relation.
func (r Relation) Select() queryir.Select {
	return queryir.Select{
		From:    r.table,
		Filter:  r.filter,
		Columns: append([]string(nil), r.columns...),
		OrderBy: r.orderBy,
	}
}

// WhereEquals implements Query.
func (r Relation) WhereEquals(field string, v ir.Value) Query {
	return r.with(queryir.Equals{Field: field, Value: v})
}

// WhereCaseInsensitiveIn implements Query.
func (r Relation) WhereCaseInsensitiveIn(field string, values []string) Query {
	return r.with(queryir.FoldIn{Field: field, Values: append([]string(nil), values...)})
}

// WhereBetween implements Query. Both bounds absent is a no-op.
func (r Relation) WhereBetween(field string, lo, hi ir.Value) Query {
	if ir.IsNull(lo) && ir.IsNull(hi) {
		return r
	}
	if ir.IsNull(lo) {
		lo = nil
	}
	if ir.IsNull(hi) {
		hi = nil
	}
	return r.with(queryir.Range{Field: field, Lo: lo, Hi: hi})
}

// Where implements Query. A nil predicate is a no-op.
func (r Relation) Where(p queryir.Predicate) Query {
	if p == nil {
		return r
	}
	return r.with(p)
}

func (r Relation) with(p queryir.Predicate) Relation {
	next := r
	next.filter = queryir.Conjoin(r.filter, p)
	return next
}

// AsRelation unwraps q when it is a Relation.
func AsRelation(q Query) (Relation, bool) {
	switch rel := q.(type) {
	case Relation:
		return rel, true
	case *Relation:
		if rel == nil {
			return Relation{}, false
		}
		return *rel, true
	default:
		return Relation{}, false
	}
}
