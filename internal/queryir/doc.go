// Package queryir provides the query intermediate representation that the
// filter engine folds predicates onto.
//
// The IR is the abstraction boundary between the predicate compiler and
// backends. The compiler only ever builds IR; querysql renders it as
// parameterized SQL. Nothing in this package produces SQL text.
//
//	[attribute map + params] → [Query IR] → [SQL backend]
//
// SUPPORTED FRAGMENT:
//   - Select(from, filter, columns) over a single entity table
//   - Predicates: Equals, FoldIn, Range, Compare, And
//
// EXCLUDED:
//   - Joins, subqueries, aggregation
//   - OR and NOT (predicates compose by implicit AND only)
//   - Raw SQL fragments
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package implement them, so backends can type switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case FoldIn:
//	case Range:
//	case Compare:
//	case And:
//	}
//
// VALUES:
//
// All literal values are ir.Value. They are never interpolated into SQL by
// any backend in this repository.
package queryir
