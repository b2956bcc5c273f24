// Package engine implements the declarative filter engine.
//
// Given an Entity (attribute maps, column types, optional extension hook)
// and a parameter mapping, FilterBy produces the entity's base query with
// one predicate per matching rule.
//
// PIPELINE:
//
//	params ──► merged attribute map ──► Apply ──► Extender ──► query
//	           (entity, then filter)    (StageDeclarative)  (StageExtended)
//
// The pipeline is synchronous and single pass. An error in either stage
// aborts the call; the partial query is discarded.
//
// RULES:
//
//	Equality  present param        → field = value
//	Value     present param        → field = value, or LOWER(field) IN (folded)
//	Range     non-blank bound(s)   → lo <= field <= hi, field >= lo, field <= hi
//
// Absent parameters skip their rule; they never produce a NULL match.
//
// COERCION:
//
// Values are coerced to Entity.Columns before reaching the query. Numeric
// strings become numbers and ISO date strings become timestamps. A value
// that cannot be coerced fails the call with *InvalidParameterError.
//
// SAME-FIELD POLICY:
//
// Rules that constrain the same field all apply; the accumulator ANDs them.
// Entity rules run before filter rules, so a filter rule is always the later
// predicate.
//
// CONCURRENCY:
//
// Entities and Engines are read-only after construction. Each call builds
// its own accumulator, so concurrent FilterBy calls share nothing mutable.
package engine
