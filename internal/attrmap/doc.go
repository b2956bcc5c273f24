// Package attrmap provides the attribute map: an ordered, immutable list of
// filter rules binding request parameters to entity fields.
//
// # Rules
//
// Every Rule is one of three kinds, fixed at construction:
//
//	KindEquality  params[ParamKey] present  → field = value
//	KindValue     params[ParamKey] present  → field = value, or
//	                                           LOWER(field) IN (lower(value))
//	KindRange     params[FromKey] / params[ToKey] → lo <= field <= hi
//	                                                 (either end may be open)
//
// # Declarations
//
// Attribute maps are written as declarations and normalized once with Build.
// The declaration key is always the parameter name; the target field
// defaults to it:
//
//	attrmap.Build(
//	    attrmap.Name("serial_number"),                          // Equality
//	    attrmap.Alias("model", "entities.model_number"),        // Equality, aliased
//	    attrmap.Options("color", attrmap.Opts{CaseInsensitive: true}), // Value
//	    attrmap.Options("wgt", attrmap.Opts{                    // Range
//	        Field: "weight", Type: attrmap.TypeRange,
//	    }),
//	)
//
// An options record is a Range rule if and only if Type is TypeRange.
// Range bound keys default to "<key>_from" and "<key>_to".
//
// # Merging
//
// Merge concatenates an entity-level map and a filter-level map. Entity
// rules run first; rules never remove each other's predicates.
package attrmap
