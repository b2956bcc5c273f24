package engine

import (
	"fmt"

	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/schema"
)

// Entity is the immutable filter configuration of one queryable entity.
// Build it once (in Go or from CUE via the compiler package) and share it
// read-only across filter calls.
type Entity struct {
	// Name identifies the entity in logs and errors (e.g. "Entity").
	Name string

	// Table is the storage table the base query selects from.
	Table string

	// Attrs is the entity-level attribute map. Evaluated first.
	Attrs attrmap.AttributeMap

	// Columns declares comparable column types for coercion. Fields not
	// listed pass their values through unchanged.
	Columns schema.Columns

	// Filter is the optional filter-level configuration.
	Filter *Filter

	// Query builds the unfiltered accumulator. Defaults to relation.New(Table).
	Query func() relation.Query
}

// Filter is the filter-level configuration of an entity: a second attribute
// map evaluated after the entity's, plus the extension hook.
type Filter struct {
	Name      string
	Attrs     attrmap.AttributeMap
	Extension Extender
}

// NewQuery returns a fresh unfiltered accumulator.
func (e *Entity) NewQuery() relation.Query {
	if e.Query != nil {
		return e.Query()
	}
	return relation.New(e.Table)
}

// AttributeMap returns the merged map: entity rules, then filter rules.
func (e *Entity) AttributeMap() attrmap.AttributeMap {
	if e.Filter == nil {
		return e.Attrs
	}
	return attrmap.Merge(e.Attrs, e.Filter.Attrs)
}

// Extension returns the configured hook, or nil when none is set.
func (e *Entity) Extension() Extender {
	if e.Filter == nil {
		return nil
	}
	return e.Filter.Extension
}

// FilterName returns the filter's name, falling back to "<Name>Filter".
func (e *Entity) FilterName() string {
	if e.Filter != nil && e.Filter.Name != "" {
		return e.Filter.Name
	}
	return e.Name + "Filter"
}

// Validate checks the entity definition. When Columns is non-empty every
// rule target must be a declared column.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return &EntityError{Entity: "<unnamed>", Message: "name is required"}
	}
	if e.Table == "" && e.Query == nil {
		return &EntityError{Entity: e.Name, Message: "table or query factory is required"}
	}
	if len(e.Columns) == 0 {
		return nil
	}
	for _, rule := range e.AttributeMap().Rules() {
		if _, ok := e.Columns.Lookup(rule.Target()); !ok {
			return &EntityError{
				Entity:  e.Name,
				Message: fmt.Sprintf("rule %q targets undeclared column", rule.String()),
			}
		}
	}
	return nil
}
