package compiler

import (
	stderrors "errors"
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/syto/internal/attrmap"
	"github.com/roach88/syto/internal/engine"
	"github.com/roach88/syto/internal/queryir"
	"github.com/roach88/syto/internal/relation"
	"github.com/roach88/syto/internal/schema"
)

// CompileEntity parses a CUE value into an engine.Entity.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: Entity: { table: "entities", ... }`)
//	ent, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.Entity")))
//
// Recognized fields:
//
//	name      optional, defaults to the struct label
//	table     required
//	order_by  optional stable ordering column
//	columns   optional {column: type}
//	attrs     optional attribute map list
//	filter    optional {name, attrs, thresholds: {param: {field, op}}}
func CompileEntity(v cue.Value) (*engine.Entity, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "entity", "name", "table", "order_by", "columns", "attrs", "filter"); err != nil {
		return nil, err
	}

	ent := &engine.Entity{}

	// Name from struct label unless overridden
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		ent.Name = labels[len(labels)-1].String()
	}
	if name, ok, err := optionalString(v, "name"); err != nil {
		return nil, err
	} else if ok {
		ent.Name = name
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "table is required",
			Pos:     v.Pos(),
		}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ent.Table = table

	orderBy, hasOrder, err := optionalString(v, "order_by")
	if err != nil {
		return nil, err
	}
	if hasOrder {
		ent.Query = func() relation.Query {
			return relation.New(table, relation.WithOrderBy(orderBy))
		}
	}

	ent.Columns, err = parseColumns(v)
	if err != nil {
		return nil, err
	}

	ent.Attrs, err = parseAttrs(v, "attrs")
	if err != nil {
		return nil, err
	}

	filterVal := v.LookupPath(cue.ParsePath("filter"))
	if filterVal.Exists() {
		ent.Filter, err = parseFilter(filterVal, ent.Columns)
		if err != nil {
			return nil, err
		}
	}

	if err := ent.Validate(); err != nil {
		return nil, &CompileError{
			Field:   "entity",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}

	return ent, nil
}

// parseColumns extracts {column: type} declarations.
func parseColumns(v cue.Value) (schema.Columns, error) {
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, nil // columns are optional
	}

	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	cols := make(schema.Columns)
	for iter.Next() {
		name := iter.Label()
		typeName, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   "columns",
				Message: fmt.Sprintf("column %s: type must be a string", name),
				Pos:     iter.Value().Pos(),
			}
		}
		t, err := schema.ParseColumnType(typeName)
		if err != nil {
			return nil, &CompileError{
				Field:   "columns",
				Message: fmt.Sprintf("column %s: %v", name, err),
				Pos:     iter.Value().Pos(),
			}
		}
		cols[name] = t
	}

	return cols, nil
}

// parseAttrs parses an attribute map list. Each element is one of:
//
//	"serial_number"                                    bare name
//	{model: "entities.model_number"}                   alias
//	{height: {field: "entities.size_y", type: "range"}} options
//
// A struct element may hold several entries; they keep declaration order.
func parseAttrs(v cue.Value, field string) (attrmap.AttributeMap, error) {
	attrsVal := v.LookupPath(cue.ParsePath("attrs"))
	if !attrsVal.Exists() {
		return attrmap.AttributeMap{}, nil
	}

	list, err := attrsVal.List()
	if err != nil {
		return attrmap.AttributeMap{}, &CompileError{
			Field:   field,
			Message: "attrs must be a list",
			Pos:     attrsVal.Pos(),
		}
	}

	var decls []attrmap.Decl
	var positions []token.Pos
	for i := 0; list.Next(); i++ {
		elem := list.Value()

		if name, err := elem.String(); err == nil {
			decls = append(decls, attrmap.Name(name))
			positions = append(positions, elem.Pos())
			continue
		}

		if elem.IncompleteKind() != cue.StructKind {
			return attrmap.AttributeMap{}, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("entry %d: must be a string or struct", i),
				Pos:     elem.Pos(),
			}
		}

		iter, err := elem.Fields()
		if err != nil {
			return attrmap.AttributeMap{}, formatCUEError(err)
		}
		for iter.Next() {
			key := iter.Label()
			decl, err := parseDecl(key, iter.Value(), field)
			if err != nil {
				return attrmap.AttributeMap{}, err
			}
			decls = append(decls, decl)
			positions = append(positions, iter.Value().Pos())
		}
	}

	m, err := attrmap.Build(decls...)
	if err != nil {
		ce := &CompileError{Field: field, Message: err.Error()}
		var de *attrmap.DeclError
		if stderrors.As(err, &de) && de.Index < len(positions) {
			ce.Pos = positions[de.Index]
		}
		return attrmap.AttributeMap{}, ce
	}
	return m, nil
}

// parseDecl parses the value of one keyed attribute map entry.
func parseDecl(key string, v cue.Value, field string) (attrmap.Decl, error) {
	if target, err := v.String(); err == nil {
		return attrmap.Alias(key, target), nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return attrmap.Decl{}, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%s: must be a field name or options struct", key),
			Pos:     v.Pos(),
		}
	}
	if err := checkFields(v, field, "field", "type", "key_from", "key_to", "case_insensitive"); err != nil {
		return attrmap.Decl{}, err
	}

	var opts attrmap.Opts
	var err error
	if opts.Field, _, err = optionalString(v, "field"); err != nil {
		return attrmap.Decl{}, err
	}
	typ, _, err := optionalString(v, "type")
	if err != nil {
		return attrmap.Decl{}, err
	}
	opts.Type = attrmap.Type(typ)
	if opts.KeyFrom, _, err = optionalString(v, "key_from"); err != nil {
		return attrmap.Decl{}, err
	}
	if opts.KeyTo, _, err = optionalString(v, "key_to"); err != nil {
		return attrmap.Decl{}, err
	}

	ciVal := v.LookupPath(cue.ParsePath("case_insensitive"))
	if ciVal.Exists() {
		ci, err := ciVal.Bool()
		if err != nil {
			return attrmap.Decl{}, formatCUEError(err)
		}
		opts.CaseInsensitive = ci
	}

	return attrmap.Options(key, opts), nil
}

// parseFilter parses the filter-level configuration.
func parseFilter(v cue.Value, cols schema.Columns) (*engine.Filter, error) {
	if err := checkFields(v, "filter", "name", "attrs", "thresholds"); err != nil {
		return nil, err
	}

	f := &engine.Filter{}

	name, _, err := optionalString(v, "name")
	if err != nil {
		return nil, err
	}
	f.Name = name

	f.Attrs, err = parseAttrs(v, "filter.attrs")
	if err != nil {
		return nil, err
	}

	thresholds, err := parseThresholds(v)
	if err != nil {
		return nil, err
	}
	if len(thresholds) > 0 {
		f.Extension = engine.Thresholds{Rules: thresholds, Columns: cols}
	}

	return f, nil
}

// parseThresholds parses {param: {field, op}} comparisons.
func parseThresholds(v cue.Value) ([]engine.Threshold, error) {
	thVal := v.LookupPath(cue.ParsePath("thresholds"))
	if !thVal.Exists() {
		return nil, nil
	}

	iter, err := thVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var thresholds []engine.Threshold
	for iter.Next() {
		param := iter.Label()
		tv := iter.Value()
		if err := checkFields(tv, "filter.thresholds", "field", "op"); err != nil {
			return nil, err
		}

		field, ok, err := optionalString(tv, "field")
		if err != nil {
			return nil, err
		}
		if !ok || field == "" {
			return nil, &CompileError{
				Field:   "filter.thresholds",
				Message: fmt.Sprintf("%s: field is required", param),
				Pos:     tv.Pos(),
			}
		}

		opStr, _, err := optionalString(tv, "op")
		if err != nil {
			return nil, err
		}
		op, err := queryir.ParseOp(opStr)
		if err != nil {
			return nil, &CompileError{
				Field:   "filter.thresholds",
				Message: fmt.Sprintf("%s: %v", param, err),
				Pos:     tv.Pos(),
			}
		}

		thresholds = append(thresholds, engine.Threshold{Param: param, Field: field, Op: op})
	}

	return thresholds, nil
}

// optionalString returns the string at path, if present.
func optionalString(v cue.Value, path string) (string, bool, error) {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return "", false, nil
	}
	s, err := sv.String()
	if err != nil {
		return "", false, &CompileError{
			Field:   path,
			Message: "must be a string",
			Pos:     sv.Pos(),
		}
	}
	return s, true, nil
}

// checkFields rejects struct fields outside allowed.
func checkFields(v cue.Value, field string, allowed ...string) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Label()
		if !slices.Contains(allowed, label) {
			return &CompileError{
				Field:   field,
				Message: fmt.Sprintf("unknown field %q", label),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
