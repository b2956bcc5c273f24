package attrmap

import (
	"fmt"
	"strings"
)

// Type tags an options record. Only TypeRange changes classification.
type Type string

const (
	// TypeValue is the default for options records.
	TypeValue Type = "value"

	// TypeRange marks an options record as a Range rule.
	TypeRange Type = "range"
)

// Opts is the options record of a declaration.
type Opts struct {
	// Field is the target field. Defaults to the declaration key.
	Field string

	// Type selects Value (default) or Range classification.
	Type Type

	// KeyFrom and KeyTo name the range bound parameters.
	// Only valid with TypeRange.
	KeyFrom string
	KeyTo   string

	// CaseInsensitive folds case on both sides. Only valid for value options.
	CaseInsensitive bool
}

type declShape int

const (
	shapeName declShape = iota + 1
	shapeAlias
	shapeOptions
)

// Decl is one declarative attribute map entry. Construct with Name, Alias or
// Options.
type Decl struct {
	shape declShape
	key   string
	field string
	opts  Opts
}

// Name declares an Equality rule on field. The parameter key is the
// unqualified field name.
func Name(field string) Decl {
	return Decl{shape: shapeName, field: field}
}

// Alias declares an Equality rule reading param and constraining field.
func Alias(param, field string) Decl {
	return Decl{shape: shapeAlias, key: param, field: field}
}

// Options declares a Value or Range rule keyed by param.
func Options(param string, opts Opts) Decl {
	return Decl{shape: shapeOptions, key: param, opts: opts}
}

// DeclError reports a declaration that cannot be normalized.
type DeclError struct {
	Index   int    // Position in the declaration list
	Key     string // Declaration key, if any
	Message string
}

func (e *DeclError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("attribute map entry %d (%s): %s", e.Index, e.Key, e.Message)
	}
	return fmt.Sprintf("attribute map entry %d: %s", e.Index, e.Message)
}

// Normalize turns a declaration into exactly one Rule.
func (d Decl) Normalize() (Rule, error) {
	switch d.shape {
	case shapeName:
		return NewEquality(d.field, "")

	case shapeAlias:
		if strings.TrimSpace(d.key) == "" {
			return Rule{}, fmt.Errorf("alias for %q has an empty parameter key", d.field)
		}
		return NewEquality(d.field, d.key)

	case shapeOptions:
		key := strings.TrimSpace(d.key)
		if key == "" {
			return Rule{}, fmt.Errorf("options entry has an empty parameter key")
		}
		field := defaultKey(d.opts.Field, key)

		switch d.opts.Type {
		case TypeRange:
			if d.opts.CaseInsensitive {
				return Rule{}, fmt.Errorf("case_insensitive is not supported on range entries")
			}
			return NewRange(field, defaultKey(d.opts.KeyFrom, key+"_from"), defaultKey(d.opts.KeyTo, key+"_to"))
		case TypeValue, "":
			if d.opts.KeyFrom != "" || d.opts.KeyTo != "" {
				return Rule{}, fmt.Errorf("key_from/key_to require type %q", TypeRange)
			}
			return NewValue(field, key, d.opts.CaseInsensitive)
		default:
			return Rule{}, fmt.Errorf("unknown type %q", d.opts.Type)
		}

	default:
		return Rule{}, fmt.Errorf("zero declaration")
	}
}

// Build normalizes declarations into an AttributeMap, preserving order.
// The first failing declaration is reported as a *DeclError.
func Build(decls ...Decl) (AttributeMap, error) {
	rules := make([]Rule, 0, len(decls))
	for i, d := range decls {
		r, err := d.Normalize()
		if err != nil {
			key := d.key
			if key == "" {
				key = d.field
			}
			return AttributeMap{}, &DeclError{Index: i, Key: key, Message: err.Error()}
		}
		rules = append(rules, r)
	}
	return AttributeMap{rules: rules}, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// attribute maps declared in Go source.
func MustBuild(decls ...Decl) AttributeMap {
	m, err := Build(decls...)
	if err != nil {
		panic(err)
	}
	return m
}
