package attrmap

import (
	"fmt"
	"strings"
)

// Kind identifies which predicate a Rule produces.
type Kind int

const (
	// KindEquality adds field = value when the parameter is present.
	KindEquality Kind = iota + 1

	// KindValue adds field = value, or a case-insensitive membership test
	// when the rule is case-insensitive and the value is a string.
	KindValue

	// KindRange adds an inclusive range on field from two bound parameters.
	KindRange
)

// String returns the lower-case kind name used in CLI output and CUE specs.
func (k Kind) String() string {
	switch k {
	case KindEquality:
		return "equality"
	case KindValue:
		return "value"
	case KindRange:
		return "range"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Rule is one attribute map entry. Rules are immutable; construct them with
// NewEquality, NewValue or NewRange (or through Build).
//
// A Range rule never reads ParamKey and a non-Range rule never reads
// FromKey/ToKey; the accessors for the other kind return "".
type Rule struct {
	kind            Kind
	target          string
	paramKey        string
	fromKey         string
	toKey           string
	caseInsensitive bool
}

// NewEquality creates an Equality rule. An empty paramKey defaults to the
// unqualified target name.
func NewEquality(target, paramKey string) (Rule, error) {
	target, err := checkTarget(target)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		kind:     KindEquality,
		target:   target,
		paramKey: defaultKey(paramKey, Unqualified(target)),
	}, nil
}

// NewValue creates a Value rule. An empty paramKey defaults to the
// unqualified target name.
func NewValue(target, paramKey string, caseInsensitive bool) (Rule, error) {
	target, err := checkTarget(target)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		kind:            KindValue,
		target:          target,
		paramKey:        defaultKey(paramKey, Unqualified(target)),
		caseInsensitive: caseInsensitive,
	}, nil
}

// NewRange creates a Range rule. Empty bound keys default to
// "<unqualified target>_from" and "<unqualified target>_to".
func NewRange(target, fromKey, toKey string) (Rule, error) {
	target, err := checkTarget(target)
	if err != nil {
		return Rule{}, err
	}
	base := Unqualified(target)
	r := Rule{
		kind:    KindRange,
		target:  target,
		fromKey: defaultKey(fromKey, base+"_from"),
		toKey:   defaultKey(toKey, base+"_to"),
	}
	if r.fromKey == r.toKey {
		return Rule{}, fmt.Errorf("range rule %q: from and to keys are both %q", target, r.fromKey)
	}
	return r, nil
}

// Kind returns the rule kind.
func (r Rule) Kind() Kind { return r.kind }

// Target returns the entity field, possibly qualified ("entities.size_x").
func (r Rule) Target() string { return r.target }

// ParamKey returns the parameter read by Equality and Value rules.
func (r Rule) ParamKey() string { return r.paramKey }

// FromKey returns the lower bound parameter of a Range rule.
func (r Rule) FromKey() string { return r.fromKey }

// ToKey returns the upper bound parameter of a Range rule.
func (r Rule) ToKey() string { return r.toKey }

// CaseInsensitive reports whether a Value rule folds case.
func (r Rule) CaseInsensitive() bool { return r.caseInsensitive }

// IsZero reports whether r is the zero Rule.
func (r Rule) IsZero() bool { return r.kind == 0 }

// Keys returns the parameter keys the rule reads, in evaluation order.
func (r Rule) Keys() []string {
	if r.kind == KindRange {
		return []string{r.fromKey, r.toKey}
	}
	return []string{r.paramKey}
}

// String renders the rule for diagnostics, e.g.
// "range entities.size_y <- height_from..height_to".
func (r Rule) String() string {
	switch r.kind {
	case KindRange:
		return fmt.Sprintf("%s %s <- %s..%s", r.kind, r.target, r.fromKey, r.toKey)
	case KindValue:
		if r.caseInsensitive {
			return fmt.Sprintf("%s %s <- %s (case-insensitive)", r.kind, r.target, r.paramKey)
		}
		return fmt.Sprintf("%s %s <- %s", r.kind, r.target, r.paramKey)
	default:
		return fmt.Sprintf("%s %s <- %s", r.kind, r.target, r.paramKey)
	}
}

// Unqualified strips an entity/table qualifier: "entities.size_x" → "size_x".
func Unqualified(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		return field[i+1:]
	}
	return field
}

func defaultKey(key, fallback string) string {
	if k := strings.TrimSpace(key); k != "" {
		return k
	}
	return fallback
}

// checkTarget enforces a non-empty field with at most one qualifier.
func checkTarget(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("rule target is empty")
	}
	parts := strings.Split(target, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("rule target %q: at most one qualifier allowed", target)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("rule target %q: empty name segment", target)
		}
	}
	return target, nil
}
