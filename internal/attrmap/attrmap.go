package attrmap

import "slices"

// AttributeMap is an ordered, immutable sequence of rules. The zero value is
// an empty map. Safe for concurrent read-only use.
type AttributeMap struct {
	rules []Rule
}

// New builds an AttributeMap from already-constructed rules.
// Zero rules are dropped.
func New(rules ...Rule) AttributeMap {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if !r.IsZero() {
			kept = append(kept, r)
		}
	}
	return AttributeMap{rules: kept}
}

// Merge concatenates base and filter, base rules first. Either may be empty.
func Merge(base, filter AttributeMap) AttributeMap {
	rules := make([]Rule, 0, len(base.rules)+len(filter.rules))
	rules = append(rules, base.rules...)
	rules = append(rules, filter.rules...)
	return AttributeMap{rules: rules}
}

// Rules returns a copy of the rules in evaluation order.
func (m AttributeMap) Rules() []Rule {
	return slices.Clone(m.rules)
}

// Len returns the number of rules.
func (m AttributeMap) Len() int {
	return len(m.rules)
}

// IsEmpty reports whether the map has no rules.
func (m AttributeMap) IsEmpty() bool {
	return len(m.rules) == 0
}

// Each calls fn for every rule in order, stopping at the first error.
func (m AttributeMap) Each(fn func(i int, r Rule) error) error {
	for i, r := range m.rules {
		if err := fn(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Targets returns the distinct target fields in first-seen order.
func (m AttributeMap) Targets() []string {
	seen := make(map[string]bool, len(m.rules))
	var targets []string
	for _, r := range m.rules {
		if !seen[r.target] {
			seen[r.target] = true
			targets = append(targets, r.target)
		}
	}
	return targets
}
