package ir

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Params is the read-only parameter mapping a filter call receives,
// typically built from HTTP query parameters.
//
// Keys are stored in canonical form (see CanonicalKey). A Params value is
// never mutated after construction and is safe to share across goroutines.
type Params struct {
	values map[string]Value
}

// Pair is a key/value pair for ordered Params construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: ParamsFromPairs(P("wgt_from", Int(100)), P("wgt_to", Int(200)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// CanonicalKey returns the canonical symbolic form of a parameter name:
// surrounding whitespace trimmed and NFC normalized. Case is preserved.
func CanonicalKey(key string) string {
	return norm.NFC.String(strings.TrimSpace(key))
}

// EmptyParams returns a Params with no keys.
func EmptyParams() Params {
	return Params{}
}

// ParamsFromPairs builds Params from typed pairs. Later pairs win when two
// keys share a canonical form. Empty keys are ignored.
func ParamsFromPairs(pairs ...Pair) Params {
	values := make(map[string]Value, len(pairs))
	for _, p := range pairs {
		key := CanonicalKey(p.Key)
		if key == "" {
			continue
		}
		if p.Value == nil {
			values[key] = Null{}
			continue
		}
		values[key] = p.Value
	}
	return Params{values: values}
}

// ParamsFromMap builds Params from an untyped map such as decoded JSON.
// Returns an error naming the key whose value has an unsupported type.
func ParamsFromMap(m map[string]any) (Params, error) {
	values := make(map[string]Value, len(m))
	for k, raw := range m {
		key := CanonicalKey(k)
		if key == "" {
			continue
		}
		v, err := FromAny(raw)
		if err != nil {
			return Params{}, fmt.Errorf("parameter %q: %w", k, err)
		}
		values[key] = v
	}
	return Params{values: values}, nil
}

// ParamsFromValues builds Params from HTTP query values.
// Only the first value of each key is used; all values arrive as String.
func ParamsFromValues(q url.Values) Params {
	values := make(map[string]Value, len(q))
	for k, vs := range q {
		key := CanonicalKey(k)
		if key == "" || len(vs) == 0 {
			continue
		}
		values[key] = String(vs[0])
	}
	return Params{values: values}
}

// Len returns the number of keys, including keys bound to Null.
func (p Params) Len() int {
	return len(p.values)
}

// IsEmpty reports whether the mapping has no keys.
func (p Params) IsEmpty() bool {
	return len(p.values) == 0
}

// Lookup returns the value for key. A key is present only when it exists
// and is not bound to Null.
func (p Params) Lookup(key string) (Value, bool) {
	v, ok := p.values[CanonicalKey(key)]
	if !ok || IsNull(v) {
		return nil, false
	}
	return v, true
}

// Get returns the value for key, or Null when absent.
func (p Params) Get(key string) Value {
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return Null{}
}

// Has reports whether key is present (see Lookup).
func (p Params) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Blank reports whether key is absent, Null, or a whitespace-only string.
func (p Params) Blank(key string) bool {
	v, ok := p.Lookup(key)
	return !ok || IsBlank(v)
}

// Keys returns all keys in RFC 8785 order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Map returns a copy of the mapping with native Go values.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p.values))
	for k, v := range p.values {
		m[k] = Native(v)
	}
	return m
}
