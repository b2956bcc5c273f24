package ir

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsLookup(t *testing.T) {
	p := ParamsFromPairs(
		P("serial_number", String("34294WA")),
		P("color", Null{}),
		P("blank", String("  ")),
	)

	v, ok := p.Lookup("serial_number")
	require.True(t, ok)
	assert.Equal(t, String("34294WA"), v)

	_, ok = p.Lookup("color")
	assert.False(t, ok, "Null-bound key is absent")

	_, ok = p.Lookup("missing")
	assert.False(t, ok)

	assert.True(t, p.Has("blank"), "whitespace string is present")
	assert.True(t, p.Blank("blank"), "but blank")
	assert.True(t, p.Blank("missing"))
	assert.True(t, p.Blank("color"))
	assert.False(t, p.Blank("serial_number"))

	assert.Equal(t, Null{}, p.Get("missing"))
	assert.Equal(t, 3, p.Len())
}

func TestParamsKeysAreCaseSensitive(t *testing.T) {
	p := ParamsFromPairs(P("Color", String("Red")))

	assert.True(t, p.Has("Color"))
	assert.False(t, p.Has("color"))
}

func TestParamsCanonicalKey(t *testing.T) {
	// "é" as e + combining acute (NFD) must match the precomposed form (NFC)
	p := ParamsFromPairs(P(" cafe\u0301 ", String("x")))

	assert.True(t, p.Has("caf\u00e9"))
	assert.Equal(t, []string{"caf\u00e9"}, p.Keys())
}

func TestParamsFromPairsIgnoresEmptyKeys(t *testing.T) {
	p := ParamsFromPairs(P("", String("x")), P("  ", String("y")), P("a", nil))

	assert.Equal(t, 1, p.Len())
	assert.False(t, p.Has("a"))
}

func TestParamsFromMap(t *testing.T) {
	p, err := ParamsFromMap(map[string]any{
		"wgt_from": 100,
		"rate_to":  0.7,
		"name":     "Giraffe",
		"gone":     nil,
	})
	require.NoError(t, err)

	assert.Equal(t, Int(100), p.Get("wgt_from"))
	assert.Equal(t, Float(0.7), p.Get("rate_to"))
	assert.Equal(t, String("Giraffe"), p.Get("name"))
	assert.False(t, p.Has("gone"))
	assert.Equal(t, []string{"gone", "name", "rate_to", "wgt_from"}, p.Keys())
}

func TestParamsFromMapNamesBadKey(t *testing.T) {
	_, err := ParamsFromMap(map[string]any{"weird": []int{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"weird"`)
}

func TestParamsFromValues(t *testing.T) {
	q, err := url.ParseQuery("wgt_from=100&color=Green&color=Blue&empty=")
	require.NoError(t, err)

	p := ParamsFromValues(q)

	assert.Equal(t, String("100"), p.Get("wgt_from"))
	assert.Equal(t, String("Green"), p.Get("color"), "first value wins")
	assert.True(t, p.Has("empty"))
	assert.True(t, p.Blank("empty"))
}

func TestParamsMapIsCopy(t *testing.T) {
	p := ParamsFromPairs(P("a", Int(1)))

	m := p.Map()
	m["a"] = int64(2)
	m["b"] = "x"

	assert.Equal(t, Int(1), p.Get("a"))
	assert.False(t, p.Has("b"))
}

func TestEmptyParams(t *testing.T) {
	p := EmptyParams()

	assert.True(t, p.IsEmpty())
	assert.Empty(t, p.Keys())
	assert.False(t, p.Has("anything"))
}
