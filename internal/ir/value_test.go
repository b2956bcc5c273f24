package ir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(0.5)
	var _ Value = Bool(true)
	var _ Value = NewTime(time.Now())
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"string", String("34294WA"), "34294WA"},
		{"int", Int(-7), "-7"},
		{"float", Float(0.5), "0.5"},
		{"integral float", Float(200), "200"},
		{"bool", Bool(true), "true"},
		{"null", Null{}, ""},
		{"date", NewTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)), "2021-01-01"},
		{"timestamp", NewTime(time.Date(2021, 1, 1, 10, 30, 0, 0, time.UTC)), "2021-01-01T10:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.String())
		})
	}
}

func TestNewTimeNormalizesToUTC(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	v := NewTime(time.Date(2022, 11, 22, 2, 0, 0, 0, kyiv))

	assert.Equal(t, time.UTC, v.Time().Location())
	assert.Equal(t, 0, v.Time().Hour())
	assert.Equal(t, "2022-11-22", v.String())
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "Green", String("Green")},
		{"bytes", []byte("raw"), String("raw")},
		{"int", 100, Int(100)},
		{"int32", int32(5), Int(5)},
		{"uint8", uint8(3), Int(3)},
		{"float64", 0.7, Float(0.7)},
		{"float32", float32(0.5), Float(0.5)},
		{"bool", false, Bool(false)},
		{"time", ts, NewTime(ts)},
		{"json int", json.Number("42"), Int(42)},
		{"json float", json.Number("4.5"), Float(4.5)},
		{"value passthrough", String("x"), String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported parameter type")

	_, err = FromAny(uint64(1 << 63))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of int64 range")
}

func TestBlankAndNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))

	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank(String("   ")))
	assert.True(t, IsBlank(String("")))
	assert.False(t, IsBlank(String("0")))
	assert.False(t, IsBlank(Int(0)))
	assert.False(t, IsBlank(Bool(false)))
}

func TestNative(t *testing.T) {
	ts := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, Native(Null{}))
	assert.Nil(t, Native(nil))
	assert.Equal(t, "a", Native(String("a")))
	assert.Equal(t, int64(3), Native(Int(3)))
	assert.Equal(t, 0.5, Native(Float(0.5)))
	assert.Equal(t, true, Native(Bool(true)))
	assert.Equal(t, ts, Native(NewTime(ts)))
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, 0, compareKeysRFC8785("a", "a"))
	assert.Equal(t, -1, compareKeysRFC8785("A", "a"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "aa"))
	assert.Equal(t, 1, compareKeysRFC8785("b", "aa"))
}
