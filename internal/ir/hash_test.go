package ir

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsHashDeterminism(t *testing.T) {
	p1 := ParamsFromPairs(P("color", String("green")), P("wgt_from", Int(100)))
	p2 := ParamsFromPairs(P("wgt_from", Int(100)), P("color", String("green")))

	h1, err := ParamsHash(p1)
	require.NoError(t, err)
	h2, err := ParamsHash(p2)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key order must not matter")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestParamsHashChangesWithInput(t *testing.T) {
	base := MustParamsHash(ParamsFromPairs(P("color", String("green"))))

	assert.NotEqual(t, base, MustParamsHash(ParamsFromPairs(P("color", String("red")))))
	assert.NotEqual(t, base, MustParamsHash(ParamsFromPairs(P("colour", String("green")))))
	assert.NotEqual(t, base, MustParamsHash(EmptyParams()))
}

func TestParamsHashNFC(t *testing.T) {
	composed := MustParamsHash(ParamsFromPairs(P("name", String("café"))))
	decomposed := MustParamsHash(ParamsFromPairs(P("name", String("cafe\u0301"))))
	assert.Equal(t, composed, decomposed)
}

func TestParamsHashRejectsNonFinite(t *testing.T) {
	_, err := ParamsHash(ParamsFromPairs(P("rate", Float(math.NaN()))))
	assert.Error(t, err)
}

func TestQueryFingerprint(t *testing.T) {
	sql := `SELECT "t".* FROM "t" WHERE "t"."a" = ? ORDER BY "t"."id" ASC`

	f1, err := QueryFingerprint(sql, []any{int64(1)})
	require.NoError(t, err)
	f2, err := QueryFingerprint(sql, []any{int64(1)})
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	f3, err := QueryFingerprint(sql, []any{int64(2)})
	require.NoError(t, err)
	assert.NotEqual(t, f1, f3)

	day := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = QueryFingerprint(sql, []any{day})
	assert.NoError(t, err)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainParams, data), hashWithDomain(DomainQuery, data))
}
