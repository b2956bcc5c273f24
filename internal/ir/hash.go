package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainParams = "syto/params/v1"
	DomainQuery  = "syto/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ParamsHash fingerprints a parameter mapping. Mappings that differ only in
// key order, key normalization form or value spelling that canonicalizes
// identically hash the same.
func ParamsHash(p Params) (string, error) {
	canonical, err := MarshalCanonical(p)
	if err != nil {
		return "", fmt.Errorf("ParamsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParams, canonical), nil
}

// QueryFingerprint identifies a compiled statement together with its bound
// arguments. Two filter calls with the same fingerprint select the same rows
// from the same database state.
func QueryFingerprint(sql string, args []any) (string, error) {
	obj := map[string]any{
		"sql":  sql,
		"args": args,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("QueryFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}

// MustParamsHash is like ParamsHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParamsHash(p Params) string {
	hash, err := ParamsHash(p)
	if err != nil {
		panic(err)
	}
	return hash
}
