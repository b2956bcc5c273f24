// Package ir provides the value types that flow through the filter engine.
//
// This package contains leaf types only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Parameter values are a closed set: Null, String, Int, Float, Bool, Time
//   - Parameter keys are NFC normalized and trimmed, comparison stays case-sensitive
//   - Params is read-only after construction
//   - Time values are always UTC
//
// MarshalCanonical gives every value one byte form; ParamsHash and
// QueryFingerprint hash that form with domain separation.
package ir
