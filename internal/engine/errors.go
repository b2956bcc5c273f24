package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/syto/internal/ir"
)

// ErrorCode categorizes filter errors and warnings.
type ErrorCode string

const (
	// ErrCodeInvalidParameter indicates a parameter value cannot be coerced
	// to its target field's comparable type.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeExtensionFailed indicates the extension hook returned an error.
	ErrCodeExtensionFailed ErrorCode = "EXTENSION_FAILED"

	// ErrCodeInvalidEntity indicates an entity definition is unusable.
	ErrCodeInvalidEntity ErrorCode = "INVALID_ENTITY"

	// ErrCodeUnconfiguredFilter marks the non-fatal unconfigured warning.
	ErrCodeUnconfiguredFilter ErrorCode = "UNCONFIGURED_FILTER"
)

// InvalidParameterError reports a parameter whose value cannot be coerced
// to the comparable type of the field it filters. The filter call is aborted.
type InvalidParameterError struct {
	// Key is the offending parameter name.
	Key string

	// Field is the target field the value was meant for.
	Field string

	// Value is the raw parameter value.
	Value ir.Value

	// Stage is the pipeline stage that rejected the value.
	Stage Stage

	// Err is the underlying coercion error.
	Err error
}

// Error implements the error interface.
func (e *InvalidParameterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: parameter %q for field %s: %v", ErrCodeInvalidParameter, e.Key, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: parameter %q for field %s", ErrCodeInvalidParameter, e.Key, e.Field)
}

// Unwrap returns the underlying coercion error.
func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

// ExtensionError wraps a failure returned by an extension hook.
type ExtensionError struct {
	Entity string
	Filter string
	Err    error
}

// Error implements the error interface.
func (e *ExtensionError) Error() string {
	return fmt.Sprintf("%s: entity %s (filter=%s): %v", ErrCodeExtensionFailed, e.Entity, e.Filter, e.Err)
}

// Unwrap returns the hook's error.
func (e *ExtensionError) Unwrap() error {
	return e.Err
}

// EntityError reports an invalid entity definition.
type EntityError struct {
	Entity  string
	Message string
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	return fmt.Sprintf("%s: entity %s: %s", ErrCodeInvalidEntity, e.Entity, e.Message)
}

// UnconfiguredFilterWarning is emitted when an entity has neither attribute
// map rules nor an extension hook. It is never returned as an error; the
// unfiltered query is still returned.
type UnconfiguredFilterWarning struct {
	Entity string
}

// Error implements the error interface so warnings can be logged and
// matched like errors.
func (w *UnconfiguredFilterWarning) Error() string {
	return fmt.Sprintf("%s: no filters defined for entity %s", ErrCodeUnconfiguredFilter, w.Entity)
}

// IsInvalidParameter returns true if err is or wraps an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	var ipe *InvalidParameterError
	return errors.As(err, &ipe)
}

// IsUnconfigured returns true if err is or wraps an UnconfiguredFilterWarning.
func IsUnconfigured(err error) bool {
	var w *UnconfiguredFilterWarning
	return errors.As(err, &w)
}

// Code extracts the ErrorCode from any filter error, or "" for other errors.
func Code(err error) ErrorCode {
	var ipe *InvalidParameterError
	if errors.As(err, &ipe) {
		return ErrCodeInvalidParameter
	}
	var ee *ExtensionError
	if errors.As(err, &ee) {
		return ErrCodeExtensionFailed
	}
	var ent *EntityError
	if errors.As(err, &ent) {
		return ErrCodeInvalidEntity
	}
	var w *UnconfiguredFilterWarning
	if errors.As(err, &w) {
		return ErrCodeUnconfiguredFilter
	}
	return ""
}
