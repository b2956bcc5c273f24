package compiler

import (
	"fmt"

	"github.com/roach88/syto/internal/engine"
)

// Validation error codes (E200-E299)
const (
	ErrEntityInvalid       = "E201" // entity definition rejected by engine
	ErrDuplicateParamKey   = "E202" // parameter key read by more than one rule
	ErrThresholdShadows    = "E203" // threshold parameter also read by a rule
	ErrThresholdUndeclared = "E204" // threshold field not a declared column
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled entity for configurations that are legal but
// almost certainly mistakes. Returns all errors found (does not fail-fast).
func Validate(ent *engine.Entity) []ValidationError {
	if ent == nil {
		return []ValidationError{{Field: "entity", Message: "entity is nil", Code: ErrEntityInvalid}}
	}

	var errs []ValidationError
	if err := ent.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "entity", Message: err.Error(), Code: ErrEntityInvalid})
	}

	readers := make(map[string]string)
	for _, rule := range ent.AttributeMap().Rules() {
		for _, key := range rule.Keys() {
			if prev, seen := readers[key]; seen {
				errs = append(errs, ValidationError{
					Field:   "attrs",
					Message: fmt.Sprintf("parameter %q is read by both %q and %q", key, prev, rule.String()),
					Code:    ErrDuplicateParamKey,
				})
				continue
			}
			readers[key] = rule.String()
		}
	}

	th, ok := ent.Extension().(engine.Thresholds)
	if !ok {
		return errs
	}
	for _, t := range th.Rules {
		if rule, seen := readers[t.Param]; seen {
			errs = append(errs, ValidationError{
				Field:   "filter.thresholds",
				Message: fmt.Sprintf("parameter %q is also read by %q", t.Param, rule),
				Code:    ErrThresholdShadows,
			})
		}
		if len(ent.Columns) > 0 {
			if _, declared := ent.Columns.Lookup(t.Field); !declared {
				errs = append(errs, ValidationError{
					Field:   "filter.thresholds",
					Message: fmt.Sprintf("threshold %s targets undeclared column %s", t.Param, t.Field),
					Code:    ErrThresholdUndeclared,
				})
			}
		}
	}

	return errs
}
