// Package types provides type definitions for the questionnaire wire formats
// and the parsed in-memory model used throughout the evaluation agent.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// MalformedInputError reports a required field missing from the raw
// questionnaire record (header, question, or option block). It aborts
// synthesis for that questionnaire instance; no partial payload is emitted.
type MalformedInputError struct {
	Field string
	Cause error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed questionnaire: field %q: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("malformed questionnaire: missing required field %q", e.Field)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}
