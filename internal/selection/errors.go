// Package selection implements the answer-selection strategies that produce
// an initial answer set for the choice questions of a questionnaire.
package selection

import "fmt"

// UnknownStrategyError reports an unrecognized strategy name. It is returned
// before any selection work begins.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy %q", e.Name)
}
