// Package client implements the HTTP session client for the evaluation
// service: SSO login, task and questionnaire discovery, topic retrieval,
// and payload submission. It holds the cookie session; requests are not
// retried, and pacing between submissions belongs to the caller.
package client

import "fmt"

// Error represents a failure talking to the evaluation service.
type Error struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluation service %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("evaluation service %s: %s", e.Endpoint, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
