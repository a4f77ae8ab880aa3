// Package check decodes API responses into typed records and asserts on
// status codes and fields. Every failure is a typed error that shows the
// mismatching value.
package check

import (
	"fmt"
	"net/http"
)

// maxBodyInError caps how much of a response body is echoed in messages.
const maxBodyInError = 512

// UnexpectedStatusError means the status code did not match the scenario's
// expectation.
type UnexpectedStatusError struct {
	Want int
	Got  int
	Body string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("expected status %d %s, got %d %s: %s",
		e.Want, http.StatusText(e.Want),
		e.Got, http.StatusText(e.Got),
		truncate(e.Body),
	)
}

// BodyShapeError means the body could not be decoded into the expected type
// or lacked a required field.
type BodyShapeError struct {
	Target string
	Body   string
	Err    error
}

func (e *BodyShapeError) Error() string {
	return fmt.Sprintf("decode %s: %v: %s", e.Target, e.Err, truncate(e.Body))
}

func (e *BodyShapeError) Unwrap() error {
	return e.Err
}

// AssertionFailure means a decoded value did not equal the expected one.
type AssertionFailure struct {
	Field string
	Want  any
	Got   any
}

func (e *AssertionFailure) Error() string {
	return fmt.Sprintf("%s: expected %#v, got %#v", e.Field, e.Want, e.Got)
}

func truncate(s string) string {
	if len(s) <= maxBodyInError {
		return s
	}
	return s[:maxBodyInError] + "..."
}
