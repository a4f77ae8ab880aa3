package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storyspoiler-e2e/internal/apiclient"
)

// Status fails with *UnexpectedStatusError unless res has the wanted code.
func Status(res *apiclient.RawResponse, want int) error {
	if res.StatusCode != want {
		return &UnexpectedStatusError{Want: want, Got: res.StatusCode, Body: res.String()}
	}
	return nil
}

// DecodeJSON decodes the body into T. An empty or malformed body, or one of
// the wrong JSON kind, is a *BodyShapeError.
func DecodeJSON[T any](res *apiclient.RawResponse) (T, error) {
	var v T

	target := reflect.TypeOf((*T)(nil)).Elem().String()

	if len(bytes.TrimSpace(res.Body)) == 0 {
		return v, &BodyShapeError{Target: target, Err: errors.New("empty body")}
	}

	if err := json.Unmarshal(res.Body, &v); err != nil {
		return v, &BodyShapeError{Target: target, Body: res.String(), Err: err}
	}

	return v, nil
}

// RequireField fails with *BodyShapeError when the JSON object in the body
// has no non-null member named field.
func RequireField(res *apiclient.RawResponse, field string) error {
	obj, err := DecodeJSON[map[string]json.RawMessage](res)
	if err != nil {
		return err
	}

	raw, ok := obj[field]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return &BodyShapeError{
			Target: "object",
			Body:   res.String(),
			Err:    fmt.Errorf("missing field %q", field),
		}
	}

	return nil
}

// Equal fails with *AssertionFailure unless want == got.
func Equal[T comparable](field string, want, got T) error {
	if want != got {
		return &AssertionFailure{Field: field, Want: want, Got: got}
	}
	return nil
}

// NotEmpty fails with *AssertionFailure when n is zero.
func NotEmpty(field string, n int) error {
	if n == 0 {
		return &AssertionFailure{Field: field, Want: "non-empty", Got: n}
	}
	return nil
}

// Contains fails with *AssertionFailure unless needle occurs in haystack.
// An empty needle never matches.
func Contains(field, haystack, needle string) error {
	if needle == "" || !strings.Contains(haystack, needle) {
		return &AssertionFailure{Field: field, Want: "contains " + needle, Got: truncate(haystack)}
	}
	return nil
}
