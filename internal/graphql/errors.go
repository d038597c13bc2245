// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package graphql

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes of a platform call. Match them with errors.Is.
var (
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrBadResponse         = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
	ErrUnauthorized        = errors.New("upstream: unauthorized")
	ErrRejected            = errors.New("upstream: request rejected (4xx)")
	ErrCanceled            = errors.New("upstream: request canceled by caller")
)

// APIError is a failed platform call. Sentinel is one of the Err* classes;
// Status is zero when no HTTP response arrived.
type APIError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graphql: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	for _, tail := range []string{e.Body, errString(e.Err)} {
		if tail != "" {
			b.WriteString(": ")
			b.WriteString(tail)
		}
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Unwrap exposes both the class and the underlying cause.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// HTTPFailure reports whether the platform answered with a non-2xx status.
func (e *APIError) HTTPFailure() bool {
	return e.Status > 0
}

// GraphQLError is one entry of a response's top-level errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// ResponseError is returned when the API answered 200 with top-level errors.
type ResponseError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("graphql: %s: %s", e.Operation, strings.Join(msgs, "; "))
}

// IsAPIError reports whether err carries an HTTP-level failure from the platform.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.HTTPFailure()
}
