// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package customer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ManuGH/storefront/internal/graphql"
)

var (
	// ErrInvalidInput marks a submission that failed local validation.
	ErrInvalidInput = errors.New("customer: invalid input")
	// ErrInvalidCredentials marks a rejected login.
	ErrInvalidCredentials = errors.New("customer: invalid credentials")
)

// DomainError carries the error union returned by a mutation.
type DomainError struct {
	Operation string
	Messages  []string
}

func (e *DomainError) Error() string {
	return "customer: " + e.Operation + ": " + strings.Join(e.Messages, "; ")
}

// Message joins the domain messages for display.
func (e *DomainError) Message() string {
	return strings.Join(e.Messages, "\n")
}

// Kind returns a stable label for err.
func Kind(err error) string {
	var domainErr *DomainError
	var respErr *graphql.ResponseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.As(err, &domainErr):
		return "rejected"
	case errors.Is(err, graphql.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, graphql.ErrCircuitOpen):
		return "unavailable"
	case errors.Is(err, graphql.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, graphql.ErrUpstreamUnavailable), errors.Is(err, graphql.ErrUpstreamError):
		return "upstream"
	case errors.As(err, &respErr):
		return "graphql"
	case errors.Is(err, graphql.ErrCanceled), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// HTTPStatus maps err to the status a handler should answer with.
func HTTPStatus(err error) int {
	var domainErr *DomainError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.As(err, &domainErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, graphql.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, graphql.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, graphql.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, graphql.ErrUpstreamUnavailable),
		errors.Is(err, graphql.ErrUpstreamError),
		errors.Is(err, graphql.ErrBadResponse):
		return http.StatusBadGateway
	case errors.Is(err, graphql.ErrCanceled), errors.Is(err, context.Canceled):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// failureMessage picks the displayable message for a failed API call. Only
// an HTTP failure from the platform counts as a server error.
func failureMessage(err error) string {
	if graphql.IsAPIError(err) {
		return MsgServerError
	}
	return MsgGeneric
}
