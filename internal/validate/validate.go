// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package validate collects configuration problems into one error. Simple
// constraints live in `validate` struct tags; cross-field rules use the
// helper methods.
package validate

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Error is a single failed rule.
type Error struct {
	Field   string
	Value   any
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationError is every failure from one Validator run.
type ValidationError struct {
	errors []Error
}

// Errors returns the individual failures.
func (e ValidationError) Errors() []Error { return e.errors }

func (e ValidationError) Error() string {
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validator accumulates failures. The zero value is not usable; call New.
type Validator struct {
	errors []Error
}

func New() *Validator {
	return &Validator{}
}

var (
	tagsOnce sync.Once
	tags     *validator.Validate
)

func structValidator() *validator.Validate {
	tagsOnce.Do(func() {
		tags = validator.New(validator.WithRequiredStructEnabled())
	})
	return tags
}

func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

func (v *Validator) IsValid() bool { return len(v.errors) == 0 }

func (v *Validator) Errors() []Error { return v.errors }

// Err returns nil or a ValidationError holding a copy of the failures.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return ValidationError{errors: slices.Clone(v.errors)}
}

// Struct checks the `validate` tags of s. Failures are reported as
// prefix.Field.
func (v *Validator) Struct(prefix string, s any) {
	err := structValidator().Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError(prefix, err.Error(), s)
		return
	}
	for _, fe := range fieldErrs {
		v.AddError(prefix+"."+fe.StructField(), describeTag(fe), fe.Value())
	}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "value cannot be empty"
	case "gt":
		return "value must be greater than " + fe.Param()
	case "gte":
		return "value must be at least " + fe.Param()
	case "lte":
		return "value must be at most " + fe.Param()
	case "oneof":
		return fmt.Sprintf("value must be one of [%s], got %v", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

// URL requires an absolute URL with a host and, when given, an allowed scheme.
func (v *Validator) URL(field, value string, allowedSchemes []string) {
	if value == "" {
		v.AddError(field, "URL cannot be empty", value)
		return
	}
	u, err := url.Parse(value)
	switch {
	case err != nil:
		v.AddError(field, fmt.Sprintf("invalid URL: %v", err), value)
	case u.Host == "":
		v.AddError(field, "URL must have a host", value)
	case len(allowedSchemes) > 0 && !slices.Contains(allowedSchemes, u.Scheme):
		v.AddError(field, fmt.Sprintf("unsupported URL scheme %q (allowed: %v)", u.Scheme, allowedSchemes), value)
	}
}

// ListenAddr requires host:port; the host may be empty.
func (v *Validator) ListenAddr(field, value string) {
	if value == "" {
		v.AddError(field, "listen address cannot be empty", value)
		return
	}
	if _, port, err := net.SplitHostPort(value); err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err), value)
	} else if port == "" {
		v.AddError(field, "listen address must include a port", value)
	}
}

// NotEmpty rejects empty and whitespace-only strings.
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.AddError(field, fmt.Sprintf("value must be one of %v, got %q", allowed, value), value)
	}
}

func (v *Validator) Positive(field string, value int) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("value must be positive, got %d", value), value)
	}
}

func (v *Validator) PositiveDuration(field string, value time.Duration) {
	if value <= 0 {
		v.AddError(field, fmt.Sprintf("duration must be positive, got %s", value), value)
	}
}

// Contains requires want to be an element of list.
func (v *Validator) Contains(field string, list []string, want string) {
	if !slices.Contains(list, want) {
		v.AddError(field, fmt.Sprintf("%q is not part of %v", want, list), list)
	}
}
