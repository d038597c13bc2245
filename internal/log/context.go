// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionIDKey
	localeKey
)

// contextFields maps each context key to the log field it populates, in
// output order.
var contextFields = []struct {
	key   ctxKey
	field string
}{
	{requestIDKey, FieldRequestID},
	{sessionIDKey, FieldSessionID},
	{localeKey, FieldLocale},
}

func withString(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func stringFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID stores the request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// ContextWithSessionID stores the customer session ID in ctx.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return withString(ctx, sessionIDKey, id)
}

// ContextWithLocale stores the request's page locale in ctx.
func ContextWithLocale(ctx context.Context, locale string) context.Context {
	return withString(ctx, localeKey, locale)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string { return stringFrom(ctx, requestIDKey) }

// SessionIDFromContext returns the session ID, or "".
func SessionIDFromContext(ctx context.Context) string { return stringFrom(ctx, sessionIDKey) }

// LocaleFromContext returns the page locale, or "".
func LocaleFromContext(ctx context.Context) string { return stringFrom(ctx, localeKey) }

// WithContext adds the request-scoped fields carried by ctx to logger.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	if ctx == nil {
		return logger
	}
	var (
		builder = logger.With()
		added   bool
	)
	for _, f := range contextFields {
		if v := stringFrom(ctx, f.key); v != "" {
			builder = builder.Str(f.field, v)
			added = true
		}
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext returns the context logger tagged with component
// and the request-scoped fields.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := FromContext(ctx)
	return WithContext(ctx, l.With().Str(FieldComponent, component).Logger())
}

// FromContext returns the logger attached to ctx, or the base logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	b := Base()
	return &b
}
