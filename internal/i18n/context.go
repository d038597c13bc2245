// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package i18n

import "context"

type ctxKey struct{}

// WithLocale sets the request locale for everything rendered below ctx.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request locale, if one was set.
func FromContext(ctx context.Context) (Locale, bool) {
	l, ok := ctx.Value(ctxKey{}).(Locale)
	return l, ok && l != ""
}
