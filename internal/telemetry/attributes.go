// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	GraphQLOperationKey = "graphql.operation.name"
	GraphQLErrorsKey    = "graphql.errors"

	LocaleKey       = "storefront.locale"
	ActionKey       = "storefront.action"
	ActionStatusKey = "storefront.action.status"
	SessionKey      = "storefront.session.authenticated"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes describes a served page request.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// GraphQLAttributes describes an upstream GraphQL call.
func GraphQLAttributes(operation string, errorCount int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(GraphQLOperationKey, operation),
		attribute.Int(GraphQLErrorsKey, errorCount),
	}
}

// ActionAttributes describes a form action. Empty values are left out.
func ActionAttributes(action, locale, status string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, kv := range [...]struct{ key, val string }{
		{ActionKey, action},
		{LocaleKey, locale},
		{ActionStatusKey, status},
	} {
		if kv.val != "" {
			attrs = append(attrs, attribute.String(kv.key, kv.val))
		}
	}
	return attrs
}

// SessionAttributes records whether the request carried a customer session.
func SessionAttributes(authenticated bool) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Bool(SessionKey, authenticated)}
}

// ErrorAttributes marks a span as failed with the given error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
