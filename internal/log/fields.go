// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldCustomerID = "customer_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Storefront fields
	FieldLocale    = "locale"
	FieldAction    = "action"
	FieldOperation = "operation"
	FieldStatus    = "status"

	// HTTP fields
	FieldMethod     = "method"
	FieldRoute      = "route"
	FieldPath       = "path"
	FieldRemoteAddr = "remote_addr"
	FieldDuration   = "duration_ms"
	FieldBytes      = "bytes"
	FieldEndpoint   = "endpoint"
)
