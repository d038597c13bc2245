// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/storefront/internal/api/middleware"
	xglog "github.com/ManuGH/storefront/internal/log"
)

// problem is an RFC 7807 problem details body.
type problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// writeProblem writes an RFC 7807 problem details response.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	reqID := xglog.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = w.Header().Get(middleware.HeaderRequestID)
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.EscapedPath(),
		RequestID: reqID,
	}); err != nil {
		xglog.L().Error().
			Err(err).
			Int(xglog.FieldStatus, status).
			Msg("failed to encode problem response")
	}
}
