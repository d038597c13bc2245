// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	xglog "github.com/ManuGH/storefront/internal/log"
)

const panicDetail = "An unexpected error occurred. Please try again later."

type panicProblem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	RequestID string `json:"requestId,omitempty"`
}

// Recoverer turns a handler panic into a 500. JSON clients get a problem
// document, everyone else plain text. http.ErrAbortHandler is re-raised.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			xglog.WithComponentFromContext(r.Context(), "recoverer").Error().
				Str(xglog.FieldEvent, "panic.recovered").
				Str(xglog.FieldMethod, r.Method).
				Str(xglog.FieldPath, strings.ToValidUTF8(r.URL.Path, "")).
				Str(xglog.FieldRemoteAddr, r.RemoteAddr).
				Interface("panic_value", rec).
				Bytes("stack_trace", debug.Stack()).
				Msg("handler panicked")

			if !wantsJSON(r) {
				http.Error(w, panicDetail, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(panicProblem{
				Type:      "about:blank",
				Title:     http.StatusText(http.StatusInternalServerError),
				Status:    http.StatusInternalServerError,
				Detail:    panicDetail,
				RequestID: xglog.RequestIDFromContext(r.Context()),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "json")
}
