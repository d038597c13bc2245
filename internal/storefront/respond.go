// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ManuGH/storefront/internal/customer"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/ManuGH/storefront/internal/session"
)

// wantsJSON reports whether the client asked for a JSON answer.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// actionStatus is 200 for a successful action and 422 otherwise.
func actionStatus(res customer.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// basePage fills the fields shared by every page.
func (s *Server) basePage(r *http.Request, titleKey string) pageData {
	locale := s.locale(r)
	_, signedIn := session.FromContext(r.Context())
	data := pageData{
		Locale:    locale,
		Locales:   s.routing.Locales(),
		Path:      stripLocale(r.URL.Path, locale),
		SignedIn:  signedIn,
		translate: s.catalog.Translator(locale),
	}
	data.Title = data.T(titleKey)
	return data
}

// renderPage writes a dynamically rendered page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	body, err := s.views.render(name, data)
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "storefront")
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "page.render_failed").
			Str("page", name).
			Msg("page render failed")
		http.Error(w, customer.MsgGeneric, http.StatusInternalServerError)
		return
	}
	metrics.RecordPageRender(name, "dynamic")
	writeHTML(w, status, body)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// renderError answers with problem JSON or an error page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeProblem(w, r, status, message)
		return
	}
	data := s.basePage(r, "errors.generic")
	data.Title = http.StatusText(status)
	data.Page = errorPage{Status: status, Message: message}
	s.renderPage(w, r, status, pageError, data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	msg := s.catalog.Translator(s.locale(r))("errors.notFound")
	s.renderError(w, r, http.StatusNotFound, msg)
}

// renderFailure answers a failed backend call.
func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	logger := xglog.WithComponentFromContext(r.Context(), "storefront")
	logger.Error().
		Err(err).
		Str(xglog.FieldEvent, "page.backend_failed").
		Str("kind", customer.Kind(err)).
		Msg("backend call failed")
	msg := s.catalog.Translator(s.locale(r))("errors.generic")
	s.renderError(w, r, customer.HTTPStatus(err), msg)
}
