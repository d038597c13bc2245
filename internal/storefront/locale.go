// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"net/http"
	"strings"

	"github.com/ManuGH/storefront/internal/i18n"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

// pagePaths are the locale relative paths that get a locale redirect when
// requested without prefix.
var pagePaths = map[string]bool{
	"/login":                            true,
	"/login/register-customer":          true,
	"/account":                          true,
	"/account/settings":                 true,
	"/account/settings/change-password": true,
}

// withLocale validates the {locale} segment and stores it in the context.
// Unprefixed page paths are redirected to the negotiated locale.
func (s *Server) withLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "locale")
		if !s.routing.IsSupported(raw) {
			if pagePaths[strings.TrimSuffix(r.URL.Path, "/")] {
				s.redirectToLocale(w, r, r.URL.Path)
				return
			}
			s.handleNotFound(w, r)
			return
		}

		locale := i18n.Locale(raw)
		ctx := i18n.WithLocale(r.Context(), locale)
		ctx = xglog.ContextWithLocale(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.redirectToLocale(w, r, "")
}

func (s *Server) redirectToLocale(w http.ResponseWriter, r *http.Request, path string) {
	locale := s.routing.Negotiate(r.Header.Get("Accept-Language"))
	target := "/" + string(locale) + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleLocaleHome(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, s.localePath(r, "/account/settings"), http.StatusFound)
		return
	}
	http.Redirect(w, r, s.loginPath(r), http.StatusFound)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.localePath(r, "/account/settings"), http.StatusFound)
}

// locale returns the request locale, or the default outside locale routes.
func (s *Server) locale(r *http.Request) i18n.Locale {
	if l, ok := i18n.FromContext(r.Context()); ok {
		return l
	}
	return s.routing.Negotiate(r.Header.Get("Accept-Language"))
}

func (s *Server) localePath(r *http.Request, path string) string {
	return "/" + string(s.locale(r)) + path
}

func (s *Server) loginPath(r *http.Request) string {
	return s.localePath(r, "/login")
}

// stripLocale returns the request path without its locale segment.
func stripLocale(path string, locale i18n.Locale) string {
	rest := strings.TrimPrefix(path, "/"+string(locale))
	if rest == "/" {
		return ""
	}
	return rest
}
