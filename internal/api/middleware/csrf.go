// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// CSRFProtection rejects state-changing requests whose Origin (or, lacking
// one, Referer) is neither the site itself nor in allowedOrigins. The site's
// own scheme is taken from X-Forwarded-Proto only behind a trusted proxy.
//
//	r.Use(middleware.CSRFProtection(origins, proxies))
func CSRFProtection(allowedOrigins []string, trustedProxies []*net.IPNet) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if n := normalizeOrigin(o); n != "" {
			allowed[n] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			origin := requestOrigin(r)
			if origin == "" {
				http.Error(w, "Forbidden: missing origin", http.StatusForbidden)
				return
			}
			if _, ok := allowed[origin]; !ok && origin != siteOrigin(r, trustedProxies) {
				http.Error(w, "Forbidden: cross-site request", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// requestOrigin prefers Origin and falls back to the Referer's origin.
// The opaque "null" origin counts as missing.
func requestOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" && o != "null" {
		return normalizeOrigin(o)
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		return normalizeOrigin(ref)
	}
	return ""
}

// normalizeOrigin reduces a URL to lower-case scheme://host.
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func siteOrigin(r *http.Request, trustedProxies []*net.IPNet) string {
	if r.Host == "" {
		return ""
	}
	scheme := "http"
	if IsHTTPS(r, trustedProxies) {
		scheme = "https"
	}
	return scheme + "://" + strings.ToLower(r.Host)
}
