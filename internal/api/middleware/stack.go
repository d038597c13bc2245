// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net"
	"net/http"

	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/go-chi/chi/v5"
)

// StackConfig selects the optional parts of the ingress stack. Recovery,
// request IDs and CSRF checks are always on.
type StackConfig struct {
	AllowedOrigins []string     // extra origins allowed to post forms
	TrustedProxies []*net.IPNet // may set X-Forwarded-* headers

	EnableSecurityHeaders bool
	CSP                   string // DefaultCSP when empty

	EnableMetrics  bool
	TracingService string // tracing off when empty
	EnableLogging  bool

	EnableRateLimit  bool
	ActionsPerMinute int
}

// NewRouter returns a chi router with the ingress stack installed.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack installs the ingress stack on r, outermost first. The recoverer
// wraps everything; the rate limiter sits next to the handlers so rejected
// requests are still logged and measured.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(stack(cfg)...)
}

func stack(cfg StackConfig) []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{
		Recoverer,
		RequestID,
		CSRFProtection(cfg.AllowedOrigins, cfg.TrustedProxies),
	}
	if cfg.EnableSecurityHeaders {
		mws = append(mws, SecurityHeaders(cfg.CSP, cfg.TrustedProxies))
	}
	if cfg.EnableMetrics {
		mws = append(mws, Metrics())
	}
	if cfg.TracingService != "" {
		mws = append(mws, Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		mws = append(mws, xglog.Middleware())
	}
	if cfg.EnableRateLimit {
		mws = append(mws, ActionRateLimit(cfg.ActionsPerMinute, cfg.TrustedProxies))
	}
	return mws
}
