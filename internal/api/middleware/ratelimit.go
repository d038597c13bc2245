// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
)

const defaultActionsPerMinute = 30

const tooManyRequests = "Too many requests. Please try again later."

// RateLimitConfig configures a sliding-window limiter. KeyFunc defaults to
// the client IP.
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	KeyFunc      httprate.KeyFunc
}

// RateLimit rejects requests over the budget with 429 and Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	return httprate.Limit(cfg.RequestLimit, cfg.WindowSize,
		httprate.WithKeyFuncs(cfg.KeyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			if !wantsJSON(r) {
				http.Error(w, tooManyRequests, http.StatusTooManyRequests)
				return
			}
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"about:blank","title":"Too Many Requests","status":429,"detail":"` + tooManyRequests + `"}`))
		}),
	)
}

// ActionRateLimit budgets form submissions (login, register, settings) per
// client IP. Page views are never limited.
func ActionRateLimit(perMinute int, trustedProxies []*net.IPNet) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = defaultActionsPerMinute
	}
	limit := RateLimit(RateLimitConfig{
		RequestLimit: perMinute,
		WindowSize:   time.Minute,
		KeyFunc:      KeyByClientIP(trustedProxies),
	})

	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// KeyByClientIP keys requests by ClientIP.
func KeyByClientIP(trustedProxies []*net.IPNet) httprate.KeyFunc {
	return func(r *http.Request) (string, error) {
		return ClientIP(r, trustedProxies), nil
	}
}

// ClientIP returns the originating client address. Forwarding headers are
// only read when the peer is a trusted proxy. X-Forwarded-For is walked from
// the right so a client cannot pick its own key by prepending entries.
func ClientIP(r *http.Request, trustedProxies []*net.IPNet) string {
	peer := peerIP(r)
	if peer == nil {
		return r.RemoteAddr
	}
	if !IsIPAllowed(peer, trustedProxies) {
		return peer.String()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !IsIPAllowed(ip, trustedProxies) {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer.String()
}
