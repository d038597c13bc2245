// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
})

func TestCSRFProtection(t *testing.T) {
	proxies, err := ParseCIDRs([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		method  string
		headers map[string]string
		tls     bool
		remote  string
		allowed []string
		want    int
	}{
		{"safe method without origin", http.MethodGet, nil, false, "", nil, http.StatusOK},
		{"post without origin", http.MethodPost, nil, false, "", nil, http.StatusForbidden},
		{"same origin", http.MethodPost, map[string]string{"Origin": "http://shop.example"}, false, "", nil, http.StatusOK},
		{"same origin https", http.MethodPost, map[string]string{"Origin": "https://shop.example"}, true, "", nil, http.StatusOK},
		{"cross origin", http.MethodPost, map[string]string{"Origin": "http://evil.example"}, false, "", nil, http.StatusForbidden},
		{"allowed origin", http.MethodPost, map[string]string{"Origin": "https://cdn.example"}, false, "", []string{"https://cdn.example/"}, http.StatusOK},
		{"referer fallback", http.MethodPost, map[string]string{"Referer": "http://shop.example/en/login"}, false, "", nil, http.StatusOK},
		{"cross referer", http.MethodPost, map[string]string{"Referer": "http://evil.example/x"}, false, "", nil, http.StatusForbidden},
		{"null origin", http.MethodPost, map[string]string{"Origin": "null"}, false, "", nil, http.StatusForbidden},
		{"origin case folded", http.MethodPost, map[string]string{"Origin": "HTTP://Shop.Example"}, false, "", nil, http.StatusOK},
		{"forwarded https from trusted proxy", http.MethodPost, map[string]string{"Origin": "https://shop.example", "X-Forwarded-Proto": "https"}, false, "10.0.0.1:4000", nil, http.StatusOK},
		{"forwarded https from client", http.MethodPost, map[string]string{"Origin": "https://shop.example", "X-Forwarded-Proto": "https"}, false, "203.0.113.9:4000", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/en/login", nil)
			req.Host = "shop.example"
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			CSRFProtection(tt.allowed, proxies)(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	trusted, err := ParseCIDRs([]string{"10.0.0.1", "192.168.0.0/16"})
	require.NoError(t, err)

	handler := SecurityHeaders("", trusted)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/en/login", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, DefaultCSP, rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "untrusted proxy must not enable HSTS")

	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	req.RemoteAddr = "192.168.4.4:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestParseCIDRs_Invalid(t *testing.T) {
	_, err := ParseCIDRs([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseCIDRs([]string{"10.0.0.0/99"})
	assert.Error(t, err)

	nets, err := ParseCIDRs([]string{" ", "::1"})
	require.NoError(t, err)
	assert.Len(t, nets, 1)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = xglog.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)

	req.Header.Set(HeaderRequestID, "bad id\n")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id\n", seen)
	assert.Len(t, seen, 36)
}

func TestRecoverer(t *testing.T) {
	panicky := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/en/login", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { panicky.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.EqualValues(t, 500, body["status"])

	rec = httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/en/login", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestActionRateLimit_OnlyLimitsPosts(t *testing.T) {
	handler := ActionRateLimit(2, nil)(okHandler)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/en/login", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/en/login", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/en/login", nil)
	req.RemoteAddr = "192.0.2.2:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "other clients keep their own budget")
}

func TestActionRateLimit_BudgetPerShopperBehindProxy(t *testing.T) {
	proxies, err := ParseCIDRs([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	handler := ActionRateLimit(1, proxies)(okHandler)

	post := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/en/login", nil)
		req.RemoteAddr = "10.0.0.5:4000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, post("203.0.113.7"))
	assert.Equal(t, http.StatusOK, post("203.0.113.8"), "a second shopper has its own budget")
	assert.Equal(t, http.StatusTooManyRequests, post("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.1, 203.0.113.7"), "a spoofed leading hop does not reset the budget")
}

func TestClientIP(t *testing.T) {
	proxies, err := ParseCIDRs([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{name: "direct client", remoteAddr: "203.0.113.7:5000", want: "203.0.113.7"},
		{name: "untrusted peer ignores headers", remoteAddr: "203.0.113.7:5000", xff: "198.51.100.1", realIP: "198.51.100.2", want: "203.0.113.7"},
		{name: "trusted proxy", remoteAddr: "10.0.0.5:4000", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "proxy chain", remoteAddr: "10.0.0.5:4000", xff: "198.51.100.1, 203.0.113.7, 10.1.1.1", want: "203.0.113.7"},
		{name: "real ip fallback", remoteAddr: "10.0.0.5:4000", realIP: "203.0.113.9", want: "203.0.113.9"},
		{name: "garbage header", remoteAddr: "10.0.0.5:4000", xff: "not-an-ip", want: "10.0.0.5"},
		{name: "unparsable remote", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/en/login", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIP(req, proxies))
		})
	}
}

func TestRateLimit_JSONResponse(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestLimit: 1, WindowSize: time.Minute})(okHandler)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "192.0.2.3:1"
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if i == 1 {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), `"status":429`)
		}
	}
}

func TestStack_EnforcesCSRF(t *testing.T) {
	r := NewRouter(StackConfig{EnableSecurityHeaders: true, EnableMetrics: true, EnableLogging: true})
	r.Post("/mutate", okHandler)

	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Origin", "http://example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStack_OptionalLayers(t *testing.T) {
	assert.Len(t, stack(StackConfig{}), 3)
	assert.Len(t, stack(StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        "storefront",
		EnableLogging:         true,
		EnableRateLimit:       true,
	}), 8)
}
