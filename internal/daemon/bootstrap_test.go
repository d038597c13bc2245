// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ManuGH/storefront/internal/config"
	"github.com/ManuGH/storefront/internal/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppConfig(endpoint string) config.AppConfig {
	return config.AppConfig{
		Version:  "test",
		LogLevel: "info",
		Server: config.ServerSettings{
			ListenAddr:      "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
			TrustedProxies:  []string{"10.0.0.0/8"},
		},
		API: config.APISettings{
			Endpoint:         endpoint,
			ChannelID:        1,
			Timeout:          time.Second,
			RateLimit:        100,
			RateBurst:        100,
			BreakerThreshold: 5,
			BreakerReset:     time.Second,
		},
		I18n:    config.I18nSettings{Locales: []string{"en", "de"}, DefaultLocale: "en"},
		Session: config.SessionSettings{Backend: config.SessionBackendMemory, CookieName: "sf", TTL: time.Hour},
		Cache:   config.CacheSettings{Backend: config.CacheBackendMemory, TTL: time.Minute},
	}
}

func TestBootstrap_WiresStorefront(t *testing.T) {
	mock := graphql.NewMockServer()
	defer mock.Close()

	rt, err := Bootstrap(context.Background(), testAppConfig(mock.URL))
	require.NoError(t, err)
	t.Cleanup(func() {
		// Runs the close hooks for the cache and session store.
		_ = rt.Manager.Start(canceledContext())
	})

	h := rt.Storefront.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"api"`)
	assert.Contains(t, rec.Body.String(), `"session_store"`)
	assert.Contains(t, rec.Body.String(), `"api_circuit"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/de/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestBootstrap_ReadinessFailsWhenAPIDown(t *testing.T) {
	mock := graphql.NewMockServer()
	rt, err := Bootstrap(context.Background(), testAppConfig(mock.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Manager.Start(canceledContext()) })
	mock.Close()

	resp := rt.Health.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, "unhealthy", string(resp.Checks["api"].Status))
}

func TestBootstrap_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
	}{
		{"bad endpoint", func(c *config.AppConfig) { c.API.Endpoint = "store.example.com" }},
		{"unknown locale default", func(c *config.AppConfig) { c.I18n.DefaultLocale = "fr" }},
		{"bad proxy", func(c *config.AppConfig) { c.Server.TrustedProxies = []string{"nope"} }},
		{"unknown cache", func(c *config.AppConfig) { c.Cache.Backend = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAppConfig("http://127.0.0.1:1/graphql")
			tt.mutate(&cfg)
			_, err := Bootstrap(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestStackConfig(t *testing.T) {
	cfg := testAppConfig("http://example.com")
	cfg.Metrics.ListenAddr = ":9090"
	cfg.RateLimit = config.RateLimitSettings{Enabled: true, ActionsPerMinute: 12}

	stack, err := stackConfig(cfg)
	require.NoError(t, err)
	assert.True(t, stack.EnableMetrics)
	assert.True(t, stack.EnableRateLimit)
	assert.Equal(t, 12, stack.ActionsPerMinute)
	assert.Empty(t, stack.TracingService)
	require.Len(t, stack.TrustedProxies, 1)
	assert.Equal(t, "10.0.0.0/8", stack.TrustedProxies[0].String())
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
