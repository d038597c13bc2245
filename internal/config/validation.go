// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"net"
	"strings"

	"github.com/ManuGH/storefront/internal/validate"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate reports every invalid setting of cfg in one error.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("LogLevel", strings.ToLower(cfg.LogLevel), logLevels)

	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	v.PositiveDuration("Server.ReadTimeout", cfg.Server.ReadTimeout)
	v.PositiveDuration("Server.WriteTimeout", cfg.Server.WriteTimeout)
	v.PositiveDuration("Server.ShutdownTimeout", cfg.Server.ShutdownTimeout)
	for _, p := range cfg.Server.TrustedProxies {
		if !validProxy(p) {
			v.AddError("Server.TrustedProxies", "must be an IP address or CIDR", p)
		}
	}

	v.URL("API.Endpoint", cfg.API.Endpoint, []string{"http", "https"})
	v.Struct("API", cfg.API)
	v.PositiveDuration("API.Timeout", cfg.API.Timeout)
	v.PositiveDuration("API.BreakerReset", cfg.API.BreakerReset)

	if len(cfg.I18n.Locales) == 0 {
		v.AddError("I18n.Locales", "at least one locale is required", cfg.I18n.Locales)
	} else {
		v.Contains("I18n.DefaultLocale", cfg.I18n.Locales, cfg.I18n.DefaultLocale)
	}

	v.OneOf("Session.Backend", cfg.Session.Backend,
		[]string{SessionBackendMemory, SessionBackendRedis, SessionBackendBadger})
	v.Struct("Session", cfg.Session)
	v.PositiveDuration("Session.TTL", cfg.Session.TTL)
	switch cfg.Session.Backend {
	case SessionBackendRedis:
		v.NotEmpty("Session.RedisAddr", cfg.Session.RedisAddr)
	case SessionBackendBadger:
		v.NotEmpty("Session.BadgerDir", cfg.Session.BadgerDir)
	}

	v.OneOf("Cache.Backend", cfg.Cache.Backend,
		[]string{CacheBackendMemory, CacheBackendRedis, CacheBackendNone})
	if cfg.Cache.Backend != CacheBackendNone {
		v.PositiveDuration("Cache.TTL", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend == CacheBackendRedis {
		v.NotEmpty("Cache.RedisAddr", cfg.Cache.RedisAddr)
	}

	if cfg.ReCaptcha.Enabled {
		v.NotEmpty("ReCaptcha.SiteKey", cfg.ReCaptcha.SiteKey)
	}

	if cfg.RateLimit.Enabled {
		v.Positive("RateLimit.ActionsPerMinute", cfg.RateLimit.ActionsPerMinute)
	}

	if cfg.Metrics.ListenAddr != "" {
		v.ListenAddr("Metrics.ListenAddr", cfg.Metrics.ListenAddr)
	}

	v.Struct("RateLimit", cfg.RateLimit)
	v.Struct("Telemetry", cfg.Telemetry)
	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.ExporterType", cfg.Telemetry.ExporterType, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
	}

	return v.Err()
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, _, err := net.ParseCIDR(s); err == nil {
		return true
	}
	return net.ParseIP(s) != nil
}
