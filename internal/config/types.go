// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendBadger = "badger"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// FileConfig represents the YAML configuration structure
type FileConfig struct {
	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`

	Server    ServerFileConfig    `yaml:"server,omitempty"`
	API       APIFileConfig       `yaml:"api"`
	I18n      I18nFileConfig      `yaml:"i18n,omitempty"`
	Session   SessionFileConfig   `yaml:"session,omitempty"`
	Cache     CacheFileConfig     `yaml:"cache,omitempty"`
	Settings  SettingsFileConfig  `yaml:"settings,omitempty"`
	ReCaptcha ReCaptchaFileConfig `yaml:"recaptcha,omitempty"`
	RateLimit RateLimitFileConfig `yaml:"rateLimit,omitempty"`
	Metrics   MetricsFileConfig   `yaml:"metrics,omitempty"`
	Telemetry TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// ServerFileConfig holds HTTP server settings
type ServerFileConfig struct {
	ListenAddr      string   `yaml:"listenAddr,omitempty"`
	ReadTimeout     string   `yaml:"readTimeout,omitempty"`  // e.g. "10s"
	WriteTimeout    string   `yaml:"writeTimeout,omitempty"` // e.g. "30s"
	IdleTimeout     string   `yaml:"idleTimeout,omitempty"`
	ShutdownTimeout string   `yaml:"shutdownTimeout,omitempty"`
	AllowedOrigins  []string `yaml:"allowedOrigins,omitempty"`
	TrustedProxies  []string `yaml:"trustedProxies,omitempty"` // CIDRs or IPs
}

// APIFileConfig holds the platform GraphQL API settings
type APIFileConfig struct {
	Endpoint         string   `yaml:"endpoint"`
	StorefrontToken  string   `yaml:"storefrontToken,omitempty"`
	ChannelID        *int     `yaml:"channelId,omitempty"`
	Timeout          string   `yaml:"timeout,omitempty"`
	RateLimit        *float64 `yaml:"rateLimit,omitempty"` // requests/sec
	RateBurst        *int     `yaml:"rateBurst,omitempty"`
	BreakerThreshold *int     `yaml:"breakerThreshold,omitempty"`
	BreakerReset     string   `yaml:"breakerReset,omitempty"`
}

// I18nFileConfig holds locale routing settings
type I18nFileConfig struct {
	Locales       []string `yaml:"locales,omitempty"`
	DefaultLocale string   `yaml:"defaultLocale,omitempty"`
}

// SessionFileConfig holds customer session settings
type SessionFileConfig struct {
	Backend       string `yaml:"backend,omitempty"` // memory | redis | badger
	CookieName    string `yaml:"cookieName,omitempty"`
	TTL           string `yaml:"ttl,omitempty"`
	Secure        *bool  `yaml:"secure,omitempty"`
	RedisAddr     string `yaml:"redisAddr,omitempty"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       *int   `yaml:"redisDb,omitempty"`
	BadgerDir     string `yaml:"badgerDir,omitempty"`
}

// CacheFileConfig holds form-field metadata cache settings
type CacheFileConfig struct {
	Backend   string `yaml:"backend,omitempty"` // memory | redis | none
	TTL       string `yaml:"ttl,omitempty"`
	RedisAddr string `yaml:"redisAddr,omitempty"`
	RedisDB   *int   `yaml:"redisDb,omitempty"`
}

// SettingsFileConfig holds account settings page options
type SettingsFileConfig struct {
	AddressFieldIDs []int `yaml:"addressFieldIds,omitempty"`
}

// ReCaptchaFileConfig holds reCAPTCHA v2 settings for the registration form
type ReCaptchaFileConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	SiteKey string `yaml:"siteKey,omitempty"`
}

// RateLimitFileConfig holds form action rate limiting settings
type RateLimitFileConfig struct {
	Enabled          *bool `yaml:"enabled,omitempty"`
	ActionsPerMinute *int  `yaml:"actionsPerMinute,omitempty"`
}

// MetricsFileConfig holds Prometheus metrics settings
type MetricsFileConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// TelemetryFileConfig holds OpenTelemetry settings
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	ExporterType string   `yaml:"exporterType,omitempty"` // grpc | http
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

// AppConfig is the fully resolved runtime configuration.
type AppConfig struct {
	Version    string
	LogLevel   string
	LogService string

	Server    ServerSettings
	API       APISettings
	I18n      I18nSettings
	Session   SessionSettings
	Cache     CacheSettings
	Settings  AccountSettings
	ReCaptcha ReCaptchaSettings
	RateLimit RateLimitSettings
	Metrics   MetricsSettings
	Telemetry TelemetrySettings
}

// ServerSettings holds resolved HTTP server settings.
type ServerSettings struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	TrustedProxies  []string
}

// APISettings holds resolved platform API settings.
type APISettings struct {
	Endpoint         string
	StorefrontToken  string
	ChannelID        int `validate:"gt=0"`
	Timeout          time.Duration
	RateLimit        float64 `validate:"gte=0"`
	RateBurst        int     `validate:"gte=0"`
	BreakerThreshold int     `validate:"gt=0"`
	BreakerReset     time.Duration
}

// I18nSettings holds resolved locale settings.
type I18nSettings struct {
	Locales       []string
	DefaultLocale string
}

// SessionSettings holds resolved session settings.
type SessionSettings struct {
	Backend       string
	CookieName    string `validate:"required"`
	TTL           time.Duration
	Secure        bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerDir     string
}

// CacheSettings holds resolved cache settings.
type CacheSettings struct {
	Backend   string
	TTL       time.Duration
	RedisAddr string
	RedisDB   int
}

// AccountSettings holds resolved account page settings.
type AccountSettings struct {
	AddressFieldIDs []int
}

// ReCaptchaSettings holds resolved reCAPTCHA settings.
type ReCaptchaSettings struct {
	Enabled bool
	SiteKey string
}

// RateLimitSettings holds resolved action rate limit settings.
type RateLimitSettings struct {
	Enabled          bool
	ActionsPerMinute int `validate:"gte=0"`
}

// MetricsSettings holds resolved metrics settings.
type MetricsSettings struct {
	ListenAddr string
}

// TelemetrySettings holds resolved tracing settings.
type TelemetrySettings struct {
	Enabled      bool
	ExporterType string
	Endpoint     string
	SamplingRate float64 `validate:"gte=0,lte=1"`
	Environment  string
}
