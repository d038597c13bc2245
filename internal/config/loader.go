// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ManuGH/storefront/internal/log"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read when no explicit env file is configured.
const DefaultEnvFile = ".env"

// DefaultAddressFieldIDs are the address form-field entity IDs shown on the
// account settings page.
var DefaultAddressFieldIDs = []int{4, 5, 6, 7}

// ErrUnknownConfigField marks a strict YAML decode failure caused by an
// unknown key.
var ErrUnknownConfigField = errors.New("unknown config field")

// DefaultLocales is the locale list used when none is configured.
var DefaultLocales = []string{"en", "de", "es", "fr", "it", "nl", "pl", "pt"}

// Loader handles configuration loading with precedence
type Loader struct {
	configPath string
	envFile    string
	version    string
	dotenv     map[string]string
	logger     zerolog.Logger

	// ConsumedEnvKeys records every key the loader looked up.
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		envFile:         DefaultEnvFile,
		version:         version,
		logger:          log.WithComponent("config"),
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// WithEnvFile overrides the dotenv file location. An empty path disables it.
func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

// Path returns the YAML config path, if any.
func (l *Loader) Path() string {
	return l.configPath
}

// lookup consults the real environment first, then the dotenv file.
func (l *Loader) lookup(key string) (string, bool) {
	l.ConsumedEnvKeys[key] = struct{}{}
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := l.dotenv[key]
	return v, ok
}

func (l *Loader) envString(key, defaultVal string) string {
	return parseString(l.lookup, l.logger, key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	return parseBool(l.lookup, l.logger, key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	return parseInt(l.lookup, l.logger, key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	return parseFloat(l.lookup, l.logger, key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	return parseDuration(l.lookup, l.logger, key, defaultVal)
}

func (l *Loader) envList(key string, defaultVal []string) []string {
	return parseList(l.lookup, key, defaultVal)
}

// Load loads configuration with precedence: ENV > .env > File > Defaults.
// It enforces strict order: parse file (strict) -> apply env -> validate.
func (l *Loader) Load() (AppConfig, error) {
	cfg := AppConfig{}

	// 1. Defaults
	setDefaults(&cfg)

	// 2. YAML file
	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge file config: %w", err)
		}
	}

	// 3. dotenv (never overrides the real environment)
	if err := l.loadDotenv(); err != nil {
		return cfg, fmt.Errorf("load env file: %w", err)
	}

	// 4. Environment
	l.mergeEnvConfig(&cfg)

	cfg.Version = l.version

	// 5. Validate
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) loadDotenv() error {
	l.dotenv = nil
	if l.envFile == "" {
		return nil
	}
	values, err := godotenv.Read(l.envFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	l.dotenv = values
	l.logger.Debug().
		Str("path", l.envFile).
		Int("keys", len(values)).
		Msg("loaded env file")
	return nil
}

func setDefaults(cfg *AppConfig) {
	cfg.LogLevel = "info"
	cfg.LogService = "storefront"

	cfg.Server = ServerSettings{
		ListenAddr:      ":3000",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}

	cfg.API = APISettings{
		Endpoint:         "https://store.example.com/graphql",
		ChannelID:        1,
		Timeout:          10 * time.Second,
		RateLimit:        20,
		RateBurst:        40,
		BreakerThreshold: 5,
		BreakerReset:     30 * time.Second,
	}

	cfg.I18n = I18nSettings{
		Locales:       slices.Clone(DefaultLocales),
		DefaultLocale: "en",
	}

	cfg.Session = SessionSettings{
		Backend:    SessionBackendMemory,
		CookieName: "storefront_session",
		TTL:        7 * 24 * time.Hour,
		Secure:     true,
		RedisAddr:  "localhost:6379",
		BadgerDir:  "data/sessions",
	}

	cfg.Cache = CacheSettings{
		Backend:   CacheBackendMemory,
		TTL:       5 * time.Minute,
		RedisAddr: "localhost:6379",
	}

	cfg.Settings = AccountSettings{AddressFieldIDs: slices.Clone(DefaultAddressFieldIDs)}

	cfg.RateLimit = RateLimitSettings{Enabled: true, ActionsPerMinute: 30}

	cfg.Telemetry = TelemetrySettings{
		ExporterType: "grpc",
		Endpoint:     "localhost:4317",
		SamplingRate: 1.0,
		Environment:  "production",
	}
}

func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	setStr := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setDur := func(field string, dst *time.Duration, v string) error {
		if strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", field, v, err)
		}
		*dst = d
		return nil
	}

	setStr(&dst.LogLevel, src.LogLevel)
	setStr(&dst.LogService, src.LogService)

	// Server
	setStr(&dst.Server.ListenAddr, src.Server.ListenAddr)
	if err := setDur("server.readTimeout", &dst.Server.ReadTimeout, src.Server.ReadTimeout); err != nil {
		return err
	}
	if err := setDur("server.writeTimeout", &dst.Server.WriteTimeout, src.Server.WriteTimeout); err != nil {
		return err
	}
	if err := setDur("server.idleTimeout", &dst.Server.IdleTimeout, src.Server.IdleTimeout); err != nil {
		return err
	}
	if err := setDur("server.shutdownTimeout", &dst.Server.ShutdownTimeout, src.Server.ShutdownTimeout); err != nil {
		return err
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = slices.Clone(src.Server.AllowedOrigins)
	}
	if len(src.Server.TrustedProxies) > 0 {
		dst.Server.TrustedProxies = slices.Clone(src.Server.TrustedProxies)
	}

	// API
	setStr(&dst.API.Endpoint, src.API.Endpoint)
	setStr(&dst.API.StorefrontToken, src.API.StorefrontToken)
	if src.API.ChannelID != nil {
		dst.API.ChannelID = *src.API.ChannelID
	}
	if err := setDur("api.timeout", &dst.API.Timeout, src.API.Timeout); err != nil {
		return err
	}
	if src.API.RateLimit != nil {
		dst.API.RateLimit = *src.API.RateLimit
	}
	if src.API.RateBurst != nil {
		dst.API.RateBurst = *src.API.RateBurst
	}
	if src.API.BreakerThreshold != nil {
		dst.API.BreakerThreshold = *src.API.BreakerThreshold
	}
	if err := setDur("api.breakerReset", &dst.API.BreakerReset, src.API.BreakerReset); err != nil {
		return err
	}

	// I18n
	if len(src.I18n.Locales) > 0 {
		dst.I18n.Locales = slices.Clone(src.I18n.Locales)
	}
	setStr(&dst.I18n.DefaultLocale, src.I18n.DefaultLocale)

	// Session
	setStr(&dst.Session.Backend, src.Session.Backend)
	setStr(&dst.Session.CookieName, src.Session.CookieName)
	if err := setDur("session.ttl", &dst.Session.TTL, src.Session.TTL); err != nil {
		return err
	}
	if src.Session.Secure != nil {
		dst.Session.Secure = *src.Session.Secure
	}
	setStr(&dst.Session.RedisAddr, src.Session.RedisAddr)
	setStr(&dst.Session.RedisPassword, src.Session.RedisPassword)
	if src.Session.RedisDB != nil {
		dst.Session.RedisDB = *src.Session.RedisDB
	}
	setStr(&dst.Session.BadgerDir, src.Session.BadgerDir)

	// Cache
	setStr(&dst.Cache.Backend, src.Cache.Backend)
	if err := setDur("cache.ttl", &dst.Cache.TTL, src.Cache.TTL); err != nil {
		return err
	}
	setStr(&dst.Cache.RedisAddr, src.Cache.RedisAddr)
	if src.Cache.RedisDB != nil {
		dst.Cache.RedisDB = *src.Cache.RedisDB
	}

	if len(src.Settings.AddressFieldIDs) > 0 {
		dst.Settings.AddressFieldIDs = slices.Clone(src.Settings.AddressFieldIDs)
	}

	if src.ReCaptcha.Enabled != nil {
		dst.ReCaptcha.Enabled = *src.ReCaptcha.Enabled
	}
	setStr(&dst.ReCaptcha.SiteKey, src.ReCaptcha.SiteKey)

	if src.RateLimit.Enabled != nil {
		dst.RateLimit.Enabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.ActionsPerMinute != nil {
		dst.RateLimit.ActionsPerMinute = *src.RateLimit.ActionsPerMinute
	}

	setStr(&dst.Metrics.ListenAddr, src.Metrics.ListenAddr)

	if src.Telemetry.Enabled != nil {
		dst.Telemetry.Enabled = *src.Telemetry.Enabled
	}
	setStr(&dst.Telemetry.ExporterType, src.Telemetry.ExporterType)
	setStr(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	if src.Telemetry.SamplingRate != nil {
		dst.Telemetry.SamplingRate = *src.Telemetry.SamplingRate
	}
	setStr(&dst.Telemetry.Environment, src.Telemetry.Environment)

	return nil
}

func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("STOREFRONT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("STOREFRONT_LOG_SERVICE", cfg.LogService)

	cfg.Server.ListenAddr = l.envString("STOREFRONT_LISTEN", cfg.Server.ListenAddr)
	cfg.Server.ReadTimeout = l.envDuration("STOREFRONT_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = l.envDuration("STOREFRONT_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = l.envDuration("STOREFRONT_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = l.envDuration("STOREFRONT_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.AllowedOrigins = l.envList("STOREFRONT_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.TrustedProxies = l.envList("STOREFRONT_TRUSTED_PROXIES", cfg.Server.TrustedProxies)

	cfg.API.Endpoint = l.envString("STOREFRONT_API_ENDPOINT", cfg.API.Endpoint)
	cfg.API.StorefrontToken = l.envString("STOREFRONT_API_TOKEN", cfg.API.StorefrontToken)
	cfg.API.ChannelID = l.envInt("STOREFRONT_CHANNEL_ID", cfg.API.ChannelID)
	cfg.API.Timeout = l.envDuration("STOREFRONT_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.RateLimit = l.envFloat("STOREFRONT_API_RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.RateBurst = l.envInt("STOREFRONT_API_RATE_BURST", cfg.API.RateBurst)
	cfg.API.BreakerThreshold = l.envInt("STOREFRONT_API_BREAKER_THRESHOLD", cfg.API.BreakerThreshold)
	cfg.API.BreakerReset = l.envDuration("STOREFRONT_API_BREAKER_RESET", cfg.API.BreakerReset)

	cfg.I18n.Locales = l.envList("STOREFRONT_LOCALES", cfg.I18n.Locales)
	cfg.I18n.DefaultLocale = l.envString("STOREFRONT_DEFAULT_LOCALE", cfg.I18n.DefaultLocale)

	cfg.Session.Backend = l.envString("STOREFRONT_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.CookieName = l.envString("STOREFRONT_SESSION_COOKIE", cfg.Session.CookieName)
	cfg.Session.TTL = l.envDuration("STOREFRONT_SESSION_TTL", cfg.Session.TTL)
	cfg.Session.Secure = l.envBool("STOREFRONT_SESSION_SECURE", cfg.Session.Secure)
	cfg.Session.RedisAddr = l.envString("STOREFRONT_REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPassword = l.envString("STOREFRONT_REDIS_PASSWORD", cfg.Session.RedisPassword)
	cfg.Session.RedisDB = l.envInt("STOREFRONT_REDIS_DB", cfg.Session.RedisDB)
	cfg.Session.BadgerDir = l.envString("STOREFRONT_BADGER_DIR", cfg.Session.BadgerDir)

	cfg.Cache.Backend = l.envString("STOREFRONT_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration("STOREFRONT_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString("STOREFRONT_CACHE_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisDB = l.envInt("STOREFRONT_CACHE_REDIS_DB", cfg.Cache.RedisDB)

	cfg.Settings.AddressFieldIDs = parseIntList(l.lookup, l.logger, "STOREFRONT_SETTINGS_ADDRESS_FIELD_IDS", cfg.Settings.AddressFieldIDs)

	cfg.ReCaptcha.Enabled = l.envBool("STOREFRONT_RECAPTCHA_ENABLED", cfg.ReCaptcha.Enabled)
	cfg.ReCaptcha.SiteKey = l.envString("STOREFRONT_RECAPTCHA_SITE_KEY", cfg.ReCaptcha.SiteKey)

	cfg.RateLimit.Enabled = l.envBool("STOREFRONT_ACTION_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.ActionsPerMinute = l.envInt("STOREFRONT_ACTION_RATE_LIMIT", cfg.RateLimit.ActionsPerMinute)

	cfg.Metrics.ListenAddr = l.envString("STOREFRONT_METRICS_LISTEN", cfg.Metrics.ListenAddr)

	cfg.Telemetry.Enabled = l.envBool("STOREFRONT_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = l.envString("STOREFRONT_OTEL_EXPORTER", cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString("STOREFRONT_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("STOREFRONT_OTEL_SAMPLING", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString("STOREFRONT_OTEL_ENVIRONMENT", cfg.Telemetry.Environment)
}
