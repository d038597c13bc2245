// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the storefront components together and owns the
// process lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/storefront/internal/api/middleware"
	"github.com/ManuGH/storefront/internal/cache"
	"github.com/ManuGH/storefront/internal/config"
	"github.com/ManuGH/storefront/internal/customer"
	"github.com/ManuGH/storefront/internal/graphql"
	"github.com/ManuGH/storefront/internal/health"
	"github.com/ManuGH/storefront/internal/i18n"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/session"
	"github.com/ManuGH/storefront/internal/storefront"
	"github.com/ManuGH/storefront/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const serviceName = "storefront"

// Runtime is a fully wired storefront process.
type Runtime struct {
	Config     config.AppConfig
	Storefront *storefront.Server
	Health     *health.Manager
	Manager    Manager
}

// closer releases a resource opened during bootstrap.
type closer struct {
	name string
	fn   ShutdownHook
}

// Bootstrap builds every component from cfg. Resources opened before a
// failure are released again; on success they close through the manager's
// shutdown hooks.
func Bootstrap(ctx context.Context, cfg config.AppConfig) (_ *Runtime, err error) {
	logger := xglog.Derive(func(c *zerolog.Context) {
		*c = c.Str(xglog.FieldComponent, "daemon").Str(xglog.FieldEndpoint, cfg.API.Endpoint)
	})

	var closers []closer
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].fn(context.WithoutCancel(ctx))
		}
	}()

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	closers = append(closers, closer{"telemetry", tp.Shutdown})

	routing, err := i18n.NewRouting(cfg.I18n.Locales, cfg.I18n.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("init locales: %w", err)
	}
	catalog, err := i18n.LoadCatalog(routing)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	for _, l := range routing.Locales() {
		if missing := catalog.Missing(l); len(missing) > 0 {
			logger.Warn().
				Str(xglog.FieldLocale, string(l)).
				Strs("keys", missing).
				Msg("locale is missing translations, falling back to default")
		}
	}

	client, err := graphql.New(graphql.Config{
		Endpoint:         cfg.API.Endpoint,
		StorefrontToken:  cfg.API.StorefrontToken,
		ChannelID:        cfg.API.ChannelID,
		Timeout:          cfg.API.Timeout,
		RateLimit:        cfg.API.RateLimit,
		Burst:            cfg.API.RateBurst,
		BreakerThreshold: cfg.API.BreakerThreshold,
		BreakerReset:     cfg.API.BreakerReset,
	})
	if err != nil {
		return nil, err
	}

	fieldsCache, err := cache.New(cfg.Cache, xglog.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	closers = append(closers, closer{"cache", func(context.Context) error { return fieldsCache.Close() }})

	store, err := session.OpenStore(ctx, cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	closers = append(closers, closer{"session-store", func(context.Context) error { return store.Close() }})

	sessions := session.NewManager(store, session.Options{
		Backend:    cfg.Session.Backend,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})

	customers := customer.NewService(client, customer.Options{
		FieldsCache:     fieldsCache,
		FieldsTTL:       cfg.Cache.TTL,
		AddressFieldIDs: cfg.Settings.AddressFieldIDs,
	})

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPingChecker("api", client))
	hm.RegisterChecker(health.NewBreakerChecker(client.Breaker()))
	hm.RegisterChecker(health.NewPingChecker("session_store", store))
	if pc, ok := fieldsCache.(interface{ HealthCheck(context.Context) error }); ok {
		hm.RegisterChecker(health.CheckerFunc("cache", func(ctx context.Context) health.CheckResult {
			if err := pc.HealthCheck(ctx); err != nil {
				return health.CheckResult{Status: health.StatusDegraded, Error: err.Error()}
			}
			return health.CheckResult{Status: health.StatusHealthy}
		}))
	}

	stack, err := stackConfig(cfg)
	if err != nil {
		return nil, err
	}
	srv, err := storefront.New(storefront.Deps{
		Routing:   routing,
		Catalog:   catalog,
		Customers: customers,
		Sessions:  sessions,
		Health:    hm,
		ReCaptcha: cfg.ReCaptcha,
		Stack:     stack,
	})
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Logger:      xglog.WithComponent("daemon"),
		Handler:     srv.Handler(),
		MetricsAddr: cfg.Metrics.ListenAddr,
	}
	if cfg.Metrics.ListenAddr != "" {
		deps.MetricsHandler = metricsHandler()
	}
	mgr, err := NewManager(cfg.Server.HTTP(), deps)
	if err != nil {
		return nil, err
	}
	for _, c := range closers {
		mgr.RegisterShutdownHook(c.name, c.fn)
	}

	logger.Info().
		Str(xglog.FieldEvent, "daemon.bootstrapped").
		Str("session_backend", cfg.Session.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Strs("locales", cfg.I18n.Locales).
		Msg("storefront components ready")

	return &Runtime{Config: cfg, Storefront: srv, Health: hm, Manager: mgr}, nil
}

func stackConfig(cfg config.AppConfig) (middleware.StackConfig, error) {
	proxies, err := middleware.ParseCIDRs(cfg.Server.TrustedProxies)
	if err != nil {
		return middleware.StackConfig{}, fmt.Errorf("trusted proxies: %w", err)
	}
	tracing := ""
	if cfg.Telemetry.Enabled {
		tracing = serviceName
	}
	return middleware.StackConfig{
		AllowedOrigins:        cfg.Server.AllowedOrigins,
		EnableSecurityHeaders: true,
		TrustedProxies:        proxies,
		EnableMetrics:         cfg.Metrics.ListenAddr != "",
		TracingService:        tracing,
		EnableLogging:         true,
		EnableRateLimit:       cfg.RateLimit.Enabled,
		ActionsPerMinute:      cfg.RateLimit.ActionsPerMinute,
	}, nil
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run bootstraps the storefront and serves until ctx is cancelled.
func Run(ctx context.Context, holder *config.Holder) error {
	cfg := holder.Get()
	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return err
	}
	rt, err := Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	err = NewApp(xglog.WithComponent("app"), rt.Manager, holder).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
