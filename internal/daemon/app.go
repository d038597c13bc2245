// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/storefront/internal/config"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App runs the Manager next to the config reload loops.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.Holder
	reloadSignal os.Signal
}

// NewApp returns an App. cfgHolder may be nil, which disables reloads.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run blocks until ctx ends or the manager fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfgHolder != nil {
		a.watchFile(ctx)
		g.Go(func() error { return a.applyUpdates(ctx) })
		if a.reloadSignal != nil {
			g.Go(func() error { return a.reloadOnSignal(ctx) })
		}
	}
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})
	return g.Wait()
}

// watchFile starts the file watcher. Without a config file there is nothing
// to watch and reloads only come from the signal.
func (a *App) watchFile(ctx context.Context) {
	err := a.cfgHolder.Watch(ctx)
	if err == nil || errors.Is(err, config.ErrNoConfigFile) {
		return
	}
	a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watcher_start_failed").Msg("config watcher not running")
}

func (a *App) applyUpdates(ctx context.Context) error {
	updates := make(chan config.AppConfig, 1)
	a.cfgHolder.Subscribe(updates)
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-updates:
			a.apply(cfg)
		}
	}
}

func (a *App) reloadOnSignal(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, a.reloadSignal)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigs:
			a.logger.Info().Str(xglog.FieldEvent, "config.reload_signal").Str("signal", sig.String()).Msg("reloading configuration")
			if err := a.cfgHolder.Reload(ctx); err != nil {
				metrics.RecordConfigReload(false)
				a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("config reload failed, keeping current settings")
			}
		}
	}
}

// apply installs the settings that change without a restart. Today that is
// the log level.
func (a *App) apply(cfg config.AppConfig) {
	metrics.RecordConfigReload(true)
	if err := xglog.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.apply_failed").Msg("log level not applied")
		return
	}
	a.logger.Info().Str(xglog.FieldEvent, "config.applied").Str("log_level", cfg.LogLevel).Msg("configuration applied")
}
