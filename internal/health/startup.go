// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ManuGH/storefront/internal/config"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the servers start.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := xglog.WithComponent("startup-check")
	logger.Info().Str(xglog.FieldEvent, "startup.checks_begin").Msg("running pre-flight startup checks")

	if err := checkListenAddrs(logger, cfg); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}
	if err := checkEndpoint(logger, cfg.API.Endpoint); err != nil {
		return fmt.Errorf("api endpoint check failed: %w", err)
	}
	if cfg.Session.Backend == config.SessionBackendBadger {
		if err := checkWritableDir(logger, cfg.Session.BadgerDir); err != nil {
			return fmt.Errorf("session directory check failed: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	warnings(logger, cfg)
	logger.Info().Str(xglog.FieldEvent, "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkListenAddrs(logger zerolog.Logger, cfg config.AppConfig) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", cfg.Server.ListenAddr, err)
	}
	if cfg.Metrics.ListenAddr != "" && cfg.Metrics.ListenAddr == cfg.Server.ListenAddr {
		return fmt.Errorf("metrics and storefront share listen address %q", cfg.Server.ListenAddr)
	}
	logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("listen address is valid")
	return nil
}

func checkEndpoint(logger zerolog.Logger, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("endpoint has no host")
	}
	if u.Scheme == "http" {
		logger.Warn().Str(xglog.FieldEndpoint, u.Host).Msg("platform API is reached without TLS")
	}
	return nil
}

func checkWritableDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str("path", path).Msg("session directory is writable")
	return nil
}

func warnings(logger zerolog.Logger, cfg config.AppConfig) {
	if cfg.Session.Backend == config.SessionBackendMemory {
		logger.Warn().
			Str("session_backend", cfg.Session.Backend).
			Msg("sessions are kept in memory; customers are signed out on restart")
	}
	if !cfg.Session.Secure {
		logger.Warn().Msg("session cookie is sent without the Secure flag")
	}
}
