// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// ErrNoConfigFile is returned by Watch when the config came from the
// environment only.
var ErrNoConfigFile = errors.New("no config file to watch")

// Holder owns the active AppConfig. A reload either swaps in a complete,
// validated config or keeps the old one.
type Holder struct {
	loader *Loader
	logger zerolog.Logger

	mu      sync.RWMutex
	current AppConfig
	subs    []chan<- AppConfig
}

func NewHolder(initial AppConfig, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the active config.
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads the config again and publishes it to subscribers.
func (h *Holder) Reload(_ context.Context) error {
	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("new configuration rejected")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	h.logChanges(prev, next)
	for _, ch := range subs {
		select {
		case ch <- next:
		default:
			h.logger.Warn().Str(xglog.FieldEvent, "config.subscriber_busy").Msg("subscriber missed a config update")
		}
	}
	h.logger.Info().Str(xglog.FieldEvent, "config.reloaded").Msg("configuration reloaded")
	return nil
}

// Subscribe registers ch for reload notifications. Sends never block; a full
// channel misses the update.
func (h *Holder) Subscribe(ch chan<- AppConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, ch)
}

// Watch reloads on changes to the config file until ctx ends. The directory
// is watched so editors that replace the file are noticed.
func (h *Holder) Watch(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		return ErrNoConfigFile
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.logger.Info().Str(xglog.FieldEvent, "config.watching").Str(xglog.FieldPath, path).Msg("watching config file")
	go h.watch(ctx, w, filepath.Clean(path))
	return nil
}

func (h *Holder) watch(ctx context.Context, w *fsnotify.Watcher, path string) {
	defer func() { _ = w.Close() }()

	var pending *time.Timer
	defer func() {
		if pending != nil {
			pending.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(reloadDebounce, func() {
				_ = h.Reload(ctx)
			})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.watch_error").Msg("config watcher error")
		}
	}
}

// restartOnly lists settings that are read once at startup.
var restartOnly = []struct {
	name    string
	changed func(a, b AppConfig) bool
}{
	{"server.listenAddr", func(a, b AppConfig) bool { return a.Server.ListenAddr != b.Server.ListenAddr }},
	{"api.endpoint", func(a, b AppConfig) bool { return a.API.Endpoint != b.API.Endpoint }},
	{"session.backend", func(a, b AppConfig) bool { return a.Session.Backend != b.Session.Backend }},
	{"cache.backend", func(a, b AppConfig) bool { return a.Cache.Backend != b.Cache.Backend }},
	{"rateLimit", func(a, b AppConfig) bool { return a.RateLimit != b.RateLimit }},
	{"i18n.locales", func(a, b AppConfig) bool { return !slices.Equal(a.I18n.Locales, b.I18n.Locales) }},
}

func (h *Holder) logChanges(prev, next AppConfig) {
	if prev.LogLevel != next.LogLevel {
		h.logger.Info().Str("old", prev.LogLevel).Str("new", next.LogLevel).Msg("log level changed")
	}
	for _, f := range restartOnly {
		if f.changed(prev, next) {
			h.logger.Warn().Str("setting", f.name).Msg("setting changed, takes effect after restart")
		}
	}
}
