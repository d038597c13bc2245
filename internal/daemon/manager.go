// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/storefront/internal/config"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/rs/zerolog"
)

const (
	defaultShutdownTimeout = 15 * time.Second
	abortBudget            = 30 * time.Second
)

// ShutdownHook releases a resource during shutdown.
type ShutdownHook func(ctx context.Context) error

// Manager runs the HTTP listeners and tears everything down again.
type Manager interface {
	// Start binds the listeners and blocks until ctx ends or a listener fails.
	Start(ctx context.Context) error
	// Shutdown drains the listeners, then runs the hooks newest first.
	Shutdown(ctx context.Context) error
	RegisterShutdownHook(name string, hook ShutdownHook)
}

type lifecycle int

const (
	idle lifecycle = iota
	running
	stopped
)

type listener struct {
	name string
	srv  *http.Server
}

type namedHook struct {
	name string
	fn   ShutdownHook
}

type manager struct {
	serverCfg config.ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu        sync.Mutex
	state     lifecycle
	listeners []listener
	hooks     []namedHook
}

// NewManager validates deps and returns an idle Manager.
func NewManager(serverCfg config.ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if serverCfg.ShutdownTimeout <= 0 {
		serverCfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger.With().Str(xglog.FieldComponent, "manager").Logger(),
	}, nil
}

// plan lists the servers to bind, metrics first so a storefront bind
// failure also releases the metrics port.
func (m *manager) plan() []listener {
	var out []listener
	if m.deps.MetricsHandler != nil && m.deps.MetricsAddr != "" {
		out = append(out, listener{name: "metrics", srv: &http.Server{
			Addr:              m.deps.MetricsAddr,
			Handler:           m.deps.MetricsHandler,
			ReadHeaderTimeout: 5 * time.Second,
		}})
	}
	cfg := m.serverCfg
	out = append(out, listener{name: "storefront", srv: &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           m.deps.Handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}})
	return out
}

func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("start context is nil")
	}
	m.mu.Lock()
	if m.state != idle {
		m.mu.Unlock()
		return errors.New("manager already started")
	}
	m.state = running
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.serverCfg.ListenAddr).
		Str("metrics_listen", m.deps.MetricsAddr).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting listeners")

	failed := make(chan error, 2)
	for _, l := range m.plan() {
		if err := m.bind(l, failed); err != nil {
			return m.abort(ctx, fmt.Errorf("failed to start %s server: %w", l.name, err))
		}
	}

	select {
	case err := <-failed:
		return m.abort(ctx, err)
	case <-ctx.Done():
		m.logger.Info().Str(xglog.FieldEvent, "daemon.stopping").Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortBudget)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	}
}

// bind listens synchronously so address errors surface from Start, then
// serves in the background.
func (m *manager) bind(l listener, failed chan<- error) error {
	ln, err := net.Listen("tcp", l.srv.Addr)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()

	m.logger.Info().
		Str(xglog.FieldEvent, l.name+".server.listening").
		Str("addr", ln.Addr().String()).
		Msgf("%s server listening", l.name)

	go func() {
		err := l.srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		m.logger.Error().Err(err).Str(xglog.FieldEvent, l.name+".server.failed").Msg("listener failed")
		failed <- fmt.Errorf("%s server: %w", l.name, err)
	}()
	return nil
}

func (m *manager) abort(ctx context.Context, cause error) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortBudget)
	defer cancel()
	if err := m.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server error and shutdown failure: %w", errors.Join(cause, err))
	}
	return cause
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return errors.New("shutdown context is nil")
	}
	m.mu.Lock()
	switch m.state {
	case idle:
		m.mu.Unlock()
		return ErrManagerNotStarted
	case stopped:
		m.mu.Unlock()
		return nil
	}
	m.state = stopped
	listeners := append([]listener(nil), m.listeners...)
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(listeners) - 1; i >= 0; i-- {
		l := listeners[i]
		if err := l.srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", l.name, err))
		}
	}
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := m.runHook(ctx, hooks[i]); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		m.logger.Error().Int("error_count", len(errs)).Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Str(xglog.FieldEvent, "daemon.stopped").Msg("shutdown complete")
	return nil
}

func (m *manager) runHook(ctx context.Context, h namedHook) error {
	start := time.Now()
	err := h.fn(ctx)
	ev := m.logger.Debug()
	if err != nil {
		ev = m.logger.Error().Err(err)
	}
	ev.Str("hook", h.name).Dur("duration", time.Since(start)).Msg("shutdown hook finished")
	if err != nil {
		return fmt.Errorf("hook %s: %w", h.name, err)
	}
	return nil
}

// RegisterShutdownHook adds a hook. Hooks run in reverse registration order.
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, fn: hook})
}
