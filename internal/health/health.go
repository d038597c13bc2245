// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package health provides liveness and readiness probes for the storefront.
// Readiness reflects the platform API and the session store.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	xglog "github.com/ManuGH/storefront/internal/log"
	"golang.org/x/sync/errgroup"
)

// Status is a component or aggregate health state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) severity() int {
	switch s {
	case StatusDegraded:
		return 1
	case StatusUnhealthy:
		return 2
	default:
		return 0
	}
}

const defaultCheckTimeout = 3 * time.Second

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    int64                  `json:"uptimeSeconds"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the /readyz body.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker is a named component check. Check must honor ctx.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

type funcChecker struct {
	name string
	fn   func(context.Context) CheckResult
}

func (c funcChecker) Name() string                          { return c.name }
func (c funcChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// CheckerFunc adapts fn into a Checker.
func CheckerFunc(name string, fn func(context.Context) CheckResult) Checker {
	return funcChecker{name: name, fn: fn}
}

// Manager aggregates component checks into liveness and readiness answers.
type Manager struct {
	version   string
	startedAt time.Time
	timeout   time.Duration

	mu       sync.RWMutex
	checkers []Checker
}

// NewManager returns a Manager reporting version.
func NewManager(version string) *Manager {
	return &Manager{
		version:   version,
		startedAt: time.Now(),
		timeout:   defaultCheckTimeout,
	}
}

// RegisterChecker adds a component check.
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// runChecks runs every checker concurrently, each bounded by the check timeout.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			results[i] = checker.Check(cctx)
			return nil
		})
	}
	_ = g.Wait()

	checks := make(map[string]CheckResult, len(checkers))
	status := StatusHealthy
	for i, checker := range checkers {
		checks[checker.Name()] = results[i]
		if results[i].Status.severity() > status.severity() {
			status = results[i].Status
		}
	}
	return checks, status
}

// Health answers the liveness probe. Component checks only run when verbose.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Uptime:    int64(time.Since(m.startedAt).Seconds()),
		Timestamp: time.Now(),
	}
	if verbose && m.count() > 0 {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready runs every check. Unhealthy components make the instance not ready;
// degraded ones only show up in the status.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
	if m.count() == 0 {
		return resp
	}
	resp.Checks, resp.Status = m.runChecks(ctx)
	resp.Ready = resp.Status != StatusUnhealthy
	return resp
}

func (m *Manager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkers)
}

// ServeHealth always answers 200 while the process is up. ?verbose=true
// adds the component checks.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	resp := m.Health(r.Context(), r.URL.Query().Get("verbose") == "true")
	respond(w, r, "health", http.StatusOK, resp.Status, resp)
}

// ServeReady answers 503 when any component is unhealthy.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	respond(w, r, "readiness", code, resp.Status, resp)
}

func respond(w http.ResponseWriter, r *http.Request, probe string, code int, status Status, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	logger := xglog.WithComponentFromContext(r.Context(), "health")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn().Err(err).Str(xglog.FieldEvent, probe+".encode_error").Msg("probe response not written")
		return
	}
	logger.Debug().
		Str(xglog.FieldEvent, probe+".checked").
		Str(xglog.FieldStatus, string(status)).
		Int(xglog.FieldStatus+"_code", code).
		Msg("probe answered")
}
