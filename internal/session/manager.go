// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/ManuGH/storefront/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the cookie side of a Manager.
type Options struct {
	Backend    string // metrics label
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager ties the session cookie to a Store.
type Manager struct {
	store  Store
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager creates a session manager.
func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "storefront_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.Backend == "" {
		opts.Backend = "memory"
	}
	return &Manager{
		store:  store,
		opts:   opts,
		logger: xglog.WithComponent("session"),
		now:    time.Now,
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Load returns the session referenced by the request cookie.
// A missing cookie or unknown session yields nil, nil.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil, nil
	}

	s, err := m.store.Get(r.Context(), c.Value)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordSessionStoreError(m.opts.Backend, "get")
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.Expired(m.now()) {
		metrics.RecordSessionEvent(m.opts.Backend, "expired")
		_ = m.store.Delete(r.Context(), s.ID)
		return nil, nil
	}
	return s, nil
}

// Start creates a new session for a signed-in customer and sets the cookie.
// Any session already bound to the request is discarded first.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, customerID int, token string, expiresAt time.Time) (*Session, error) {
	if old, err := m.Load(r); err == nil && old != nil {
		_ = m.store.Delete(r.Context(), old.ID)
	}

	now := m.now()
	ttl := m.opts.TTL
	if !expiresAt.IsZero() {
		if until := expiresAt.Sub(now); until < ttl {
			ttl = until
		}
	}
	if ttl <= 0 {
		return nil, errors.New("session: customer token already expired")
	}

	s := &Session{
		ID:                  uuid.NewString(),
		CustomerID:          customerID,
		CustomerAccessToken: token,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}
	if err := m.store.Save(r.Context(), s, ttl); err != nil {
		metrics.RecordSessionStoreError(m.opts.Backend, "save")
		return nil, fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, m.cookie(s.ID, s.ExpiresAt, int(ttl.Seconds())))
	metrics.RecordSessionEvent(m.opts.Backend, "start")
	m.logger.Info().
		Str(xglog.FieldEvent, "session.started").
		Str(xglog.FieldSessionID, s.ID).
		Int(xglog.FieldCustomerID, customerID).
		Msg("customer session started")
	return s, nil
}

// Destroy removes the request's session and clears the cookie. It returns the
// removed session so callers can revoke its customer token.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) (*Session, error) {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))

	s, err := m.Load(r)
	if err != nil || s == nil {
		return nil, err
	}
	if err := m.store.Delete(r.Context(), s.ID); err != nil {
		metrics.RecordSessionStoreError(m.opts.Backend, "delete")
		return s, fmt.Errorf("delete session: %w", err)
	}
	metrics.RecordSessionEvent(m.opts.Backend, "destroy")
	m.logger.Info().
		Str(xglog.FieldEvent, "session.destroyed").
		Str(xglog.FieldSessionID, s.ID).
		Msg("customer session destroyed")
	return s, nil
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware loads the session into the request context. Store failures are
// logged and the request continues anonymously.
func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r)
			if err != nil {
				xglog.FromContext(r.Context()).Warn().
					Err(err).
					Str(xglog.FieldEvent, "session.load_failed").
					Msg("session store unavailable, continuing anonymously")
			}
			trace.SpanFromContext(r.Context()).SetAttributes(telemetry.SessionAttributes(s != nil)...)
			if s == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSession(r.Context(), s)
			ctx = xglog.ContextWithSessionID(ctx, s.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer redirects anonymous visitors to the login page returned by loginPath.
func RequireCustomer(loginPath func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				http.Redirect(w, r, loginPath(r), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
