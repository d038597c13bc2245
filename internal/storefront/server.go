// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package storefront serves the customer account pages of the shop under
// locale prefixed routes and runs their form actions.
package storefront

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/ManuGH/storefront/internal/api/middleware"
	"github.com/ManuGH/storefront/internal/config"
	"github.com/ManuGH/storefront/internal/customer"
	"github.com/ManuGH/storefront/internal/health"
	"github.com/ManuGH/storefront/internal/i18n"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Customers is the account backend used by the handlers.
type Customers interface {
	RegisterCustomer(ctx context.Context, form customer.RegisterForm) customer.Result
	Login(ctx context.Context, email, password string) (customer.LoginResult, error)
	Logout(ctx context.Context, token string)
	RegistrationForm(ctx context.Context) (*customer.FormFields, error)
	SettingsFilters() customer.FieldFilters
	CustomerSettings(ctx context.Context, token string, filters customer.FieldFilters) (*customer.Settings, error)
	UpdateSettings(ctx context.Context, token string, entries []customer.FormEntry) customer.Result
	ChangePassword(ctx context.Context, token string, in customer.ChangePasswordInput) customer.Result
}

// Deps are the collaborators of a Server.
type Deps struct {
	Routing   *i18n.Routing
	Catalog   *i18n.Catalog
	Customers Customers
	Sessions  *session.Manager
	Health    *health.Manager // optional
	ReCaptcha config.ReCaptchaSettings
	Stack     middleware.StackConfig
}

// Server is the storefront HTTP front end.
type Server struct {
	routing   *i18n.Routing
	catalog   *i18n.Catalog
	customers Customers
	sessions  *session.Manager
	health    *health.Manager
	recaptcha config.ReCaptchaSettings
	stack     middleware.StackConfig

	views  *views
	pre    *Prerenderer
	logger zerolog.Logger
}

// New builds a server and pre-renders its static pages.
func New(deps Deps) (*Server, error) {
	if deps.Routing == nil || deps.Catalog == nil || deps.Customers == nil || deps.Sessions == nil {
		return nil, errors.New("storefront: routing, catalog, customers and sessions are required")
	}
	v, err := parseViews()
	if err != nil {
		return nil, err
	}

	s := &Server{
		routing:   deps.Routing,
		catalog:   deps.Catalog,
		customers: deps.Customers,
		sessions:  deps.Sessions,
		health:    deps.Health,
		recaptcha: deps.ReCaptcha,
		stack:     deps.Stack,
		views:     v,
		logger:    xglog.WithComponent("storefront"),
	}
	s.pre = NewPrerenderer(v, deps.Routing, deps.Catalog)
	if err := s.pre.Prerender(); err != nil {
		return nil, err
	}
	return s, nil
}

// Prerenderer returns the static page renderer.
func (s *Server) Prerenderer() *Prerenderer {
	return s.pre
}

// Handler returns the routed storefront with the ingress middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	middleware.ApplyStack(r, s.stack)
	r.Use(s.sessions.Middleware())

	if s.health != nil {
		r.Get("/healthz", s.health.ServeHealth)
		r.Get("/readyz", s.health.ServeReady)
	}

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleRoot)
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(s.withLocale)
		r.Get("/", s.handleLocaleHome)

		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Get("/login/register-customer", s.handleRegisterPage)
		r.Post("/login/register-customer", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(session.RequireCustomer(s.loginPath))
			r.Get("/account", s.handleAccount)
			r.Get("/account/settings", s.handleSettingsPage)
			r.Post("/account/settings", s.handleUpdateSettings)
			r.Get("/account/settings/change-password", s.handleChangePasswordPage)
			r.Post("/account/settings/change-password", s.handleChangePassword)
		})

		r.NotFound(s.handleNotFound)
	})
	r.NotFound(s.handleNotFound)
	return r
}
