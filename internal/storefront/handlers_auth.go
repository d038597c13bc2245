// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/storefront/internal/customer"
	xglog "github.com/ManuGH/storefront/internal/log"
)

// reCaptchaField is the form field the reCAPTCHA widget posts its token in.
const reCaptchaField = "g-recaptcha-response"

const maxFormBytes = 64 << 10

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.basePage(r, "login.title")
	data.Page = loginPage{}
	if r.URL.Query().Get("registered") == "1" {
		data.Banner = &banner{Status: customer.StatusSuccess, Lines: []string{data.T("status.registered")}}
	}
	s.renderPage(w, r, http.StatusOK, pageLogin, data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderActionResult(w, r, customer.Failure(customer.MsgInvalidInput), func(data *pageData) {
			data.Page = loginPage{}
		}, pageLogin, "login.title", "")
		return
	}
	email := r.PostForm.Get("email")

	res, err := s.customers.Login(r.Context(), email, r.PostForm.Get("password"))
	if err == nil {
		if _, err = s.sessions.Start(w, r, res.Customer.EntityID, res.Token, res.ExpiresAt); err != nil {
			res.Result = customer.Failure(customer.MsgGeneric)
		}
	}

	if res.OK() && !wantsJSON(r) {
		http.Redirect(w, r, s.localePath(r, "/account/settings"), http.StatusSeeOther)
		return
	}
	s.renderActionResult(w, r, res.Result, func(data *pageData) {
		data.Page = loginPage{Email: email}
	}, pageLogin, "login.title", "")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Destroy(w, r)
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "storefront")
		logger.Warn().Err(err).Str(xglog.FieldEvent, "session.destroy_failed").Msg("session cleanup failed")
	}
	if sess != nil && sess.CustomerAccessToken != "" {
		s.customers.Logout(r.Context(), sess.CustomerAccessToken)
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, customer.Success(nil))
		return
	}
	http.Redirect(w, r, s.loginPath(r), http.StatusSeeOther)
}

// registerPage builds the registration page from the site's form fields.
func (s *Server) registerPage(ctx context.Context, form url.Values) (formPage, error) {
	fields, err := s.customers.RegistrationForm(ctx)
	if err != nil {
		return formPage{}, err
	}
	value := submitted(form)
	return formPage{
		Customer: inputsFor(customer.SectionCustomer, fields.Customer, value),
		Address:  inputsFor(customer.SectionAddress, fields.Address, value),
	}, nil
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.registerPage(r.Context(), nil)
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	data := s.basePage(r, "register.title")
	data.Page = page
	data.ReCaptchaSiteKey = s.reCaptchaSiteKey()
	s.renderPage(w, r, http.StatusOK, pageRegister, data)
}

func (s *Server) reCaptchaSiteKey() string {
	if !s.recaptcha.Enabled {
		return ""
	}
	return s.recaptcha.SiteKey
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.respondRegister(w, r, customer.Failure(customer.MsgInvalidInput))
		return
	}

	form := customer.RegisterForm{Entries: customer.EntriesFromValues(r.PostForm)}
	if s.recaptcha.Enabled {
		form.ReCaptchaToken = r.PostForm.Get(reCaptchaField)
	}

	res := s.customers.RegisterCustomer(r.Context(), form)
	if !res.OK() || wantsJSON(r) {
		s.respondRegister(w, r, res)
		return
	}

	// New customers are signed in right away.
	email, password := r.PostForm.Get("customer-email"), r.PostForm.Get("customer-password")
	login, err := s.customers.Login(r.Context(), email, password)
	if err == nil {
		_, err = s.sessions.Start(w, r, login.Customer.EntityID, login.Token, login.ExpiresAt)
	}
	if err != nil {
		logger := xglog.WithComponentFromContext(r.Context(), "storefront")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "register.auto_login_failed").
			Msg("registered customer could not be signed in")
		http.Redirect(w, r, s.loginPath(r)+"?registered=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, s.localePath(r, "/account/settings"), http.StatusSeeOther)
}

func (s *Server) respondRegister(w http.ResponseWriter, r *http.Request, res customer.Result) {
	if wantsJSON(r) {
		writeJSON(w, actionStatus(res), res)
		return
	}
	page, err := s.registerPage(r.Context(), r.PostForm)
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	data := s.basePage(r, "register.title")
	data.Page = page
	data.ReCaptchaSiteKey = s.reCaptchaSiteKey()
	data.Banner = bannerFor(res, data.T("status.registered"))
	s.renderPage(w, r, actionStatus(res), pageRegister, data)
}

// renderActionResult answers a form action with JSON or by re-rendering
// page with a status banner.
func (s *Server) renderActionResult(w http.ResponseWriter, r *http.Request, res customer.Result,
	fill func(*pageData), page, titleKey, successKey string) {
	if wantsJSON(r) {
		writeJSON(w, actionStatus(res), res)
		return
	}
	data := s.basePage(r, titleKey)
	fill(&data)
	data.Banner = bannerFor(res, data.T(successKey))
	s.renderPage(w, r, actionStatus(res), page, data)
}
