// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/ManuGH/storefront/internal/customer"
	"github.com/ManuGH/storefront/internal/graphql"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/ManuGH/storefront/internal/session"
)

const tabSettings = "settings"

// settingsPage builds the settings form. Posted values win over stored ones.
// Every input belongs to the customer section so it folds into the update.
func settingsPage(st *customer.Settings, form url.Values) formPage {
	value := func(name, key string) string {
		if form != nil {
			if v, ok := form[name]; ok && len(v) > 0 {
				return v[len(v)-1]
			}
		}
		return st.Value(key)
	}
	return formPage{Customer: inputsFor(customer.SectionCustomer, settingsFields(st), value)}
}

// settingsFields are the filtered address fields, which carry the name,
// company and phone definitions, followed by the account email.
func settingsFields(st *customer.Settings) []customer.FormField {
	fields := append([]customer.FormField(nil), st.AddressFields...)
	for _, f := range st.CustomerFields {
		if f.Key() == "email" {
			fields = append(fields, f)
		}
	}
	return fields
}

// loadSettings fetches the customer's settings. It answers the request
// itself and returns nil when there is nothing to render.
func (s *Server) loadSettings(w http.ResponseWriter, r *http.Request, sess *session.Session) *customer.Settings {
	st, err := s.customers.CustomerSettings(r.Context(), sess.CustomerAccessToken, s.customers.SettingsFilters())
	switch {
	case errors.Is(err, graphql.ErrUnauthorized):
		// The platform revoked the customer token.
		_, _ = s.sessions.Destroy(w, r)
		http.Redirect(w, r, s.loginPath(r), http.StatusSeeOther)
		return nil
	case err != nil:
		s.renderFailure(w, r, err)
		return nil
	case st == nil:
		s.handleNotFound(w, r)
		return nil
	}
	return st
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())
	st := s.loadSettings(w, r, sess)
	if st == nil {
		return
	}
	data := s.basePage(r, "settings.title")
	data.Tab = tabSettings
	data.Page = settingsPage(st, nil)
	s.renderPage(w, r, http.StatusOK, pageSettings, data)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	res := customer.Failure(customer.MsgInvalidInput)
	if err := parseForm(w, r); err == nil {
		res = s.customers.UpdateSettings(r.Context(), sess.CustomerAccessToken, customer.EntriesFromValues(r.PostForm))
	}
	if wantsJSON(r) {
		writeJSON(w, actionStatus(res), res)
		return
	}

	st := s.loadSettings(w, r, sess)
	if st == nil {
		return
	}
	form := r.PostForm
	if res.OK() {
		form = nil
	}
	data := s.basePage(r, "settings.title")
	data.Tab = tabSettings
	data.Page = settingsPage(st, form)
	data.Banner = bannerFor(res, data.T("settings.updated"))
	s.renderPage(w, r, actionStatus(res), pageSettings, data)
}

// handleChangePasswordPage serves the page rendered at startup.
func (s *Server) handleChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	body, ok := s.pre.Page(PageChangePassword, s.locale(r))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	metrics.RecordPageRender(pageChangePassword, "prerendered")
	writeHTML(w, http.StatusOK, body)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	res := customer.Failure(customer.MsgInvalidInput)
	if err := parseForm(w, r); err == nil {
		res = s.customers.ChangePassword(r.Context(), sess.CustomerAccessToken, customer.ChangePasswordInput{
			CurrentPassword: r.PostForm.Get("currentPassword"),
			NewPassword:     r.PostForm.Get("newPassword"),
			ConfirmPassword: r.PostForm.Get("confirmPassword"),
		})
	}
	s.renderActionResult(w, r, res, func(data *pageData) {
		data.Tab = tabSettings
	}, pageChangePassword, "changePassword.title", "changePassword.success")
}
