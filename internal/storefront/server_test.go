// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/storefront/internal/api/middleware"
	"github.com/ManuGH/storefront/internal/config"
	"github.com/ManuGH/storefront/internal/customer"
	"github.com/ManuGH/storefront/internal/graphql"
	"github.com/ManuGH/storefront/internal/i18n"
	"github.com/ManuGH/storefront/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const testOrigin = "http://example.com"

// fakeCustomers scripts the account backend.
type fakeCustomers struct {
	mu sync.Mutex

	registerRes customer.Result
	loginRes    customer.LoginResult
	loginErr    error
	fields      *customer.FormFields
	fieldsErr   error
	settings    *customer.Settings
	settingsErr error
	updateRes   customer.Result
	changeRes   customer.Result

	registered []customer.RegisterForm
	logins     []string
	loggedOut  []string
	updates    [][]customer.FormEntry
	changes    []customer.ChangePasswordInput
}

func (f *fakeCustomers) RegisterCustomer(_ context.Context, form customer.RegisterForm) customer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, form)
	return f.registerRes
}

func (f *fakeCustomers) Login(_ context.Context, email, _ string) (customer.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, email)
	return f.loginRes, f.loginErr
}

func (f *fakeCustomers) Logout(_ context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
}

func (f *fakeCustomers) RegistrationForm(context.Context) (*customer.FormFields, error) {
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	if f.fields == nil {
		return &customer.FormFields{}, nil
	}
	return f.fields, nil
}

func (f *fakeCustomers) SettingsFilters() customer.FieldFilters {
	return customer.FieldFilters{AddressEntityIDs: customer.DefaultAddressFieldIDs}
}

func (f *fakeCustomers) CustomerSettings(context.Context, string, customer.FieldFilters) (*customer.Settings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeCustomers) UpdateSettings(_ context.Context, _ string, entries []customer.FormEntry) customer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, entries)
	return f.updateRes
}

func (f *fakeCustomers) ChangePassword(_ context.Context, _ string, in customer.ChangePasswordInput) customer.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, in)
	return f.changeRes
}

type testEnv struct {
	server    *Server
	handler   http.Handler
	customers *fakeCustomers
	store     *session.MemoryStore
	sessions  *session.Manager
}

func newTestEnv(t *testing.T, customers *fakeCustomers, recaptcha config.ReCaptchaSettings) *testEnv {
	t.Helper()
	routing := i18n.MustRouting([]string{"en", "de"}, "en")
	catalog, err := i18n.LoadCatalog(routing)
	require.NoError(t, err)

	store := session.NewMemoryStore()
	sessions := session.NewManager(store, session.Options{TTL: time.Hour})
	srv, err := New(Deps{
		Routing:   routing,
		Catalog:   catalog,
		Customers: customers,
		Sessions:  sessions,
		ReCaptcha: recaptcha,
		Stack:     middleware.StackConfig{EnableSecurityHeaders: true},
	})
	require.NoError(t, err)
	return &testEnv{server: srv, handler: srv.Handler(), customers: customers, store: store, sessions: sessions}
}

// signIn stores a session and returns its cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	s := &session.Session{
		ID:                  "5f0c7e2a-3b1d-4c8e-9a6f-2d4b8e1c7a90",
		CustomerID:          42,
		CustomerAccessToken: "customer-token",
		ExpiresAt:           time.Now().Add(time.Hour),
		CreatedAt:           time.Now(),
	}
	require.NoError(t, e.store.Save(context.Background(), s, time.Hour))
	return &http.Cookie{Name: "storefront_session", Value: s.ID}
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(path string, form url.Values, accept string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// inputs returns name to value for every input and select in the page.
func inputs(t *testing.T, body string) map[string]string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	out := map[string]string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "input" || n.Data == "select") {
			var name, value string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if name != "" {
				out[name] = value
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "storefront_session" {
			return c
		}
	}
	return nil
}

func registrationFields() *customer.FormFields {
	return &customer.FormFields{
		Customer: []customer.FormField{
			{Type: "TextFormField", EntityID: 4, Label: "First Name", SortOrder: 2, IsBuiltIn: true, IsRequired: true},
			{Type: "EmailFormField", EntityID: 1, Label: "Email Address", SortOrder: 1, IsBuiltIn: true, IsRequired: true},
			{Type: "PasswordFormField", EntityID: 2, Label: "Password", SortOrder: 3, IsBuiltIn: true, IsRequired: true},
		},
		Address: []customer.FormField{
			{Type: "TextFormField", EntityID: 10, Label: "City", SortOrder: 1, IsBuiltIn: true},
			{Type: "PicklistFormField", EntityID: 11, Label: "Country", SortOrder: 2, IsBuiltIn: true,
				Options: []customer.FieldOption{{EntityID: 1, Label: "Germany"}, {EntityID: 2, Label: "United States"}}},
		},
	}
}

func TestRoot_RedirectsToNegotiatedLocale(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/de", rec.Header().Get("Location"))
}

func TestUnprefixedPage_RedirectsKeepingQuery(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/login?registered=1")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/login?registered=1", rec.Header().Get("Location"))
}

func TestUnknownLocale_NotFound(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/xx/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestNotFound_ProblemJSON(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	req := httptest.NewRequest(http.MethodGet, "/en/missing", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "Page not found", p.Detail)
}

func TestLocaleHome_RedirectsByAuthState(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/en")
	assert.Equal(t, "/en/login", rec.Header().Get("Location"))

	rec = env.get("/en", env.signIn(t))
	assert.Equal(t, "/en/account/settings", rec.Header().Get("Location"))
}

func TestLoginPage_Renders(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/de/login")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<html lang="de">`)
	assert.Contains(t, inputs(t, rec.Body.String()), "email")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestLoginPage_RegisteredBanner(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/en/login?registered=1")
	assert.Contains(t, rec.Body.String(), "Your account has been created.")
}

func TestLogin_StartsSessionAndRedirects(t *testing.T) {
	customers := &fakeCustomers{loginRes: customer.LoginResult{
		Result:    customer.Success(nil),
		Customer:  customer.Customer{EntityID: 42, Email: "jane@example.com"},
		Token:     "customer-token",
		ExpiresAt: time.Now().Add(2 * time.Hour),
	}}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	rec := env.post("/en/login", url.Values{"email": {"jane@example.com"}, "password": {"secret12"}}, "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/account/settings", rec.Header().Get("Location"))
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, env.store.Len())
}

func TestLogin_BadCredentialsRerendersWithBanner(t *testing.T) {
	customers := &fakeCustomers{
		loginRes: customer.LoginResult{Result: customer.Failure(customer.MsgBadLogin)},
		loginErr: customer.ErrInvalidCredentials,
	}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	rec := env.post("/en/login", url.Values{"email": {"jane@example.com"}, "password": {"nope"}}, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your email address or password is incorrect.")
	assert.Equal(t, "jane@example.com", inputs(t, rec.Body.String())["email"])
	assert.Nil(t, sessionCookie(rec))
}

func TestLogin_JSON(t *testing.T) {
	customers := &fakeCustomers{
		loginRes: customer.LoginResult{Result: customer.Failure(customer.MsgBadLogin)},
		loginErr: customer.ErrInvalidCredentials,
	}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	rec := env.post("/en/login", url.Values{"email": {"jane@example.com"}}, "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var res customer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, customer.StatusError, res.Status)
	assert.Equal(t, customer.MsgBadLogin, res.Error)
}

func TestLogin_RejectsCrossOriginPost(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	req := httptest.NewRequest(http.MethodPost, "/en/login", strings.NewReader("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, env.customers.logins)
}

func TestLogout_DestroysSessionAndRevokesToken(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})
	cookie := env.signIn(t)

	rec := env.post("/en/logout", url.Values{}, "", cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/login", rec.Header().Get("Location"))
	assert.Equal(t, 0, env.store.Len())
	assert.Equal(t, []string{"customer-token"}, env.customers.loggedOut)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogout_Anonymous(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.post("/en/logout", url.Values{}, "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.customers.loggedOut)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
}

func TestRegisterPage_RendersSiteFields(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{fields: registrationFields()},
		config.ReCaptchaSettings{Enabled: true, SiteKey: "site-key"})

	rec := env.get("/en/login/register-customer")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	got := inputs(t, body)
	for _, name := range []string{"customer-email", "customer-firstName", "customer-password", "address-city", "address-countryCode"} {
		assert.Contains(t, got, name)
	}
	assert.Contains(t, body, `data-sitekey="site-key"`)
	assert.Contains(t, body, "United States")
}

func TestRegisterPage_BackendFailure(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{fieldsErr: &graphql.APIError{Sentinel: graphql.ErrUpstreamError, Operation: "FormFieldsQuery"}},
		config.ReCaptchaSettings{})

	rec := env.get("/en/login/register-customer")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestRegister_SignsInAndRedirects(t *testing.T) {
	customers := &fakeCustomers{
		fields:      registrationFields(),
		registerRes: customer.Success(nil),
		loginRes: customer.LoginResult{
			Result:   customer.Success(nil),
			Customer: customer.Customer{EntityID: 7},
			Token:    "new-token",
		},
	}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{Enabled: true, SiteKey: "k"})

	form := url.Values{
		"customer-email":    {"jane@example.com"},
		"customer-password": {"secret12"},
		reCaptchaField:      {"captcha-token"},
	}
	rec := env.post("/en/login/register-customer", form, "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/account/settings", rec.Header().Get("Location"))
	require.Len(t, customers.registered, 1)
	assert.Equal(t, "captcha-token", customers.registered[0].ReCaptchaToken)
	assert.Equal(t, []string{"jane@example.com"}, customers.logins)
	assert.NotNil(t, sessionCookie(rec))
}

func TestRegister_AutoLoginFailureFallsBackToLogin(t *testing.T) {
	customers := &fakeCustomers{
		registerRes: customer.Success(nil),
		loginRes:    customer.LoginResult{Result: customer.Failure(customer.MsgBadLogin)},
		loginErr:    customer.ErrInvalidCredentials,
	}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	rec := env.post("/en/login/register-customer", url.Values{"customer-email": {"a@b.c"}}, "")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/login?registered=1", rec.Header().Get("Location"))
}

func TestRegister_IgnoresTokenWhenReCaptchaDisabled(t *testing.T) {
	customers := &fakeCustomers{registerRes: customer.Success(nil)}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	rec := env.post("/en/login/register-customer",
		url.Values{"customer-email": {"a@b.c"}, reCaptchaField: {"t"}}, "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, customers.registered, 1)
	assert.Empty(t, customers.registered[0].ReCaptchaToken)
}

func TestRegister_FailureKeepsSubmittedValues(t *testing.T) {
	customers := &fakeCustomers{
		fields:      registrationFields(),
		registerRes: customer.Failure("Email already in use\nPassword too weak"),
	}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	form := url.Values{
		"customer-email":     {"jane@example.com"},
		"customer-firstName": {"Jane"},
		"customer-password":  {"secret12"},
	}
	rec := env.post("/en/login/register-customer", form, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<p>Email already in use</p>")
	assert.Contains(t, body, "<p>Password too weak</p>")
	got := inputs(t, body)
	assert.Equal(t, "Jane", got["customer-firstName"])
	assert.Empty(t, got["customer-password"])
	assert.Empty(t, customers.logins)
}

func TestAccount_RequiresSession(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	for _, path := range []string{"/en/account", "/en/account/settings", "/de/account/settings/change-password"} {
		rec := env.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/login"), path)
	}
}

func testSettings() *customer.Settings {
	return &customer.Settings{
		Customer: customer.Customer{EntityID: 42, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		CustomerFields: []customer.FormField{
			{Type: "EmailFormField", EntityID: 1, Label: "Email Address", IsBuiltIn: true, IsRequired: true},
		},
		AddressFields: []customer.FormField{
			{Type: "TextFormField", EntityID: 4, Label: "First Name", SortOrder: 1, IsBuiltIn: true, IsRequired: true},
			{Type: "TextFormField", EntityID: 5, Label: "Last Name", SortOrder: 2, IsBuiltIn: true, IsRequired: true},
		},
	}
}

func TestSettingsPage_PrefillsCustomerValues(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{settings: testSettings()}, config.ReCaptchaSettings{})

	rec := env.get("/en/account/settings", env.signIn(t))
	require.Equal(t, http.StatusOK, rec.Code)

	got := inputs(t, rec.Body.String())
	assert.Equal(t, "Jane", got["customer-firstName"])
	assert.Equal(t, "Doe", got["customer-lastName"])
	assert.Equal(t, "jane@example.com", got["customer-email"])
	assert.Contains(t, rec.Body.String(), "Account settings")
}

func TestSettingsPage_RevokedTokenSignsOut(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{settingsErr: &graphql.APIError{Sentinel: graphql.ErrUnauthorized, Status: 401}},
		config.ReCaptchaSettings{})

	rec := env.get("/en/account/settings", env.signIn(t))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/en/login", rec.Header().Get("Location"))
	assert.Equal(t, 0, env.store.Len())
}

func TestSettingsPage_NoCustomer(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/en/account/settings", env.signIn(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettings(t *testing.T) {
	t.Run("success shows banner", func(t *testing.T) {
		customers := &fakeCustomers{settings: testSettings(), updateRes: customer.Success(nil)}
		env := newTestEnv(t, customers, config.ReCaptchaSettings{})

		rec := env.post("/en/account/settings", url.Values{"customer-firstName": {"Janet"}}, "", env.signIn(t))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Your settings have been updated.")
		require.Len(t, customers.updates, 1)
		assert.Equal(t, []customer.FormEntry{{Name: "customer-firstName", Value: "Janet"}}, customers.updates[0])
	})

	t.Run("failure keeps posted values", func(t *testing.T) {
		customers := &fakeCustomers{settings: testSettings(), updateRes: customer.Failure("Invalid phone")}
		env := newTestEnv(t, customers, config.ReCaptchaSettings{})

		rec := env.post("/en/account/settings", url.Values{"customer-firstName": {"J"}}, "", env.signIn(t))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid phone")
		assert.Equal(t, "J", inputs(t, rec.Body.String())["customer-firstName"])
	})

	t.Run("json", func(t *testing.T) {
		customers := &fakeCustomers{updateRes: customer.Success(nil)}
		env := newTestEnv(t, customers, config.ReCaptchaSettings{})

		rec := env.post("/en/account/settings", url.Values{"customer-firstName": {"J"}}, "application/json", env.signIn(t))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	})
}

func TestChangePasswordPage_ServesPrerendered(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/de/account/settings/change-password", env.signIn(t))
	require.Equal(t, http.StatusOK, rec.Code)

	want, ok := env.server.Prerenderer().Page(PageChangePassword, "de")
	require.True(t, ok)
	assert.Equal(t, string(want), rec.Body.String())
	got := inputs(t, rec.Body.String())
	assert.Contains(t, got, "currentPassword")
	assert.Contains(t, got, "newPassword")
	assert.Contains(t, got, "confirmPassword")
}

func TestChangePassword(t *testing.T) {
	customers := &fakeCustomers{changeRes: customer.Failure("Passwords do not match")}
	env := newTestEnv(t, customers, config.ReCaptchaSettings{})

	form := url.Values{"currentPassword": {"old"}, "newPassword": {"secret12"}, "confirmPassword": {"secret13"}}
	rec := env.post("/en/account/settings/change-password", form, "", env.signIn(t))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Passwords do not match")
	require.Len(t, customers.changes, 1)
	assert.Equal(t, customer.ChangePasswordInput{
		CurrentPassword: "old",
		NewPassword:     "secret12",
		ConfirmPassword: "secret13",
	}, customers.changes[0])

	customers.changeRes = customer.Success(nil)
	rec = env.post("/en/account/settings/change-password", form, "application/json", env.signIn(t))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, &fakeCustomers{}, config.ReCaptchaSettings{})

	rec := env.get("/static/storefront.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

// TestEndToEnd_LoginThroughGraphQL drives the real customer service against
// a mock platform API.
func TestEndToEnd_LoginThroughGraphQL(t *testing.T) {
	mock := graphql.NewMockServer()
	defer mock.Close()
	mock.On("Login", graphql.MockResponse{Data: map[string]any{"login": map[string]any{
		"customerAccessToken": map[string]any{
			"value":     "live-token",
			"expiresAt": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		},
		"customer": map[string]any{"entityId": 9, "firstName": "Jane", "lastName": "Doe"},
	}}})
	mock.On("Logout", graphql.MockResponse{Data: map[string]any{"logout": map[string]any{"result": "success"}}})

	client, err := graphql.New(graphql.Config{Endpoint: mock.URL, RateLimit: 1000, Burst: 1000})
	require.NoError(t, err)

	routing := i18n.MustRouting([]string{"en"}, "en")
	catalog, err := i18n.LoadCatalog(routing)
	require.NoError(t, err)
	store := session.NewMemoryStore()
	srv, err := New(Deps{
		Routing:   routing,
		Catalog:   catalog,
		Customers: customer.NewService(client, customer.Options{}),
		Sessions:  session.NewManager(store, session.Options{}),
	})
	require.NoError(t, err)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/en/login",
		strings.NewReader(url.Values{"email": {"jane@example.com"}, "password": {"secret12"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)

	sess, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, 9, sess.CustomerID)
	assert.Equal(t, "live-token", sess.CustomerAccessToken)

	req = httptest.NewRequest(http.MethodPost, "/en/logout", nil)
	req.Header.Set("Origin", testOrigin)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	logouts := mock.Requests("Logout")
	require.Len(t, logouts, 1)
	assert.Equal(t, "live-token", logouts[0].Header.Get(graphql.CustomerTokenHeader))
}
