// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/ManuGH/storefront/internal/customer"
	"github.com/ManuGH/storefront/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	pageLogin          = "login"
	pageRegister       = "register"
	pageSettings       = "settings"
	pageChangePassword = "change_password"
	pageError          = "error"
)

var pageNames = []string{pageLogin, pageRegister, pageSettings, pageChangePassword, pageError}

// views holds one parsed template set per page, each sharing the layout.
type views struct {
	pages map[string]*template.Template
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the named page into a buffer so a failed render never
// leaves a half written response.
func (v *views) render(name string, data pageData) ([]byte, error) {
	t, ok := v.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// banner is the status message shown above a form.
type banner struct {
	Status string
	Lines  []string
}

func bannerFor(res customer.Result, successMsg string) *banner {
	if res.OK() {
		return &banner{Status: customer.StatusSuccess, Lines: []string{successMsg}}
	}
	return &banner{Status: customer.StatusError, Lines: strings.Split(res.Error, "\n")}
}

// pageData is the root value of every template.
type pageData struct {
	Locale           i18n.Locale
	Locales          []i18n.Locale
	Path             string // request path without the locale prefix
	Title            string
	Tab              string
	SignedIn         bool
	ReCaptchaSiteKey string
	Banner           *banner
	Page             any

	translate i18n.Translator
}

// T translates key for the page locale.
func (p pageData) T(key string, args ...any) string {
	if p.translate == nil {
		return key
	}
	return p.translate(key, args...)
}

type loginPage struct {
	Email string
}

type errorPage struct {
	Status  int
	Message string
}

// formInput is a rendered form control.
type formInput struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Value    string
	Options  []customer.FieldOption
}

// formPage carries the customer and address inputs of a page.
type formPage struct {
	Customer []formInput
	Address  []formInput
}

// inputsFor builds inputs for fields under section. value supplies the
// current value per field name; nil leaves inputs empty.
func inputsFor(section string, fields []customer.FormField, value func(name, key string) string) []formInput {
	out := make([]formInput, 0, len(fields))
	for _, f := range fields {
		name := section + "-" + f.Key()
		in := formInput{
			Name:     name,
			Label:    f.Label,
			Type:     f.InputType(),
			Required: f.IsRequired,
			Options:  f.Options,
		}
		if value != nil && in.Type != "password" {
			in.Value = value(name, f.Key())
		}
		out = append(out, in)
	}
	return out
}

// submitted returns a value lookup over a posted form.
func submitted(form url.Values) func(name, key string) string {
	return func(name, _ string) string { return form.Get(name) }
}
