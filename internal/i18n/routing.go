// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package i18n holds locale routing, negotiation and translated messages.
package i18n

import (
	"fmt"
	"slices"

	"golang.org/x/text/language"
)

// Locale is a supported URL locale segment such as "en" or "de".
type Locale string

func (l Locale) String() string { return string(l) }

// Params is the route parameter set for one statically generated page.
type Params struct {
	Locale Locale `json:"locale"`
}

// DefaultLocales are the locales served when none are configured.
var DefaultLocales = []Locale{"en", "de", "es", "fr", "it", "nl", "pl", "pt"}

// Routing is the configured set of locales.
type Routing struct {
	locales []Locale
	def     Locale
	order   []Locale // matcher order, default first
	tags    []language.Tag
	matcher language.Matcher
}

// NewRouting validates the locale list. The default locale must be part of it.
func NewRouting(locales []string, defaultLocale string) (*Routing, error) {
	if len(locales) == 0 {
		return nil, fmt.Errorf("i18n: no locales configured")
	}

	r := &Routing{def: Locale(defaultLocale)}
	// the default goes first so the matcher falls back to it
	ordered := make([]string, 0, len(locales))
	ordered = append(ordered, defaultLocale)
	for _, l := range locales {
		if l != defaultLocale {
			ordered = append(ordered, l)
		}
	}
	if !slices.Contains(locales, defaultLocale) {
		return nil, fmt.Errorf("i18n: default locale %q is not in %v", defaultLocale, locales)
	}

	for _, l := range ordered {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: invalid locale %q: %w", l, err)
		}
		r.tags = append(r.tags, tag)
		r.order = append(r.order, Locale(l))
	}
	for _, l := range locales {
		if slices.Contains(r.locales, Locale(l)) {
			return nil, fmt.Errorf("i18n: duplicate locale %q", l)
		}
		r.locales = append(r.locales, Locale(l))
	}
	r.matcher = language.NewMatcher(r.tags)
	return r, nil
}

// MustRouting is NewRouting for static locale lists.
func MustRouting(locales []string, defaultLocale string) *Routing {
	r, err := NewRouting(locales, defaultLocale)
	if err != nil {
		panic(err)
	}
	return r
}

// Locales returns the configured locales in configured order.
func (r *Routing) Locales() []Locale {
	return slices.Clone(r.locales)
}

// Default returns the default locale.
func (r *Routing) Default() Locale {
	return r.def
}

// IsSupported reports whether s is a configured locale. Matching is exact.
func (r *Routing) IsSupported(s string) bool {
	return slices.Contains(r.locales, Locale(s))
}

// StaticParams returns one parameter set per locale, in configured order.
func (r *Routing) StaticParams() []Params {
	out := make([]Params, 0, len(r.locales))
	for _, l := range r.locales {
		out = append(out, Params{Locale: l})
	}
	return out
}

// Negotiate picks the best configured locale for an Accept-Language header.
func (r *Routing) Negotiate(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return r.def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.def
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.def
	}
	return r.order[idx]
}

// Tag returns the language tag for a configured locale.
func (r *Routing) Tag(l Locale) language.Tag {
	if i := slices.Index(r.order, l); i >= 0 {
		return r.tags[i]
	}
	return language.Und
}
