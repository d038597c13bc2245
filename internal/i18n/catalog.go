// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var messagesFS embed.FS

// Translator returns the message for key formatted with args.
type Translator func(key string, args ...any) string

// Catalog holds translated messages for the configured locales.
// Lookups fall back to the default locale, then to the key itself.
type Catalog struct {
	routing *Routing
	cat     *catalog.Builder
	keys    map[Locale]map[string]struct{}
}

// LoadCatalog reads the embedded message files for every configured locale.
func LoadCatalog(r *Routing) (*Catalog, error) {
	return loadCatalog(messagesFS, "messages", r)
}

func loadCatalog(fsys fs.FS, dir string, r *Routing) (*Catalog, error) {
	c := &Catalog{
		routing: r,
		cat:     catalog.NewBuilder(catalog.Fallback(r.Tag(r.Default()))),
		keys:    make(map[Locale]map[string]struct{}),
	}
	for _, l := range r.Locales() {
		data, err := fs.ReadFile(fsys, path.Join(dir, string(l)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: messages for %q: %w", l, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("i18n: parse messages for %q: %w", l, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)

		tag := r.Tag(l)
		c.keys[l] = make(map[string]struct{}, len(flat))
		for key, msg := range flat {
			if err := c.cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: %s/%s: %w", l, key, err)
			}
			c.keys[l][key] = struct{}{}
		}
	}
	return c, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Translator returns a translation function for l.
func (c *Catalog) Translator(l Locale) Translator {
	def := c.routing.Default()
	if _, ok := c.keys[l]; !ok {
		l = def
	}
	p := message.NewPrinter(c.routing.Tag(l), message.Catalog(c.cat))
	fallback := message.NewPrinter(c.routing.Tag(def), message.Catalog(c.cat))
	return func(key string, args ...any) string {
		if _, ok := c.keys[l][key]; ok {
			return p.Sprintf(key, args...)
		}
		if _, ok := c.keys[def][key]; ok {
			return fallback.Sprintf(key, args...)
		}
		return key
	}
}

// Missing lists keys present for the default locale but absent for l.
func (c *Catalog) Missing(l Locale) []string {
	var out []string
	for key := range c.keys[c.routing.Default()] {
		if _, ok := c.keys[l][key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
