// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package storefront

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ManuGH/storefront/internal/i18n"
	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/metrics"
	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"
)

// PageChangePassword is the static change password page.
const PageChangePassword = "change-password"

// staticPage is a page whose output depends only on the locale.
type staticPage struct {
	name     string
	template string
	path     string // locale relative
	titleKey string
	tab      string
}

var staticPages = []staticPage{
	{
		name:     PageChangePassword,
		template: pageChangePassword,
		path:     "/account/settings/change-password",
		titleKey: "changePassword.title",
		tab:      tabSettings,
	},
}

const exportConcurrency = 4

// Prerenderer renders static pages once per locale.
type Prerenderer struct {
	views   *views
	routing *i18n.Routing
	catalog *i18n.Catalog

	mu    sync.RWMutex
	pages map[string]map[i18n.Locale][]byte
}

// NewPrerenderer creates a renderer for the static pages.
func NewPrerenderer(v *views, routing *i18n.Routing, catalog *i18n.Catalog) *Prerenderer {
	return &Prerenderer{
		views:   v,
		routing: routing,
		catalog: catalog,
		pages:   make(map[string]map[i18n.Locale][]byte),
	}
}

func (p *Prerenderer) render(page staticPage, locale i18n.Locale) ([]byte, error) {
	translate := p.catalog.Translator(locale)
	data := pageData{
		Locale:    locale,
		Locales:   p.routing.Locales(),
		Path:      page.path,
		Title:     translate(page.titleKey),
		Tab:       page.tab,
		SignedIn:  true,
		translate: translate,
	}
	return p.views.render(page.template, data)
}

// LoadPrerenderer parses the page templates and returns a renderer that works
// without a running server.
func LoadPrerenderer(routing *i18n.Routing, catalog *i18n.Catalog) (*Prerenderer, error) {
	v, err := parseViews()
	if err != nil {
		return nil, err
	}
	return NewPrerenderer(v, routing, catalog), nil
}

// Prerender renders every static page for each static locale param.
func (p *Prerenderer) Prerender() error {
	rendered := make(map[string]map[i18n.Locale][]byte, len(staticPages))
	for _, page := range staticPages {
		byLocale := make(map[i18n.Locale][]byte)
		for _, param := range p.routing.StaticParams() {
			body, err := p.render(page, param.Locale)
			if err != nil {
				return fmt.Errorf("prerender %s/%s: %w", param.Locale, page.name, err)
			}
			byLocale[param.Locale] = body
			metrics.RecordPageRender(page.template, "prerendered")
		}
		rendered[page.name] = byLocale
	}

	p.mu.Lock()
	p.pages = rendered
	p.mu.Unlock()
	return nil
}

// Page returns the pre-rendered page for locale.
func (p *Prerenderer) Page(name string, locale i18n.Locale) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	body, ok := p.pages[name][locale]
	return body, ok
}

// Export writes every static page below dir as <locale>/<path>/index.html.
// Locales render concurrently and each file is replaced atomically.
func (p *Prerenderer) Export(ctx context.Context, dir string) ([]string, error) {
	logger := xglog.WithComponentFromContext(ctx, "export")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)

	var mu sync.Mutex
	var written []string

	for _, param := range p.routing.StaticParams() {
		locale := param.Locale
		g.Go(func() error {
			for _, page := range staticPages {
				if err := ctx.Err(); err != nil {
					return err
				}
				body, err := p.render(page, locale)
				if err != nil {
					return fmt.Errorf("render %s/%s: %w", locale, page.name, err)
				}
				path := filepath.Join(dir, string(locale), filepath.FromSlash(page.path), "index.html")
				if err := writeFileAtomic(path, body); err != nil {
					return err
				}
				metrics.RecordPageRender(page.template, "export")

				mu.Lock()
				written = append(written, path)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info().
		Str(xglog.FieldEvent, "export.completed").
		Int("files", len(written)).
		Str("dir", dir).
		Msg("static pages exported")
	return written, nil
}

// writeFileAtomic writes data with renameio so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pendingFile.Cleanup() }()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}
