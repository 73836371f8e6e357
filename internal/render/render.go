// Package render draws page regions from the cache. Every renderer reads its
// data at draw time so two renderers drawn after the same write agree.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/filter"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
)

//go:embed templates/*.html
var templatesFS embed.FS

// View is anything that can redraw itself.
type View interface {
	Render(ctx context.Context) error
}

// WorksSource supplies the current works list.
type WorksSource interface {
	Works(ctx context.Context) ([]domain.Item, bool, error)
}

// CategoriesFunc supplies the current category list.
type CategoriesFunc func(ctx context.Context) []domain.CategoryRef

// Templates holds the parsed fragment templates.
type Templates struct {
	tmpl *template.Template
}

func NewTemplates() (*Templates, error) {
	tmpl, err := template.New("").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse render templates: %w", err)
	}
	return &Templates{tmpl: tmpl}, nil
}

func (t *Templates) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

func currentWorks(ctx context.Context, src WorksSource) ([]domain.Item, error) {
	items, _, err := src.Works(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MainGallery draws the public gallery under the active filter.
type MainGallery struct {
	tmpl     *Templates
	works    WorksSource
	controls *filter.Controls
	region   page.Region
	logger   *slog.Logger
}

func NewMainGallery(tmpl *Templates, works WorksSource, controls *filter.Controls, region page.Region, logger *slog.Logger) *MainGallery {
	return &MainGallery{tmpl: tmpl, works: works, controls: controls, region: region, logger: logging.Component(logger, "render")}
}

func (g *MainGallery) Render(ctx context.Context) error {
	items, err := currentWorks(ctx, g.works)
	if err != nil {
		return err
	}
	items = filter.SelectByID(items, g.controls.Active())
	html, err := g.tmpl.execute("gallery", items)
	if err != nil {
		return err
	}
	g.region.Clear()
	g.region.SetHTML(html)
	g.logger.Debug("main gallery drawn", "items", len(items), "filter", g.controls.Active())
	return nil
}

// ModalGallery draws the dialog's gallery with a delete affordance per item.
type ModalGallery struct {
	tmpl   *Templates
	works  WorksSource
	region page.Region
}

func NewModalGallery(tmpl *Templates, works WorksSource, region page.Region) *ModalGallery {
	return &ModalGallery{tmpl: tmpl, works: works, region: region}
}

func (g *ModalGallery) Render(ctx context.Context) error {
	items, err := currentWorks(ctx, g.works)
	if err != nil {
		return err
	}
	html, err := g.tmpl.execute("modal-gallery", items)
	if err != nil {
		return err
	}
	g.region.Clear()
	g.region.SetHTML(html)
	return nil
}

// Filters draws one control per filter set entry.
type Filters struct {
	tmpl     *Templates
	controls *filter.Controls
	region   page.Region
}

func NewFilters(tmpl *Templates, controls *filter.Controls, region page.Region) *Filters {
	return &Filters{tmpl: tmpl, controls: controls, region: region}
}

func (f *Filters) Render(_ context.Context) error {
	html, err := f.tmpl.execute("filters", f.controls.List())
	if err != nil {
		return err
	}
	f.region.SetHTML(html)
	return nil
}

// CategoryOptions fills the add form's category select.
type CategoryOptions struct {
	tmpl       *Templates
	categories CategoriesFunc
	region     page.Region
}

func NewCategoryOptions(tmpl *Templates, categories CategoriesFunc, region page.Region) *CategoryOptions {
	return &CategoryOptions{tmpl: tmpl, categories: categories, region: region}
}

func (o *CategoryOptions) Render(ctx context.Context) error {
	var cats []domain.CategoryRef
	for _, c := range o.categories(ctx) {
		if c.ID != domain.AllCategoryID {
			cats = append(cats, c)
		}
	}
	html, err := o.tmpl.execute("category-options", cats)
	if err != nil {
		return err
	}
	o.region.SetHTML(html)
	return nil
}

// PhotoPreview shows a staged photo by its storage key. An empty key clears
// the preview.
func (t *Templates) PhotoPreview(region page.Region, storageKey string) error {
	html, err := t.execute("photo-preview", storageKey)
	if err != nil {
		return err
	}
	region.SetHTML(html)
	return nil
}
