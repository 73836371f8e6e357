// Package app assembles the gallery front-end from its configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/portfolio/internal/api"
	"github.com/vbonduro/portfolio/internal/auth"
	"github.com/vbonduro/portfolio/internal/cache"
	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/db"
	"github.com/vbonduro/portfolio/internal/dialog"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/filter"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
	"github.com/vbonduro/portfolio/internal/photostore/local"
	"github.com/vbonduro/portfolio/internal/render"
	"github.com/vbonduro/portfolio/internal/service"
	"github.com/vbonduro/portfolio/internal/store"
	"github.com/vbonduro/portfolio/internal/web"
	"github.com/vbonduro/portfolio/internal/web/templates"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// stagingMaxAge is how long an abandoned staged photo is kept.
const stagingMaxAge = 24 * time.Hour

// App owns every component of one page.
type App struct {
	Config    *config.Config
	Regions   config.Regions
	Cache     *cache.Cache
	Client    *api.Client
	Session   *auth.Session
	Engine    *service.SyncEngine
	Mutations *service.MutationService
	Controls  *filter.Controls
	Doc       *page.Document
	Templates *dialog.TemplateSet
	Dialog    *dialog.Controller
	Staging   *local.LocalPhotoStore
	Server    *web.Server

	gallery render.View
	filters render.View
	db      *sql.DB
	logger  *slog.Logger
}

// New wires the components. Nothing is fetched until Start.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Regions: regions, logger: logging.Component(logger, "app")}

	backend, err := a.openBackend()
	if err != nil {
		return nil, err
	}
	a.Cache = cache.New(backend)

	a.Staging, err = local.NewLocalPhotoStore(cfg.PhotoStagingPath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize photo staging: %w", err)
	}

	a.Client = api.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	a.Session = auth.NewSession(a.Client, logger)
	a.Engine = service.NewSyncEngine(a.Client, a.Cache, logger)
	a.Controls = filter.NewControls()
	a.Doc = page.NewDocument()

	tmpl, err := render.NewTemplates()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.gallery = render.NewMainGallery(tmpl, a.Cache, a.Controls, a.Doc.Region(regions.Gallery), logger)
	a.filters = render.NewFilters(tmpl, a.Controls, a.Doc.Region(regions.Filters))
	modal := render.NewModalGallery(tmpl, a.Cache, a.Doc.Region(regions.ModalGallery))
	options := render.NewCategoryOptions(tmpl, a.Engine.DeriveCategories, a.Doc.Region(regions.CategorySelect))

	a.Mutations = service.NewMutationService(a.Client, a.Session, a.Cache, a.Controls, logger, a.gallery, modal, a.filters)

	a.Templates = dialog.NewTemplateSet(newFetcher(cfg), logger)
	a.Dialog = dialog.NewController(a.Doc, regions, a.Templates, a.Mutations, defaultView(cfg.DialogDefaultView, a.logger), logger)
	a.Dialog.Register(dialog.GalleryView, dialog.GalleryInit{Gallery: modal})
	a.Dialog.Register(dialog.AddItemView, dialog.NewAddItemForm(
		a.Doc, regions, options, a.Mutations, a.Dialog, a.Staging, tmpl.PhotoPreview, logger,
	))

	a.Server = web.NewServer(web.Page{
		Doc:      a.Doc,
		Regions:  regions,
		Session:  a.Session,
		Controls: a.Controls,
		Dialog:   a.Dialog,
		Gallery:  a.gallery,
		Filters:  a.filters,
		Staging:  a.Staging,
	}, templates.FS, templates.Dialog(), logger)

	return a, nil
}

func (a *App) openBackend() (cache.Backend, error) {
	switch a.Config.CacheBackend {
	case BackendMemory:
		return cache.NewMemoryBackend(), nil
	case BackendSQLite:
		database, err := db.Open(a.Config.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		a.db = database
		a.logger.Info("using sqlite cache", "path", a.Config.CachePath)
		return store.NewCacheStore(database), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.Config.CacheBackend)
	}
}

func newFetcher(cfg *config.Config) dialog.Fetcher {
	if cfg.TemplateBaseURL == "" {
		return dialog.FSFetcher{FS: templates.Dialog()}
	}
	return dialog.NewHTTPFetcher(cfg.TemplateBaseURL, cfg.HTTPTimeout)
}

func defaultView(name string, logger *slog.Logger) dialog.State {
	s, ok := dialog.ParseState(name)
	if !ok && name != "" && name != dialog.Closed.String() {
		logger.Warn("unknown default dialog view, dialog opens empty", "view", name)
	}
	return s
}

// Start preloads the dialog templates, refreshes the cache and draws the
// page. Remote failures degrade to the cached or empty state.
func (a *App) Start(ctx context.Context) {
	loaded := a.Templates.Preload(ctx, dialog.GalleryView.TemplateName(), dialog.AddItemView.TemplateName())
	a.logger.Info("dialog templates preloaded", "loaded", loaded)

	works, cats := a.Engine.Refresh(ctx)
	a.Controls.Reset(filter.BuildFilterSet(cats))
	a.Draw(ctx)
	a.logger.Info("page ready", "works", len(works), "categories", len(cats))
}

// Draw redraws the main gallery and the filter controls.
func (a *App) Draw(ctx context.Context) {
	if err := a.gallery.Render(ctx); err != nil {
		a.logger.Error("failed to draw gallery", "error", err)
	}
	if err := a.filters.Render(ctx); err != nil {
		a.logger.Error("failed to draw filters", "error", err)
	}
}

// Run starts the page and serves it until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)
	go a.sweepStaging(ctx, time.Hour)
	return a.Server.ListenAndServe(ctx, a.Config.ListenAddr)
}

func (a *App) sweepStaging(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Staging.Sweep(time.Now().Add(-stagingMaxAge))
			if err != nil {
				a.logger.Warn("staging sweep failed", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("staging swept", "removed", n)
			}
		}
	}
}

// Works returns the cached works under the filter value category, either a
// bare id or a "filter-<id>" control value. The sentinel id selects every
// work; a value that does not parse selects none.
func (a *App) Works(ctx context.Context, category string) []domain.Item {
	items, _, err := a.Cache.Works(ctx)
	if err != nil {
		a.logger.Error("failed to read cached works", "error", err)
		return []domain.Item{}
	}
	return filter.SelectByFilter(items, category)
}

// Close releases the cache database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
