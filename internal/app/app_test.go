package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/portfolio/internal/api/apitest"
	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/dialog"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
)

var (
	catObjets  = domain.CategoryRef{ID: 1, Name: "Objets"}
	catApparts = domain.CategoryRef{ID: 2, Name: "Appartements"}
)

func seedWorks() []domain.Item {
	return []domain.Item{
		{ID: 1, Title: "Abajour Tahina", ImageLocation: "http://img/1.png", CategoryID: 1, Category: catObjets},
		{ID: 2, Title: "Appartement Paris V", ImageLocation: "http://img/2.png", CategoryID: 2, Category: catApparts},
	}
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ListenAddr:        "127.0.0.1:0",
		APIURL:            apiURL,
		CacheBackend:      BackendMemory,
		CachePath:         filepath.Join(dir, "cache.db"),
		PhotoStagingPath:  filepath.Join(dir, "staging"),
		DialogDefaultView: "galleryView",
		HTTPTimeout:       2 * time.Second,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestStartDrawsGalleryAndFilters(t *testing.T) {
	remote := apitest.NewServer(seedWorks(), []domain.CategoryRef{catObjets, catApparts})
	defer remote.Close()
	a := newTestApp(t, testConfig(t, remote.URL))

	a.Start(context.Background())

	gallery := a.Doc.Region(a.Regions.Gallery).HTML()
	assert.Equal(t, 2, strings.Count(gallery, "<figure"))
	filters := a.Doc.Region(a.Regions.Filters).HTML()
	assert.Equal(t, 3, strings.Count(filters, "<button"))
	assert.Equal(t, domain.AllCategoryID, a.Controls.Active())
}

func TestStartWithRemoteDown(t *testing.T) {
	remote := apitest.NewServer(seedWorks(), nil)
	remote.SetDown(true)
	defer remote.Close()
	a := newTestApp(t, testConfig(t, remote.URL))

	a.Start(context.Background())

	assert.Empty(t, strings.TrimSpace(a.Doc.Region(a.Regions.Gallery).HTML()))
	assert.Equal(t, 1, strings.Count(a.Doc.Region(a.Regions.Filters).HTML(), "<button"))
}

func TestSQLiteCacheSurvivesRestart(t *testing.T) {
	remote := apitest.NewServer(seedWorks(), []domain.CategoryRef{catObjets, catApparts})
	defer remote.Close()
	cfg := testConfig(t, remote.URL)
	cfg.CacheBackend = BackendSQLite

	first, err := New(cfg, logging.Discard())
	require.NoError(t, err)
	first.Start(context.Background())
	require.NoError(t, first.Close())

	remote.SetDown(true)
	second := newTestApp(t, cfg)
	second.Start(context.Background())

	// Works fail to refresh, categories are derived from the cache.
	assert.Len(t, second.Works(context.Background(), "-1"), 2)
	assert.Equal(t, 3, strings.Count(second.Doc.Region(second.Regions.Filters).HTML(), "<button"))
}

func TestUnknownCacheBackend(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.CacheBackend = "redis"

	_, err := New(cfg, logging.Discard())

	assert.Error(t, err)
}

func TestWorksByCategory(t *testing.T) {
	remote := apitest.NewServer(seedWorks(), []domain.CategoryRef{catObjets, catApparts})
	defer remote.Close()
	a := newTestApp(t, testConfig(t, remote.URL))
	a.Start(context.Background())

	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{"all", "-1", []string{"Abajour Tahina", "Appartement Paris V"}},
		{"bare id", "2", []string{"Appartement Paris V"}},
		{"control value", "filter-1", []string{"Abajour Tahina"}},
		{"no match", "9", nil},
		{"unparsable", "objets", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			for _, w := range a.Works(context.Background(), tt.category) {
				titles = append(titles, w.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestDeleteFromDialogUpdatesBothGalleries(t *testing.T) {
	remote := apitest.NewServer(seedWorks(), []domain.CategoryRef{catObjets, catApparts})
	defer remote.Close()
	a := newTestApp(t, testConfig(t, remote.URL))
	ctx := context.Background()
	a.Start(ctx)
	_, err := a.Session.Login(ctx, apitest.Email, apitest.Password)
	require.NoError(t, err)

	a.Dialog.Open(ctx)
	require.Equal(t, dialog.GalleryView, a.Dialog.State())
	require.NoError(t, a.Mutations.DeleteItem(ctx, 1))

	assert.Len(t, remote.Works(), 1)
	assert.Equal(t, 1, strings.Count(a.Doc.Region(a.Regions.Gallery).HTML(), "<figure"))
	assert.Equal(t, 1, strings.Count(a.Doc.Region(a.Regions.ModalGallery).HTML(), "<figure"))
	assert.NotContains(t, a.Doc.Region(a.Regions.ModalGallery).HTML(), "Abajour")
}

func TestDefaultView(t *testing.T) {
	assert.Equal(t, dialog.GalleryView, defaultView("galleryView", logging.Discard()))
	assert.Equal(t, dialog.AddItemView, defaultView("addItemView", logging.Discard()))
	assert.Equal(t, dialog.Closed, defaultView("", logging.Discard()))
	assert.Equal(t, dialog.Closed, defaultView("bogus", logging.Discard()))
}

func TestNewFetcher(t *testing.T) {
	cfg := &config.Config{}
	_, ok := newFetcher(cfg).(dialog.FSFetcher)
	assert.True(t, ok)

	cfg.TemplateBaseURL = "http://localhost:8080/templates"
	_, ok = newFetcher(cfg).(*dialog.HTTPFetcher)
	assert.True(t, ok)
}
