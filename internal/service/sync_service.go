package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
)

// remoteReader is the subset of api.Client the sync engine reads from.
type remoteReader interface {
	ListWorks(ctx context.Context) ([]domain.Item, error)
	ListCategories(ctx context.Context) ([]domain.CategoryRef, error)
}

// localCache is the subset of cache.Cache the services use.
type localCache interface {
	Works(ctx context.Context) ([]domain.Item, bool, error)
	PutWorks(ctx context.Context, items []domain.Item) error
	Categories(ctx context.Context) ([]domain.CategoryRef, bool, error)
	PutCategories(ctx context.Context, cats []domain.CategoryRef) error
	UpdateWorks(ctx context.Context, fn func([]domain.Item) []domain.Item) ([]domain.Item, error)
}

// generation orders refreshes of one entity. A response is applied only if
// no refresh started after it has been applied already.
type generation struct {
	mu      sync.Mutex
	started uint64
	applied uint64
}

func (g *generation) begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started++
	return g.started
}

// apply runs write if gen is not older than the last applied generation.
func (g *generation) apply(gen uint64, write func() error) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen < g.applied {
		return false, nil
	}
	if err := write(); err != nil {
		return false, err
	}
	g.applied = gen
	return true, nil
}

// SyncEngine reconciles the remote works and categories with the cache.
type SyncEngine struct {
	remote   remoteReader
	cache    localCache
	worksGen generation
	catsGen  generation
	logger   *slog.Logger
}

func NewSyncEngine(remote remoteReader, cache localCache, logger *slog.Logger) *SyncEngine {
	return &SyncEngine{
		remote: remote,
		cache:  cache,
		logger: logging.Component(logger, "sync"),
	}
}

// RefreshWorks fetches every work and replaces the works cache entry. Any
// failure yields an empty list; the cache is left as it was.
func (e *SyncEngine) RefreshWorks(ctx context.Context) []domain.Item {
	gen := e.worksGen.begin()

	items, err := e.remote.ListWorks(ctx)
	if err != nil {
		e.logger.Warn("works refresh failed", "error", err)
		return []domain.Item{}
	}

	applied, err := e.worksGen.apply(gen, func() error { return e.cache.PutWorks(ctx, items) })
	if err != nil {
		e.logger.Error("failed to cache works", "error", err)
		return items
	}
	if !applied {
		e.logger.Debug("stale works response discarded", "generation", gen)
		return e.cachedWorks(ctx)
	}

	e.logger.Info("works refreshed", "count", len(items))
	return items
}

// RefreshCategories fetches the categories and replaces the categories cache
// entry. When the remote read fails the categories are derived from the cache
// instead.
func (e *SyncEngine) RefreshCategories(ctx context.Context) []domain.CategoryRef {
	gen := e.catsGen.begin()

	cats, err := e.remote.ListCategories(ctx)
	if err != nil {
		e.logger.Warn("categories refresh failed, deriving from cache", "error", err)
		return e.DeriveCategories(ctx)
	}

	applied, err := e.catsGen.apply(gen, func() error { return e.cache.PutCategories(ctx, cats) })
	if err != nil {
		e.logger.Error("failed to cache categories", "error", err)
		return cats
	}
	if !applied {
		e.logger.Debug("stale categories response discarded", "generation", gen)
		return e.DeriveCategories(ctx)
	}

	e.logger.Info("categories refreshed", "count", len(cats))
	return cats
}

// Refresh refreshes works and then categories. Works go first because
// deriving categories reads the works entry.
func (e *SyncEngine) Refresh(ctx context.Context) ([]domain.Item, []domain.CategoryRef) {
	works := e.RefreshWorks(ctx)
	cats := e.RefreshCategories(ctx)
	return works, cats
}

// DeriveCategories returns the cached categories, or failing that the
// categories embedded in the cached works. A cache with neither yields an
// empty list.
func (e *SyncEngine) DeriveCategories(ctx context.Context) []domain.CategoryRef {
	cats, err := deriveCategories(ctx, e.cache)
	if err != nil {
		if errors.Is(err, domain.ErrNoDataAvailable) {
			e.logger.Warn("no categories available", "error", err)
		} else {
			e.logger.Error("category derivation failed", "error", err)
		}
		return []domain.CategoryRef{}
	}
	return cats
}

func (e *SyncEngine) cachedWorks(ctx context.Context) []domain.Item {
	items, _, err := e.cache.Works(ctx)
	if err != nil {
		e.logger.Error("failed to read cached works", "error", err)
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items
}

// deriveCategories is a pure function of the cache state.
func deriveCategories(ctx context.Context, c localCache) ([]domain.CategoryRef, error) {
	cats, ok, err := c.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached categories: %w", err)
	}
	if ok {
		return cats, nil
	}

	works, ok, err := c.Works(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached works: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("neither categories nor works are cached: %w", domain.ErrNoDataAvailable)
	}

	return CategoriesOf(works), nil
}

// CategoriesOf collects the embedded category of each item, first occurrence
// of an id winning, in item order.
func CategoriesOf(works []domain.Item) []domain.CategoryRef {
	seen := make(map[int]struct{})
	out := make([]domain.CategoryRef, 0)
	for _, w := range works {
		if _, dup := seen[w.Category.ID]; dup {
			continue
		}
		seen[w.Category.ID] = struct{}{}
		out = append(out, w.Category)
	}
	return out
}
