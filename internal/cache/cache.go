// Package cache holds the last known-good works and categories lists.
//
// Each entry is a JSON-serialized list stored under a fixed key and is
// always replaced wholesale. Reads and writes of one entry are atomic with
// respect to each other.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vbonduro/portfolio/internal/domain"
)

const (
	KeyWorks      = "works"
	KeyCategories = "categories"
)

// ErrNotFound is returned by a Backend for a key that was never stored.
var ErrNotFound = errors.New("cache entry not found")

// Backend persists raw entry payloads.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Store(ctx context.Context, key string, data []byte) error
}

// Cache is created empty at start-up and lives for the whole session.
type Cache struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Cache {
	return &Cache{backend: backend}
}

// Works returns the cached works. ok is false when the entry does not exist.
func (c *Cache) Works(ctx context.Context) (items []domain.Item, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err = c.load(ctx, KeyWorks, &items)
	return items, ok, err
}

// PutWorks replaces the works entry.
func (c *Cache) PutWorks(ctx context.Context, items []domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, KeyWorks, items)
}

// Categories returns the cached categories. ok is false when the entry does
// not exist.
func (c *Cache) Categories(ctx context.Context) (cats []domain.CategoryRef, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err = c.load(ctx, KeyCategories, &cats)
	return cats, ok, err
}

// PutCategories replaces the categories entry.
func (c *Cache) PutCategories(ctx context.Context, cats []domain.CategoryRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(ctx, KeyCategories, cats)
}

// UpdateWorks replaces the works entry with fn applied to its current value,
// holding the cache lock for the whole read-modify-write. A missing entry is
// passed to fn as nil. The stored list is returned.
func (c *Cache) UpdateWorks(ctx context.Context, fn func([]domain.Item) []domain.Item) ([]domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current []domain.Item
	if _, err := c.load(ctx, KeyWorks, &current); err != nil {
		return nil, err
	}
	next := fn(current)
	if next == nil {
		next = []domain.Item{}
	}
	if err := c.store(ctx, KeyWorks, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *Cache) load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.backend.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load cache entry %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	if err := c.backend.Store(ctx, key, data); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}
