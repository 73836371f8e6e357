package dialog

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
)

// Fetcher retrieves the markup of a named dialog template.
type Fetcher interface {
	FetchTemplate(ctx context.Context, name string) (string, error)
}

// FSFetcher reads "<name>.html" from a file system.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) FetchTemplate(_ context.Context, name string) (string, error) {
	data, err := fs.ReadFile(f.FS, name+".html")
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(data), nil
}

// HTTPFetcher downloads "<base>/<name>.html".
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	c := cleanhttp.DefaultClient()
	c.Timeout = timeout
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: c}
}

func (f *HTTPFetcher) FetchTemplate(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/"+name+".html", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch template %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("template %s: status %d", name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}
	return string(data), nil
}

// TemplateSet holds the dialog templates that loaded successfully.
type TemplateSet struct {
	fetcher Fetcher
	mu      sync.RWMutex
	markup  map[string]string
	logger  *slog.Logger
}

func NewTemplateSet(fetcher Fetcher, logger *slog.Logger) *TemplateSet {
	return &TemplateSet{
		fetcher: fetcher,
		markup:  make(map[string]string),
		logger:  logging.Component(logger, "dialog"),
	}
}

// Preload fetches every named template in parallel. A template that fails to
// load is logged and stays unavailable; the others are unaffected. It returns
// the number of templates that loaded.
func (t *TemplateSet) Preload(ctx context.Context, names ...string) int {
	var g errgroup.Group
	var loaded int
	var mu sync.Mutex
	for _, name := range names {
		g.Go(func() error {
			markup, err := t.fetcher.FetchTemplate(ctx, name)
			if err != nil {
				t.logger.Warn("template unavailable", "template", name, "error", fmt.Errorf("%w: %v", domain.ErrTemplateUnavailable, err))
				return nil
			}
			t.mu.Lock()
			t.markup[name] = markup
			t.mu.Unlock()
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return loaded
}

// Get returns the markup of a loaded template.
func (t *TemplateSet) Get(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.markup[name]
	return m, ok
}
