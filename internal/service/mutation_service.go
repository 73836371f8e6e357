package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/render"
)

// remoteWriter is the subset of api.Client the mutation pipeline writes to.
type remoteWriter interface {
	DeleteWork(ctx context.Context, id int, token string) error
	CreateWork(ctx context.Context, work domain.NewWork, token string) (domain.Item, error)
}

// credentials is the subset of auth.Session the mutation pipeline needs.
type credentials interface {
	IsAuthenticated() bool
	CurrentCredential() (domain.Credential, bool)
}

// filterResetter returns the main gallery filter to the sentinel.
type filterResetter interface {
	ActivateAll()
}

// MutationService applies remote mutations and then brings the cache and
// every registered view up to date together.
type MutationService struct {
	remote  remoteWriter
	creds   credentials
	cache   localCache
	filters filterResetter
	views   []render.View
	logger  *slog.Logger
}

// NewMutationService redraws views in the given order after each successful
// mutation. filters may be nil.
func NewMutationService(
	remote remoteWriter,
	creds credentials,
	cache localCache,
	filters filterResetter,
	logger *slog.Logger,
	views ...render.View,
) *MutationService {
	return &MutationService{
		remote:  remote,
		creds:   creds,
		cache:   cache,
		filters: filters,
		views:   views,
		logger:  logging.Component(logger, "mutate"),
	}
}

// DeleteItem deletes the work remotely and, on success, removes it from the
// works entry and redraws every view. Without a session it does nothing. On a
// remote failure the cache and views are left untouched and an error wrapping
// domain.ErrDeleteFailed is returned.
func (s *MutationService) DeleteItem(ctx context.Context, id int) error {
	cred, ok := s.credential()
	if !ok {
		s.logger.Debug("delete skipped without session", "work_id", id)
		return nil
	}

	if err := s.remote.DeleteWork(ctx, id, cred.Token); err != nil {
		err = fmt.Errorf("%w: work %d: %v", domain.ErrDeleteFailed, id, err)
		s.logger.Error("delete failed", "work_id", id, "error", err)
		return err
	}

	// The entry is recomputed from its current value, not from the snapshot
	// the delete affordance was drawn from.
	remaining, err := s.cache.UpdateWorks(ctx, func(items []domain.Item) []domain.Item {
		out := make([]domain.Item, 0, len(items))
		for _, it := range items {
			if it.ID != id {
				out = append(out, it)
			}
		}
		return out
	})
	if err != nil {
		s.logger.Error("failed to update cached works after delete", "work_id", id, "error", err)
		return fmt.Errorf("failed to update cache: %w", err)
	}

	s.logger.Info("work deleted", "work_id", id, "remaining", len(remaining))
	s.redraw(ctx)
	return nil
}

// CreateItem uploads a new work and, on success, appends it to the works
// entry and redraws every view.
func (s *MutationService) CreateItem(ctx context.Context, work domain.NewWork) (domain.Item, error) {
	cred, ok := s.credential()
	if !ok {
		return domain.Item{}, domain.ErrUnauthenticated
	}

	created, err := s.remote.CreateWork(ctx, work, cred.Token)
	if err != nil {
		err = fmt.Errorf("%w: %q: %v", domain.ErrCreateFailed, work.Title, err)
		s.logger.Error("create failed", "title", work.Title, "error", err)
		return domain.Item{}, err
	}
	if created.CategoryID == 0 {
		created.CategoryID = work.CategoryID
	}
	if created.Category.ID == 0 {
		created.Category = s.categoryByID(ctx, created.CategoryID)
	}

	if _, err := s.cache.UpdateWorks(ctx, func(items []domain.Item) []domain.Item {
		return append(items, created)
	}); err != nil {
		s.logger.Error("failed to update cached works after create", "work_id", created.ID, "error", err)
		return created, fmt.Errorf("failed to update cache: %w", err)
	}

	s.logger.Info("work created", "work_id", created.ID, "category_id", created.CategoryID)
	s.redraw(ctx)
	return created, nil
}

func (s *MutationService) credential() (domain.Credential, bool) {
	if !s.creds.IsAuthenticated() {
		return domain.Credential{}, false
	}
	return s.creds.CurrentCredential()
}

func (s *MutationService) categoryByID(ctx context.Context, id int) domain.CategoryRef {
	cats, err := deriveCategories(ctx, s.cache)
	if err == nil {
		for _, c := range cats {
			if c.ID == id {
				return c
			}
		}
	}
	return domain.CategoryRef{ID: id}
}

func (s *MutationService) redraw(ctx context.Context) {
	if s.filters != nil {
		s.filters.ActivateAll()
	}
	for _, v := range s.views {
		if err := v.Render(ctx); err != nil {
			s.logger.Error("redraw failed", "error", err)
		}
	}
}
