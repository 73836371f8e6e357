package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
	"github.com/vbonduro/portfolio/internal/photostore"
	"github.com/vbonduro/portfolio/internal/render"
)

// GalleryInit draws the dialog gallery on entry.
type GalleryInit struct {
	Gallery render.View
}

func (g GalleryInit) Enter(ctx context.Context, _ *page.Scope) error {
	return g.Gallery.Render(ctx)
}

// Creator creates an item.
type Creator interface {
	CreateItem(ctx context.Context, work domain.NewWork) (domain.Item, error)
}

// Navigator switches dialog views.
type Navigator interface {
	Show(ctx context.Context, s State) error
}

// PreviewFunc draws the preview of a staged photo; an empty key clears it.
type PreviewFunc func(region page.Region, storageKey string) error

// AddItemForm initializes the add-item view: it fills the category select
// and owns exactly one submit listener and one photo change listener while
// the view is active.
type AddItemForm struct {
	doc     *page.Document
	regions config.Regions
	options render.View
	creator Creator
	nav     Navigator
	staging photostore.PhotoStore
	preview PreviewFunc
	logger  *slog.Logger

	mu     sync.Mutex
	staged *stagedPhoto
}

type stagedPhoto struct {
	key      string
	name     string
	mimeType string
}

func NewAddItemForm(
	doc *page.Document,
	regions config.Regions,
	options render.View,
	creator Creator,
	nav Navigator,
	staging photostore.PhotoStore,
	preview PreviewFunc,
	logger *slog.Logger,
) *AddItemForm {
	return &AddItemForm{
		doc:     doc,
		regions: regions,
		options: options,
		creator: creator,
		nav:     nav,
		staging: staging,
		preview: preview,
		logger:  logging.Component(logger, "dialog"),
	}
}

func (f *AddItemForm) Enter(ctx context.Context, scope *page.Scope) error {
	f.discardStaged(ctx)
	f.doc.Region(f.regions.FormError).Clear()
	f.doc.Region(f.regions.PhotoPreview).Clear()

	if err := f.options.Render(ctx); err != nil {
		return fmt.Errorf("failed to fill categories: %w", err)
	}
	scope.Add(f.doc.On(f.regions.AddForm, page.Submit, f.onSubmit))
	scope.Add(f.doc.On(f.regions.PhotoInput, page.Change, f.onPhotoChange))
	// A photo staged but never submitted does not outlive the view.
	leaveCtx := context.WithoutCancel(ctx)
	scope.OnClose(func() { f.discardStaged(leaveCtx) })
	return nil
}

func (f *AddItemForm) onPhotoChange(ctx context.Context, ev page.Event) {
	if ev.File == nil || len(ev.File.Data) == 0 {
		f.discardStaged(ctx)
		f.showPreview("")
		return
	}

	mime, err := photostore.DetectImage(ev.File.Data)
	if err != nil {
		f.showError(photoMessage(err))
		return
	}

	key, err := f.staging.Save(ctx, "staged", mime, bytes.NewReader(ev.File.Data))
	if err != nil {
		f.logger.Error("failed to stage photo", "error", err)
		f.showError("Impossible d'enregistrer la photo.")
		return
	}

	f.discardStaged(ctx)
	f.mu.Lock()
	f.staged = &stagedPhoto{key: key, name: ev.File.Name, mimeType: mime}
	f.mu.Unlock()

	f.doc.Region(f.regions.FormError).Clear()
	f.showPreview(key)
}

func (f *AddItemForm) onSubmit(ctx context.Context, ev page.Event) {
	title := strings.TrimSpace(ev.Form["title"])
	categoryID, err := strconv.Atoi(strings.TrimSpace(ev.Form["category"]))
	if title == "" || err != nil || categoryID <= 0 {
		f.showError("Veuillez renseigner un titre et une catégorie.")
		return
	}

	work, stagedKey, err := f.photoFor(ctx, ev)
	if err != nil {
		f.showError(photoMessage(err))
		return
	}
	work.Title = title
	work.CategoryID = categoryID

	if _, err := f.creator.CreateItem(ctx, work); err != nil {
		f.showError("L'envoi a échoué, veuillez réessayer.")
		return
	}

	if stagedKey != "" {
		f.mu.Lock()
		f.staged = nil
		f.mu.Unlock()
		if err := f.staging.Delete(ctx, stagedKey); err != nil {
			f.logger.Warn("failed to remove staged photo", "key", stagedKey, "error", err)
		}
	}

	if err := f.nav.Show(ctx, GalleryView); err != nil {
		f.logger.Warn("could not return to gallery", "error", err)
	}
}

var errNoPhoto = errors.New("no photo selected")

// photoFor prefers a file attached to the submit event over the staged one.
func (f *AddItemForm) photoFor(ctx context.Context, ev page.Event) (domain.NewWork, string, error) {
	if ev.File != nil && len(ev.File.Data) > 0 {
		mime, err := photostore.DetectImage(ev.File.Data)
		if err != nil {
			return domain.NewWork{}, "", err
		}
		return domain.NewWork{Image: ev.File.Data, MimeType: mime, Filename: ev.File.Name}, "", nil
	}

	f.mu.Lock()
	staged := f.staged
	f.mu.Unlock()
	if staged == nil {
		return domain.NewWork{}, "", errNoPhoto
	}

	rc, _, err := f.staging.Get(ctx, staged.key)
	if err != nil {
		return domain.NewWork{}, "", fmt.Errorf("failed to open staged photo: %w", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.NewWork{}, "", fmt.Errorf("failed to read staged photo: %w", err)
	}
	return domain.NewWork{Image: data, MimeType: staged.mimeType, Filename: staged.name}, staged.key, nil
}

func (f *AddItemForm) discardStaged(ctx context.Context) {
	f.mu.Lock()
	staged := f.staged
	f.staged = nil
	f.mu.Unlock()
	if staged == nil {
		return
	}
	if err := f.staging.Delete(ctx, staged.key); err != nil && !errors.Is(err, photostore.ErrNotFound) {
		f.logger.Warn("failed to discard staged photo", "key", staged.key, "error", err)
	}
}

func (f *AddItemForm) showPreview(key string) {
	if err := f.preview(f.doc.Region(f.regions.PhotoPreview), key); err != nil {
		f.logger.Error("failed to draw photo preview", "error", err)
	}
}

func (f *AddItemForm) showError(msg string) {
	f.doc.Region(f.regions.FormError).SetHTML(`<p class="error">` + html.EscapeString(msg) + `</p>`)
}

func photoMessage(err error) string {
	switch {
	case errors.Is(err, photostore.ErrTooLarge):
		return "La photo ne doit pas dépasser 4 Mo."
	case errors.Is(err, photostore.ErrUnsupported):
		return "Formats acceptés : jpg, png."
	default:
		return "Veuillez choisir une photo."
	}
}
