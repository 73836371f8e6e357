package dialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
	"github.com/vbonduro/portfolio/internal/photostore"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type memStaging struct {
	mu    sync.Mutex
	files map[string][]byte
	mimes map[string]string
	n     int
}

func newMemStaging() *memStaging {
	return &memStaging{files: map[string][]byte{}, mimes: map[string]string{}}
}

func (m *memStaging) Save(_ context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	key := fmt.Sprintf("%s_%d.png", prefix, m.n)
	m.files[key] = data
	m.mimes[key] = mimeType
	return key, nil
}

func (m *memStaging) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.mimes[key], nil
}

func (m *memStaging) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return photostore.ErrNotFound
	}
	delete(m.files, key)
	return nil
}

func (m *memStaging) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type stubCreator struct {
	got []domain.NewWork
	err error
}

func (c *stubCreator) CreateItem(_ context.Context, w domain.NewWork) (domain.Item, error) {
	c.got = append(c.got, w)
	if c.err != nil {
		return domain.Item{}, c.err
	}
	return domain.Item{ID: len(c.got), Title: w.Title, CategoryID: w.CategoryID}, nil
}

type renderCounter struct{ n int }

func (r *renderCounter) Render(context.Context) error {
	r.n++
	return nil
}

type formFixture struct {
	*ctrlFixture
	form    *AddItemForm
	creator *stubCreator
	options *renderCounter
	staging *memStaging
}

func newFormFixture(t *testing.T, defaultView State) *formFixture {
	t.Helper()
	cf := newCtrlFixture(t, defaultView, nil)
	f := &formFixture{
		ctrlFixture: cf,
		creator:     &stubCreator{},
		options:     &renderCounter{},
		staging:     newMemStaging(),
	}
	preview := func(region page.Region, key string) error {
		region.SetHTML(key)
		return nil
	}
	f.form = NewAddItemForm(cf.doc, regions, f.options, f.creator, cf.ctrl, f.staging, preview, logging.Discard())
	cf.ctrl.Register(AddItemView, f.form)
	return f
}

func (f *formFixture) submit(form map[string]string, file *page.File) int {
	return f.doc.Fire(context.Background(), regions.AddForm, page.Event{Kind: page.Submit, Form: form, File: file})
}

func (f *formFixture) pick(file *page.File) {
	f.doc.Fire(context.Background(), regions.PhotoInput, page.Event{Kind: page.Change, File: file})
}

func (f *formFixture) formError() string {
	return f.doc.Region(regions.FormError).HTML()
}

func TestSubmitListenerFollowsView(t *testing.T) {
	f := newFormFixture(t, AddItemView)

	f.ctrl.Open(context.Background())
	require.Equal(t, AddItemView, f.ctrl.State())
	assert.Equal(t, 1, f.doc.ListenerCount(regions.AddForm, page.Submit))
	assert.Equal(t, 1, f.doc.ListenerCount(regions.PhotoInput, page.Change))

	f.click(page.Target{Roles: []string{RoleBack}})
	assert.Equal(t, GalleryView, f.ctrl.State())
	assert.Zero(t, f.doc.ListenerCount(regions.AddForm, page.Submit))
	assert.Zero(t, f.doc.ListenerCount(regions.PhotoInput, page.Change))
	assert.Zero(t, f.submit(map[string]string{"title": "x", "category": "1"}, nil))

	f.click(page.Target{Roles: []string{RoleForward}})
	assert.Equal(t, AddItemView, f.ctrl.State())
	assert.Equal(t, 1, f.doc.ListenerCount(regions.AddForm, page.Submit))
}

func TestRepeatedForwardKeepsOneSubmitListener(t *testing.T) {
	f := newFormFixture(t, GalleryView)
	f.ctrl.Open(context.Background())

	for i := 0; i < 3; i++ {
		f.click(page.Target{Roles: []string{RoleForward}})
	}

	assert.Equal(t, 1, f.doc.ListenerCount(regions.AddForm, page.Submit))
	assert.Equal(t, 3, f.options.n)
}

func TestCloseReleasesFormListeners(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	f.ctrl.Close()

	assert.Zero(t, f.doc.ListenerCount(regions.AddForm, page.Submit))
	assert.Zero(t, f.doc.ListenerCount(regions.PhotoInput, page.Change))
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		form map[string]string
		file *page.File
	}{
		{"missing title", map[string]string{"category": "1"}, &page.File{Data: pngBytes}},
		{"missing category", map[string]string{"title": "Cabane"}, &page.File{Data: pngBytes}},
		{"sentinel category", map[string]string{"title": "Cabane", "category": "-1"}, &page.File{Data: pngBytes}},
		{"missing photo", map[string]string{"title": "Cabane", "category": "1"}, nil},
		{"unsupported photo", map[string]string{"title": "Cabane", "category": "1"}, &page.File{Data: []byte("GIF89a......")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(t, AddItemView)
			f.ctrl.Open(context.Background())

			f.submit(tt.form, tt.file)

			assert.Empty(t, f.creator.got)
			assert.NotEmpty(t, f.formError())
			assert.Equal(t, AddItemView, f.ctrl.State())
		})
	}
}

func TestSubmitWithAttachedFile(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	f.submit(map[string]string{"title": " Cabane ", "category": "2"}, &page.File{Name: "c.png", Data: pngBytes})

	require.Len(t, f.creator.got, 1)
	got := f.creator.got[0]
	assert.Equal(t, "Cabane", got.Title)
	assert.Equal(t, 2, got.CategoryID)
	assert.Equal(t, "image/png", got.MimeType)
	assert.Equal(t, "c.png", got.Filename)
	assert.Equal(t, GalleryView, f.ctrl.State())
	assert.Zero(t, f.doc.ListenerCount(regions.AddForm, page.Submit))
}

func TestSubmitWithStagedPhoto(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	f.pick(&page.File{Name: "c.png", Data: pngBytes})
	require.Equal(t, 1, f.staging.count())
	assert.Equal(t, "staged_1.png", f.doc.Region(regions.PhotoPreview).HTML())

	f.submit(map[string]string{"title": "Cabane", "category": "1"}, nil)

	require.Len(t, f.creator.got, 1)
	assert.Equal(t, pngBytes, f.creator.got[0].Image)
	assert.Zero(t, f.staging.count())
	assert.Equal(t, GalleryView, f.ctrl.State())
}

func TestPickReplacesStagedPhoto(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	f.pick(&page.File{Data: pngBytes})
	f.pick(&page.File{Data: pngBytes})

	assert.Equal(t, 1, f.staging.count())
	assert.Equal(t, "staged_2.png", f.doc.Region(regions.PhotoPreview).HTML())
}

func TestPickRejectsUnsupportedPhoto(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	f.pick(&page.File{Data: []byte("plain text")})

	assert.Zero(t, f.staging.count())
	assert.Contains(t, f.formError(), "jpg, png")
}

func TestPickRejectsOversizedPhoto(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())

	big := append(append([]byte{}, pngBytes...), make([]byte, photostore.MaxPhotoSize)...)
	f.pick(&page.File{Data: big})

	assert.Zero(t, f.staging.count())
	assert.Contains(t, f.formError(), "4 Mo")
}

func TestSubmitRemoteFailureStaysOnForm(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.creator.err = fmt.Errorf("%w: boom", domain.ErrCreateFailed)
	f.ctrl.Open(context.Background())

	f.submit(map[string]string{"title": "Cabane", "category": "1"}, &page.File{Data: pngBytes})

	assert.Equal(t, AddItemView, f.ctrl.State())
	assert.Contains(t, f.formError(), "échoué")
	assert.Equal(t, 1, f.doc.ListenerCount(regions.AddForm, page.Submit))
}

func TestReenteringFormDiscardsStagedPhoto(t *testing.T) {
	f := newFormFixture(t, AddItemView)
	f.ctrl.Open(context.Background())
	f.pick(&page.File{Data: pngBytes})

	f.click(page.Target{Roles: []string{RoleBack}})
	f.click(page.Target{Roles: []string{RoleForward}})

	assert.Zero(t, f.staging.count())
	assert.Empty(t, f.doc.Region(regions.PhotoPreview).HTML())
}

func TestLeavingFormDiscardsStagedPhoto(t *testing.T) {
	tests := []struct {
		name  string
		leave func(f *formFixture)
	}{
		{"back to gallery", func(f *formFixture) { f.click(page.Target{Roles: []string{RoleBack}}) }},
		{"close button", func(f *formFixture) { f.click(page.Target{Key: regions.DialogClose}) }},
		{"close call", func(f *formFixture) { f.ctrl.Close() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFormFixture(t, AddItemView)
			f.ctrl.Open(context.Background())
			f.pick(&page.File{Data: pngBytes})
			require.Equal(t, 1, f.staging.count())

			tt.leave(f)

			assert.Zero(t, f.staging.count())
		})
	}
}

func TestGalleryInitRenders(t *testing.T) {
	rc := &renderCounter{}
	require.NoError(t, GalleryInit{Gallery: rc}.Enter(context.Background(), page.NewScope()))
	assert.Equal(t, 1, rc.n)
}

func TestPhotoMessage(t *testing.T) {
	assert.Contains(t, photoMessage(photostore.ErrTooLarge), "4 Mo")
	assert.Contains(t, photoMessage(photostore.ErrUnsupported), "jpg")
	assert.Contains(t, photoMessage(errors.New("x")), "choisir")
}
