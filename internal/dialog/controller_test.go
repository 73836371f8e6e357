package dialog

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
)

var regions = config.DefaultRegions()

type countingView struct {
	entered int
	err     error
}

func (v *countingView) Enter(context.Context, *page.Scope) error {
	v.entered++
	return v.err
}

type recordingDeleter struct {
	ids []int
	err error
}

func (d *recordingDeleter) DeleteItem(_ context.Context, id int) error {
	d.ids = append(d.ids, id)
	return d.err
}

type ctrlFixture struct {
	ctrl    *Controller
	doc     *page.Document
	gallery *countingView
	deleter *recordingDeleter
}

func newCtrlFixture(t *testing.T, defaultView State, files fstest.MapFS) *ctrlFixture {
	t.Helper()
	if files == nil {
		files = fstest.MapFS{
			"galleryView.html": {Data: []byte("<h3>Galerie photo</h3>")},
			"addItemView.html": {Data: []byte("<h3>Ajout photo</h3>")},
		}
	}
	ts := NewTemplateSet(FSFetcher{FS: files}, logging.Discard())
	ts.Preload(context.Background(), "galleryView", "addItemView")

	doc := page.NewDocument()
	f := &ctrlFixture{doc: doc, gallery: &countingView{}, deleter: &recordingDeleter{}}
	f.ctrl = NewController(doc, regions, ts, f.deleter, defaultView, logging.Discard())
	f.ctrl.Register(GalleryView, f.gallery)
	return f
}

func (f *ctrlFixture) click(tg page.Target) {
	f.doc.Fire(context.Background(), regions.DialogRoot, page.Event{Kind: page.Click, Target: tg})
}

func (f *ctrlFixture) content() string {
	return f.doc.Region(regions.DialogContent).HTML()
}

func TestStateNames(t *testing.T) {
	for _, s := range []State{GalleryView, AddItemView} {
		got, ok := ParseState(s.TemplateName())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	got, ok := ParseState("nope")
	assert.False(t, ok)
	assert.Equal(t, Closed, got)
	assert.Equal(t, "closed", Closed.String())
}

func TestOpenShowsDefaultView(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)

	f.ctrl.Open(context.Background())

	assert.True(t, f.ctrl.IsOpen())
	assert.Equal(t, GalleryView, f.ctrl.State())
	assert.Equal(t, "<h3>Galerie photo</h3>", f.content())
	assert.Equal(t, 1, f.gallery.entered)
	assert.Equal(t, 1, f.doc.ListenerCount(regions.DialogRoot, page.Click))
}

func TestOpenTwiceAttachesOneClickListener(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)

	f.ctrl.Open(context.Background())
	f.ctrl.Open(context.Background())

	assert.Equal(t, 1, f.doc.ListenerCount(regions.DialogRoot, page.Click))
	assert.Equal(t, 1, f.gallery.entered)
}

func TestOpenWithoutDefaultView(t *testing.T) {
	f := newCtrlFixture(t, Closed, nil)

	f.ctrl.Open(context.Background())

	assert.True(t, f.ctrl.IsOpen())
	assert.Equal(t, Closed, f.ctrl.State())
	assert.Empty(t, f.content())
}

func TestOpenWithUnavailableDefaultTemplate(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, fstest.MapFS{
		"addItemView.html": {Data: []byte("<form></form>")},
	})

	f.ctrl.Open(context.Background())

	assert.True(t, f.ctrl.IsOpen())
	assert.Empty(t, f.content())
	assert.Zero(t, f.gallery.entered)

	err := f.ctrl.Show(context.Background(), GalleryView)
	assert.ErrorIs(t, err, domain.ErrTemplateUnavailable)
}

func TestCloseIsIdempotent(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)
	f.ctrl.Open(context.Background())

	f.ctrl.Close()
	f.ctrl.Close()

	assert.False(t, f.ctrl.IsOpen())
	assert.Equal(t, Closed, f.ctrl.State())
	assert.Empty(t, f.content())
	assert.Zero(t, f.doc.ListenerCount(regions.DialogRoot, page.Click))
}

func TestCloseNeverOpened(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)

	f.ctrl.Close()

	assert.Equal(t, Closed, f.ctrl.State())
}

func TestShowWhileClosedFails(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)

	assert.Error(t, f.ctrl.Show(context.Background(), AddItemView))
	assert.Empty(t, f.content())
}

func TestClickDispatch(t *testing.T) {
	tests := []struct {
		name      string
		target    page.Target
		wantState State
		wantOpen  bool
	}{
		{"backdrop closes", page.Target{Key: regions.DialogRoot}, Closed, false},
		{"close affordance", page.Target{Key: regions.DialogClose}, Closed, false},
		{"close role", page.Target{Roles: []string{RoleClose}}, Closed, false},
		{"forward", page.Target{Roles: []string{RoleForward}}, AddItemView, true},
		{"back stays on gallery", page.Target{Roles: []string{RoleBack}}, GalleryView, true},
		{"unmatched is ignored", page.Target{Roles: []string{"decoration"}}, GalleryView, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCtrlFixture(t, GalleryView, nil)
			f.ctrl.Open(context.Background())

			f.click(tt.target)

			assert.Equal(t, tt.wantState, f.ctrl.State())
			assert.Equal(t, tt.wantOpen, f.ctrl.IsOpen())
		})
	}
}

func TestClickDeleteRoutesItemID(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)
	f.ctrl.Open(context.Background())

	f.click(page.Target{Roles: []string{RoleDelete}, Data: map[string]string{"id": "7"}})
	f.click(page.Target{Roles: []string{RoleDelete}, Data: map[string]string{"id": "seven"}})

	assert.Equal(t, []int{7}, f.deleter.ids)
	assert.Equal(t, GalleryView, f.ctrl.State())
}

func TestClickDeleteFailureKeepsDialog(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)
	f.deleter.err = domain.ErrDeleteFailed
	f.ctrl.Open(context.Background())

	f.click(page.Target{Roles: []string{RoleDelete}, Data: map[string]string{"id": "7"}})

	assert.True(t, f.ctrl.IsOpen())
	assert.Equal(t, GalleryView, f.ctrl.State())
}

func TestClicksIgnoredAfterClose(t *testing.T) {
	f := newCtrlFixture(t, GalleryView, nil)
	f.ctrl.Open(context.Background())
	f.ctrl.Close()

	f.click(page.Target{Roles: []string{RoleForward}})

	assert.Equal(t, Closed, f.ctrl.State())
}

func TestViewInitializerErrorIsReported(t *testing.T) {
	f := newCtrlFixture(t, Closed, nil)
	f.gallery.err = errors.New("boom")
	f.ctrl.Open(context.Background())

	err := f.ctrl.Show(context.Background(), GalleryView)

	assert.Error(t, err)
}
