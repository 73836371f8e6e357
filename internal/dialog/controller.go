// Package dialog drives the admin dialog: which sub-view is shown, the
// listeners each sub-view owns, and routing of clicks inside the dialog.
package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
)

// State is the active dialog sub-view.
type State int

const (
	Closed State = iota
	GalleryView
	AddItemView
)

func (s State) String() string {
	switch s {
	case GalleryView:
		return "galleryView"
	case AddItemView:
		return "addItemView"
	default:
		return "closed"
	}
}

// TemplateName is the name of the markup template injected for s.
func (s State) TemplateName() string { return s.String() }

// ParseState maps a template name to its state. Unknown names map to Closed.
func ParseState(name string) (State, bool) {
	switch name {
	case "galleryView":
		return GalleryView, true
	case "addItemView":
		return AddItemView, true
	default:
		return Closed, false
	}
}

// Role markers carried by clickable elements inside the dialog.
const (
	RoleClose   = "close"
	RoleDelete  = "delete"
	RoleForward = "add-photo"
	RoleBack    = "back"
)

// View initializes a sub-view after its markup was injected. Listeners it
// attaches must be added to scope; they are released when the view is left.
type View interface {
	Enter(ctx context.Context, scope *page.Scope) error
}

// Deleter removes an item.
type Deleter interface {
	DeleteItem(ctx context.Context, id int) error
}

// Controller is constructed once per page. Transitions are serialized.
type Controller struct {
	mu          sync.Mutex
	doc         *page.Document
	regions     config.Regions
	templates   *TemplateSet
	deleter     Deleter
	views       map[State]View
	defaultView State

	open    bool
	state   State
	scope   *page.Scope
	rootSub *page.Subscription

	logger *slog.Logger
}

// NewController returns a closed dialog. defaultView is shown on Open;
// Closed means open with no content.
func NewController(doc *page.Document, regions config.Regions, templates *TemplateSet, deleter Deleter, defaultView State, logger *slog.Logger) *Controller {
	return &Controller{
		doc:         doc,
		regions:     regions,
		templates:   templates,
		deleter:     deleter,
		views:       make(map[State]View),
		defaultView: defaultView,
		logger:      logging.Component(logger, "dialog"),
	}
}

// Register installs the initializer of a sub-view.
func (c *Controller) Register(state State, v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[state] = v
}

// State returns the last sub-view entered, or Closed.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Open shows the dialog with its default view and starts routing clicks.
// Opening an open dialog does nothing.
func (c *Controller) Open(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return
	}
	c.open = true
	c.rootSub = c.doc.On(c.regions.DialogRoot, page.Click, c.HandleClick)
	c.logger.Info("dialog opened", "default_view", c.defaultView.String())

	if c.defaultView != Closed {
		if err := c.enter(ctx, c.defaultView); err != nil {
			c.logger.Warn("default view not shown", "view", c.defaultView.String(), "error", err)
		}
	}
}

// Close leaves the current view and hides the dialog. Closing a closed
// dialog does nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.leave()
	c.doc.Region(c.regions.DialogContent).Clear()
	c.rootSub.Cancel()
	c.rootSub = nil
	c.open = false
	c.state = Closed
	c.logger.Info("dialog closed")
}

// Show switches to the given view. It fails without effect if the dialog is
// closed or the view's template never loaded.
func (c *Controller) Show(ctx context.Context, s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return fmt.Errorf("dialog is closed")
	}
	return c.enter(ctx, s)
}

// enter requires c.mu. The outgoing view's listeners are released before the
// content region is replaced.
func (c *Controller) enter(ctx context.Context, s State) error {
	markup, ok := c.templates.Get(s.TemplateName())
	if !ok {
		err := fmt.Errorf("%w: %s", domain.ErrTemplateUnavailable, s.TemplateName())
		c.logger.Warn("view not activated", "view", s.String(), "error", err)
		return err
	}

	c.leave()

	content := c.doc.Region(c.regions.DialogContent)
	content.Clear()
	content.SetHTML(markup)

	scope := page.NewScope()
	c.scope = scope
	c.state = s

	if v, ok := c.views[s]; ok {
		if err := v.Enter(ctx, scope); err != nil {
			c.logger.Error("view initializer failed", "view", s.String(), "error", err)
			return fmt.Errorf("failed to enter %s: %w", s, err)
		}
	}
	c.logger.Debug("view entered", "view", s.String(), "listeners", scope.Len())
	return nil
}

// leave requires c.mu.
func (c *Controller) leave() {
	if c.scope != nil {
		c.scope.Close()
		c.scope = nil
	}
}

// HandleClick routes a click on the dialog by its target's role markers.
// Unmatched targets are ignored.
func (c *Controller) HandleClick(ctx context.Context, ev page.Event) {
	tg := ev.Target
	switch {
	case tg.Key == c.regions.DialogRoot, tg.Key == c.regions.DialogClose, tg.HasRole(RoleClose):
		c.Close()
	case tg.HasRole(RoleDelete):
		id, err := strconv.Atoi(tg.Data["id"])
		if err != nil {
			c.logger.Warn("delete affordance without item id", "id", tg.Data["id"])
			return
		}
		// The pipeline logs its own failures.
		_ = c.deleter.DeleteItem(ctx, id)
	case tg.HasRole(RoleForward):
		if err := c.Show(ctx, AddItemView); err != nil {
			c.logger.Debug("forward ignored", "error", err)
		}
	case tg.HasRole(RoleBack):
		if err := c.Show(ctx, GalleryView); err != nil {
			c.logger.Debug("back ignored", "error", err)
		}
	}
}
