package filter

import (
	"strconv"
	"sync"

	"github.com/vbonduro/portfolio/internal/domain"
)

// Controls tracks which filter control is active. Exactly one control is
// active at any time; the sentinel is active until another is clicked.
type Controls struct {
	mu     sync.RWMutex
	set    *Set
	active int
}

func NewControls() *Controls {
	return &Controls{set: BuildFilterSet(nil), active: domain.AllCategoryID}
}

// Reset installs a new filter set. The active control survives if the new
// set still contains it, otherwise the sentinel becomes active.
func (c *Controls) Reset(set *Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = set
	if !set.Contains(c.active) {
		c.active = domain.AllCategoryID
	}
}

// Activate marks the control with the given value active and every other
// control inactive. Values that are not in the set leave the state as is.
// It reports the id that is active afterwards.
func (c *Controls) Activate(raw string) (int, bool) {
	id, ok := ParseID(raw)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok || !c.set.Contains(id) {
		return c.active, false
	}
	c.active = id
	return id, true
}

// ActivateAll makes the sentinel control active.
func (c *Controls) ActivateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = domain.AllCategoryID
}

func (c *Controls) Active() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Control is one rendered filter button.
type Control struct {
	Category domain.CategoryRef
	Value    string
	Active   bool
}

// List returns the controls in filter set order.
func (c *Controls) List() []Control {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cats := c.set.Categories()
	out := make([]Control, 0, len(cats))
	for _, cat := range cats {
		out = append(out, Control{
			Category: cat,
			Value:    RolePrefix + strconv.Itoa(cat.ID),
			Active:   cat.ID == c.active,
		})
	}
	return out
}
