// Package page is the in-process model of the rendered page: keyed content
// regions plus the event listeners attached to them.
package page

import (
	"context"
	"sync"
)

// Event kinds.
const (
	Click  = "click"
	Submit = "submit"
	Change = "change"
)

// Target describes the element an event originated from.
type Target struct {
	// Key is the region key of the element, if it has one.
	Key string
	// Roles are the role markers carried by the element.
	Roles []string
	// Data holds the element's data attributes.
	Data map[string]string
}

// HasRole reports whether the target carries role.
func (t Target) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// File is an uploaded file attached to an event.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Event is delivered to listeners.
type Event struct {
	Kind   string
	Target Target
	Form   map[string]string
	File   *File
}

// Handler handles one event.
type Handler func(ctx context.Context, ev Event)

type listenerKey struct {
	region string
	kind   string
}

// Document is safe for concurrent use. Handlers run without the document
// lock held so they may mutate regions and listeners.
type Document struct {
	mu        sync.RWMutex
	regions   map[string]string
	listeners map[listenerKey]map[uint64]Handler
	order     map[listenerKey][]uint64
	nextID    uint64
}

func NewDocument() *Document {
	return &Document{
		regions:   make(map[string]string),
		listeners: make(map[listenerKey]map[uint64]Handler),
		order:     make(map[listenerKey][]uint64),
	}
}

// Region returns a handle on the region stored under key.
func (d *Document) Region(key string) Region {
	return Region{doc: d, key: key}
}

// On attaches h to events of kind on the region key. The returned
// subscription detaches it.
func (d *Document) On(key, kind string, h Handler) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	lk := listenerKey{region: key, kind: kind}
	if d.listeners[lk] == nil {
		d.listeners[lk] = make(map[uint64]Handler)
	}
	d.listeners[lk][id] = h
	d.order[lk] = append(d.order[lk], id)
	return &Subscription{doc: d, key: lk, id: id}
}

// ListenerCount returns how many listeners of kind are attached to key.
func (d *Document) ListenerCount(key, kind string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[listenerKey{region: key, kind: kind}])
}

// Fire delivers ev to every listener of ev.Kind on key in attachment order
// and returns how many ran.
func (d *Document) Fire(ctx context.Context, key string, ev Event) int {
	d.mu.RLock()
	lk := listenerKey{region: key, kind: ev.Kind}
	var handlers []Handler
	for _, id := range d.order[lk] {
		if h, ok := d.listeners[lk][id]; ok {
			handlers = append(handlers, h)
		}
	}
	d.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
	return len(handlers)
}

func (d *Document) detach(lk listenerKey, id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	hs, ok := d.listeners[lk]
	if !ok {
		return false
	}
	if _, ok := hs[id]; !ok {
		return false
	}
	delete(hs, id)
	ids := d.order[lk]
	for i, v := range ids {
		if v == id {
			d.order[lk] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(hs) == 0 {
		delete(d.listeners, lk)
		delete(d.order, lk)
	}
	return true
}

// Region is a keyed slot of markup.
type Region struct {
	doc *Document
	key string
}

func (r Region) Key() string { return r.key }

// Clear empties the region.
func (r Region) Clear() { r.SetHTML("") }

// SetHTML replaces the region's markup.
func (r Region) SetHTML(html string) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()
	r.doc.regions[r.key] = html
}

func (r Region) HTML() string {
	r.doc.mu.RLock()
	defer r.doc.mu.RUnlock()
	return r.doc.regions[r.key]
}
