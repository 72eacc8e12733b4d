package selection

import (
	"sync"

	"github.com/google/uuid"
)

// Change describes one selection transition. A nil pointer means nothing was
// selected on that side.
type Change struct {
	Previous *int64 `json:"previous,omitempty"`
	Current  *int64 `json:"current,omitempty"`
}

// Changed reports whether the transition moved the selection.
func (c Change) Changed() bool {
	switch {
	case c.Previous == nil && c.Current == nil:
		return false
	case c.Previous == nil || c.Current == nil:
		return true
	default:
		return *c.Previous != *c.Current
	}
}

// Listener receives selection changes.
type Listener func(Change)

// Controller tracks at most one selected record id and fans selection
// changes out to listeners. It never checks the id against a view or store.
type Controller struct {
	mu        sync.Mutex
	selected  *int64
	listeners map[uuid.UUID]Listener
	order     []uuid.UUID
}

// NewController creates a controller with nothing selected.
func NewController() *Controller {
	return &Controller{listeners: make(map[uuid.UUID]Listener)}
}

// Select sets the selection unconditionally.
func (c *Controller) Select(id int64) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	change := Change{Previous: c.selected, Current: &id}
	c.selected = &id
	return change
}

// Clear unsets the selection.
func (c *Controller) Clear() Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	change := Change{Previous: c.selected}
	c.selected = nil
	return change
}

// Selected returns the selected id, if any.
func (c *Controller) Selected() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return 0, false
	}
	return *c.selected, true
}

// IsSelected reports whether id is the selected record.
func (c *Controller) IsSelected(id int64) bool {
	selected, ok := c.Selected()
	return ok && selected == id
}

// Subscribe registers fn for future changes and returns its handle.
func (c *Controller) Subscribe(fn Listener) uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.New()
	c.listeners[id] = fn
	c.order = append(c.order, id)
	return id
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (c *Controller) Unsubscribe(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listeners[id]; !ok {
		return
	}
	delete(c.listeners, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Dispatch delivers change to every listener in subscription order. The
// listener set is copied first, so listeners may call back into the
// controller.
func (c *Controller) Dispatch(change Change) {
	c.mu.Lock()
	targets := make([]Listener, 0, len(c.order))
	for _, id := range c.order {
		targets = append(targets, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range targets {
		fn(change)
	}
}
