package pagination

import (
	"fmt"
	"slices"
)

// DefaultPageSize is the page size of a new window.
const DefaultPageSize = 10

var pageSizes = []int{10, 25, 50, 100}

// PageSizes lists the allowed page sizes in ascending order.
func PageSizes() []int {
	return slices.Clone(pageSizes)
}

// ValidPageSize reports whether n is an allowed page size.
func ValidPageSize(n int) bool {
	return slices.Contains(pageSizes, n)
}

// State is a page index and size.
type State struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// Window holds the page state for a view. It does not watch the view; the
// owner resets it when the view changes identity.
type Window struct {
	state State
}

// NewWindow creates a window on page 0. An invalid size falls back to
// DefaultPageSize.
func NewWindow(size int) *Window {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	return &Window{state: State{Size: size}}
}

// State returns the current page state.
func (w *Window) State() State {
	return w.state
}

// SetPageSize changes the page size and returns to page 0.
func (w *Window) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	w.state = State{Size: n}
	return nil
}

// SetPage moves to page i. Pages past the end of the view are allowed and
// slice to nothing.
func (w *Window) SetPage(i int) error {
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, i)
	}
	w.state.Index = i
	return nil
}

// Reset returns to page 0.
func (w *Window) Reset() {
	w.state.Index = 0
}

// PageCount is the number of pages needed for total items.
func (w *Window) PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + w.state.Size - 1) / w.state.Size
}

// PageOf returns the page index and row within that page for a position in
// the view.
func (w *Window) PageOf(position int) (page, row int) {
	return position / w.state.Size, position % w.state.Size
}

// Slice returns the current page of view, clipped to its length. The result
// shares view's backing array.
func Slice[T any](w *Window, view []T) []T {
	// Compare in pages so a huge index cannot overflow the offset.
	if w.state.Index >= w.PageCount(len(view)) {
		return view[:0:0]
	}
	start := w.state.Index * w.state.Size
	end := min(start+w.state.Size, len(view))
	return view[start:end:end]
}
