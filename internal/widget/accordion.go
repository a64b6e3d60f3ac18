package widget

import "sync"

// Accordion tracks which of n items is expanded. At most one is open.
type Accordion struct {
	mu   sync.Mutex
	n    int
	open int // -1 when every item is closed
}

// NewAccordion returns an accordion over n items with item open expanded.
// Pass -1 to start with everything closed.
func NewAccordion(n, open int) *Accordion {
	if n < 0 {
		n = 0
	}
	if open < 0 || open >= n {
		open = -1
	}
	return &Accordion{n: n, open: open}
}

// Len returns the number of items.
func (a *Accordion) Len() int { return a.n }

// Open returns the expanded item, if any.
func (a *Accordion) Open() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open, a.open >= 0
}

// IsOpen reports whether item i is expanded.
func (a *Accordion) IsOpen(i int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open >= 0 && a.open == i
}

// Toggle closes item i if it is open and opens it otherwise, closing
// whichever item was open before. Out of range indexes are ignored.
func (a *Accordion) Toggle(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= a.n {
		return
	}
	if a.open == i {
		a.open = -1
		return
	}
	a.open = i
}
