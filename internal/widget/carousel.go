package widget

import "sync"

// Testimonial is one client quote shown in the carousel.
type Testimonial struct {
	Name    string
	Role    string
	Content string
	Rating  int
}

// Carousel rotates through testimonials one at a time and wraps at both ends.
type Carousel struct {
	mu    sync.Mutex
	items []Testimonial
	index int
}

// NewCarousel returns a carousel positioned on the first item.
func NewCarousel(items []Testimonial) *Carousel {
	return &Carousel{items: append([]Testimonial(nil), items...)}
}

// Len returns the number of testimonials.
func (c *Carousel) Len() int {
	return len(c.items)
}

// Index returns the position of the current testimonial.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the testimonial on display. ok is false for an empty
// carousel.
func (c *Carousel) Current() (t Testimonial, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return Testimonial{}, false
	}
	return c.items[c.index], true
}

// Next advances one item, wrapping from the last back to the first.
func (c *Carousel) Next() {
	c.step(1)
}

// Prev goes back one item, wrapping from the first to the last.
func (c *Carousel) Prev() {
	c.step(-1)
}

// Select jumps to item i. Out of range indexes are ignored.
func (c *Carousel) Select(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.items) {
		return
	}
	c.index = i
}

func (c *Carousel) step(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	if n == 0 {
		return
	}
	c.index = ((c.index+delta)%n + n) % n
}
