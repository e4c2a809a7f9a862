package view

import (
	"html/template"
	"sync/atomic"
)

// Rendered is one fully built result batch.
type Rendered struct {
	HTML  template.HTML
	Seq   uint64
	Cards int
}

// Container is the live results region. Swap replaces the whole batch with a single
// pointer store, so readers see either the old batch or the new one, never a mix.
type Container struct {
	cur atomic.Pointer[Rendered]
}

// Swap makes r the live batch.
func (c *Container) Swap(r *Rendered) {
	c.cur.Store(r)
}

// Load returns the live batch, or an empty one before the first swap.
func (c *Container) Load() Rendered {
	if r := c.cur.Load(); r != nil {
		return *r
	}
	return Rendered{}
}

// HTML returns the markup of the live batch.
func (c *Container) HTML() template.HTML {
	return c.Load().HTML
}
