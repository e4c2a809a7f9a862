package view

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
)

// Compile-time check: ResultRenderer implements panel.Renderer.
var _ panel.Renderer = (*ResultRenderer)(nil)

// ResultRenderer draws result batches off-screen and swaps them into a Container.
type ResultRenderer struct {
	tpl       *Templates
	container *Container
}

// NewResultRenderer creates a renderer with an empty container.
func NewResultRenderer(tpl *Templates) *ResultRenderer {
	return &ResultRenderer{tpl: tpl, container: &Container{}}
}

// Render builds the batch markup and swaps it in. On error the live batch is left untouched.
func (r *ResultRenderer) Render(b panel.Batch) error {
	var buf bytes.Buffer
	if err := r.tpl.Results(&buf, b); err != nil {
		return fmt.Errorf("render batch %d: %w", b.Seq, err)
	}
	r.container.Swap(&Rendered{
		HTML:  template.HTML(buf.String()), //nolint:gosec // produced by html/template
		Seq:   b.Seq,
		Cards: len(b.Records),
	})
	return nil
}

// HTML returns the live results markup.
func (r *ResultRenderer) HTML() template.HTML {
	return r.container.HTML()
}

// Container returns the live results region.
func (r *ResultRenderer) Container() *Container {
	return r.container
}
