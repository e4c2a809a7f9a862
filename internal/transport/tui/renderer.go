package tui

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	"github.com/kailas-cloud/facetdex/internal/view"
)

var _ panel.Renderer = (*TextRenderer)(nil)

// Card is one result rendered as terminal text.
type Card struct {
	ID    string
	Title string
	Body  string
	Meta  string
	Badge string
	Bench panel.BenchState
}

// Frame is a fully rendered batch.
type Frame struct {
	Seq        uint64
	Failed     bool
	Cards      []Card
	BenchCount int64
}

// TextRenderer renders result batches into frames and swaps them in whole,
// so View never sees half of a batch.
type TextRenderer struct {
	live atomic.Pointer[Frame]
}

// NewTextRenderer creates a renderer holding an empty frame.
func NewTextRenderer() *TextRenderer {
	r := &TextRenderer{}
	r.live.Store(&Frame{})
	return r
}

// Render builds the frame of b and makes it live.
func (r *TextRenderer) Render(b panel.Batch) error {
	f := &Frame{
		Seq:        b.Seq,
		Failed:     b.Failed,
		Cards:      make([]Card, 0, len(b.Records)),
		BenchCount: b.BenchCount,
	}
	for _, rec := range b.Records {
		title := rec.Name
		if rec.User.Handle != "" {
			title = fmt.Sprintf("%s by %s", rec.Name, rec.User.Handle)
		}
		state := b.BenchState(rec.ID)
		f.Cards = append(f.Cards, Card{
			ID:    rec.ID,
			Title: title,
			Body:  strings.TrimSpace(rec.Description),
			Meta: fmt.Sprintf("BOM: %s parts (%s unique) · last updated %s",
				rec.Metadata.CountPart(), rec.Metadata.CountUnique(),
				view.RelativeTime(rec.UpdatedAt.Time, b.Now)),
			Badge: state.Badge(),
			Bench: state,
		})
	}
	r.live.Store(f)
	return nil
}

// Frame returns the live frame.
func (r *TextRenderer) Frame() Frame {
	return *r.live.Load()
}
