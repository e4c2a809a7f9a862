package panel

import (
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
	"github.com/kailas-cloud/facetdex/internal/domain/selection"
)

// State is a read-only snapshot of a panel.
type State struct {
	Controls   []ControlView           `json:"controls"`
	Submit     selection.SubmitControl `json:"submit"`
	Dirty      bool                    `json:"dirty"`
	Seq        uint64                  `json:"seq"`
	Results    int                     `json:"results"`
	Failed     bool                    `json:"failed"`
	BenchCount int64                   `json:"bench_count"`
}

// ControlView is a snapshot of one facet control.
type ControlView struct {
	Index       int          `json:"index"`
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Values      []ValueView  `json:"values"`
	Buttons     []ButtonView `json:"buttons"`
}

// ValueView is one option of a facet control.
type ValueView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// ButtonView is one bulk-action button of a facet control.
type ButtonView struct {
	Action    facet.Action `json:"action"`
	Glyph     string       `json:"glyph"`
	AriaLabel string       `json:"aria_label"`
	Enabled   bool         `json:"enabled"`
}

// Selected returns the selected values in value order.
func (v ControlView) Selected() []string {
	var out []string
	for _, val := range v.Values {
		if val.Selected {
			out = append(out, val.Value)
		}
	}
	return out
}

func viewOf(i int, c *facet.Control) ControlView {
	values := c.Values()
	vv := make([]ValueView, len(values))
	for j, v := range values {
		vv[j] = ValueView{Value: v, Selected: c.IsSelected(v)}
	}

	buttons := c.Buttons()
	bv := make([]ButtonView, len(buttons))
	for j, b := range buttons {
		bv[j] = ButtonView{
			Action:    b.Action,
			Glyph:     b.Action.Glyph(),
			AriaLabel: b.Action.AriaLabel(),
			Enabled:   b.Enabled,
		}
	}

	return ControlView{
		Index:       i,
		Key:         c.Key(),
		Label:       c.Label(),
		Description: c.Description(),
		Values:      vv,
		Buttons:     bv,
	}
}
