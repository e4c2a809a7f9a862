package facet

import "fmt"

// Action identifies one of the three bulk-action buttons of a control.
type Action string

const (
	// ActionSelectLE selects values up to the first existing selection, scanning from the start.
	ActionSelectLE Action = "le"
	// ActionSelectGE selects values down to the first existing selection, scanning from the end.
	ActionSelectGE Action = "ge"
	// ActionClear deselects every value.
	ActionClear Action = "clear"
)

// ParseAction validates a bulk action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionSelectLE, ActionSelectGE, ActionClear:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Glyph returns the button caption.
func (a Action) Glyph() string {
	switch a {
	case ActionSelectLE:
		return "≤"
	case ActionSelectGE:
		return "≥"
	case ActionClear:
		return "↻"
	default:
		return string(a)
	}
}

// AriaLabel returns the accessible description of the button.
func (a Action) AriaLabel() string {
	switch a {
	case ActionSelectLE:
		return "select all values less than or equal to selected"
	case ActionSelectGE:
		return "select all values larger than or equal to selected"
	case ActionClear:
		return "clear this filter"
	default:
		return string(a)
	}
}

// Button is a bulk-action button scoped to one control.
type Button struct {
	Action  Action
	Enabled bool
}

// Control is the multi-value selection control of one facet.
// The value list is fixed at construction; the selection is always a subset of it.
type Control struct {
	key         string
	label       string
	description string
	values      []string
	index       map[string]int
	selected    []bool

	selectLE Button
	clear    Button
	selectGE Button
}

// Build creates one control per facet, in schema order.
func Build(schema Schema, meta Metadata) []*Control {
	controls := make([]*Control, 0, schema.Len())
	for _, f := range schema.Facets() {
		controls = append(controls, NewControl(f, meta.Label(f.Key), meta.Description(f.Key)))
	}
	return controls
}

// NewControl creates a control for f with an empty selection.
// Range buttons need at least two values; clear needs a selection.
func NewControl(f Facet, label, description string) *Control {
	values := make([]string, len(f.Values))
	copy(values, f.Values)

	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i
	}

	if label == "" {
		label = f.Key
	}
	ranged := len(values) >= 2
	return &Control{
		key:         f.Key,
		label:       label,
		description: description,
		values:      values,
		index:       index,
		selected:    make([]bool, len(values)),
		selectLE:    Button{Action: ActionSelectLE, Enabled: ranged},
		clear:       Button{Action: ActionClear, Enabled: false},
		selectGE:    Button{Action: ActionSelectGE, Enabled: ranged},
	}
}

// Key returns the facet key.
func (c *Control) Key() string { return c.key }

// Label returns the display label.
func (c *Control) Label() string { return c.label }

// Description returns the facet description.
func (c *Control) Description() string { return c.description }

// Values returns a copy of the ordered value list.
func (c *Control) Values() []string {
	out := make([]string, len(c.values))
	copy(out, c.values)
	return out
}

// Selected returns the selected values in value-list order.
func (c *Control) Selected() []string {
	var out []string
	for i, sel := range c.selected {
		if sel {
			out = append(out, c.values[i])
		}
	}
	return out
}

// IsSelected reports whether v is selected.
func (c *Control) IsSelected(v string) bool {
	i, ok := c.index[v]
	return ok && c.selected[i]
}

// HasSelection reports whether any value is selected.
func (c *Control) HasSelection() bool {
	for _, sel := range c.selected {
		if sel {
			return true
		}
	}
	return false
}

// Buttons returns the bulk-action buttons in display order: ≤, clear, ≥.
func (c *Control) Buttons() []Button {
	return []Button{c.selectLE, c.clear, c.selectGE}
}

// Button returns the button for a.
func (c *Control) Button(a Action) (Button, error) {
	b := c.button(a)
	if b == nil {
		return Button{}, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return *b, nil
}

// Select replaces the selection with values, as a change of the multi-select does.
// Unknown values reject the whole change.
func (c *Control) Select(values []string) error {
	next := make([]bool, len(c.values))
	for _, v := range values {
		i, ok := c.index[v]
		if !ok {
			return fmt.Errorf("%w: %q in facet %q", ErrUnknownValue, v, c.key)
		}
		next[i] = true
	}
	c.selected = next
	c.clear.Enabled = c.HasSelection()
	return nil
}

func (c *Control) button(a Action) *Button {
	switch a {
	case ActionSelectLE:
		return &c.selectLE
	case ActionSelectGE:
		return &c.selectGE
	case ActionClear:
		return &c.clear
	default:
		return nil
	}
}
