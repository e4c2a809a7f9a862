package facet

import "fmt"

// Apply runs the bulk action behind button a.
//
// select-≤ walks the values from the first one and selects each unselected value,
// stopping at the first value that is already selected. select-≥ does the same from
// the last value backwards. Repeated presses therefore grow the selection up to the
// next existing boundary and become no-ops once the prefix (suffix) is selected.
// clear deselects everything and disables itself.
func (c *Control) Apply(a Action) error {
	b := c.button(a)
	if b == nil {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !b.Enabled {
		return fmt.Errorf("%w: %s on facet %q", ErrButtonDisabled, a, c.key)
	}

	switch a {
	case ActionSelectLE:
		for i := 0; i < len(c.values); i++ {
			if c.selected[i] {
				break
			}
			c.selected[i] = true
		}
	case ActionSelectGE:
		for i := len(c.values) - 1; i >= 0; i-- {
			if c.selected[i] {
				break
			}
			c.selected[i] = true
		}
	case ActionClear:
		for i := range c.selected {
			c.selected[i] = false
		}
	}

	c.clear.Enabled = c.HasSelection()
	return nil
}
