// Package filter translates facet selections into the structured query sent to the catalog.
package filter

import (
	"fmt"
	"strings"
)

// OpEqual is the only operator facet selections produce: the field must equal one of the values.
const OpEqual = "="

// Op is a single filter clause.
type Op struct {
	Field  string   `json:"field"`
	Op     string   `json:"op"`
	Values []string `json:"values"`
}

// Query is the ordered list of clauses of one submission. Clauses are ANDed by the catalog.
type Query []Op

// Source is anything that exposes a facet key and its current selection.
type Source interface {
	Key() string
	Selected() []string
}

// Build emits one equality clause per source with a non-empty selection, in source order.
// The result is never nil so that it encodes as an empty JSON array.
func Build[S Source](sources []S) Query {
	q := make(Query, 0, len(sources))
	for _, s := range sources {
		selected := s.Selected()
		if len(selected) == 0 {
			continue
		}
		values := make([]string, len(selected))
		copy(values, selected)
		q = append(q, Op{Field: s.Key(), Op: OpEqual, Values: values})
	}
	return q
}

// IsEmpty reports whether the query has no clauses.
func (q Query) IsEmpty() bool { return len(q) == 0 }

// Fields returns the field names in clause order.
func (q Query) Fields() []string {
	out := make([]string, len(q))
	for i, op := range q {
		out[i] = op.Field
	}
	return out
}

// String renders the query compactly for logs.
func (q Query) String() string {
	parts := make([]string, len(q))
	for i, op := range q {
		parts[i] = fmt.Sprintf("%s %s [%s]", op.Field, op.Op, strings.Join(op.Values, ", "))
	}
	return strings.Join(parts, " AND ")
}
