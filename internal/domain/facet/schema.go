package facet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Facet is a filterable attribute with its ordered domain of values.
type Facet struct {
	Key    string
	Values []string
}

// Schema is the ordered set of facets offered by the catalog.
// Key order and value order are kept exactly as received; nothing is sorted.
type Schema struct {
	facets []Facet
}

// NewSchema creates a Schema from facets in the given order.
// A repeated key keeps its first position and takes the last value list.
// Repeated values inside one facet are dropped after their first occurrence.
func NewSchema(facets ...Facet) Schema {
	pos := make(map[string]int, len(facets))
	out := make([]Facet, 0, len(facets))
	for _, f := range facets {
		f.Values = dedupe(f.Values)
		if i, ok := pos[f.Key]; ok {
			out[i] = f
			continue
		}
		pos[f.Key] = len(out)
		out = append(out, f)
	}
	return Schema{facets: out}
}

// Facets returns the facets in schema order.
func (s Schema) Facets() []Facet { return s.facets }

// Len returns the number of facets.
func (s Schema) Len() int { return len(s.facets) }

// IsEmpty reports whether the schema has no facets.
func (s Schema) IsEmpty() bool { return len(s.facets) == 0 }

// UnmarshalJSON decodes a JSON object of key -> array of values, keeping key order.
// JSON null decodes to an empty schema. Non-string values keep their JSON text
// (3.3 becomes "3.3"); null values are skipped.
func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if tok == nil {
		*s = Schema{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrInvalidSchema, tok)
	}

	var facets []Facet
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected key, got %v", ErrInvalidSchema, tok)
		}

		var raw []json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: facet %q: %w", ErrInvalidSchema, key, err)
		}
		values := make([]string, 0, len(raw))
		for _, r := range raw {
			if v, ok := valueText(r); ok {
				values = append(values, v)
			}
		}
		facets = append(facets, Facet{Key: key, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	*s = NewSchema(facets...)
	return nil
}

// MarshalJSON encodes the schema as an ordered JSON object.
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.facets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal facet key: %w", err)
		}
		values := f.Values
		if values == nil {
			values = []string{}
		}
		vals, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("marshal facet %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func valueText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return strings.TrimSpace(string(trimmed)), true
}

func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
