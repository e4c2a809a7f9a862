// Package record holds the catalog records returned by a filtered search.
package record

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Record is one search hit: a module with its owning user and bill-of-materials counts.
// Field names follow the catalog's JSON.
type Record struct {
	ID          string    `json:"ID"`
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	UserID      string    `json:"UserID"`
	User        User      `json:"User"`
	Metadata    Metadata  `json:"Metadata"`
	UpdatedAt   Timestamp `json:"UpdatedAt"`
}

// User is the owner of a record.
type User struct {
	Handle string `json:"Handle"`
}

// Metadata is the free-form metadata object of a record.
type Metadata map[string]any

const (
	keyCountPart   = "count_part"
	keyCountUnique = "count_unique"
)

// CountPart returns the total part count as display text.
func (m Metadata) CountPart() string { return m.text(keyCountPart) }

// CountUnique returns the unique part count as display text.
func (m Metadata) CountUnique() string { return m.text(keyCountUnique) }

func (m Metadata) text(key string) string {
	switch v := m[key].(type) {
	case nil:
		return "?"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "?"
		}
		return string(b)
	}
}

// Timestamp is a last-updated time. Values that do not parse as RFC 3339 decode to the zero time
// instead of failing the whole response.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. The zero time encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

// Index returns the position of the record with id, or -1.
func Index(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
