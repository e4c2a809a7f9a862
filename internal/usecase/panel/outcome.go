package panel

import (
	"time"

	"github.com/kailas-cloud/facetdex/internal/domain/filter"
	"github.com/kailas-cloud/facetdex/internal/domain/record"
)

// Outcome is the result of one submission.
type Outcome struct {
	Seq     uint64          `json:"seq"`
	Query   filter.Query    `json:"query"`
	Records []record.Record `json:"records"`
	// Failed is set when the catalog could not be reached or answered with an error status.
	Failed bool `json:"failed"`
	// Stale is set when a newer submission started before this one completed; nothing was rendered.
	Stale bool      `json:"stale"`
	At    time.Time `json:"at"`
}

// BenchState is the state of the add-to-bench control of one result card.
type BenchState string

// Bench control states.
const (
	BenchIdle    BenchState = ""
	BenchPending BenchState = "pending"
	BenchAdded   BenchState = "added"
	BenchFailed  BenchState = "failed"
)

// Disabled reports whether the control can no longer be activated.
func (s BenchState) Disabled() bool { return s != BenchIdle }

// Badge returns the indicator appended to the card, if any.
func (s BenchState) Badge() string {
	switch s {
	case BenchAdded:
		return "Added!"
	case BenchFailed:
		return "Error"
	default:
		return ""
	}
}

// Batch is everything a Renderer needs to draw the results region.
type Batch struct {
	Outcome
	Bench      map[string]BenchState
	BenchCount int64
	Now        time.Time
}

// BenchState returns the add-to-bench state of record id.
func (b Batch) BenchState(id string) BenchState {
	return b.Bench[id]
}
