// Package selection tracks whether the filter panel has changes that were not submitted yet.
package selection

// SubmitButtonID is the stable DOM id of the submit control.
const SubmitButtonID = "filter_apply_btn"

// Tracker is the clean/dirty state machine gating query submission.
// The zero value is clean.
type Tracker struct {
	dirty bool
}

// NewTracker returns a clean tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// MarkDirty records a pending change. It reports whether the call moved the tracker from clean to dirty.
func (t *Tracker) MarkDirty() bool {
	if t.dirty {
		return false
	}
	t.dirty = true
	return true
}

// MarkClean records that pending changes were submitted or discarded.
func (t *Tracker) MarkClean() {
	t.dirty = false
}

// IsDirty reports whether a change happened since the last submission or reset.
func (t *Tracker) IsDirty() bool {
	return t.dirty
}

// SubmitControl describes the submit control as rendered.
type SubmitControl struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Submit returns the submit control state: enabled iff dirty.
func (t *Tracker) Submit() SubmitControl {
	return SubmitControl{ID: SubmitButtonID, Enabled: t.dirty}
}
