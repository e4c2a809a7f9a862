package panel

import "errors"

var (
	// ErrSubmitDisabled signals a submission without pending changes.
	ErrSubmitDisabled = errors.New("submit disabled: no pending changes")
	// ErrBenchActionDisabled signals a repeated add-to-bench activation for the same record.
	ErrBenchActionDisabled = errors.New("add to bench already triggered")
	// ErrUnknownRecord signals a record id that is not part of the displayed results.
	ErrUnknownRecord = errors.New("record not in current results")
)
