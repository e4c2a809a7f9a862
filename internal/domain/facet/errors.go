package facet

import "errors"

var (
	// ErrInvalidSchema signals a malformed facet schema payload.
	ErrInvalidSchema = errors.New("invalid facet schema")
	// ErrUnknownFacet signals a facet key that no control owns.
	ErrUnknownFacet = errors.New("unknown facet")
	// ErrUnknownValue signals a value outside the facet's domain.
	ErrUnknownValue = errors.New("unknown facet value")
	// ErrUnknownAction signals an unsupported bulk action.
	ErrUnknownAction = errors.New("unknown bulk action")
	// ErrButtonDisabled signals a press on a disabled bulk-action button.
	ErrButtonDisabled = errors.New("button disabled")
)
