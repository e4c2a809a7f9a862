package facetdex

import (
	"fmt"

	"github.com/kailas-cloud/facetdex/internal/domain"
	"github.com/kailas-cloud/facetdex/internal/domain/facet"
)

// Sentinel errors. Use errors.Is() to check.
var (
	// ErrUpstream matches every failed catalog call.
	ErrUpstream = domain.ErrUpstream
	// ErrUnexpectedStatus matches catalog responses with a non-2xx status.
	ErrUnexpectedStatus = fmt.Errorf("%w: unexpected status", domain.ErrUpstream)
	// ErrInvalidSchema matches an undecodable search-fields payload.
	ErrInvalidSchema = facet.ErrInvalidSchema
)

// StatusError reports a catalog response with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("facetdex: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("facetdex: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Class returns the status class, e.g. "4xx".
func (e *StatusError) Class() string {
	return fmt.Sprintf("%dxx", e.StatusCode/100)
}
