package domain

import "errors"

var (
	// ErrSessionNotFound signals an unknown or evicted panel session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUpstream signals a failed call to the catalog API.
	ErrUpstream = errors.New("catalog upstream error")
)
