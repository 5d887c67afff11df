// Package domain holds the sentinel errors shared across layers.
package domain

import "errors"

var (
	// ErrNotFound signals a missing resource (body, series, consignment or record).
	ErrNotFound = errors.New("not found")
	// ErrInvalidID signals a malformed identifier in the request path.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrSearchTimeout signals that the search cluster did not answer in time.
	ErrSearchTimeout = errors.New("search timed out")
	// ErrSearchUnavailable signals a search cluster failure other than a timeout.
	ErrSearchUnavailable = errors.New("search unavailable")
)
