package domain

import "errors"

// Sentinel errors for discovery operations
var (
	// ErrSourceUnavailable indicates a platform or metadata source is absent on this host
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates a remote source refused the request; treated as a miss
	ErrRateLimited = errors.New("rate limited")

	// ErrSelectionNotFound indicates no Selection exists for a key
	ErrSelectionNotFound = errors.New("selection not found")

	// ErrAddOnNotFound indicates an add-on is not part of its owner's known add-ons
	ErrAddOnNotFound = errors.New("add-on not found")
)
