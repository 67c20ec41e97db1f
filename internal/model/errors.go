package model

import "errors"

// Common errors used across the application
var (
	// ErrVersionConflict indicates the client's base version is behind the
	// store's current version. The caller should re-fetch and retry.
	ErrVersionConflict = errors.New("profile version conflict")

	// ErrInvalidBaseVersion indicates the client claimed a version ahead of
	// the store, which no well-behaved client can do
	ErrInvalidBaseVersion = errors.New("claimed base version is ahead of the stored version")

	// ErrPayloadTooLarge indicates the pushed payload exceeds the size bound
	ErrPayloadTooLarge = errors.New("payload exceeds the maximum allowed size")

	// ErrStoreUnavailable indicates a transient storage failure or timeout;
	// the request may be retried with backoff
	ErrStoreUnavailable = errors.New("profile store unavailable")
)
