package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrQueueEmpty      = errors.New("job queue is empty")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("sender is not the configured operator")
	ErrNoDestination   = errors.New("delivery destination is not configured")
	ErrUnsupportedKind = errors.New("unsupported media kind")
	ErrLeaseNotHeld    = errors.New("job lease is not held")
)
