package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrInvalidPayload      = errors.New("invalid health payload")
	ErrUnauthorized        = errors.New("health update not authorized")
	ErrNoFilterRegistered  = errors.New("health updates are disabled: no authorization filter registered")
	ErrUpdatesNotSupported = errors.New("health service does not accept updates")
	ErrRateLimited         = errors.New("too many health updates, try again later")
	ErrNotFound            = errors.New("not found")
	ErrQueueFull           = errors.New("queue is at capacity, try again later")
)
