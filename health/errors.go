package health

import "errors"

var (
	// ErrCheckFailed is attached to unhealthy results without a more
	// specific cause.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is attached to checks that did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned for an unregistered check name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
