package swapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for upstream access.
var (
	// ErrNotFound is returned when the upstream answers 404.
	ErrNotFound = errors.New("swapi: not found")

	// ErrUpstream matches every *UpstreamError via errors.Is.
	ErrUpstream = errors.New("swapi: upstream error")

	// ErrMalformedIdentifier is returned when a self URL has no numeric
	// trailing segment.
	ErrMalformedIdentifier = errors.New("swapi: malformed identifier")

	// ErrSearchUnsupported is returned by Search for resources without
	// upstream search.
	ErrSearchUnsupported = errors.New("swapi: search not supported for resource")

	// ErrUnknownResource is returned by ParseResource.
	ErrUnknownResource = errors.New("swapi: unknown resource")
)

// UpstreamError describes any failure other than not-found: a non-2xx
// status, a transport failure or timeout (Status 0), or an undecodable body.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("swapi: %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("swapi: %s: status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("swapi: %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("swapi: %s: upstream error", e.URL)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstream) hold for any UpstreamError.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// Temporary reports whether retrying the request may succeed: transport
// failures other than cancellation, 5xx and 429.
func (e *UpstreamError) Temporary() bool {
	if e.Status == 0 {
		return !errors.Is(e.Err, context.Canceled)
	}
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	return 0
}
