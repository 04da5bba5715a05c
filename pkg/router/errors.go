package router

import (
	"errors"
	"fmt"
)

// ErrSuperseded marks a navigation that was preempted by a newer one. It is
// terminal via the Cancelled stage and silent unless explicitly observed.
var ErrSuperseded = errors.New("router: navigation superseded")

// NoMatchError reports that no configuration path fully consumes the URL.
// It is terminal for the navigation and surfaces via the Errored stage.
type NoMatchError struct {
	// URL is the serialized URL that could not be matched.
	URL string

	// Segments is the remaining unmatched portion, for diagnostics.
	Segments string
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	if e.Segments != "" && e.Segments != e.URL {
		return fmt.Sprintf("router: no route matches %q (unmatched: %q)", e.URL, e.Segments)
	}
	return fmt.Sprintf("router: no route matches %q", e.URL)
}

// GuardRejectedError reports that a guard returned false. It is terminal via
// the Cancelled stage and is a normal negative outcome, not an error event.
type GuardRejectedError struct {
	// URL is the serialized URL of the rejected navigation.
	URL string

	// Guard names the guard kind that rejected: "CanLoad", "CanActivate",
	// "CanActivateChild" or "CanDeactivate".
	Guard string
}

// Error implements the error interface.
func (e *GuardRejectedError) Error() string {
	return fmt.Sprintf("router: navigation to %q rejected by %s guard", e.URL, e.Guard)
}

// ResolverError reports a failed resolver. Unlike a guard rejection it is
// terminal via the Errored stage.
type ResolverError struct {
	// URL is the serialized URL of the failed navigation.
	URL string

	// Key is the resolver map key that failed.
	Key string

	// Err is the resolver's error.
	Err error
}

// Error implements the error interface.
func (e *ResolverError) Error() string {
	return fmt.Sprintf("router: resolver %q failed for %q: %v", e.Key, e.URL, e.Err)
}

// Unwrap returns the underlying resolver error.
func (e *ResolverError) Unwrap() error { return e.Err }

// ConfigError reports an invalid route configuration, detected when the
// router is constructed or when a lazily loaded configuration is merged.
type ConfigError struct {
	// Path is the offending route's path.
	Path string

	// Reason describes the violated constraint.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("router: invalid config for route %q: %s", e.Path, e.Reason)
}

// NavigationError wraps a terminal navigation failure with the navigation's
// id and URL so callers can correlate it with the event stream.
type NavigationError struct {
	// ID is the navigation record id.
	ID int64

	// URL is the requested URL text.
	URL string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("router: navigation %d to %q failed: %v", e.ID, e.URL, e.Err)
}

// Unwrap returns the underlying failure.
func (e *NavigationError) Unwrap() error { return e.Err }

// isRejection reports whether err is a normal negative outcome (guard
// rejection or supersession) rather than a genuine error.
func isRejection(err error) bool {
	var rejected *GuardRejectedError
	return errors.Is(err, ErrSuperseded) || errors.As(err, &rejected)
}
