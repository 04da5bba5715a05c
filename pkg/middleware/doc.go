// Package middleware provides optional observers for the router's event
// stream: Prometheus metrics and OpenTelemetry traces. Both attach through
// router.WithObserver (or Router.AddObserver) and never influence the
// navigation outcome.
package middleware
