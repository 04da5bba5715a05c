package router

import (
	"context"
	"strings"
	"sync"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// Wildcard is the path token that greedily consumes all remaining segments.
const Wildcard = "**"

// PathMatch selects how a route's path tokens are matched against the URL.
type PathMatch int

const (
	// MatchPrefix succeeds once the path tokens are exhausted; leftover URL
	// segments remain for child routes to consume. This is the default.
	MatchPrefix PathMatch = iota

	// MatchFull succeeds only if the path tokens exhaust the URL segments of
	// the whole group with nothing left over.
	MatchFull
)

// Route is one node of the author-supplied configuration tree. Routes are
// immutable for the lifetime of the router; the only permitted mutation is
// the append-only merge of a lazily loaded child configuration.
type Route struct {
	// Path is the route's path: constant and ':name' segments separated by
	// '/', the empty string for a zero-consuming route, or the wildcard
	// token '**'. Must not start with '/'.
	Path string

	// PathMatch selects prefix or full matching.
	PathMatch PathMatch

	// Component is an opaque reference handed to the rendering collaborator
	// on activation. A route with neither Component nor RedirectTo is
	// componentless: it consumes segments and supplies parameters, data and
	// guards to its descendants without producing an activation.
	Component any

	// Outlet names the placement slot this route targets. Empty means the
	// primary outlet.
	Outlet string

	// RedirectTo, when non-empty, is a substitution template applied during
	// the redirect phase. Constant segments are copied literally, ':name'
	// tokens are filled from the captured parameters of the match. A
	// template starting with '/' is an absolute redirect.
	RedirectTo string

	// CanActivate guards run for nodes marked for creation.
	CanActivate []CanActivateFunc

	// CanActivateChild guards run for every descendant marked for creation
	// or parameter change.
	CanActivateChild []CanActivateChildFunc

	// CanDeactivate guards run for nodes marked for destruction.
	CanDeactivate []CanDeactivateFunc

	// CanLoad guards gate fetching the lazy child configuration. They are
	// re-evaluated on every navigation that descends into the subtree, even
	// after the bundle has been cached.
	CanLoad []CanLoadFunc

	// Resolve maps data keys to resolver functions.
	Resolve map[string]ResolveFunc

	// Data is static data merged into the activated node's data map.
	Data map[string]any

	// Children are the child configuration nodes.
	Children []*Route

	// LoadChildren is an opaque reference resolved through the router's
	// RouteLoader to a child configuration. Mutually exclusive with
	// Children.
	LoadChildren string
}

// outlet returns the route's outlet name, defaulting to primary.
func (r *Route) outlet() string {
	if r.Outlet == "" {
		return urltree.PrimaryOutlet
	}
	return r.Outlet
}

// componentless reports whether the route produces no activation entry.
func (r *Route) componentless() bool {
	return r.Component == nil && r.RedirectTo == ""
}

// RouteLoader resolves a Route.LoadChildren reference to a child
// configuration. A loader may be called more than once for the same
// reference if earlier calls failed; the router caches the first successful
// result and never fetches it again.
type RouteLoader interface {
	LoadRoutes(ctx context.Context, ref string) ([]*Route, error)
}

// RouteLoaderFunc adapts a function to the RouteLoader interface.
type RouteLoaderFunc func(ctx context.Context, ref string) ([]*Route, error)

// LoadRoutes implements RouteLoader.
func (f RouteLoaderFunc) LoadRoutes(ctx context.Context, ref string) ([]*Route, error) {
	return f(ctx, ref)
}

// loadCache caches successfully loaded child configurations by config node
// and deduplicates concurrent fetches. Negative results are not cached.
type loadCache struct {
	mu       sync.Mutex
	loaded   map[*Route][]*Route
	inflight map[*Route]chan struct{}
}

func newLoadCache() *loadCache {
	return &loadCache{
		loaded:   make(map[*Route][]*Route),
		inflight: make(map[*Route]chan struct{}),
	}
}

// get returns the cached configuration for route, if any.
func (c *loadCache) get(route *Route) ([]*Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg, ok := c.loaded[route]
	return cfg, ok
}

// fetch loads the configuration for route through loader, at most once on
// success. Concurrent callers for the same route wait for the first fetch.
func (c *loadCache) fetch(ctx context.Context, loader RouteLoader, route *Route) ([]*Route, error) {
	for {
		c.mu.Lock()
		if cfg, ok := c.loaded[route]; ok {
			c.mu.Unlock()
			return cfg, nil
		}
		if wait, ok := c.inflight[route]; ok {
			c.mu.Unlock()
			select {
			case <-wait:
			case <-ctx.Done():
				return nil, ErrSuperseded
			}
			continue
		}
		done := make(chan struct{})
		c.inflight[route] = done
		c.mu.Unlock()

		cfg, err := c.load(ctx, loader, route)

		c.mu.Lock()
		delete(c.inflight, route)
		if err == nil {
			c.loaded[route] = cfg
			// Append-only merge into the config tree.
			route.Children = append(route.Children, cfg...)
		}
		c.mu.Unlock()
		close(done)
		return cfg, err
	}
}

func (c *loadCache) load(ctx context.Context, loader RouteLoader, route *Route) ([]*Route, error) {
	if loader == nil {
		return nil, &ConfigError{Path: route.Path, Reason: "route has LoadChildren but the router has no RouteLoader"}
	}
	cfg, err := loader.LoadRoutes(ctx, route.LoadChildren)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig checks the constraints every configuration tree must hold.
func validateConfig(routes []*Route) error {
	for _, route := range routes {
		if err := validateRoute(route); err != nil {
			return err
		}
		if err := validateConfig(route.Children); err != nil {
			return err
		}
	}
	return nil
}

func validateRoute(route *Route) error {
	if route == nil {
		return &ConfigError{Reason: "nil route"}
	}
	if strings.HasPrefix(route.Path, "/") {
		return &ConfigError{Path: route.Path, Reason: "path must not start with '/'"}
	}
	if route.RedirectTo != "" && route.Component != nil {
		return &ConfigError{Path: route.Path, Reason: "RedirectTo and Component are mutually exclusive"}
	}
	if route.RedirectTo != "" && len(route.Children) > 0 {
		return &ConfigError{Path: route.Path, Reason: "RedirectTo and Children are mutually exclusive"}
	}
	if route.RedirectTo != "" && route.LoadChildren != "" {
		return &ConfigError{Path: route.Path, Reason: "RedirectTo and LoadChildren are mutually exclusive"}
	}
	if route.LoadChildren != "" && len(route.Children) > 0 {
		return &ConfigError{Path: route.Path, Reason: "LoadChildren and Children are mutually exclusive"}
	}
	if route.Path == "" && route.RedirectTo != "" && route.PathMatch != MatchFull {
		return &ConfigError{Path: route.Path, Reason: "empty-path redirect requires PathMatch: MatchFull"}
	}
	if strings.Contains(route.Path, Wildcard) && route.Path != Wildcard {
		return &ConfigError{Path: route.Path, Reason: "'**' must be the entire path"}
	}
	for _, part := range strings.Split(route.Path, "/") {
		if part == ":" {
			return &ConfigError{Path: route.Path, Reason: "variable segment is missing a name"}
		}
	}
	return nil
}
