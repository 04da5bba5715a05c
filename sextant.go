// Package sextant provides the public API for the Sextant routing library.
//
// This is the recommended import for most applications:
//
//	import "github.com/sextant-dev/sextant"
//
// Usage:
//
//	r, err := sextant.New(routes, sextant.WithRenderer(myRenderer))
//	ok, err := r.NavigateByURL(ctx, "/inbox/33;mode=edit")
//	snap := r.Snapshot()
package sextant

import (
	"github.com/sextant-dev/sextant/pkg/router"
	"github.com/sextant-dev/sextant/pkg/urltree"
)

// =============================================================================
// Router core (re-export from pkg/router)
// =============================================================================

// Router coordinates navigations against a route configuration.
type Router = router.Router

// Route is one node of the route configuration tree.
type Route = router.Route

// PathMatch selects prefix or full matching for a route.
type PathMatch = router.PathMatch

// Path matching modes
const (
	MatchPrefix = router.MatchPrefix
	MatchFull   = router.MatchFull
)

// New creates a router for the given configuration.
var New = router.New

// Router options
var (
	// WithLogger sets the router's logger.
	WithLogger = router.WithLogger

	// WithRenderer sets the rendering collaborator.
	WithRenderer = router.WithRenderer

	// WithLoader sets the lazy route loader.
	WithLoader = router.WithLoader

	// WithObserver attaches a lifecycle observer.
	WithObserver = router.WithObserver

	// WithLocation binds the router to a location service.
	WithLocation = router.WithLocation

	// WithErrorHandler sets the navigation error handler.
	WithErrorHandler = router.WithErrorHandler
)

// Option configures a router.
type Option = router.Option

// Navigation options
var (
	// WithReplace replaces the current location entry instead of pushing.
	WithReplace = router.WithReplace

	// WithRelativeTo resolves relative commands against an activated route.
	WithRelativeTo = router.WithRelativeTo

	// WithQuery sets the target query parameters.
	WithQuery = router.WithQuery

	// WithFragment sets the target fragment.
	WithFragment = router.WithFragment
)

// NavigateOption configures a single navigation.
type NavigateOption = router.NavigateOption

// =============================================================================
// State (re-export from pkg/router)
// =============================================================================

// ActivatedRoute is a live activation whose cells track value changes across
// navigations.
type ActivatedRoute = router.ActivatedRoute

// ActivatedRouteSnapshot is one frozen activation.
type ActivatedRouteSnapshot = router.ActivatedRouteSnapshot

// RouterState is the live state tree.
type RouterState = router.RouterState

// RouterStateSnapshot is the frozen state tree of one navigation.
type RouterStateSnapshot = router.RouterStateSnapshot

// Cell is an observable value container.
type Cell[T any] = router.Cell[T]

// NewCell creates a cell holding an initial value.
func NewCell[T any](initial T) *Cell[T] {
	return router.NewCell(initial)
}

// =============================================================================
// Guards and resolvers (re-export from pkg/router)
// =============================================================================

type (
	CanActivateFunc      = router.CanActivateFunc
	CanActivateChildFunc = router.CanActivateChildFunc
	CanDeactivateFunc    = router.CanDeactivateFunc
	CanLoadFunc          = router.CanLoadFunc
	ResolveFunc          = router.ResolveFunc
)

// RouteLoader resolves lazy route references.
type RouteLoader = router.RouteLoader

// RouteLoaderFunc adapts a function to the RouteLoader interface.
type RouteLoaderFunc = router.RouteLoaderFunc

// =============================================================================
// Rendering and lifecycle (re-export from pkg/router)
// =============================================================================

// Renderer is the rendering collaborator's contract.
type Renderer = router.Renderer

// NopRenderer ignores all rendering instructions.
type NopRenderer = router.NopRenderer

// Observer receives navigation lifecycle events.
type Observer = router.Observer

// Event is one lifecycle notification.
type Event = router.Event

// Stage identifies a state of the navigation state machine.
type Stage = router.Stage

// Navigation stages
const (
	StageCreated           = router.StageCreated
	StageParsing           = router.StageParsing
	StageApplyingRedirects = router.StageApplyingRedirects
	StageMatching          = router.StageMatching
	StageRunningGuards     = router.StageRunningGuards
	StageResolving         = router.StageResolving
	StageActivating        = router.StageActivating
	StageSucceeded         = router.StageSucceeded
	StageCancelled         = router.StageCancelled
	StageErrored           = router.StageErrored
)

// =============================================================================
// Errors (re-export from pkg/router)
// =============================================================================

type (
	ConfigError        = router.ConfigError
	NoMatchError       = router.NoMatchError
	GuardRejectedError = router.GuardRejectedError
	ResolverError      = router.ResolverError
	NavigationError    = router.NavigationError
)

// ErrSuperseded reports that a newer navigation replaced this one.
var ErrSuperseded = router.ErrSuperseded

// =============================================================================
// URL trees (re-export from pkg/urltree)
// =============================================================================

// URLTree is the structured form of a URL.
type URLTree = urltree.Tree

// Segment is one path component with its matrix parameters.
type Segment = urltree.Segment

// SegmentGroup is one level of a URL tree.
type SegmentGroup = urltree.SegmentGroup

// Params is an ordered parameter map.
type Params = urltree.Params

// PrimaryOutlet is the default outlet name.
const PrimaryOutlet = urltree.PrimaryOutlet

// ParseURL parses a URL into its tree form.
var ParseURL = urltree.Parse

// SerializeURL renders a URL tree in canonical form.
var SerializeURL = urltree.Serialize

// ContainsTree reports whether one URL tree contains another.
var ContainsTree = urltree.ContainsTree
