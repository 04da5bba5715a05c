package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// Location is the externally visible address handle. The router is the only
// writer: it pushes the serialized URL on every successful navigation and
// reverts the handle after a failed navigation that originated from an
// external edit. Subscribe delivers external edits back into the router.
type Location interface {
	// Current returns the currently visible URL text.
	Current() string

	// Push makes url visible as a new history entry.
	Push(url string)

	// Replace makes url visible, replacing the current entry.
	Replace(url string)

	// Subscribe registers fn for externally made edits. The returned
	// function cancels the subscription.
	Subscribe(fn func(url string)) (cancel func())
}

// Claimer is implemented by locations that enforce single ownership. The
// router claims its location on construction and releases it on Close.
type Claimer interface {
	Claim() (release func(), err error)
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRenderer sets the rendering collaborator.
func WithRenderer(renderer Renderer) Option {
	return func(r *Router) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

// WithLoader sets the loader for lazy child configurations.
func WithLoader(loader RouteLoader) Option {
	return func(r *Router) { r.loader = loader }
}

// WithLocation attaches a location handle. If the handle enforces ownership
// the router claims it; construction fails when it is already claimed.
func WithLocation(location Location) Option {
	return func(r *Router) { r.location = location }
}

// WithErrorHandler installs a hook that may reclassify a terminal error. A
// handler returning nil, ErrSuperseded or a *GuardRejectedError turns the
// Errored outcome into Cancelled. It cannot turn any failure into a success.
func WithErrorHandler(handler func(error) error) Option {
	return func(r *Router) { r.errorHandler = handler }
}

// WithObserver registers a lifecycle event observer.
func WithObserver(obs Observer) Option {
	return func(r *Router) {
		if obs != nil {
			r.observers = append(r.observers, obs)
		}
	}
}

// Router is the navigation coordinator. It owns the committed router state
// and the location handle, sequences the stages of each navigation, and
// guarantees that at most one navigation record is current at a time: a
// newer record cancels an older one still in flight, and a stale commit is
// suppressed.
type Router struct {
	config   []*Route
	loader   RouteLoader
	loads    *loadCache
	renderer Renderer
	location Location
	release  func()
	logger   *slog.Logger

	errorHandler func(error) error

	obsMu     sync.RWMutex
	observers []Observer

	nextID atomic.Int64

	mu             sync.Mutex
	current        *navigation
	state          *RouterState
	lastSuccessful string
	unsubscribe    func()
}

// navigation is one navigation record.
type navigation struct {
	id           int64
	url          string
	finalURL     string
	fromLocation bool
	replace      bool
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates a router for the given configuration. The configuration is
// validated eagerly; invalid configurations are construction errors, not
// navigation errors.
func New(config []*Route, opts ...Option) (*Router, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	r := &Router{
		config:   config,
		loads:    newLoadCache(),
		renderer: NopRenderer{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:    newRouterState(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if claimer, ok := r.location.(Claimer); ok {
		release, err := claimer.Claim()
		if err != nil {
			return nil, err
		}
		r.release = release
	}
	if r.location != nil {
		r.unsubscribe = r.location.Subscribe(func(url string) {
			_, err := r.navigate(context.Background(), url, navigateOptions{fromLocation: true})
			if err != nil {
				r.logger.Error("navigation from location edit failed", "url", url, "err", err)
			}
		})
	}
	return r, nil
}

// Start performs the initial navigation: to the location's current URL when
// a location is attached, otherwise to "/".
func (r *Router) Start(ctx context.Context) error {
	url := "/"
	if r.location != nil {
		if cur := r.location.Current(); cur != "" {
			url = cur
		}
	}
	_, err := r.NavigateByURL(ctx, url)
	return err
}

// Close cancels any in-flight navigation and releases the location.
func (r *Router) Close() {
	r.mu.Lock()
	if r.current != nil {
		r.current.cancel()
		r.current = nil
	}
	unsub, release := r.unsubscribe, r.release
	r.unsubscribe, r.release = nil, nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	if release != nil {
		release()
	}
}

// Config returns the route configuration the router was built with.
func (r *Router) Config() []*Route { return r.config }

// AddObserver registers a lifecycle event observer after construction.
func (r *Router) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	r.obsMu.Lock()
	r.observers = append(r.observers, obs)
	r.obsMu.Unlock()
}

// Snapshot returns the committed state snapshot, or nil before the first
// successful navigation.
func (r *Router) Snapshot() *RouterStateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Snapshot()
}

// RootRoute returns the live root node, or nil before the first commit.
func (r *Router) RootRoute() *ActivatedRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Root()
}

// URL returns the last successfully committed URL, or "" before the first
// commit.
func (r *Router) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSuccessful
}

// IsActive reports whether the committed URL contains url. With exact=true
// the whole structure must match; otherwise a prefix suffices.
func (r *Router) IsActive(url string, exact bool) bool {
	snap := r.Snapshot()
	if snap == nil || snap.Tree == nil {
		return false
	}
	tree, err := urltree.Parse(url)
	if err != nil {
		return false
	}
	return urltree.ContainsTree(snap.Tree, tree, exact)
}

// NavigateByURL starts a navigation to the given URL text. It returns
// (true, nil) when the navigation committed, (false, nil) when it was
// cancelled (guard rejection or supersession), and (false, err) when it
// errored. The previous state and location are untouched unless the
// navigation commits.
func (r *Router) NavigateByURL(ctx context.Context, url string, opts ...NavigateOption) (bool, error) {
	var options navigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	return r.navigate(ctx, url, options)
}

// Navigate builds a URL from commands relative to the committed state (or
// the route given with WithRelativeTo) and navigates to it.
func (r *Router) Navigate(ctx context.Context, commands []any, opts ...NavigateOption) (bool, error) {
	var options navigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	base := r.Snapshot()
	var baseTree *urltree.Tree
	if base != nil {
		baseTree = base.Tree
	}
	tree, err := CreateURLTree(baseTree, options.relativeTo, commands, createOptions{
		query:            options.query,
		fragment:         options.fragment,
		queryHandling:    options.queryHandling,
		preserveFragment: options.preserveFragment,
	})
	if err != nil {
		return false, err
	}
	return r.navigate(ctx, urltree.Serialize(tree), options)
}

// navigate runs the full pipeline for one navigation record in the caller's
// goroutine. Suspension happens inside guards, resolvers and lazy loads; the
// record's context is cancelled when a newer record supersedes it.
func (r *Router) navigate(ctx context.Context, url string, options navigateOptions) (bool, error) {
	nav := r.begin(ctx, url, options)
	defer nav.cancel()

	r.emit(nav, StageCreated, nil)

	r.emit(nav, StageParsing, nil)
	tree, err := urltree.Parse(url)
	if err != nil {
		return r.finish(nav, err)
	}

	r.emit(nav, StageApplyingRedirects, nil)
	redirected, err := r.applyRedirects(nav.ctx, tree, r.config)
	if err != nil {
		return r.finish(nav, err)
	}

	r.emit(nav, StageMatching, nil)
	next, err := r.recognize(redirected, r.config)
	if err != nil {
		return r.finish(nav, err)
	}
	nav.finalURL = next.URL

	current := r.Snapshot()
	diff := reconcile(current, next)

	r.emit(nav, StageRunningGuards, nil)
	if err := r.runGuards(nav.ctx, diff, current, next); err != nil {
		return r.finish(nav, err)
	}

	r.emit(nav, StageResolving, nil)
	if err := r.runResolvers(nav.ctx, diff, next); err != nil {
		return r.finish(nav, err)
	}

	r.emit(nav, StageActivating, nil)
	if err := r.commit(nav, diff, next); err != nil {
		return r.finish(nav, err)
	}

	r.emit(nav, StageSucceeded, nil)
	return true, nil
}

// begin allocates the navigation record and supersedes the previous one.
func (r *Router) begin(ctx context.Context, url string, options navigateOptions) *navigation {
	navCtx, cancel := context.WithCancel(ctx)
	nav := &navigation{
		id:           r.nextID.Add(1),
		url:          url,
		fromLocation: options.fromLocation,
		replace:      options.replace,
		ctx:          navCtx,
		cancel:       cancel,
	}
	r.mu.Lock()
	if r.current != nil {
		r.current.cancel()
	}
	r.current = nav
	r.mu.Unlock()
	return nav
}

// finish classifies a terminal failure, emits the terminal event, and
// reverts the location when the navigation came from an external edit.
func (r *Router) finish(nav *navigation, err error) (bool, error) {
	if errors.Is(err, context.Canceled) {
		err = ErrSuperseded
	}
	if !isRejection(err) && r.errorHandler != nil {
		// The hook may reclassify an error into a cancellation; it can
		// never produce a success.
		if reclassified := r.errorHandler(err); reclassified == nil {
			err = ErrSuperseded
		} else {
			err = reclassified
		}
	}
	if isRejection(err) {
		r.emit(nav, StageCancelled, err)
		if !errors.Is(err, ErrSuperseded) {
			r.revertLocation(nav)
		}
		return false, nil
	}
	r.logger.Error("navigation failed", "id", nav.id, "url", nav.url, "err", err)
	r.emit(nav, StageErrored, err)
	r.revertLocation(nav)
	return false, &NavigationError{ID: nav.id, URL: nav.url, Err: err}
}

// revertLocation restores the address to the last successful URL after a
// navigation that began from a direct location edit failed.
func (r *Router) revertLocation(nav *navigation) {
	if !nav.fromLocation || r.location == nil {
		return
	}
	r.mu.Lock()
	last := r.lastSuccessful
	r.mu.Unlock()
	if last != "" && r.location.Current() != last {
		r.location.Replace(last)
	}
}

// commit makes next the current state, dispatches the renderer
// instructions, and updates the location. A record superseded after its
// guards ran is suppressed here: no navigation commits out of creation
// order.
func (r *Router) commit(nav *navigation, diff *reconciliation, next *RouterStateSnapshot) error {
	r.mu.Lock()
	if nav.ctx.Err() != nil || r.current != nav {
		r.mu.Unlock()
		r.logger.Warn("discarding stale navigation result", "id", nav.id, "url", nav.url)
		return ErrSuperseded
	}
	r.state.apply(next)
	r.lastSuccessful = next.URL
	r.current = nil
	state := r.state
	r.mu.Unlock()

	for _, snap := range diff.deactivations {
		if !snap.Route.componentless() {
			r.renderer.Deactivate(snap)
		}
	}
	for _, snap := range diff.activations {
		if snap.Route.componentless() {
			continue
		}
		if node := state.Lookup(snap); node != nil {
			r.renderer.Activate(node)
		}
	}
	for _, pair := range diff.updates {
		if pair.next.Route.componentless() {
			continue
		}
		if node := state.Lookup(pair.next); node != nil {
			r.renderer.UpdateParams(node)
		}
	}

	if r.location != nil {
		if nav.fromLocation {
			// The address already changed; normalize it if redirects
			// rewrote the URL.
			if r.location.Current() != next.URL {
				r.location.Replace(next.URL)
			}
		} else if nav.replace {
			r.location.Replace(next.URL)
		} else {
			r.location.Push(next.URL)
		}
	}
	return nil
}

// NavigateOption configures one navigation.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	replace          bool
	relativeTo       *ActivatedRouteSnapshot
	query            *urltree.Params
	fragment         string
	queryHandling    QueryParamsHandling
	preserveFragment bool
	fromLocation     bool
}

// WithReplace makes the navigation replace the current location entry
// instead of pushing a new one.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) { o.replace = true }
}

// WithRelativeTo resolves relative commands against the given route instead
// of the root.
func WithRelativeTo(route *ActivatedRouteSnapshot) NavigateOption {
	return func(o *navigateOptions) { o.relativeTo = route }
}

// WithQuery sets the target query parameters.
func WithQuery(query *urltree.Params) NavigateOption {
	return func(o *navigateOptions) { o.query = query }
}

// WithFragment sets the target fragment.
func WithFragment(fragment string) NavigateOption {
	return func(o *navigateOptions) { o.fragment = fragment }
}

// WithPreserveQuery keeps the current query parameters.
func WithPreserveQuery() NavigateOption {
	return func(o *navigateOptions) { o.queryHandling = QueryPreserve }
}

// WithMergeQuery merges the given query parameters over the current ones.
func WithMergeQuery() NavigateOption {
	return func(o *navigateOptions) { o.queryHandling = QueryMerge }
}

// WithPreserveFragment keeps the current fragment.
func WithPreserveFragment() NavigateOption {
	return func(o *navigateOptions) { o.preserveFragment = true }
}
