package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// errNoMatch signals that a candidate route (or a whole sibling group) did
// not lead to full consumption. It drives backtracking: callers catch it and
// try the next sibling in declaration order.
var errNoMatch = errors.New("router: no match")

// absoluteRedirect aborts the current expansion; the redirect phase restarts
// once on the carried tree with all further redirects disabled.
type absoluteRedirect struct {
	tree *urltree.Tree
}

func (e *absoluteRedirect) Error() string {
	return fmt.Sprintf("router: absolute redirect to %q", urltree.Serialize(e.tree))
}

// applyRedirects rewrites tree by applying RedirectTo substitutions
// level-by-level: at most one redirect applies per level, and an absolute
// redirect terminates the redirect phase for the whole tree. Lazy child
// configurations are fetched here, gated by CanLoad on every navigation.
// The result is a tree that the recognizer can match without considering
// redirect routes.
func (r *Router) applyRedirects(ctx context.Context, tree *urltree.Tree, config []*Route) (*urltree.Tree, error) {
	a := &redirectApplier{
		ctx:            ctx,
		loader:         r.loader,
		loads:          r.loads,
		query:          tree.Query,
		fragment:       tree.Fragment,
		url:            urltree.Serialize(tree),
		allowRedirects: true,
	}

	root, err := a.expandGroup(config, tree.Root, urltree.PrimaryOutlet)
	var abs *absoluteRedirect
	if errors.As(err, &abs) {
		a.allowRedirects = false
		tree = abs.tree
		root, err = a.expandGroup(config, tree.Root, urltree.PrimaryOutlet)
	}
	if err != nil {
		if errors.Is(err, errNoMatch) {
			return nil, &NoMatchError{URL: a.url}
		}
		return nil, err
	}
	if len(root.Segments) > 0 {
		// Expanding a bare "/" against an empty-path redirect yields the
		// substituted segments directly; re-wrap so the root stays empty.
		root = urltree.NewSegmentGroup(nil, map[string]*urltree.SegmentGroup{
			urltree.PrimaryOutlet: root,
		})
	}
	return &urltree.Tree{Root: root, Query: tree.Query.Clone(), Fragment: tree.Fragment}, nil
}

type redirectApplier struct {
	ctx      context.Context
	loader   RouteLoader
	loads    *loadCache
	query    *urltree.Params
	fragment string
	url      string

	// allowRedirects is cleared after an absolute redirect fires; the
	// restarted expansion then matches structurally only.
	allowRedirects bool
}

func (a *redirectApplier) expandGroup(routes []*Route, group *urltree.SegmentGroup, outlet string) (*urltree.SegmentGroup, error) {
	if len(group.Segments) == 0 && group.HasChildren() {
		children, err := a.expandChildren(routes, group)
		if err != nil {
			return nil, err
		}
		return urltree.NewSegmentGroup(nil, children), nil
	}
	return a.expandSegments(group, routes, group.Segments, outlet, true)
}

// expandChildren expands every outlet group at this level. All present
// outlets must resolve for the level to succeed.
func (a *redirectApplier) expandChildren(routes []*Route, group *urltree.SegmentGroup) (map[string]*urltree.SegmentGroup, error) {
	children := make(map[string]*urltree.SegmentGroup, len(group.Children))
	for _, outlet := range orderedOutlets(group.Children) {
		expanded, err := a.expandGroup(routes, group.Children[outlet], outlet)
		if err != nil {
			return nil, err
		}
		children[outlet] = expanded
	}
	return children, nil
}

// expandSegments tries the sibling routes in declaration order. allowLevel
// is false after a redirect already applied at this level: the substituted
// segments may then match only non-redirect siblings.
func (a *redirectApplier) expandSegments(group *urltree.SegmentGroup, routes []*Route, segments []urltree.Segment, outlet string, allowLevel bool) (*urltree.SegmentGroup, error) {
	for _, route := range routes {
		expanded, err := a.expandSegmentAgainstRoute(group, routes, route, segments, outlet, allowLevel)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return expanded, nil
	}
	if len(segments) == 0 && group.Child(outlet) == nil {
		return urltree.NewSegmentGroup(nil, nil), nil
	}
	return nil, errNoMatch
}

func (a *redirectApplier) expandSegmentAgainstRoute(group *urltree.SegmentGroup, routes []*Route, route *Route, segments []urltree.Segment, outlet string, allowLevel bool) (*urltree.SegmentGroup, error) {
	if route.outlet() != outlet {
		return nil, errNoMatch
	}
	if route.RedirectTo == "" {
		return a.matchAndExpand(group, route, segments)
	}
	if a.allowRedirects && allowLevel {
		return a.expandRedirect(group, routes, route, segments, outlet)
	}
	return nil, errNoMatch
}

// expandRedirect applies one RedirectTo substitution and restarts matching
// at the same level with redirects disabled there.
func (a *redirectApplier) expandRedirect(group *urltree.SegmentGroup, routes []*Route, route *Route, segments []urltree.Segment, outlet string) (*urltree.SegmentGroup, error) {
	var m segmentMatch
	if route.Path == Wildcard {
		m = segmentMatch{matched: true, consumed: segments}
	} else {
		m = matchSegments(group, route, segments)
	}
	if !m.matched {
		return nil, errNoMatch
	}

	newSegments, err := expandRedirectTemplate(route, m)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(route.RedirectTo, "/") {
		root := urltree.NewSegmentGroup(nil, map[string]*urltree.SegmentGroup{
			urltree.PrimaryOutlet: urltree.NewSegmentGroup(newSegments, nil),
		})
		return nil, &absoluteRedirect{tree: &urltree.Tree{
			Root:     root,
			Query:    a.query.Clone(),
			Fragment: a.fragment,
		}}
	}

	rest := segments[len(m.consumed):]
	merged := make([]urltree.Segment, 0, len(newSegments)+len(rest))
	merged = append(merged, newSegments...)
	merged = append(merged, rest...)
	return a.expandSegments(group, routes, merged, outlet, false)
}

// matchAndExpand matches a non-redirect route and recurses into its child
// configuration with the unconsumed remainder.
func (a *redirectApplier) matchAndExpand(group *urltree.SegmentGroup, route *Route, segments []urltree.Segment) (*urltree.SegmentGroup, error) {
	if route.Path == Wildcard {
		return urltree.NewSegmentGroup(segments, nil), nil
	}

	m := matchSegments(group, route, segments)
	if !m.matched {
		return nil, errNoMatch
	}

	childConfig, err := a.childConfig(route, segments)
	if err != nil {
		return nil, err
	}

	rest := segments[len(m.consumed):]
	splitGroup, sliced := split(group, m.consumed, rest, childConfig)

	if len(sliced) == 0 && splitGroup.HasChildren() {
		children, err := a.expandChildren(childConfig, splitGroup)
		if err != nil {
			return nil, err
		}
		return urltree.NewSegmentGroup(m.consumed, children), nil
	}
	if len(childConfig) == 0 && len(sliced) == 0 {
		return urltree.NewSegmentGroup(m.consumed, nil), nil
	}

	expanded, err := a.expandSegments(splitGroup, childConfig, sliced, urltree.PrimaryOutlet, true)
	if err != nil {
		return nil, err
	}
	segs := make([]urltree.Segment, 0, len(m.consumed)+len(expanded.Segments))
	segs = append(segs, m.consumed...)
	segs = append(segs, expanded.Segments...)
	return urltree.NewSegmentGroup(segs, expanded.Children), nil
}

// childConfig returns the route's child configuration, fetching a lazy one
// through the loader. CanLoad guards run on every call, even when the
// configuration is already cached.
func (a *redirectApplier) childConfig(route *Route, segments []urltree.Segment) ([]*Route, error) {
	if route.LoadChildren == "" {
		return route.Children, nil
	}
	for _, guard := range route.CanLoad {
		if a.ctx.Err() != nil {
			return nil, ErrSuperseded
		}
		ok, err := guard(a.ctx, route, segments)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &GuardRejectedError{URL: a.url, Guard: "CanLoad"}
		}
	}
	return a.loads.fetch(a.ctx, a.loader, route)
}

// expandRedirectTemplate computes the substitute segments for a matched
// redirect. Constant segments reuse the matched segment of the same path
// when one exists, so its matrix parameters carry over; ':name' tokens are
// filled with the captured segment.
func expandRedirectTemplate(route *Route, m segmentMatch) ([]urltree.Segment, error) {
	template := strings.TrimPrefix(route.RedirectTo, "/")
	if template == "" {
		return nil, nil
	}
	parts := strings.Split(template, "/")
	out := make([]urltree.Segment, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, ":") {
			seg, ok := m.posParams[part[1:]]
			if !ok {
				return nil, &ConfigError{
					Path:   route.Path,
					Reason: fmt.Sprintf("redirect target %q references unknown parameter %q", route.RedirectTo, part),
				}
			}
			out = append(out, seg)
			continue
		}
		out = append(out, findOrCreateSegment(part, m.consumed))
	}
	return out, nil
}

func findOrCreateSegment(path string, consumed []urltree.Segment) urltree.Segment {
	for _, seg := range consumed {
		if seg.Path == path {
			return seg
		}
	}
	return urltree.NewSegment(path)
}

// orderedOutlets returns outlet names with primary first, then
// lexicographic, for deterministic traversal.
func orderedOutlets(children map[string]*urltree.SegmentGroup) []string {
	outlets := make([]string, 0, len(children))
	for outlet := range children {
		if outlet != urltree.PrimaryOutlet {
			outlets = append(outlets, outlet)
		}
	}
	sort.Strings(outlets)
	if _, ok := children[urltree.PrimaryOutlet]; ok {
		outlets = append([]string{urltree.PrimaryOutlet}, outlets...)
	}
	return outlets
}
