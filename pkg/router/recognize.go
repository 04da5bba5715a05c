package router

import (
	"errors"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// recognize matches a redirect-free URL tree against the configuration and
// builds the state snapshot tree. Matching is depth-first and declaration-
// ordered with no specificity ranking: the first candidate whose subtree
// fully consumes the URL wins. A candidate whose children cannot consume the
// remainder is abandoned and the next sibling is tried with fresh captures.
func (r *Router) recognize(tree *urltree.Tree, config []*Route) (*RouterStateSnapshot, error) {
	rec := &recognizer{url: urltree.Serialize(tree)}

	children, err := rec.processGroup(config, tree.Root, urltree.PrimaryOutlet)
	if err != nil {
		if errors.Is(err, errNoMatch) {
			return nil, &NoMatchError{URL: rec.url}
		}
		return nil, err
	}

	root := &ActivatedRouteSnapshot{Outlet: urltree.PrimaryOutlet}
	root.children = children
	state := &RouterStateSnapshot{URL: rec.url, Tree: tree, root: root}
	finalize(root, nil, state)
	applyInheritance(root)
	return state, nil
}

type recognizer struct {
	url string
}

func (rec *recognizer) processGroup(routes []*Route, group *urltree.SegmentGroup, outlet string) ([]*ActivatedRouteSnapshot, error) {
	if len(group.Segments) == 0 && group.HasChildren() {
		return rec.processChildren(routes, group)
	}
	node, err := rec.processSegments(routes, group, group.Segments, outlet)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	return []*ActivatedRouteSnapshot{node}, nil
}

// processChildren resolves every outlet group present at this level. Failure
// of any outlet fails the level, which surfaces as backtracking at the
// parent.
func (rec *recognizer) processChildren(routes []*Route, group *urltree.SegmentGroup) ([]*ActivatedRouteSnapshot, error) {
	var nodes []*ActivatedRouteSnapshot
	for _, outlet := range orderedOutlets(group.Children) {
		sub, err := rec.processGroup(routes, group.Children[outlet], outlet)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, sub...)
	}
	return nodes, nil
}

func (rec *recognizer) processSegments(routes []*Route, group *urltree.SegmentGroup, segments []urltree.Segment, outlet string) (*ActivatedRouteSnapshot, error) {
	for _, route := range routes {
		node, err := rec.processSegmentAgainstRoute(route, group, segments, outlet)
		if errors.Is(err, errNoMatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return node, nil
	}
	if len(segments) == 0 && group.Child(outlet) == nil {
		return nil, nil
	}
	return nil, errNoMatch
}

func (rec *recognizer) processSegmentAgainstRoute(route *Route, group *urltree.SegmentGroup, segments []urltree.Segment, outlet string) (*ActivatedRouteSnapshot, error) {
	if route.RedirectTo != "" || route.outlet() != outlet {
		return nil, errNoMatch
	}

	var consumed []urltree.Segment
	var own map[string]string
	if route.Path == Wildcard {
		consumed = segments
		own = capturedParams(consumed, nil)
	} else {
		m := matchSegments(group, route, segments)
		if !m.matched {
			return nil, errNoMatch
		}
		consumed = m.consumed
		own = capturedParams(consumed, m.posParams)
	}

	node := &ActivatedRouteSnapshot{
		Route:     route,
		Outlet:    outlet,
		URL:       consumed,
		ownParams: own,
	}

	// Lazy configurations were merged during the redirect phase; here the
	// children are read as-is.
	childConfig := route.Children
	rest := segments[len(consumed):]
	splitGroup, sliced := split(group, consumed, rest, childConfig)

	switch {
	case len(sliced) == 0 && splitGroup.HasChildren():
		children, err := rec.processChildren(childConfig, splitGroup)
		if err != nil {
			return nil, err
		}
		node.children = children
	case len(childConfig) == 0 && len(sliced) == 0:
		// Terminal match.
	default:
		child, err := rec.processSegments(childConfig, splitGroup, sliced, urltree.PrimaryOutlet)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.children = []*ActivatedRouteSnapshot{child}
		}
	}
	return node, nil
}

// capturedParams builds a node's own parameter map: positional captures plus
// the matrix parameters of the last consumed segment.
func capturedParams(consumed []urltree.Segment, posParams map[string]urltree.Segment) map[string]string {
	params := make(map[string]string)
	for name, seg := range posParams {
		params[name] = seg.Path
	}
	if len(consumed) > 0 {
		consumed[len(consumed)-1].Matrix.Each(func(k, v string) {
			params[k] = v
		})
	}
	return params
}

// finalize links parent and state pointers across the snapshot tree.
func finalize(node *ActivatedRouteSnapshot, parent *ActivatedRouteSnapshot, state *RouterStateSnapshot) {
	node.parent = parent
	node.state = state
	for _, child := range node.children {
		finalize(child, node, state)
	}
}
