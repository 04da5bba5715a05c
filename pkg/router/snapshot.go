package router

import (
	"fmt"
	"strings"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// ActivatedRouteSnapshot is the frozen, point-in-time record of one matched
// config node in one navigation. Snapshots form a tree, the
// RouterStateSnapshot. They are never mutated after the navigation that
// produced them commits; reuse across navigations replaces the snapshot on
// the live node.
type ActivatedRouteSnapshot struct {
	// Route is the configuration node that produced this activation.
	Route *Route

	// Outlet is the outlet this node occupies.
	Outlet string

	// URL holds the consumed URL segments.
	URL []urltree.Segment

	// Params is the effective parameter map: positional captures, the matrix
	// parameters of the last consumed segment, and inherited entries per the
	// componentless and empty-path rules. Descendant-local keys win.
	Params map[string]string

	// Data is the effective data map: static config data, resolved values,
	// and inherited entries, merged with the same precedence as Params.
	Data map[string]any

	// ownParams are the parameters captured by this node alone.
	ownParams map[string]string

	// resolved are this node's resolver outputs.
	resolved map[string]any

	parent   *ActivatedRouteSnapshot
	children []*ActivatedRouteSnapshot
	state    *RouterStateSnapshot
}

// Parent returns the parent snapshot, or nil for the root.
func (s *ActivatedRouteSnapshot) Parent() *ActivatedRouteSnapshot { return s.parent }

// Children returns the child snapshots.
func (s *ActivatedRouteSnapshot) Children() []*ActivatedRouteSnapshot { return s.children }

// Root returns the root of the snapshot tree.
func (s *ActivatedRouteSnapshot) Root() *ActivatedRouteSnapshot {
	n := s
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// PathFromRoot returns the chain of snapshots from the root (exclusive) down
// to this node (inclusive).
func (s *ActivatedRouteSnapshot) PathFromRoot() []*ActivatedRouteSnapshot {
	var path []*ActivatedRouteSnapshot
	for n := s; n.parent != nil; n = n.parent {
		path = append([]*ActivatedRouteSnapshot{n}, path...)
	}
	return path
}

// State returns the state snapshot this node belongs to.
func (s *ActivatedRouteSnapshot) State() *RouterStateSnapshot { return s.state }

// Component returns the config node's component reference, or nil for the
// root and for componentless routes.
func (s *ActivatedRouteSnapshot) Component() any {
	if s.Route == nil {
		return nil
	}
	return s.Route.Component
}

// identityKey returns the key that ties a snapshot to a live node: the chain
// of outlets from the root plus the identity of each config node on the way.
// Two snapshots with equal keys represent the same activation across
// navigations even if their captured parameters differ.
func (s *ActivatedRouteSnapshot) identityKey() string {
	var b strings.Builder
	for _, n := range s.PathFromRoot() {
		fmt.Fprintf(&b, "/%s@%p", n.Outlet, n.Route)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// RouterStateSnapshot is the frozen tree of activated route snapshots for
// one navigation, together with the URL it was recognized from.
type RouterStateSnapshot struct {
	// URL is the serialized, post-redirect URL.
	URL string

	// Tree is the structured URL the state was recognized from.
	Tree *urltree.Tree

	root *ActivatedRouteSnapshot
}

// Root returns the root snapshot. The root corresponds to no config node;
// its children are the top-level activations.
func (s *RouterStateSnapshot) Root() *ActivatedRouteSnapshot { return s.root }

// Query returns the navigation's query parameters.
func (s *RouterStateSnapshot) Query() *urltree.Params {
	if s.Tree == nil {
		return nil
	}
	return s.Tree.Query
}

// Fragment returns the navigation's fragment.
func (s *RouterStateSnapshot) Fragment() string {
	if s.Tree == nil {
		return ""
	}
	return s.Tree.Fragment
}

// String returns the serialized URL.
func (s *RouterStateSnapshot) String() string { return s.URL }

// applyInheritance recomputes every node's effective Params and Data from
// its own captures, its resolver outputs, and its ancestors. A componentless
// node's parameters and data flow into every descendant; an empty-path node
// additionally inherits from its parent even when the parent renders a
// component. Descendant-local keys win on conflict.
func applyInheritance(root *ActivatedRouteSnapshot) {
	inheritDown(root, nil, nil, nil, nil)
}

func inheritDown(node *ActivatedRouteSnapshot, fromComponentless map[string]string, fromComponentlessData map[string]any, parentParams map[string]string, parentData map[string]any) {
	params := make(map[string]string, len(fromComponentless)+len(node.ownParams))
	for k, v := range fromComponentless {
		params[k] = v
	}
	data := make(map[string]any, len(fromComponentlessData)+len(node.resolved))
	for k, v := range fromComponentlessData {
		data[k] = v
	}
	if node.Route != nil && node.Route.Path == "" {
		// Zero-consuming node: also inherit from the parent's effective maps.
		for k, v := range parentParams {
			params[k] = v
		}
		for k, v := range parentData {
			data[k] = v
		}
	}
	for k, v := range node.ownParams {
		params[k] = v
	}
	if node.Route != nil {
		for k, v := range node.Route.Data {
			data[k] = v
		}
	}
	for k, v := range node.resolved {
		data[k] = v
	}
	node.Params = params
	node.Data = data

	childComponentless, childComponentlessData := fromComponentless, fromComponentlessData
	if node.Route != nil && node.Route.componentless() {
		childComponentless = params
		childComponentlessData = data
	}
	for _, child := range node.children {
		inheritDown(child, childComponentless, childComponentlessData, params, data)
	}
}
