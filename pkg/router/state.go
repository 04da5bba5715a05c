package router

import (
	"maps"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// ActivatedRoute is the live counterpart of an ActivatedRouteSnapshot: one
// identity per (outlet path, config node) that survives across navigations
// as long as the configuration keeps producing it. Its cells push new values
// when a navigation reuses the node with different parameters.
type ActivatedRoute struct {
	// Route is the configuration node this activation belongs to.
	Route *Route

	// Outlet is the outlet the activation occupies.
	Outlet string

	params   *Cell[map[string]string]
	data     *Cell[map[string]any]
	url      *Cell[[]urltree.Segment]
	snapshot *Cell[*ActivatedRouteSnapshot]

	parent   *ActivatedRoute
	children []*ActivatedRoute
}

func newActivatedRoute(snap *ActivatedRouteSnapshot) *ActivatedRoute {
	return &ActivatedRoute{
		Route:    snap.Route,
		Outlet:   snap.Outlet,
		params:   NewCell(snap.Params),
		data:     NewCell(snap.Data),
		url:      NewCell(snap.URL),
		snapshot: NewCell(snap),
	}
}

// Params is the cell of effective parameter maps.
func (r *ActivatedRoute) Params() *Cell[map[string]string] { return r.params }

// Data is the cell of effective data maps.
func (r *ActivatedRoute) Data() *Cell[map[string]any] { return r.data }

// URL is the cell of consumed segment slices.
func (r *ActivatedRoute) URL() *Cell[[]urltree.Segment] { return r.url }

// SnapshotCell is the cell of point-in-time snapshots.
func (r *ActivatedRoute) SnapshotCell() *Cell[*ActivatedRouteSnapshot] { return r.snapshot }

// Snapshot returns the current snapshot.
func (r *ActivatedRoute) Snapshot() *ActivatedRouteSnapshot { return r.snapshot.Get() }

// Parent returns the parent live node, or nil at the root.
func (r *ActivatedRoute) Parent() *ActivatedRoute { return r.parent }

// Children returns the current child nodes.
func (r *ActivatedRoute) Children() []*ActivatedRoute { return r.children }

// push updates the node's cells from a new snapshot. Unchanged values are
// not re-emitted.
func (r *ActivatedRoute) push(snap *ActivatedRouteSnapshot) {
	old := r.snapshot.Get()
	r.snapshot.Set(snap)
	if old == nil || !maps.Equal(old.Params, snap.Params) {
		r.params.Set(snap.Params)
	}
	if old == nil || !dataEqual(old.Data, snap.Data) {
		r.data.Set(snap.Data)
	}
	if old == nil || !segmentsEqual(old.URL, snap.URL) {
		r.url.Set(snap.URL)
	}
}

func (r *ActivatedRoute) teardown() {
	r.params.close()
	r.data.close()
	r.url.close()
	r.snapshot.close()
	r.parent = nil
	r.children = nil
}

func dataEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func segmentsEqual(a, b []urltree.Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// RouterState is the committed live tree: the current snapshot plus the
// identity table mapping outlet-path keys to live nodes. Only the navigation
// coordinator mutates it, and only at commit.
type RouterState struct {
	snapshot *RouterStateSnapshot
	root     *ActivatedRoute
	nodes    map[string]*ActivatedRoute
}

func newRouterState() *RouterState {
	return &RouterState{nodes: make(map[string]*ActivatedRoute)}
}

// Snapshot returns the committed state snapshot, or nil before the first
// successful navigation.
func (s *RouterState) Snapshot() *RouterStateSnapshot { return s.snapshot }

// Root returns the live root node, or nil before the first commit.
func (s *RouterState) Root() *ActivatedRoute { return s.root }

// Lookup returns the live node for a snapshot's identity, if present.
func (s *RouterState) Lookup(snap *ActivatedRouteSnapshot) *ActivatedRoute {
	return s.nodes[snap.identityKey()]
}

// apply commits next as the current state. Nodes whose identity exists in
// the table are kept and their cells updated; new identities get fresh live
// nodes; identities absent from next are torn down.
func (s *RouterState) apply(next *RouterStateSnapshot) {
	seen := make(map[string]*ActivatedRoute, len(s.nodes))
	s.root = s.applyNode(next.Root(), nil, seen)
	for key, node := range s.nodes {
		if _, ok := seen[key]; !ok {
			node.teardown()
		}
	}
	s.nodes = seen
	s.snapshot = next
}

func (s *RouterState) applyNode(snap *ActivatedRouteSnapshot, parent *ActivatedRoute, seen map[string]*ActivatedRoute) *ActivatedRoute {
	key := snap.identityKey()
	node := s.nodes[key]
	if node == nil {
		node = newActivatedRoute(snap)
	} else {
		node.push(snap)
	}
	node.parent = parent
	seen[key] = node

	children := make([]*ActivatedRoute, 0, len(snap.Children()))
	for _, childSnap := range snap.Children() {
		children = append(children, s.applyNode(childSnap, node, seen))
	}
	node.children = children
	return node
}
