package router

import "maps"

// reusePair links the previous and next snapshot of one reused activation.
type reusePair struct {
	prev *ActivatedRouteSnapshot
	next *ActivatedRouteSnapshot
}

// reconciliation classifies every node of the previous and next state trees.
// A node is the same activation when it has the same identity key (config
// node reached through the same outlet chain with a reusable ancestor
// chain), regardless of parameter values.
type reconciliation struct {
	// activations are next-tree nodes with no previous counterpart,
	// parent-first.
	activations []*ActivatedRouteSnapshot

	// deactivations are previous-tree nodes with no next counterpart,
	// deepest-first.
	deactivations []*ActivatedRouteSnapshot

	// updates are reused nodes whose parameters, data or consumed URL
	// changed; the live node's cells push the new values at commit.
	updates []reusePair

	// reused are all matched pairs, including unchanged ones, parent-first.
	reused []reusePair
}

// reconcile diffs the previous committed snapshot tree against the next one.
// prev may be nil on the first navigation, in which case every next node is
// an activation.
func reconcile(prev, next *RouterStateSnapshot) *reconciliation {
	d := &reconciliation{}
	var prevRoot *ActivatedRouteSnapshot
	if prev != nil {
		prevRoot = prev.Root()
	}
	d.diffNode(prevRoot, next.Root())
	return d
}

func (d *reconciliation) diffNode(prev, next *ActivatedRouteSnapshot) {
	// Carry resolved data forward so a reused node that does not rerun its
	// resolvers keeps its values.
	if prev != nil && next.resolved == nil && len(prev.resolved) > 0 {
		next.resolved = maps.Clone(prev.resolved)
	}

	pair := reusePair{prev: prev, next: next}
	if prev != nil {
		d.reused = append(d.reused, pair)
		if !maps.Equal(prev.ownParams, next.ownParams) || !segmentsEqual(prev.URL, next.URL) {
			d.updates = append(d.updates, pair)
		}
	}

	prevChildren := make(map[string]*ActivatedRouteSnapshot)
	if prev != nil {
		for _, c := range prev.Children() {
			prevChildren[childKey(c)] = c
		}
	}
	for _, c := range next.Children() {
		if p, ok := prevChildren[childKey(c)]; ok {
			delete(prevChildren, childKey(c))
			d.diffNode(p, c)
		} else {
			d.activateSubtree(c)
		}
	}
	for _, c := range prev.childrenOrNil() {
		if _, orphaned := prevChildren[childKey(c)]; orphaned {
			d.deactivateSubtree(c)
		}
	}
}

// activateSubtree marks a next-tree subtree for creation, parent before
// children.
func (d *reconciliation) activateSubtree(node *ActivatedRouteSnapshot) {
	d.activations = append(d.activations, node)
	for _, c := range node.Children() {
		d.activateSubtree(c)
	}
}

// deactivateSubtree marks a previous-tree subtree for destruction, children
// before parent so the most specific node goes first.
func (d *reconciliation) deactivateSubtree(node *ActivatedRouteSnapshot) {
	for _, c := range node.Children() {
		d.deactivateSubtree(c)
	}
	d.deactivations = append(d.deactivations, node)
}

// childKey identifies a child within its parent: outlet plus config node
// identity. Parameter values deliberately play no part.
func childKey(s *ActivatedRouteSnapshot) string {
	return s.identityKey()
}

func (s *ActivatedRouteSnapshot) childrenOrNil() []*ActivatedRouteSnapshot {
	if s == nil {
		return nil
	}
	return s.children
}
