package router

import (
	"context"
	"sort"
)

// runGuards executes the guard stages against the reconciliation diff, in
// the contract's order: CanDeactivate deepest-first for nodes marked for
// destruction, then for every node marked for creation or parameter change
// the CanActivateChild guards of its ancestors root-to-node, then
// CanActivate for created nodes. CanLoad is not run here; it gates lazy
// fetches during the redirect phase.
//
// The first guard returning false aborts with a *GuardRejectedError. Earlier
// CanDeactivate confirmations are not reverted. A supersession of the
// navigation is checked before each guard commits its result.
func (r *Router) runGuards(ctx context.Context, diff *reconciliation, current, next *RouterStateSnapshot) error {
	for _, snap := range diff.deactivations {
		for _, guard := range snap.Route.CanDeactivate {
			if ctx.Err() != nil {
				return ErrSuperseded
			}
			ok, err := guard(ctx, snap, current, next)
			if err != nil {
				return err
			}
			if !ok {
				return &GuardRejectedError{URL: next.URL, Guard: "CanDeactivate"}
			}
		}
	}

	activated := make(map[*ActivatedRouteSnapshot]bool, len(diff.activations))
	for _, snap := range diff.activations {
		activated[snap] = true
	}

	checks := make([]*ActivatedRouteSnapshot, 0, len(diff.activations)+len(diff.updates))
	checks = append(checks, diff.activations...)
	for _, pair := range diff.updates {
		checks = append(checks, pair.next)
	}

	for _, snap := range checks {
		path := snap.PathFromRoot()
		for _, ancestor := range path[:len(path)-1] {
			for _, guard := range ancestor.Route.CanActivateChild {
				if ctx.Err() != nil {
					return ErrSuperseded
				}
				ok, err := guard(ctx, snap, next)
				if err != nil {
					return err
				}
				if !ok {
					return &GuardRejectedError{URL: next.URL, Guard: "CanActivateChild"}
				}
			}
		}
		if !activated[snap] {
			continue
		}
		for _, guard := range snap.Route.CanActivate {
			if ctx.Err() != nil {
				return ErrSuperseded
			}
			ok, err := guard(ctx, snap, next)
			if err != nil {
				return err
			}
			if !ok {
				return &GuardRejectedError{URL: next.URL, Guard: "CanActivate"}
			}
		}
	}
	return nil
}

// runResolvers executes resolvers root-to-leaf for nodes marked for creation
// or parameter change, then recomputes inherited data so resolved values of
// componentless ancestors reach their descendants. A resolver failure is an
// error, not a cancellation.
func (r *Router) runResolvers(ctx context.Context, diff *reconciliation, next *RouterStateSnapshot) error {
	rerun := make(map[*ActivatedRouteSnapshot]bool, len(diff.activations)+len(diff.updates))
	for _, snap := range diff.activations {
		rerun[snap] = true
	}
	for _, pair := range diff.updates {
		rerun[pair.next] = true
	}

	var resolve func(node *ActivatedRouteSnapshot) error
	resolve = func(node *ActivatedRouteSnapshot) error {
		if rerun[node] && node.Route != nil && len(node.Route.Resolve) > 0 {
			// Parent resolutions must be visible to this node's resolvers.
			applyInheritance(next.Root())

			keys := make([]string, 0, len(node.Route.Resolve))
			for key := range node.Route.Resolve {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				if ctx.Err() != nil {
					return ErrSuperseded
				}
				value, err := node.Route.Resolve[key](ctx, node, next)
				if err != nil {
					return &ResolverError{URL: next.URL, Key: key, Err: err}
				}
				if node.resolved == nil {
					node.resolved = make(map[string]any, len(keys))
				}
				node.resolved[key] = value
			}
		}
		for _, child := range node.Children() {
			if err := resolve(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := resolve(next.Root()); err != nil {
		return err
	}
	applyInheritance(next.Root())
	return nil
}
