package router

import (
	"context"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// Guard and resolver functions are plain blocking functions: the context
// carries cancellation for the navigation they belong to, and returning is
// the single completion signal. Deferred or stream-backed implementations
// adapt with AwaitBool / AwaitValue, which take the first delivered value.

// CanActivateFunc decides whether a node marked for creation may activate.
// route is the candidate node's snapshot, state the target state snapshot.
type CanActivateFunc func(ctx context.Context, route *ActivatedRouteSnapshot, state *RouterStateSnapshot) (bool, error)

// CanActivateChildFunc decides whether a descendant of the guarded node may
// activate or change parameters. child is the descendant's snapshot.
type CanActivateChildFunc func(ctx context.Context, child *ActivatedRouteSnapshot, state *RouterStateSnapshot) (bool, error)

// CanDeactivateFunc confirms destruction of a node. route is the node's
// current snapshot, current the committed state, next the target state.
// A confirmation, once given, is not reverted if a later guard aborts the
// navigation.
type CanDeactivateFunc func(ctx context.Context, route *ActivatedRouteSnapshot, current, next *RouterStateSnapshot) (bool, error)

// CanLoadFunc gates fetching a lazy child configuration. route is the config
// node carrying LoadChildren, segments the URL segments the navigation wants
// to consume inside the subtree.
type CanLoadFunc func(ctx context.Context, route *Route, segments []urltree.Segment) (bool, error)

// ResolveFunc produces one data value for a node before it activates.
type ResolveFunc func(ctx context.Context, route *ActivatedRouteSnapshot, state *RouterStateSnapshot) (any, error)

// AwaitBool returns the first value delivered on ch, or false and the
// context's error if the navigation is cancelled first. It adapts
// push-stream-like guard sources to the blocking guard contract.
func AwaitBool(ctx context.Context, ch <-chan bool) (bool, error) {
	select {
	case v, ok := <-ch:
		if !ok {
			return false, nil
		}
		return v, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// AwaitValue returns the first value delivered on ch, or the context's error
// if the navigation is cancelled first.
func AwaitValue[T any](ctx context.Context, ch <-chan T) (T, error) {
	var zero T
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, nil
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
