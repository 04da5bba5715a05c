// Package routefile loads declarative route configurations from YAML or
// JSON documents and binds the names they use to Go values through a
// Registry. Local directories and S3 buckets can both serve documents, and
// both implement the router's lazy-load contract.
package routefile

import (
	"fmt"

	"github.com/sextant-dev/sextant/pkg/router"
)

// Registry maps the names used in route documents to components, guards and
// resolvers. Register everything before building routes; building fails on
// the first unknown name.
type Registry struct {
	components       map[string]any
	canActivate      map[string]router.CanActivateFunc
	canActivateChild map[string]router.CanActivateChildFunc
	canDeactivate    map[string]router.CanDeactivateFunc
	canLoad          map[string]router.CanLoadFunc
	resolvers        map[string]router.ResolveFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components:       make(map[string]any),
		canActivate:      make(map[string]router.CanActivateFunc),
		canActivateChild: make(map[string]router.CanActivateChildFunc),
		canDeactivate:    make(map[string]router.CanDeactivateFunc),
		canLoad:          make(map[string]router.CanLoadFunc),
		resolvers:        make(map[string]router.ResolveFunc),
	}
}

// Component registers a component reference under name. It returns the
// registry for chaining.
func (r *Registry) Component(name string, component any) *Registry {
	r.components[name] = component
	return r
}

// CanActivate registers an activation guard under name.
func (r *Registry) CanActivate(name string, fn router.CanActivateFunc) *Registry {
	r.canActivate[name] = fn
	return r
}

// CanActivateChild registers a child-activation guard under name.
func (r *Registry) CanActivateChild(name string, fn router.CanActivateChildFunc) *Registry {
	r.canActivateChild[name] = fn
	return r
}

// CanDeactivate registers a deactivation guard under name.
func (r *Registry) CanDeactivate(name string, fn router.CanDeactivateFunc) *Registry {
	r.canDeactivate[name] = fn
	return r
}

// CanLoad registers a lazy-load guard under name.
func (r *Registry) CanLoad(name string, fn router.CanLoadFunc) *Registry {
	r.canLoad[name] = fn
	return r
}

// Resolver registers a resolver under name.
func (r *Registry) Resolver(name string, fn router.ResolveFunc) *Registry {
	r.resolvers[name] = fn
	return r
}

func (r *Registry) component(name string) (any, error) {
	c, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("routefile: unknown component %q", name)
	}
	return c, nil
}
