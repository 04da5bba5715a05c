package main

import (
	"context"

	"github.com/sextant-dev/sextant/pkg/routefile"
	"github.com/sextant-dev/sextant/pkg/router"
	"github.com/sextant-dev/sextant/pkg/urltree"
)

// permissiveRegistry builds a registry for CLI use, where no application code
// exists to back the names a document uses: components map to their own
// names, guards allow every navigation, resolvers produce nil. The returned
// list holds the guard and resolver names that were stubbed.
func permissiveRegistry(doc *routefile.Document) (*routefile.Registry, []string) {
	reg := routefile.NewRegistry()
	var stubbed []string
	seen := make(map[string]bool)

	stub := func(name string) {
		if !seen[name] {
			seen[name] = true
			stubbed = append(stubbed, name)
		}
	}

	allowActivate := func(ctx context.Context, route *router.ActivatedRouteSnapshot, state *router.RouterStateSnapshot) (bool, error) {
		return true, nil
	}
	allowDeactivate := func(ctx context.Context, route *router.ActivatedRouteSnapshot, current, next *router.RouterStateSnapshot) (bool, error) {
		return true, nil
	}
	allowLoad := func(ctx context.Context, route *router.Route, segments []urltree.Segment) (bool, error) {
		return true, nil
	}
	nilResolver := func(ctx context.Context, route *router.ActivatedRouteSnapshot, state *router.RouterStateSnapshot) (any, error) {
		return nil, nil
	}

	var walk func(specs []routefile.RouteSpec)
	walk = func(specs []routefile.RouteSpec) {
		for _, spec := range specs {
			if spec.Component != "" {
				reg.Component(spec.Component, spec.Component)
			}
			for _, name := range spec.CanActivate {
				reg.CanActivate(name, allowActivate)
				stub(name)
			}
			for _, name := range spec.CanActivateChild {
				reg.CanActivateChild(name, allowActivate)
				stub(name)
			}
			for _, name := range spec.CanDeactivate {
				reg.CanDeactivate(name, allowDeactivate)
				stub(name)
			}
			for _, name := range spec.CanLoad {
				reg.CanLoad(name, allowLoad)
				stub(name)
			}
			for _, name := range spec.Resolve {
				reg.Resolver(name, nilResolver)
				stub(name)
			}
			walk(spec.Children)
		}
	}
	walk(doc.Routes)
	return reg, stubbed
}
