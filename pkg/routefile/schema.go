package routefile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sextant-dev/sextant/pkg/router"
)

// Document is the top level of a route file.
type Document struct {
	Routes []RouteSpec `yaml:"routes" json:"routes"`
}

// RouteSpec is one declared route. Component, guard and resolver fields name
// registry entries rather than holding values.
type RouteSpec struct {
	Path             string            `yaml:"path" json:"path"`
	PathMatch        string            `yaml:"pathMatch,omitempty" json:"pathMatch,omitempty"`
	Component        string            `yaml:"component,omitempty" json:"component,omitempty"`
	Outlet           string            `yaml:"outlet,omitempty" json:"outlet,omitempty"`
	RedirectTo       string            `yaml:"redirectTo,omitempty" json:"redirectTo,omitempty"`
	CanActivate      []string          `yaml:"canActivate,omitempty" json:"canActivate,omitempty"`
	CanActivateChild []string          `yaml:"canActivateChild,omitempty" json:"canActivateChild,omitempty"`
	CanDeactivate    []string          `yaml:"canDeactivate,omitempty" json:"canDeactivate,omitempty"`
	CanLoad          []string          `yaml:"canLoad,omitempty" json:"canLoad,omitempty"`
	Resolve          map[string]string `yaml:"resolve,omitempty" json:"resolve,omitempty"`
	Data             map[string]any    `yaml:"data,omitempty" json:"data,omitempty"`
	Children         []RouteSpec       `yaml:"children,omitempty" json:"children,omitempty"`
	LoadChildren     string            `yaml:"loadChildren,omitempty" json:"loadChildren,omitempty"`
}

// Parse decodes a route document. YAML is a superset of JSON, so both
// formats go through the same decoder.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("routefile: parse: %w", err)
	}
	return &doc, nil
}

// Build converts the document into a route configuration, resolving every
// name through reg.
func (d *Document) Build(reg *Registry) ([]*router.Route, error) {
	return buildRoutes(d.Routes, reg)
}

func buildRoutes(specs []RouteSpec, reg *Registry) ([]*router.Route, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	routes := make([]*router.Route, 0, len(specs))
	for _, spec := range specs {
		route, err := buildRoute(spec, reg)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

func buildRoute(spec RouteSpec, reg *Registry) (*router.Route, error) {
	route := &router.Route{
		Path:         spec.Path,
		Outlet:       spec.Outlet,
		RedirectTo:   spec.RedirectTo,
		Data:         spec.Data,
		LoadChildren: spec.LoadChildren,
	}

	switch spec.PathMatch {
	case "", "prefix":
		route.PathMatch = router.MatchPrefix
	case "full":
		route.PathMatch = router.MatchFull
	default:
		return nil, fmt.Errorf("routefile: route %q: invalid pathMatch %q", spec.Path, spec.PathMatch)
	}

	if spec.Component != "" {
		component, err := reg.component(spec.Component)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", spec.Path, err)
		}
		route.Component = component
	}

	for _, name := range spec.CanActivate {
		fn, ok := reg.canActivate[name]
		if !ok {
			return nil, fmt.Errorf("routefile: route %q: unknown canActivate guard %q", spec.Path, name)
		}
		route.CanActivate = append(route.CanActivate, fn)
	}
	for _, name := range spec.CanActivateChild {
		fn, ok := reg.canActivateChild[name]
		if !ok {
			return nil, fmt.Errorf("routefile: route %q: unknown canActivateChild guard %q", spec.Path, name)
		}
		route.CanActivateChild = append(route.CanActivateChild, fn)
	}
	for _, name := range spec.CanDeactivate {
		fn, ok := reg.canDeactivate[name]
		if !ok {
			return nil, fmt.Errorf("routefile: route %q: unknown canDeactivate guard %q", spec.Path, name)
		}
		route.CanDeactivate = append(route.CanDeactivate, fn)
	}
	for _, name := range spec.CanLoad {
		fn, ok := reg.canLoad[name]
		if !ok {
			return nil, fmt.Errorf("routefile: route %q: unknown canLoad guard %q", spec.Path, name)
		}
		route.CanLoad = append(route.CanLoad, fn)
	}

	if len(spec.Resolve) > 0 {
		route.Resolve = make(map[string]router.ResolveFunc, len(spec.Resolve))
		for key, name := range spec.Resolve {
			fn, ok := reg.resolvers[name]
			if !ok {
				return nil, fmt.Errorf("routefile: route %q: unknown resolver %q", spec.Path, name)
			}
			route.Resolve[key] = fn
		}
	}

	children, err := buildRoutes(spec.Children, reg)
	if err != nil {
		return nil, err
	}
	route.Children = children
	return route, nil
}
