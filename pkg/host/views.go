package host

import (
	"github.com/sextant-dev/sextant/pkg/router"
	"github.com/sextant-dev/sextant/pkg/urltree"
)

// segmentView is the JSON form of one URL segment.
type segmentView struct {
	Path   string            `json:"path"`
	Matrix map[string]string `json:"matrix,omitempty"`
}

// groupView is the JSON form of one URL tree level.
type groupView struct {
	Segments []segmentView        `json:"segments,omitempty"`
	Children map[string]groupView `json:"children,omitempty"`
}

// urlTreeView is the JSON form of a parsed URL.
type urlTreeView struct {
	URL      string            `json:"url"`
	Root     groupView         `json:"root"`
	Query    map[string]string `json:"query,omitempty"`
	Fragment string            `json:"fragment,omitempty"`
}

func segmentViews(segments []urltree.Segment) []segmentView {
	views := make([]segmentView, 0, len(segments))
	for _, seg := range segments {
		v := segmentView{Path: seg.Path}
		if seg.Matrix.Len() > 0 {
			v.Matrix = seg.Matrix.Map()
		}
		views = append(views, v)
	}
	return views
}

func buildGroupView(g *urltree.SegmentGroup) groupView {
	v := groupView{Segments: segmentViews(g.Segments)}
	if g.HasChildren() {
		v.Children = make(map[string]groupView, len(g.Children))
		for outlet, child := range g.Children {
			v.Children[outlet] = buildGroupView(child)
		}
	}
	return v
}

func treeView(t *urltree.Tree) urlTreeView {
	v := urlTreeView{
		URL:      urltree.Serialize(t),
		Root:     buildGroupView(t.Root),
		Fragment: t.Fragment,
	}
	if t.Query.Len() > 0 {
		v.Query = t.Query.Map()
	}
	return v
}

// nodeView is the JSON form of one activated route snapshot.
type nodeView struct {
	Outlet    string            `json:"outlet"`
	URL       []segmentView     `json:"url,omitempty"`
	Component any               `json:"component,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Data      map[string]any    `json:"data,omitempty"`
	Children  []nodeView        `json:"children,omitempty"`
}

// stateView is the JSON form of a committed router state.
type stateView struct {
	URL      string            `json:"url"`
	Query    map[string]string `json:"query,omitempty"`
	Fragment string            `json:"fragment,omitempty"`
	Tree     []nodeView        `json:"tree"`
}

func buildNodeView(snap *router.ActivatedRouteSnapshot) nodeView {
	v := nodeView{
		Outlet:    snap.Outlet,
		URL:       segmentViews(snap.URL),
		Component: snap.Component(),
		Params:    snap.Params,
		Data:      snap.Data,
	}
	for _, child := range snap.Children() {
		v.Children = append(v.Children, buildNodeView(child))
	}
	return v
}

func buildStateView(snap *router.RouterStateSnapshot) stateView {
	v := stateView{URL: snap.URL, Fragment: snap.Fragment()}
	if q := snap.Query(); q.Len() > 0 {
		v.Query = q.Map()
	}
	for _, child := range snap.Root().Children() {
		v.Tree = append(v.Tree, buildNodeView(child))
	}
	return v
}

// routeView is the JSON form of one configuration node.
type routeView struct {
	Path         string         `json:"path"`
	PathMatch    string         `json:"pathMatch,omitempty"`
	Component    any            `json:"component,omitempty"`
	Outlet       string         `json:"outlet,omitempty"`
	RedirectTo   string         `json:"redirectTo,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	Guarded      bool           `json:"guarded,omitempty"`
	LoadChildren string         `json:"loadChildren,omitempty"`
	Children     []routeView    `json:"children,omitempty"`
}

func routesView(config []*router.Route) []routeView {
	views := make([]routeView, 0, len(config))
	for _, route := range config {
		v := routeView{
			Path:         route.Path,
			Component:    route.Component,
			Outlet:       route.Outlet,
			RedirectTo:   route.RedirectTo,
			Data:         route.Data,
			LoadChildren: route.LoadChildren,
			Children:     routesView(route.Children),
		}
		if route.PathMatch == router.MatchFull {
			v.PathMatch = "full"
		}
		v.Guarded = len(route.CanActivate) > 0 ||
			len(route.CanActivateChild) > 0 ||
			len(route.CanDeactivate) > 0 ||
			len(route.CanLoad) > 0
		views = append(views, v)
	}
	return views
}
