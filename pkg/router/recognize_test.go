package router

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

func mustParse(t *testing.T, url string) *urltree.Tree {
	t.Helper()
	tree, err := urltree.Parse(url)
	if err != nil {
		t.Fatalf("Parse(%q): %v", url, err)
	}
	return tree
}

func newTestRouter(t *testing.T, config []*Route, opts ...Option) *Router {
	t.Helper()
	r, err := New(config, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

// mustRecognize matches url against the router's configuration without
// applying redirects.
func mustRecognize(t *testing.T, r *Router, url string) *RouterStateSnapshot {
	t.Helper()
	state, err := r.recognize(mustParse(t, url), r.Config())
	if err != nil {
		t.Fatalf("recognize(%q): %v", url, err)
	}
	return state
}

// firstChild descends the first child at every level and returns the chain of
// components from the root (exclusive) to the leaf.
func componentChain(state *RouterStateSnapshot) []any {
	var chain []any
	for node := state.Root(); len(node.Children()) > 0; {
		node = node.Children()[0]
		chain = append(chain, node.Component())
	}
	return chain
}

func TestRecognizeDeclarationOrderWins(t *testing.T) {
	// Both siblings can consume the URL; the first declared wins even though
	// the second is more specific.
	config := []*Route{
		{Path: ":x", Component: "variable", Children: []*Route{
			{Path: "b", Component: "leaf"},
		}},
		{Path: "a", Component: "literal", Children: []*Route{
			{Path: "b", Component: "leaf"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/a/b")

	top := state.Root().Children()[0]
	if top.Component() != "variable" {
		t.Errorf("top component = %v, want %q", top.Component(), "variable")
	}
	if got := top.Params["x"]; got != "a" {
		t.Errorf(`Params["x"] = %q, want "a"`, got)
	}
}

func TestRecognizeBacktracksAcrossSiblings(t *testing.T) {
	// The first sibling consumes "a" but its children cannot consume "c"; the
	// matcher abandons it and retries the next sibling with fresh captures.
	config := []*Route{
		{Path: "a", Component: "literal", Children: []*Route{
			{Path: "b", Component: "b"},
		}},
		{Path: ":folder", Component: "variable", Children: []*Route{
			{Path: "c", Component: "c"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/a/c")

	want := []any{"variable", "c"}
	if diff := cmp.Diff(want, componentChain(state)); diff != "" {
		t.Errorf("component chain mismatch (-want +got):\n%s", diff)
	}
	top := state.Root().Children()[0]
	if got := top.Params["folder"]; got != "a" {
		t.Errorf(`Params["folder"] = %q, want "a"`, got)
	}
}

func TestRecognizeMatrixParamsScopeToConsumingNode(t *testing.T) {
	config := []*Route{
		{Path: "inbox", Component: "list", Children: []*Route{
			{Path: ":id", Component: "message"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/inbox;a=1/33;b=2")

	list := state.Root().Children()[0]
	msg := list.Children()[0]

	if diff := cmp.Diff(map[string]string{"a": "1"}, list.Params); diff != "" {
		t.Errorf("list params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"id": "33", "b": "2"}, msg.Params); diff != "" {
		t.Errorf("message params mismatch (-want +got):\n%s", diff)
	}
}

func TestRecognizeComponentlessParamsReachDescendants(t *testing.T) {
	config := []*Route{
		{Path: "p/:pid", Data: map[string]any{"role": "admin"}, Children: []*Route{
			{Path: "child/:cid", Component: "kid", Children: []*Route{
				{Path: "grand", Component: "grand"},
			}},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/p/5/child/7/grand")

	parent := state.Root().Children()[0]
	if parent.Component() != nil {
		t.Fatalf("parent component = %v, want nil", parent.Component())
	}
	kid := parent.Children()[0]
	grand := kid.Children()[0]

	if diff := cmp.Diff(map[string]string{"pid": "5", "cid": "7"}, kid.Params); diff != "" {
		t.Errorf("kid params mismatch (-want +got):\n%s", diff)
	}
	// Componentless ancestors flow to every descendant, not only direct
	// children.
	if got := grand.Params["pid"]; got != "5" {
		t.Errorf(`grand Params["pid"] = %q, want "5"`, got)
	}
	if got := grand.Params["cid"]; got != "" {
		t.Errorf(`grand Params["cid"] = %q, want absent`, got)
	}
	if got := kid.Data["role"]; got != "admin" {
		t.Errorf(`kid Data["role"] = %v, want "admin"`, got)
	}
}

func TestRecognizeLocalParamsWinOverInherited(t *testing.T) {
	config := []*Route{
		{Path: ":id", Children: []*Route{
			{Path: "detail/:id", Component: "detail"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/1/detail/2")

	detail := state.Root().Children()[0].Children()[0]
	if got := detail.Params["id"]; got != "2" {
		t.Errorf(`Params["id"] = %q, want "2"`, got)
	}
}

func TestRecognizeEmptyPathChild(t *testing.T) {
	config := []*Route{
		{Path: "a", Component: "parent", Children: []*Route{
			{Path: "", Component: "default"},
			{Path: "b", Component: "bee"},
		}},
	}
	r := newTestRouter(t, config)

	state := mustRecognize(t, r, "/a")
	want := []any{"parent", "default"}
	if diff := cmp.Diff(want, componentChain(state)); diff != "" {
		t.Errorf("/a chain mismatch (-want +got):\n%s", diff)
	}
	child := state.Root().Children()[0].Children()[0]
	if len(child.URL) != 0 {
		t.Errorf("empty-path child consumed %d segments, want 0", len(child.URL))
	}

	state = mustRecognize(t, r, "/a/b")
	want = []any{"parent", "bee"}
	if diff := cmp.Diff(want, componentChain(state)); diff != "" {
		t.Errorf("/a/b chain mismatch (-want +got):\n%s", diff)
	}
}

func TestRecognizeEmptyPathChildInheritsFromParent(t *testing.T) {
	config := []*Route{
		{Path: "team/:tid", Component: "team", Children: []*Route{
			{Path: "", Component: "overview"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/team/9")

	overview := state.Root().Children()[0].Children()[0]
	if got := overview.Params["tid"]; got != "9" {
		t.Errorf(`overview Params["tid"] = %q, want "9"`, got)
	}
}

func TestRecognizeNamedOutlets(t *testing.T) {
	config := []*Route{
		{Path: "a", Component: "main"},
		{Path: "b", Outlet: "side", Component: "aside"},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/a(side:b)")

	children := state.Root().Children()
	if len(children) != 2 {
		t.Fatalf("root has %d children, want 2", len(children))
	}
	if children[0].Outlet != urltree.PrimaryOutlet || children[0].Component() != "main" {
		t.Errorf("children[0] = %s/%v, want primary/main", children[0].Outlet, children[0].Component())
	}
	if children[1].Outlet != "side" || children[1].Component() != "aside" {
		t.Errorf("children[1] = %s/%v, want side/aside", children[1].Outlet, children[1].Component())
	}
}

func TestRecognizeWildcard(t *testing.T) {
	config := []*Route{
		{Path: "a", Component: "a"},
		{Path: "**", Component: "not-found"},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/x/y;q=1")

	node := state.Root().Children()[0]
	if node.Component() != "not-found" {
		t.Fatalf("component = %v, want not-found", node.Component())
	}
	if len(node.URL) != 2 {
		t.Errorf("consumed %d segments, want 2", len(node.URL))
	}
	if got := node.Params["q"]; got != "1" {
		t.Errorf(`Params["q"] = %q, want "1"`, got)
	}
}

func TestRecognizeNoMatch(t *testing.T) {
	r := newTestRouter(t, []*Route{{Path: "a", Component: "a"}})
	_, err := r.recognize(mustParse(t, "/zzz"), r.Config())

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("err = %v, want *NoMatchError", err)
	}
}

func TestRecognizePartialConsumptionFails(t *testing.T) {
	// "a" matches but nothing can consume the leftover "extra".
	r := newTestRouter(t, []*Route{{Path: "a", Component: "a"}})
	_, err := r.recognize(mustParse(t, "/a/extra"), r.Config())

	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("err = %v, want *NoMatchError", err)
	}
}

func TestRecognizeParentAndStateLinks(t *testing.T) {
	config := []*Route{
		{Path: "a", Component: "a", Children: []*Route{
			{Path: "b", Component: "b"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/a/b")

	a := state.Root().Children()[0]
	b := a.Children()[0]
	if b.Parent() != a {
		t.Error("child's Parent() is not its parent node")
	}
	if b.Root() != state.Root() {
		t.Error("child's Root() is not the state root")
	}
	if b.State() != state {
		t.Error("child's State() is not the recognized state")
	}
	path := b.PathFromRoot()
	if len(path) != 2 || path[0] != a || path[1] != b {
		t.Errorf("PathFromRoot() = %v, want [a b]", path)
	}
}
