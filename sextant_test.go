package sextant

import (
	"context"
	"testing"
)

func TestFacadeNavigation(t *testing.T) {
	routes := []*Route{
		{Path: "", RedirectTo: "home", PathMatch: MatchFull},
		{Path: "home", Component: "home"},
		{Path: "items/:id", Component: "item"},
	}

	r, err := New(routes)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var stages []Stage
	r.AddObserver(func(ev Event) { stages = append(stages, ev.Stage) })

	ok, err := r.NavigateByURL(context.Background(), "/items/7;mode=edit")
	if !ok || err != nil {
		t.Fatalf("NavigateByURL = (%v, %v)", ok, err)
	}
	if got := r.URL(); got != "/items/7;mode=edit" {
		t.Errorf("URL() = %q", got)
	}

	snap := r.Snapshot()
	node := snap.Root().Children()[0]
	if node.Params["id"] != "7" || node.Params["mode"] != "edit" {
		t.Errorf("params = %v", node.Params)
	}
	if stages[len(stages)-1] != StageSucceeded {
		t.Errorf("stages = %v", stages)
	}
}

func TestFacadeURLTree(t *testing.T) {
	tree, err := ParseURL("/a/b?x=1")
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	if got := SerializeURL(tree); got != "/a/b?x=1" {
		t.Errorf("SerializeURL = %q", got)
	}

	prefix, err := ParseURL("/a")
	if err != nil {
		t.Fatal(err)
	}
	if !ContainsTree(tree, prefix, false) {
		t.Error("ContainsTree(/a/b, /a, prefix) = false")
	}
}
