package router

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// mustApplyRedirects runs the redirect phase and returns the serialized
// result.
func mustApplyRedirects(t *testing.T, r *Router, url string) string {
	t.Helper()
	tree, err := r.applyRedirects(context.Background(), mustParse(t, url), r.Config())
	if err != nil {
		t.Fatalf("applyRedirects(%q): %v", url, err)
	}
	return urltree.Serialize(tree)
}

func TestApplyRedirectsRelative(t *testing.T) {
	config := []*Route{
		{Path: "old/:id", RedirectTo: "new/:id"},
		{Path: "new/:id", Component: "item"},
	}
	r := newTestRouter(t, config)

	tests := []struct {
		url  string
		want string
	}{
		{"/old/5", "/new/5"},
		// Matrix parameters ride along on the captured segment.
		{"/old/5;x=1", "/new/5;x=1"},
		{"/new/7", "/new/7"},
	}
	for _, tt := range tests {
		if got := mustApplyRedirects(t, r, tt.url); got != tt.want {
			t.Errorf("applyRedirects(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestApplyRedirectsOnePerLevel(t *testing.T) {
	// a redirects to b; b's own redirect to c must not fire for the
	// substituted segments, so the navigation lands on the b component.
	config := []*Route{
		{Path: "a", RedirectTo: "b"},
		{Path: "b", RedirectTo: "c"},
		{Path: "b", Component: "b"},
		{Path: "c", Component: "c"},
	}
	r := newTestRouter(t, config)

	if got := mustApplyRedirects(t, r, "/a"); got != "/b" {
		t.Errorf("applyRedirects(/a) = %q, want %q", got, "/b")
	}
	// A URL that arrives at b directly still takes b's redirect.
	if got := mustApplyRedirects(t, r, "/b"); got != "/c" {
		t.Errorf("applyRedirects(/b) = %q, want %q", got, "/c")
	}
}

func TestApplyRedirectsDeeperLevelStillFires(t *testing.T) {
	// The one-redirect limit is per level, not per navigation.
	config := []*Route{
		{Path: "a", RedirectTo: "b"},
		{Path: "b", Component: "b", Children: []*Route{
			{Path: "old", RedirectTo: "new"},
			{Path: "new", Component: "new"},
		}},
	}
	r := newTestRouter(t, config)

	if got := mustApplyRedirects(t, r, "/a/old"); got != "/b/new" {
		t.Errorf("applyRedirects(/a/old) = %q, want %q", got, "/b/new")
	}
}

func TestApplyRedirectsAbsolute(t *testing.T) {
	config := []*Route{
		{Path: "legacy", RedirectTo: "/library"},
		{Path: "library", Component: "lib"},
	}
	r := newTestRouter(t, config)

	// Query and fragment survive the restart.
	if got := mustApplyRedirects(t, r, "/legacy?q=1#top"); got != "/library?q=1#top" {
		t.Errorf("applyRedirects(/legacy?q=1#top) = %q, want %q", got, "/library?q=1#top")
	}
}

func TestApplyRedirectsAbsoluteDisablesFurtherRedirects(t *testing.T) {
	// After an absolute redirect the expansion restarts with all redirects
	// off; home's own redirect must not fire and matching fails.
	config := []*Route{
		{Path: "legacy", RedirectTo: "/home"},
		{Path: "home", RedirectTo: "welcome"},
		{Path: "welcome", Component: "welcome"},
	}
	r := newTestRouter(t, config)

	_, err := r.applyRedirects(context.Background(), mustParse(t, "/legacy"), r.Config())
	var noMatch *NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("err = %v, want *NoMatchError", err)
	}
}

func TestApplyRedirectsDefaultRoute(t *testing.T) {
	config := []*Route{
		{Path: "", RedirectTo: "dashboard", PathMatch: MatchFull},
		{Path: "dashboard", Component: "dash"},
	}
	r := newTestRouter(t, config)

	if got := mustApplyRedirects(t, r, "/"); got != "/dashboard" {
		t.Errorf("applyRedirects(/) = %q, want %q", got, "/dashboard")
	}
}

func TestApplyRedirectsUnknownTemplateParam(t *testing.T) {
	config := []*Route{
		{Path: "old", RedirectTo: "new/:id"},
		{Path: "new/:id", Component: "item"},
	}
	r := newTestRouter(t, config)

	_, err := r.applyRedirects(context.Background(), mustParse(t, "/old"), r.Config())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestLazyLoadFetchesOnceGuardsEveryTime(t *testing.T) {
	var loadCalls, guardCalls atomic.Int32
	guard := func(ctx context.Context, route *Route, segments []urltree.Segment) (bool, error) {
		guardCalls.Add(1)
		return true, nil
	}
	loader := RouteLoaderFunc(func(ctx context.Context, ref string) ([]*Route, error) {
		loadCalls.Add(1)
		return []*Route{{Path: "users", Component: "users"}}, nil
	})
	config := []*Route{
		{Path: "admin", LoadChildren: "admin/routes", CanLoad: []CanLoadFunc{guard}},
	}
	r := newTestRouter(t, config, WithLoader(loader))

	for i := 0; i < 2; i++ {
		if got := mustApplyRedirects(t, r, "/admin/users"); got != "/admin/users" {
			t.Fatalf("applyRedirects(/admin/users) = %q, want %q", got, "/admin/users")
		}
	}
	if got := loadCalls.Load(); got != 1 {
		t.Errorf("loader calls = %d, want 1", got)
	}
	if got := guardCalls.Load(); got != 2 {
		t.Errorf("guard calls = %d, want 2", got)
	}
}

func TestLazyLoadBlockedByCanLoad(t *testing.T) {
	deny := func(ctx context.Context, route *Route, segments []urltree.Segment) (bool, error) {
		return false, nil
	}
	loader := RouteLoaderFunc(func(ctx context.Context, ref string) ([]*Route, error) {
		t.Fatal("loader must not be called when CanLoad rejects")
		return nil, nil
	})
	config := []*Route{
		{Path: "admin", LoadChildren: "admin/routes", CanLoad: []CanLoadFunc{deny}},
	}
	r := newTestRouter(t, config, WithLoader(loader))

	_, err := r.applyRedirects(context.Background(), mustParse(t, "/admin/users"), r.Config())
	var rejected *GuardRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *GuardRejectedError", err)
	}
	if rejected.Guard != "CanLoad" {
		t.Errorf("Guard = %q, want %q", rejected.Guard, "CanLoad")
	}
}

func TestLazyLoadWithoutLoader(t *testing.T) {
	r := newTestRouter(t, []*Route{{Path: "admin", LoadChildren: "admin/routes"}})

	_, err := r.applyRedirects(context.Background(), mustParse(t, "/admin/users"), r.Config())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

func TestApplyRedirectsWildcardRedirect(t *testing.T) {
	config := []*Route{
		{Path: "known", Component: "known"},
		{Path: "**", RedirectTo: "/known"},
	}
	r := newTestRouter(t, config)

	if got := mustApplyRedirects(t, r, "/does/not/exist"); got != "/known" {
		t.Errorf("applyRedirects(/does/not/exist) = %q, want %q", got, "/known")
	}
}
