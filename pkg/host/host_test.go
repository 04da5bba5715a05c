package host

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sextant-dev/sextant/pkg/history"
	"github.com/sextant-dev/sextant/pkg/router"
)

func testRoutes() []*router.Route {
	return []*router.Route{
		{Path: "", RedirectTo: "dashboard", PathMatch: router.MatchFull},
		{Path: "dashboard", Component: "dashboard"},
		{Path: "team/:id", Component: "team", Children: []*router.Route{
			{Path: "members", Component: "members"},
		}},
	}
}

func newTestServer(t *testing.T, config Config) *httptest.Server {
	t.Helper()
	if config.Routes == nil {
		config.Routes = testRoutes()
	}
	s, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Config{})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestParseEndpoint(t *testing.T) {
	ts := newTestServer(t, Config{})

	var view urlTreeView
	resp := postJSON(t, ts.URL+"/api/parse", urlRequest{URL: "/a;x=1/b?q=2#frag"}, &view)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if view.URL != "/a;x=1/b?q=2#frag" {
		t.Errorf("url = %q", view.URL)
	}
	primary, ok := view.Root.Children["primary"]
	if !ok {
		t.Fatalf("no primary child in %+v", view.Root)
	}
	if len(primary.Segments) != 2 || primary.Segments[0].Path != "a" || primary.Segments[1].Path != "b" {
		t.Errorf("segments = %+v", primary.Segments)
	}
	if primary.Segments[0].Matrix["x"] != "1" {
		t.Errorf("matrix = %v", primary.Segments[0].Matrix)
	}
	if view.Query["q"] != "2" || view.Fragment != "frag" {
		t.Errorf("query = %v, fragment = %q", view.Query, view.Fragment)
	}
}

func TestParseEndpointRejectsMalformedURL(t *testing.T) {
	ts := newTestServer(t, Config{})

	var body map[string]string
	resp := postJSON(t, ts.URL+"/api/parse", urlRequest{URL: "/a;=broken"}, &body)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestNavigateAndState(t *testing.T) {
	ts := newTestServer(t, Config{})

	var nav map[string]any
	postJSON(t, ts.URL+"/api/navigate", urlRequest{URL: "/team/7"}, &nav)
	if nav["committed"] != true {
		t.Fatalf("navigate = %+v", nav)
	}
	if nav["url"] != "/team/7" {
		t.Errorf("url = %v", nav["url"])
	}

	var state stateView
	getJSON(t, ts.URL+"/api/state", &state)
	if state.URL != "/team/7" {
		t.Errorf("state url = %q", state.URL)
	}
	if len(state.Tree) != 1 {
		t.Fatalf("tree = %+v", state.Tree)
	}
	node := state.Tree[0]
	if node.Component != "team" || node.Params["id"] != "7" {
		t.Errorf("node = %+v", node)
	}
}

func TestNavigateFailureReportsError(t *testing.T) {
	ts := newTestServer(t, Config{})

	postJSON(t, ts.URL+"/api/navigate", urlRequest{URL: "/dashboard"}, nil)

	var nav map[string]any
	postJSON(t, ts.URL+"/api/navigate", urlRequest{URL: "/nope"}, &nav)
	if nav["committed"] != false {
		t.Fatalf("navigate = %+v", nav)
	}
	if nav["error"] == nil {
		t.Error("expected an error")
	}
	// The failed navigation must not disturb the committed state.
	if nav["url"] != "/dashboard" {
		t.Errorf("url = %v, want /dashboard", nav["url"])
	}
}

func TestStateBeforeFirstNavigation(t *testing.T) {
	ts := newTestServer(t, Config{})

	var body map[string]any
	getJSON(t, ts.URL+"/api/state", &body)
	if url, ok := body["url"]; !ok || url != nil {
		t.Errorf("body = %+v, want null url", body)
	}
}

func TestRoutesEndpoint(t *testing.T) {
	ts := newTestServer(t, Config{})

	var views []routeView
	getJSON(t, ts.URL+"/api/routes", &views)
	if len(views) != 3 {
		t.Fatalf("routes = %d, want 3", len(views))
	}
	if views[0].RedirectTo != "dashboard" || views[0].PathMatch != "full" {
		t.Errorf("redirect route = %+v", views[0])
	}
	if views[2].Path != "team/:id" || len(views[2].Children) != 1 {
		t.Errorf("team route = %+v", views[2])
	}
}

func TestMatchEndpointLeavesStateUntouched(t *testing.T) {
	ts := newTestServer(t, Config{})

	var match map[string]any
	postJSON(t, ts.URL+"/api/match", urlRequest{URL: "/team/9"}, &match)
	if match["matched"] != true {
		t.Fatalf("match = %+v", match)
	}
	if match["url"] != "/team/9" {
		t.Errorf("url = %v", match["url"])
	}

	var nomatch map[string]any
	postJSON(t, ts.URL+"/api/match", urlRequest{URL: "/nope"}, &nomatch)
	if nomatch["matched"] != false || nomatch["error"] == nil {
		t.Errorf("nomatch = %+v", nomatch)
	}

	// Matching is a dry run; the server engine stays uncommitted.
	var state map[string]any
	getJSON(t, ts.URL+"/api/state", &state)
	if url, ok := state["url"]; !ok || url != nil {
		t.Errorf("state = %+v, want null url", state)
	}
}

func TestJournalEndpoint(t *testing.T) {
	journal, err := history.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })

	ts := newTestServer(t, Config{Journal: journal})

	postJSON(t, ts.URL+"/api/navigate", urlRequest{URL: "/team/7"}, nil)
	postJSON(t, ts.URL+"/api/navigate", urlRequest{URL: "/nope"}, nil)

	var entries []history.Entry
	getJSON(t, ts.URL+"/api/journal", &entries)
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want 1", entries)
	}
	if entries[0].URL != "/team/7" {
		t.Errorf("entry url = %q", entries[0].URL)
	}
}

func TestJournalEndpointWithoutJournal(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp := getJSON(t, ts.URL+"/api/journal", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestInvalidRouteConfigRejected(t *testing.T) {
	_, err := New(Config{Routes: []*router.Route{{Path: "/leading", Component: "x"}}})
	if err == nil {
		t.Fatal("expected a config error")
	}
	if !strings.Contains(err.Error(), "leading") {
		t.Errorf("err = %v", err)
	}
}
