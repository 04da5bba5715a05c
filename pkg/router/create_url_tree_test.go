package router

import (
	"testing"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

func TestCreateURLTreeAbsolute(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		commands []any
		want     string
	}{
		{
			name:     "from nothing",
			commands: []any{"/users", "5"},
			want:     "/users/5",
		},
		{
			name:     "replaces primary chain",
			current:  "/home/sub",
			commands: []any{"/users"},
			want:     "/users",
		},
		{
			name:     "keeps secondary outlets",
			current:  "/home(side:panel)",
			commands: []any{"/users"},
			want:     "/users(side:panel)",
		},
		{
			name:     "matrix params on last segment",
			commands: []any{"/items", map[string]string{"sort": "asc"}},
			want:     "/items;sort=asc",
		},
		{
			name:     "multi part string command",
			commands: []any{"/team/3/members"},
			want:     "/team/3/members",
		},
		{
			name:     "back to root",
			current:  "/home",
			commands: []any{"/"},
			want:     "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var current *urltree.Tree
			if tt.current != "" {
				current = mustParse(t, tt.current)
			}
			tree, err := CreateURLTree(current, nil, tt.commands, createOptions{})
			if err != nil {
				t.Fatalf("CreateURLTree: %v", err)
			}
			if got := urltree.Serialize(tree); got != tt.want {
				t.Errorf("Serialize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateURLTreeRelative(t *testing.T) {
	config := []*Route{
		{Path: "team/:tid", Component: "team", Children: []*Route{
			{Path: "user", Component: "user"},
		}},
	}
	r := newTestRouter(t, config)
	state := mustRecognize(t, r, "/team/3/user")
	user := state.Root().Children()[0].Children()[0]

	tests := []struct {
		name     string
		commands []any
		want     string
	}{
		{"descend", []any{"details"}, "/team/3/user/details"},
		{"sibling", []any{"..", "member", "7"}, "/team/3/member/7"},
		{"dotted path", []any{"../member/7"}, "/team/3/member/7"},
		{"stay", []any{"."}, "/team/3/user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := CreateURLTree(state.Tree, user, tt.commands, createOptions{})
			if err != nil {
				t.Fatalf("CreateURLTree: %v", err)
			}
			if got := urltree.Serialize(tree); got != tt.want {
				t.Errorf("Serialize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateURLTreeWalksAboveRoot(t *testing.T) {
	_, err := CreateURLTree(nil, nil, []any{".."}, createOptions{})
	if err == nil {
		t.Fatal("CreateURLTree accepted '..' above the root")
	}
}

func TestCreateURLTreeUnsupportedCommand(t *testing.T) {
	_, err := CreateURLTree(nil, nil, []any{42}, createOptions{})
	if err == nil {
		t.Fatal("CreateURLTree accepted an int command")
	}
}

func TestCreateURLTreeEmptyCommandsKeepPath(t *testing.T) {
	current := mustParse(t, "/home/sub?x=1")
	tree, err := CreateURLTree(current, nil, nil, createOptions{
		query: urltree.ParamsFrom("y", "2"),
	})
	if err != nil {
		t.Fatalf("CreateURLTree: %v", err)
	}
	if got := urltree.Serialize(tree); got != "/home/sub?y=2" {
		t.Errorf("Serialize = %q, want %q", got, "/home/sub?y=2")
	}
}

func TestCreateURLTreeQueryHandling(t *testing.T) {
	current := mustParse(t, "/a?x=1&y=2#sec")

	tests := []struct {
		name string
		opts createOptions
		want string
	}{
		{
			name: "replace",
			opts: createOptions{query: urltree.ParamsFrom("q", "go")},
			want: "/b?q=go",
		},
		{
			name: "replace with nothing clears",
			opts: createOptions{},
			want: "/b",
		},
		{
			name: "preserve",
			opts: createOptions{queryHandling: QueryPreserve, query: urltree.ParamsFrom("q", "go")},
			want: "/b?x=1&y=2",
		},
		{
			name: "merge",
			opts: createOptions{queryHandling: QueryMerge, query: urltree.ParamsFrom("y", "3", "z", "4")},
			want: "/b?x=1&y=3&z=4",
		},
		{
			name: "fragment set",
			opts: createOptions{fragment: "bottom"},
			want: "/b#bottom",
		},
		{
			name: "fragment preserved",
			opts: createOptions{preserveFragment: true},
			want: "/b#sec",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := CreateURLTree(current, nil, []any{"/b"}, tt.opts)
			if err != nil {
				t.Fatalf("CreateURLTree: %v", err)
			}
			if got := urltree.Serialize(tree); got != tt.want {
				t.Errorf("Serialize = %q, want %q", got, tt.want)
			}
		})
	}
}
