package urltree

import "testing"

func TestContainsTreeExact(t *testing.T) {
	tests := []struct {
		container string
		containee string
		want      bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b;x=1", "/a/b", true}, // matrix params ignored
		{"/a/b", "/a/c", false},
		{"/a/b", "/a", false},
		{"/a", "/a/b", false},
		{"/a/b?x=1", "/a/b?x=1", true},
		{"/a/b?x=1", "/a/b", false},
		{"/a(aux:c)", "/a(aux:c)", true},
		{"/a(aux:c)", "/a", false},
	}

	for _, tt := range tests {
		container := mustParse(t, tt.container)
		containee := mustParse(t, tt.containee)
		if got := ContainsTree(container, containee, true); got != tt.want {
			t.Errorf("ContainsTree(%q, %q, exact) = %v, want %v", tt.container, tt.containee, got, tt.want)
		}
	}
}

func TestContainsTreePrefix(t *testing.T) {
	tests := []struct {
		container string
		containee string
		want      bool
	}{
		{"/a/b/c", "/a/b", true},
		{"/a/b/c", "/a", true},
		{"/a/b/c", "/a/b/c", true},
		{"/a/b/c", "/a/x", false},
		{"/a/b?x=1&y=2", "/a?x=1", true},
		{"/a/b?x=1", "/a?x=2", false},
		{"/a/b(aux:c)", "/a/b", true},
		{"/a/b", "/a/b(aux:c)", false},
	}

	for _, tt := range tests {
		container := mustParse(t, tt.container)
		containee := mustParse(t, tt.containee)
		if got := ContainsTree(container, containee, false); got != tt.want {
			t.Errorf("ContainsTree(%q, %q, prefix) = %v, want %v", tt.container, tt.containee, got, tt.want)
		}
	}
}
