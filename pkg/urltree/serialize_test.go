package urltree

import "testing"

// TestRoundTripCanonical verifies Serialize(Parse(s)) == s for canonical
// inputs.
func TestRoundTripCanonical(t *testing.T) {
	tests := []string{
		"/",
		"/inbox",
		"/inbox/33",
		"/inbox;a=1/33;b=1",
		"/inbox/33;open=true;k",
		"/inbox/33(side:compose)",
		"/inbox/33(popup:message//side:compose)",
		"/(left:menu)",
		"/a/(b//left:c)",
		"/team/11?k=v&x",
		"/path#frag",
		"/a%20b/c;k=v%2Fw?q=1%261#f%20g",
		"/one/two;a=1(side:three;b=2)?x=1&y=2#bottom",
	}

	for _, text := range tests {
		tree, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", text, err)
			continue
		}
		if got := Serialize(tree); got != text {
			t.Errorf("Serialize(Parse(%q)) = %q", text, got)
		}
	}
}

// TestRoundTripStructural verifies Parse(Serialize(t)) is structurally equal
// to t for constructed trees.
func TestRoundTripStructural(t *testing.T) {
	trees := []*Tree{
		NewTree(),
		{
			Root: NewSegmentGroup(nil, map[string]*SegmentGroup{
				PrimaryOutlet: NewSegmentGroup([]Segment{
					{Path: "inbox", Matrix: ParamsFrom("sort", "date")},
					{Path: "33"},
				}, nil),
				"side": NewSegmentGroup([]Segment{{Path: "compose"}}, nil),
			}),
			Query:    ParamsFrom("full", "true"),
			Fragment: "top",
		},
		{
			Root: NewSegmentGroup(nil, map[string]*SegmentGroup{
				PrimaryOutlet: NewSegmentGroup([]Segment{{Path: "a b/c"}}, map[string]*SegmentGroup{
					PrimaryOutlet: NewSegmentGroup([]Segment{{Path: "nested"}}, nil),
					"aux":         NewSegmentGroup([]Segment{{Path: "x", Matrix: ParamsFrom("k", "v=w")}}, nil),
				}),
			}),
		},
	}

	for _, tree := range trees {
		text := Serialize(tree)
		back, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", text, err)
			continue
		}
		if !back.Equal(tree) {
			t.Errorf("Parse(Serialize(tree)) != tree for %q", text)
		}
	}
}

func TestSerializeEscapesOutletDelimiters(t *testing.T) {
	tree := &Tree{
		Root: NewSegmentGroup(nil, map[string]*SegmentGroup{
			PrimaryOutlet: NewSegmentGroup([]Segment{{Path: "a:b(c)"}}, nil),
		}),
	}
	got := Serialize(tree)
	want := "/a%3Ab%28c%29"
	if got != want {
		t.Errorf("Serialize = %q, want %q", got, want)
	}
}

func TestSerializeOmitsEmptyGroups(t *testing.T) {
	tree := &Tree{
		Root: NewSegmentGroup(nil, map[string]*SegmentGroup{
			PrimaryOutlet: NewSegmentGroup([]Segment{{Path: "a"}}, map[string]*SegmentGroup{}),
		}),
	}
	if got := Serialize(tree); got != "/a" {
		t.Errorf("Serialize = %q, want /a", got)
	}
}

func TestTreeString(t *testing.T) {
	tree := mustParse(t, "/inbox/33")
	if got := tree.String(); got != "/inbox/33" {
		t.Errorf("String() = %q, want /inbox/33", got)
	}
}
