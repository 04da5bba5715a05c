package urltree

import "strings"

// PrimaryOutlet is the outlet name used when a URL or a route does not name
// an outlet explicitly.
const PrimaryOutlet = "primary"

// Segment is one path component of a URL together with its matrix parameters.
// Segments are treated as immutable once constructed.
type Segment struct {
	// Path is the decoded segment text.
	Path string

	// Matrix holds the segment's matrix parameters in insertion order.
	// May be nil when the segment has none.
	Matrix *Params
}

// NewSegment creates a segment with the given path and no matrix parameters.
func NewSegment(path string) Segment {
	return Segment{Path: path}
}

// Equal reports whether two segments have the same path and matrix parameters.
func (s Segment) Equal(other Segment) bool {
	return s.Path == other.Path && s.Matrix.Equal(other.Matrix)
}

// String returns the serialized form of the segment.
func (s Segment) String() string {
	return serializeSegment(s)
}

// SegmentGroup is one level of the URL tree: an ordered sequence of segments
// plus at most one child group per outlet name.
type SegmentGroup struct {
	// Segments are the path segments at this level.
	Segments []Segment

	// Children maps outlet names to child groups. At most one child exists
	// per outlet name.
	Children map[string]*SegmentGroup
}

// NewSegmentGroup creates a group with the given segments and children.
// A nil children map is replaced by an empty one.
func NewSegmentGroup(segments []Segment, children map[string]*SegmentGroup) *SegmentGroup {
	if children == nil {
		children = make(map[string]*SegmentGroup)
	}
	return &SegmentGroup{Segments: segments, Children: children}
}

// HasChildren reports whether the group has any child groups.
func (g *SegmentGroup) HasChildren() bool {
	return g != nil && len(g.Children) > 0
}

// NumChildren returns the number of child groups.
func (g *SegmentGroup) NumChildren() int {
	if g == nil {
		return 0
	}
	return len(g.Children)
}

// Child returns the child group for the given outlet, or nil.
func (g *SegmentGroup) Child(outlet string) *SegmentGroup {
	if g == nil {
		return nil
	}
	return g.Children[outlet]
}

// Clone returns a deep copy of the group.
func (g *SegmentGroup) Clone() *SegmentGroup {
	if g == nil {
		return nil
	}
	segments := make([]Segment, len(g.Segments))
	for i, s := range g.Segments {
		segments[i] = Segment{Path: s.Path, Matrix: s.Matrix.Clone()}
	}
	children := make(map[string]*SegmentGroup, len(g.Children))
	for outlet, child := range g.Children {
		children[outlet] = child.Clone()
	}
	return &SegmentGroup{Segments: segments, Children: children}
}

// Equal reports whether two groups are structurally equal.
func (g *SegmentGroup) Equal(other *SegmentGroup) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.Segments) != len(other.Segments) || len(g.Children) != len(other.Children) {
		return false
	}
	for i := range g.Segments {
		if !g.Segments[i].Equal(other.Segments[i]) {
			return false
		}
	}
	for outlet, child := range g.Children {
		if !child.Equal(other.Children[outlet]) {
			return false
		}
	}
	return true
}

// PathString returns the group's own segments joined by "/", without
// children, matrix parameters are included.
func (g *SegmentGroup) PathString() string {
	parts := make([]string, len(g.Segments))
	for i, s := range g.Segments {
		parts[i] = serializeSegment(s)
	}
	return strings.Join(parts, "/")
}

// Tree is a complete structured URL: the root segment group, the query
// parameters, and the optional fragment.
type Tree struct {
	// Root is the root segment group. Its own Segments slice is always
	// empty; the top-level path lives in Root.Children[PrimaryOutlet].
	Root *SegmentGroup

	// Query holds the query parameters in insertion order. May be nil.
	Query *Params

	// Fragment is the fragment without the leading '#', or "".
	Fragment string
}

// NewTree creates an empty tree ("/").
func NewTree() *Tree {
	return &Tree{Root: NewSegmentGroup(nil, nil)}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	return &Tree{
		Root:     t.Root.Clone(),
		Query:    t.Query.Clone(),
		Fragment: t.Fragment,
	}
}

// Equal reports whether two trees are structurally equal.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Fragment == other.Fragment &&
		t.Query.Equal(other.Query) &&
		t.Root.Equal(other.Root)
}

// String returns the serialized form of the tree.
func (t *Tree) String() string {
	return Serialize(t)
}
