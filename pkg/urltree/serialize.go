package urltree

import (
	"sort"
	"strings"
)

// Serialize converts a Tree back into URL text. It is the deterministic
// inverse of Parse: matrix and query parameters keep their insertion order,
// outlet prefixes appear only for non-primary outlets, empty groups are
// omitted, and sibling outlet groups are written primary first, then in
// lexicographic outlet order.
func Serialize(t *Tree) string {
	var b strings.Builder
	b.WriteByte('/')
	if t != nil && t.Root != nil {
		b.WriteString(serializeGroup(t.Root, true))
	}
	if t != nil && t.Query.Len() > 0 {
		b.WriteByte('?')
		b.WriteString(serializeQuery(t.Query))
	}
	if t != nil && t.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(escape(t.Fragment, classFragment))
	}
	return b.String()
}

// serializeGroup renders one segment group. The root group renders its
// primary child bare and wraps the remaining outlets in parentheses; nested
// groups additionally prefix their own segments.
func serializeGroup(g *SegmentGroup, root bool) string {
	if !g.HasChildren() {
		return serializePaths(g)
	}

	if root {
		primary := ""
		if c := g.Children[PrimaryOutlet]; c != nil {
			primary = serializeGroup(c, false)
		}
		var siblings []string
		for _, outlet := range secondaryOutlets(g) {
			siblings = append(siblings, escape(outlet, classSegment)+":"+serializeGroup(g.Children[outlet], false))
		}
		if len(siblings) > 0 {
			return primary + "(" + strings.Join(siblings, "//") + ")"
		}
		return primary
	}

	if len(g.Children) == 1 && g.Children[PrimaryOutlet] != nil {
		return serializePaths(g) + "/" + serializeGroup(g.Children[PrimaryOutlet], false)
	}
	var siblings []string
	if c := g.Children[PrimaryOutlet]; c != nil {
		siblings = append(siblings, serializeGroup(c, false))
	}
	for _, outlet := range secondaryOutlets(g) {
		siblings = append(siblings, escape(outlet, classSegment)+":"+serializeGroup(g.Children[outlet], false))
	}
	return serializePaths(g) + "/(" + strings.Join(siblings, "//") + ")"
}

// secondaryOutlets returns the group's non-primary outlet names sorted
// lexicographically, for deterministic output.
func secondaryOutlets(g *SegmentGroup) []string {
	var outlets []string
	for outlet := range g.Children {
		if outlet != PrimaryOutlet {
			outlets = append(outlets, outlet)
		}
	}
	sort.Strings(outlets)
	return outlets
}

// serializePaths renders the group's own segments joined by '/'.
func serializePaths(g *SegmentGroup) string {
	parts := make([]string, len(g.Segments))
	for i, s := range g.Segments {
		parts[i] = serializeSegment(s)
	}
	return strings.Join(parts, "/")
}

// serializeSegment renders one segment with its matrix parameters.
// A parameter with an empty value is written as ';key' without '='.
func serializeSegment(s Segment) string {
	var b strings.Builder
	b.WriteString(escape(s.Path, classSegment))
	s.Matrix.Each(func(key, value string) {
		b.WriteByte(';')
		b.WriteString(escape(key, classMatrixKey))
		if value != "" {
			b.WriteByte('=')
			b.WriteString(escape(value, classMatrixValue))
		}
	})
	return b.String()
}

// serializeQuery renders query parameters in insertion order.
// A parameter with an empty value is written as 'key' without '='.
func serializeQuery(q *Params) string {
	var parts []string
	q.Each(func(key, value string) {
		if value == "" {
			parts = append(parts, escape(key, classQueryKey))
			return
		}
		parts = append(parts, escape(key, classQueryKey)+"="+escape(value, classQueryValue))
	})
	return strings.Join(parts, "&")
}
