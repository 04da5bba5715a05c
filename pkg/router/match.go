package router

import (
	"strings"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// segmentMatch is the result of matching one route against a position in a
// segment sequence. It is a pure value: every candidate attempt gets its own
// capture map, so backtracking needs no undo.
type segmentMatch struct {
	matched bool

	// consumed are the URL segments the route's path tokens consumed.
	consumed []urltree.Segment

	// posParams maps variable-segment names to the segment they captured.
	// The full segment is kept so redirects can carry matrix params over.
	posParams map[string]urltree.Segment
}

var noMatch = segmentMatch{}

// matchSegments matches a single route's path tokens against the front of
// segments. group is the segment group the segments belong to; full matching
// additionally requires the group to have no children left over.
func matchSegments(group *urltree.SegmentGroup, route *Route, segments []urltree.Segment) segmentMatch {
	if route.Path == "" {
		if route.PathMatch == MatchFull && (group.HasChildren() || len(segments) > 0) {
			return noMatch
		}
		return segmentMatch{matched: true}
	}

	parts := strings.Split(route.Path, "/")
	if len(parts) > len(segments) {
		return noMatch
	}
	if route.PathMatch == MatchFull && (group.HasChildren() || len(parts) < len(segments)) {
		return noMatch
	}

	var posParams map[string]urltree.Segment
	for i, part := range parts {
		seg := segments[i]
		if strings.HasPrefix(part, ":") {
			if posParams == nil {
				posParams = make(map[string]urltree.Segment)
			}
			posParams[part[1:]] = seg
		} else if part != seg.Path {
			return noMatch
		}
	}
	return segmentMatch{matched: true, consumed: segments[:len(parts)], posParams: posParams}
}

// split prepares a matched group for descending into childConfig. It wraps
// leftover segments or sibling outlets into synthetic groups so that
// empty-path routes, which consume nothing, still get a position to match
// at. consumed are the segments the parent route consumed, sliced the
// remainder.
func split(group *urltree.SegmentGroup, consumed, sliced []urltree.Segment, childConfig []*Route) (*urltree.SegmentGroup, []urltree.Segment) {
	if len(sliced) > 0 && containsEmptyPathMatchesWithNamedOutlets(group, sliced, childConfig) {
		s := urltree.NewSegmentGroup(consumed, createChildrenForEmptyPaths(
			childConfig, urltree.NewSegmentGroup(sliced, group.Children)))
		return s, nil
	}
	if len(sliced) == 0 && containsEmptyPathMatches(group, sliced, childConfig) {
		s := urltree.NewSegmentGroup(group.Segments, addEmptyPathsToChildrenIfNeeded(group, sliced, childConfig))
		return s, sliced
	}
	return group, sliced
}

// addEmptyPathsToChildrenIfNeeded gives every matchable empty-path route
// with an outlet the group does not already carry an empty child group to
// match against.
func addEmptyPathsToChildrenIfNeeded(group *urltree.SegmentGroup, sliced []urltree.Segment, routes []*Route) map[string]*urltree.SegmentGroup {
	children := make(map[string]*urltree.SegmentGroup, len(group.Children))
	for outlet, child := range group.Children {
		children[outlet] = child
	}
	for _, r := range routes {
		if emptyPathMatch(group, sliced, r) && children[r.outlet()] == nil {
			children[r.outlet()] = urltree.NewSegmentGroup(nil, nil)
		}
	}
	return children
}

// createChildrenForEmptyPaths wraps the leftover primary segments and adds
// empty groups for the named outlets of empty-path routes.
func createChildrenForEmptyPaths(routes []*Route, primary *urltree.SegmentGroup) map[string]*urltree.SegmentGroup {
	children := map[string]*urltree.SegmentGroup{urltree.PrimaryOutlet: primary}
	for _, r := range routes {
		if r.Path == "" && r.outlet() != urltree.PrimaryOutlet {
			children[r.outlet()] = urltree.NewSegmentGroup(nil, nil)
		}
	}
	return children
}

func containsEmptyPathMatchesWithNamedOutlets(group *urltree.SegmentGroup, sliced []urltree.Segment, routes []*Route) bool {
	for _, r := range routes {
		if emptyPathMatch(group, sliced, r) && r.outlet() != urltree.PrimaryOutlet {
			return true
		}
	}
	return false
}

func containsEmptyPathMatches(group *urltree.SegmentGroup, sliced []urltree.Segment, routes []*Route) bool {
	for _, r := range routes {
		if emptyPathMatch(group, sliced, r) {
			return true
		}
	}
	return false
}

// emptyPathMatch reports whether the empty-path route r can match at this
// position.
func emptyPathMatch(group *urltree.SegmentGroup, sliced []urltree.Segment, r *Route) bool {
	if (group.HasChildren() || len(sliced) > 0) && r.PathMatch == MatchFull {
		return false
	}
	return r.Path == ""
}
