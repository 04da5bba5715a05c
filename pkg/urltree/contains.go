package urltree

// ContainsTree reports whether container holds containee. With exact=true the
// two trees must describe the same path structure and the same query
// parameters. With exact=false the containee may be a prefix: its segments
// must appear at the start of the container's corresponding groups and its
// query parameters must be a subset of the container's.
//
// Matrix parameters and fragments are ignored in both modes. This is the
// primitive behind "is this link active" checks.
func ContainsTree(container, containee *Tree, exact bool) bool {
	if container == nil || containee == nil {
		return false
	}
	if exact {
		return equalQuery(container.Query, containee.Query) &&
			equalGroups(container.Root, containee.Root)
	}
	return subsetQuery(container.Query, containee.Query) &&
		containsGroup(container.Root, containee.Root, containee.Root.Segments)
}

// equalPaths compares segment paths only, ignoring matrix parameters.
func equalPaths(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Path != b[i].Path {
			return false
		}
	}
	return true
}

func equalGroups(a, b *SegmentGroup) bool {
	if !equalPaths(a.Segments, b.Segments) || len(a.Children) != len(b.Children) {
		return false
	}
	for outlet, child := range b.Children {
		other := a.Children[outlet]
		if other == nil || !equalGroups(other, child) {
			return false
		}
	}
	return true
}

func equalQuery(a, b *Params) bool {
	return a.Equal(b)
}

// subsetQuery reports whether every parameter of sub appears in super with
// the same value.
func subsetQuery(super, sub *Params) bool {
	ok := true
	sub.Each(func(key, value string) {
		if !super.Has(key) || super.Get(key) != value {
			ok = false
		}
	})
	return ok
}

// containsGroup walks container and containee in parallel. remaining is the
// portion of the containee group's segments not yet matched against a
// container group; the container may spread those segments over several
// nested primary groups.
func containsGroup(container, containee *SegmentGroup, remaining []Segment) bool {
	switch {
	case len(container.Segments) > len(remaining):
		// Container has more segments at this level than the containee asks
		// for: a prefix match, valid only if the containee ends here.
		if !equalPaths(container.Segments[:len(remaining)], remaining) {
			return false
		}
		return !containee.HasChildren()

	case len(container.Segments) == len(remaining):
		if !equalPaths(container.Segments, remaining) {
			return false
		}
		for outlet, child := range containee.Children {
			other := container.Children[outlet]
			if other == nil || !containsGroup(other, child, child.Segments) {
				return false
			}
		}
		return true

	default:
		// The containee's segments continue into the container's primary
		// child group.
		if !equalPaths(container.Segments, remaining[:len(container.Segments)]) {
			return false
		}
		next := container.Children[PrimaryOutlet]
		if next == nil {
			return false
		}
		return containsGroup(next, containee, remaining[len(container.Segments):])
	}
}
