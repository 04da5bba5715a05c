package router

import (
	"fmt"
	"strings"

	"github.com/sextant-dev/sextant/pkg/urltree"
)

// QueryParamsHandling selects how the target query parameters relate to the
// current ones when building a URL tree from commands.
type QueryParamsHandling int

const (
	// QueryReplace uses only the supplied query parameters.
	QueryReplace QueryParamsHandling = iota

	// QueryPreserve keeps the current query parameters and ignores the
	// supplied ones.
	QueryPreserve

	// QueryMerge merges the supplied parameters over the current ones.
	QueryMerge
)

type createOptions struct {
	query            *urltree.Params
	fragment         string
	queryHandling    QueryParamsHandling
	preserveFragment bool
}

// CreateURLTree builds a URL tree from navigation commands.
//
// Commands are either strings or matrix parameter maps. A string is split on
// '/' into path parts: '..' pops one segment, '.' is a no-op, anything else
// appends a segment. A map[string]string attaches matrix parameters to the
// segment appended last. A leading '/' in the first string makes the
// commands absolute; otherwise they resolve against relativeTo's consumed
// position, or the root when relativeTo is nil.
//
// Secondary outlets of the current tree's root are preserved; the commands
// rebuild only the primary chain.
func CreateURLTree(current *urltree.Tree, relativeTo *ActivatedRouteSnapshot, commands []any, opts createOptions) (*urltree.Tree, error) {
	segments, changed, err := applyCommands(current, relativeTo, commands)
	if err != nil {
		return nil, err
	}

	tree := urltree.NewTree()
	if current != nil {
		tree = current.Clone()
	}
	if changed {
		if len(segments) == 0 {
			delete(tree.Root.Children, urltree.PrimaryOutlet)
		} else {
			tree.Root.Children[urltree.PrimaryOutlet] = urltree.NewSegmentGroup(segments, nil)
		}
	}

	switch opts.queryHandling {
	case QueryPreserve:
		// tree already carries the current query
		if current == nil {
			tree.Query = nil
		}
	case QueryMerge:
		merged := urltree.NewParams()
		if current != nil {
			current.Query.Each(merged.Set)
		}
		opts.query.Each(merged.Set)
		tree.Query = merged
	default:
		tree.Query = opts.query.Clone()
	}

	if opts.preserveFragment {
		if current == nil {
			tree.Fragment = ""
		}
	} else {
		tree.Fragment = opts.fragment
	}
	return tree, nil
}

// applyCommands computes the target primary segment chain. changed reports
// whether the commands addressed the path at all; an empty command list
// leaves the current path untouched.
func applyCommands(current *urltree.Tree, relativeTo *ActivatedRouteSnapshot, commands []any) ([]urltree.Segment, bool, error) {
	if len(commands) == 0 {
		return nil, false, nil
	}

	var base []urltree.Segment
	absolute := false
	if first, ok := commands[0].(string); ok && strings.HasPrefix(first, "/") {
		absolute = true
	}
	if !absolute {
		base = baseSegments(relativeTo)
	}

	segments := make([]urltree.Segment, len(base))
	copy(segments, base)

	for i, command := range commands {
		switch c := command.(type) {
		case string:
			text := c
			if i == 0 {
				text = strings.TrimPrefix(text, "/")
			}
			for _, part := range strings.Split(text, "/") {
				switch part {
				case "", ".":
					// no-op
				case "..":
					if len(segments) == 0 {
						return nil, false, fmt.Errorf("router: command %q walks above the root", c)
					}
					segments = segments[:len(segments)-1]
				default:
					segments = append(segments, urltree.NewSegment(part))
				}
			}
		case map[string]string:
			if len(segments) == 0 {
				return nil, false, fmt.Errorf("router: matrix parameter command has no preceding segment")
			}
			last := &segments[len(segments)-1]
			matrix := last.Matrix.Clone()
			if matrix == nil {
				matrix = urltree.NewParams()
			}
			for _, key := range sortedKeys(c) {
				matrix.Set(key, c[key])
			}
			last.Matrix = matrix
		default:
			return nil, false, fmt.Errorf("router: unsupported command type %T", command)
		}
	}
	return segments, true, nil
}

// baseSegments returns the consumed segments from the root down to
// relativeTo. A nil relativeTo resolves against the root, an empty base.
func baseSegments(relativeTo *ActivatedRouteSnapshot) []urltree.Segment {
	if relativeTo == nil {
		return nil
	}
	var base []urltree.Segment
	for _, node := range relativeTo.PathFromRoot() {
		base = append(base, node.URL...)
	}
	return base
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic matrix param order for map commands.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
