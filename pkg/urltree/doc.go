// Package urltree implements the structured URL representation used by the
// Sextant router and the bidirectional mapping between that structure and
// URL text.
//
// A URL such as
//
//	/inbox;sort=date/33(side:compose)?full=true#top
//
// parses into a tree of segment groups. Each group holds an ordered list of
// segments for one outlet and may carry one child group per outlet name.
// Matrix parameters (;k=v) are scoped to a single segment, query parameters
// and the fragment belong to the tree as a whole.
//
// Parsing and serialization are inverse operations: Serialize(Parse(s)) == s
// for every canonical input s, and Parse(Serialize(t)) is structurally equal
// to t for every constructible tree t.
package urltree
