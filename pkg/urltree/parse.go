package urltree

import (
	"fmt"
	"strings"
)

// ParseError describes a malformed URL string. It is always returned
// synchronously from Parse and never recovered from silently.
type ParseError struct {
	// Input is the full text handed to Parse.
	Input string

	// Pos is the byte offset at which parsing failed.
	Pos int

	// Reason describes what was expected or what was malformed.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("urltree: parse error at offset %d in %q: %s", e.Pos, e.Input, e.Reason)
}

// Parse converts URL text into a Tree.
//
// The grammar: segments separated by '/', matrix parameters per segment as
// ';key=value' pairs, secondary outlet groups in '(...)' with siblings
// separated by '//' and each non-primary sibling prefixed by 'outlet:',
// query parameters after the first '?', fragment after the first '#'.
func Parse(text string) (*Tree, error) {
	path := text
	fragment := ""
	queryOffset := -1

	if i := strings.IndexByte(path, '#'); i >= 0 {
		var err error
		fragment, err = unescape(path[i+1:])
		if err != nil {
			return nil, &ParseError{Input: text, Pos: i + 1, Reason: "malformed escape in fragment"}
		}
		path = path[:i]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		queryOffset = i + 1
		path = path[:i]
	}

	p := &parser{input: text, path: path}
	root, err := p.parseRoot()
	if err != nil {
		return nil, err
	}

	tree := &Tree{Root: root, Fragment: fragment}
	if queryOffset >= 0 {
		end := len(text)
		if f := strings.IndexByte(text, '#'); f >= 0 {
			end = f
		}
		tree.Query, err = parseQuery(text, queryOffset, text[queryOffset:end])
		if err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// parser is a cursor over the path portion of the URL text.
type parser struct {
	input string // full input, for error reporting
	path  string // path portion only
	pos   int
}

func (p *parser) rest() string { return p.path[p.pos:] }
func (p *parser) eof() bool    { return p.pos >= len(p.path) }

// peek reports whether the remaining input starts with s.
func (p *parser) peek(s string) bool {
	return strings.HasPrefix(p.rest(), s)
}

// consumeOptional consumes s if the remaining input starts with it.
func (p *parser) consumeOptional(s string) bool {
	if p.peek(s) {
		p.pos += len(s)
		return true
	}
	return false
}

// capture consumes s or fails.
func (p *parser) capture(s string) error {
	if !p.consumeOptional(s) {
		return p.errorf("expected %q", s)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.input, Pos: p.pos, Reason: fmt.Sprintf(format, args...)}
}

// matchUntil consumes and returns the longest prefix containing none of the
// bytes in stop.
func (p *parser) matchUntil(stop string) string {
	start := p.pos
	for p.pos < len(p.path) && !strings.ContainsRune(stop, rune(p.path[p.pos])) {
		p.pos++
	}
	return p.path[start:p.pos]
}

// Delimiter sets for the path grammar. '=' is reserved inside segments so
// that matrix keys and values have an unambiguous boundary.
const (
	segmentStop = "/();=#?"
	valueStop   = "/();#?"
)

// parseRoot parses the whole path portion into the root segment group.
func (p *parser) parseRoot() (*SegmentGroup, error) {
	if p.eof() || p.path == "/" {
		return NewSegmentGroup(nil, nil), nil
	}
	children, err := p.parseChildren()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	return NewSegmentGroup(nil, children), nil
}

// parseChildren parses one level: leading segments, then an optional
// parenthesized set of sibling outlet groups.
func (p *parser) parseChildren() (map[string]*SegmentGroup, error) {
	if p.eof() {
		return map[string]*SegmentGroup{}, nil
	}
	p.consumeOptional("/")

	var segments []Segment
	if !p.peek("(") {
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
		for p.peek("/") && !p.peek("//") && !p.peek("/(") {
			p.pos++ // '/'
			seg, err := p.parseSegment()
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
		}
	}

	children := map[string]*SegmentGroup{}
	if p.peek("/(") {
		p.pos++ // '/'
		var err error
		children, err = p.parseParens(true)
		if err != nil {
			return nil, err
		}
	}

	res := map[string]*SegmentGroup{}
	if p.peek("(") {
		var err error
		res, err = p.parseParens(false)
		if err != nil {
			return nil, err
		}
	}

	if len(segments) > 0 || len(children) > 0 {
		res[PrimaryOutlet] = NewSegmentGroup(segments, children)
	}
	return res, nil
}

// parseSegment parses one path segment with its matrix parameters.
func (p *parser) parseSegment() (Segment, error) {
	raw := p.matchUntil(segmentStop)
	if raw == "" {
		if p.peek(";") {
			return Segment{}, p.errorf("empty path segment cannot have matrix parameters")
		}
		return Segment{}, p.errorf("empty path segment")
	}
	path, err := unescape(raw)
	if err != nil {
		return Segment{}, p.errorf("malformed escape in segment %q", raw)
	}
	matrix, err := p.parseMatrixParams()
	if err != nil {
		return Segment{}, err
	}
	return Segment{Path: path, Matrix: matrix}, nil
}

// parseMatrixParams parses zero or more ';key=value' pairs.
func (p *parser) parseMatrixParams() (*Params, error) {
	var params *Params
	for p.consumeOptional(";") {
		rawKey := p.matchUntil(segmentStop)
		if rawKey == "" {
			return nil, p.errorf("empty matrix parameter name")
		}
		key, err := unescape(rawKey)
		if err != nil {
			return nil, p.errorf("malformed escape in matrix parameter name %q", rawKey)
		}
		value := ""
		if p.consumeOptional("=") {
			rawValue := p.matchUntil(valueStop)
			value, err = unescape(rawValue)
			if err != nil {
				return nil, p.errorf("malformed escape in matrix parameter value %q", rawValue)
			}
		}
		if params == nil {
			params = NewParams()
		}
		params.Set(key, value)
	}
	return params, nil
}

// parseParens parses '(...)' sibling outlet groups separated by '//'.
// When allowPrimary is true a sibling without an 'outlet:' prefix belongs to
// the primary outlet.
func (p *parser) parseParens(allowPrimary bool) (map[string]*SegmentGroup, error) {
	open := p.pos
	if err := p.capture("("); err != nil {
		return nil, err
	}
	children := map[string]*SegmentGroup{}
	for !p.consumeOptional(")") {
		if p.eof() {
			return nil, &ParseError{Input: p.input, Pos: open, Reason: "unbalanced '('"}
		}

		outlet := PrimaryOutlet
		start := p.pos
		head := p.matchUntil(segmentStop)
		if idx := strings.IndexByte(head, ':'); idx >= 0 {
			var err error
			outlet, err = unescape(head[:idx])
			if err != nil || outlet == "" {
				return nil, &ParseError{Input: p.input, Pos: start, Reason: "malformed outlet name"}
			}
			p.pos = start + idx + 1
		} else if allowPrimary {
			p.pos = start
		} else {
			return nil, &ParseError{Input: p.input, Pos: start, Reason: "missing 'outlet:' prefix in group"}
		}
		if _, dup := children[outlet]; dup {
			return nil, &ParseError{Input: p.input, Pos: start, Reason: fmt.Sprintf("duplicate outlet %q", outlet)}
		}

		sub, err := p.parseChildren()
		if err != nil {
			return nil, err
		}
		// A sibling with only a primary child collapses to that child.
		if len(sub) == 1 && sub[PrimaryOutlet] != nil {
			children[outlet] = sub[PrimaryOutlet]
		} else {
			children[outlet] = NewSegmentGroup(nil, sub)
		}
		p.consumeOptional("//")
	}
	return children, nil
}

// parseQuery parses the query portion (without the leading '?').
func parseQuery(input string, offset int, query string) (*Params, error) {
	if query == "" {
		return nil, nil
	}
	params := NewParams()
	pos := offset
	for _, pair := range strings.Split(query, "&") {
		rawKey, rawValue := pair, ""
		if i := strings.IndexByte(pair, '='); i >= 0 {
			rawKey, rawValue = pair[:i], pair[i+1:]
		}
		if rawKey == "" {
			return nil, &ParseError{Input: input, Pos: pos, Reason: "empty query parameter name"}
		}
		key, err := unescape(rawKey)
		if err != nil {
			return nil, &ParseError{Input: input, Pos: pos, Reason: "malformed escape in query parameter name"}
		}
		value, err := unescape(rawValue)
		if err != nil {
			return nil, &ParseError{Input: input, Pos: pos, Reason: "malformed escape in query parameter value"}
		}
		params.Set(key, value)
		pos += len(pair) + 1
	}
	return params, nil
}
