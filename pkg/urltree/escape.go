package urltree

import (
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// escapeClass identifies which part of a URL a string is being written into.
// Each class keeps a different set of bytes unescaped, matching the
// delimiters the parser recognizes for that position.
type escapeClass int

const (
	classSegment escapeClass = iota
	classMatrixKey
	classMatrixValue
	classQueryKey
	classQueryValue
	classFragment
)

// keepUnescaped reports whether byte c may appear literally in the given
// class. Anything else is percent-encoded.
func keepUnescaped(c byte, class escapeClass) bool {
	// Unreserved characters are always safe.
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return true
	}
	switch c {
	case '-', '.', '_', '~':
		return true
	}
	switch class {
	case classSegment, classMatrixKey:
		// '/', '(', ')', ';', '=', '?', '#' delimit the path grammar and
		// ':' introduces an outlet name inside parentheses.
		return strings.IndexByte("!$&'*+,@", c) >= 0
	case classMatrixValue:
		return strings.IndexByte("!$&'*+,@:", c) >= 0
	case classQueryKey:
		return strings.IndexByte("!$'*+,;:@/()?", c) >= 0
	case classQueryValue:
		return strings.IndexByte("!$'*+,;:@/()?=", c) >= 0
	case classFragment:
		return strings.IndexByte("!$&'()*+,;=:@/?", c) >= 0
	}
	return false
}

// escape percent-encodes every byte of s that is not safe in the given class.
func escape(s string, class escapeClass) string {
	hex := 0
	for i := 0; i < len(s); i++ {
		if !keepUnescaped(s[i], class) {
			hex++
		}
	}
	if hex == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*hex)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepUnescaped(c, class) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

// unescape reverses percent-encoding. Unlike query unescaping it leaves '+'
// alone; a literal plus and an encoded space are distinct.
func unescape(s string) (string, error) {
	return url.PathUnescape(s)
}
