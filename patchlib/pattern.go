package patchlib

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Wildcard is the character which marks a nibble as matching anything. A
// single wildcard nibble makes the whole byte a wildcard.
const Wildcard = '*'

var (
	// ErrMalformedPattern is returned when a pattern string has an odd number
	// of digits or contains something other than hex digits and wildcards.
	ErrMalformedPattern = errors.New("malformed pattern")
	// ErrEmptyPattern is returned when an empty pattern is used to search or
	// patch.
	ErrEmptyPattern = errors.New("empty pattern")
)

// Pattern is a fixed-length sequence of bytes, some of which may be
// wildcards. When searching, a wildcard matches any byte. When patching, a
// wildcard leaves the existing byte alone.
type Pattern struct {
	buf []byte
	wc  []uint64 // bitset of wildcard indexes
}

// ParsePattern parses a pattern from hex notation. Spaces are ignored, and
// either digit of a byte may be a '*' to make that byte a wildcard (e.g.
// "48 8B 05 ** ** ** **" or "2*30").
func ParsePattern(s string) (*Pattern, error) {
	h := strings.Replace(s, " ", "", -1)
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits (%d) in %q", ErrMalformedPattern, len(h), s)
	}

	p := &Pattern{
		buf: make([]byte, len(h)/2),
		wc:  make([]uint64, (len(h)/2+63)/64),
	}
	for i := range p.buf {
		hi, hw, ok := nibble(h[i*2])
		if !ok {
			return nil, fmt.Errorf("%w: invalid character %q at digit %d of %q", ErrMalformedPattern, h[i*2], i*2, s)
		}
		lo, lw, ok := nibble(h[i*2+1])
		if !ok {
			return nil, fmt.Errorf("%w: invalid character %q at digit %d of %q", ErrMalformedPattern, h[i*2+1], i*2+1, s)
		}
		if hw || lw {
			p.wc[i/64] |= 1 << (uint(i) % 64)
			continue
		}
		p.buf[i] = hi<<4 | lo
	}
	return p, nil
}

// MustParsePattern is like ParsePattern, but panics on error.
func MustParsePattern(s string) *Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// nibble decodes a hex digit. Wildcards decode to 0.
func nibble(c byte) (v byte, wildcard bool, ok bool) {
	switch {
	case c == Wildcard:
		return 0, true, true
	case c >= '0' && c <= '9':
		return c - '0', false, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, false, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, false, true
	}
	return 0, false, false
}

// Len returns the number of bytes in the pattern.
func (p *Pattern) Len() int {
	return len(p.buf)
}

// Bytes returns a copy of the pattern's bytes. Wildcard bytes are 0.
func (p *Pattern) Bytes() []byte {
	b := make([]byte, len(p.buf))
	copy(b, p.buf)
	return b
}

// IsWildcard returns true if the byte at i is a wildcard. Indexes outside the
// pattern are never wildcards.
func (p *Pattern) IsWildcard(i int) bool {
	if i < 0 || i >= len(p.buf) {
		return false
	}
	return p.wc[i/64]&(1<<(uint(i)%64)) != 0
}

// Wildcards returns the number of wildcard bytes.
func (p *Pattern) Wildcards() int {
	var n int
	for _, w := range p.wc {
		n += bits.OnesCount64(w)
	}
	return n
}

// MatchAt returns true if the pattern matches buf starting at off.
func (p *Pattern) MatchAt(buf []byte, off int) bool {
	if off < 0 || off+len(p.buf) > len(buf) {
		return false
	}
	for i, b := range p.buf {
		if buf[off+i] != b && !p.IsWildcard(i) {
			return false
		}
	}
	return true
}

// Index returns the offset of the first match of the pattern in buf, or -1 if
// there isn't one. An empty pattern never matches.
func (p *Pattern) Index(buf []byte) int {
	if len(p.buf) == 0 {
		return -1
	}
	for i := 0; i+len(p.buf) <= len(buf); i++ {
		if p.MatchAt(buf, i) {
			return i
		}
	}
	return -1
}

// String encodes the pattern back into uppercase hex notation, with "**" for
// wildcard bytes.
func (p *Pattern) String() string {
	var sb strings.Builder
	sb.Grow(len(p.buf) * 2)
	for i, b := range p.buf {
		if p.IsWildcard(i) {
			sb.WriteString("**")
			continue
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
