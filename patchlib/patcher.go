// Package patchlib provides wildcard byte patterns and functions to find and
// patch them in binaries.
package patchlib

import (
	"errors"
	"fmt"
)

// Log is used to log debugging messages.
var Log = func(format string, a ...interface{}) {}

var (
	// ErrPatternNotFound is returned when a pattern does not occur in the
	// buffer being searched.
	ErrPatternNotFound = errors.New("pattern not found")
	// ErrOutOfRange is returned when a patch would write outside the buffer.
	ErrOutOfRange = errors.New("out of range")
)

// Patcher applies patches to a byte array. All operations are done starting
// from cur.
type Patcher struct {
	buf  []byte
	cur  int
	hook func(offset int, find, replace []byte) error
}

// NewPatcher creates a new Patcher. The buffer is patched in place.
func NewPatcher(in []byte) *Patcher {
	return &Patcher{in, 0, nil}
}

// GetBytes returns the current content of the Patcher.
func (p *Patcher) GetBytes() []byte {
	return p.buf
}

// GetCur gets the current base address.
func (p *Patcher) GetCur() int {
	return p.cur
}

// Hook sets a hook to be called right before every change. If it returns an
// error, it will be passed on. If nil (the default), the hook will be removed.
// The find and replace arguments MUST NOT be modified by the hook.
func (p *Patcher) Hook(fn func(offset int, find, replace []byte) error) {
	p.hook = fn
}

// FindPattern moves cur to the offset of the first match of a pattern in the
// whole buffer. If there is no match, cur is left unchanged.
func (p *Patcher) FindPattern(find *Pattern) error {
	if find.Len() == 0 {
		return fmt.Errorf("FindPattern: %w", ErrEmptyPattern)
	}
	if find.Len() > len(p.buf) {
		return fmt.Errorf("FindPattern: %w: length of pattern greater than buf", ErrPatternNotFound)
	}
	i := find.Index(p.buf)
	if i < 0 {
		return fmt.Errorf("FindPattern: %w: %s", ErrPatternNotFound, find)
	}
	Log("FindPattern(%s) = %#x\n", find, i)
	p.cur = i
	return nil
}

// CheckPattern returns an error if ApplyPattern would fail because the
// pattern does not fit at cur+offset. It does not modify anything.
func (p *Patcher) CheckPattern(offset int, replace *Pattern) error {
	if replace.Len() == 0 {
		return ErrEmptyPattern
	}
	if off := p.cur + offset; off < 0 || off+replace.Len() > len(p.buf) {
		return fmt.Errorf("%w: %d bytes at %#x past end of buf (length %#x)", ErrOutOfRange, replace.Len(), off, len(p.buf))
	}
	return nil
}

// ApplyPattern writes the non-wildcard bytes of a pattern at cur+offset,
// leaving the bytes under wildcards unchanged. It returns the number of bytes
// which were changed.
func (p *Patcher) ApplyPattern(offset int, replace *Pattern) (int, error) {
	if err := p.CheckPattern(offset, replace); err != nil {
		return 0, fmt.Errorf("ApplyPattern: %w", err)
	}

	off := p.cur + offset
	old := p.buf[off : off+replace.Len()]

	nbuf := append([]byte(nil), old...)
	for i, b := range replace.buf {
		if !replace.IsWildcard(i) {
			nbuf[i] = b
		}
	}

	if p.hook != nil {
		if err := p.hook(off, old, nbuf); err != nil {
			return 0, fmt.Errorf("ApplyPattern: hook returned error: %v", err)
		}
	}

	var n int
	for i := range nbuf {
		if old[i] != nbuf[i] {
			n++
		}
	}
	Log("ApplyPattern(%#x, %s) | old:%X new:%X changed:%d\n", off, replace, old, nbuf, n)
	copy(old, nbuf)
	return n, nil
}

// ReplacePattern finds the first match of find in the whole buffer, moves cur
// to it, and applies replace at the start of the match. Only the first match
// is replaced.
func (p *Patcher) ReplacePattern(find, replace *Pattern) (int, error) {
	if err := p.FindPattern(find); err != nil {
		return 0, fmt.Errorf("ReplacePattern: %w", err)
	}
	n, err := p.ApplyPattern(0, replace)
	if err != nil {
		return 0, fmt.Errorf("ReplacePattern: %w", err)
	}
	return n, nil
}
