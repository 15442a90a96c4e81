// Package cfg reads patch configs in the three-line format:
//
//	BINARY FILE PATH
//	ORIGINAL BYTES TO FIND
//	MODIFIED BYTES TO REPLACE THE ORIGINAL WITH
//
// Lines after the third are ignored.
package cfg

import (
	"strings"

	"github.com/pgaskin/hexpatch/patchfile"
	"github.com/pkg/errors"
)

// Usage describes the format for error messages.
const Usage = "BINARY FILE PATH\nORIGINAL BYTES TO FIND\nMODIFIED BYTES TO REPLACE THE ORIGINAL WITH\n"

// Parse parses a Config from a buf.
func Parse(buf []byte) (*patchfile.Config, error) {
	s := strings.TrimPrefix(string(buf), "\ufeff")
	s = strings.Replace(s, "\r\n", "\n", -1)
	s = strings.TrimSuffix(s, "\n")

	var lines []string
	if s != "" {
		lines = strings.Split(s, "\n")
	}
	patchfile.Log("cfg: %d lines\n", len(lines))
	if len(lines) < 3 {
		return nil, errors.Wrapf(patchfile.ErrInvalidConfig, "expected 3 lines, got %d", len(lines))
	}

	return &patchfile.Config{
		File:    strings.TrimSpace(lines[0]),
		Find:    lines[1],
		Replace: lines[2],
	}, nil
}

func init() {
	patchfile.RegisterFormat("cfg", Parse, ".cfg", ".txt")
}
