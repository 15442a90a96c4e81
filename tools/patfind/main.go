// Command patfind prints the offset of the first match of a pattern in a file,
// along with the surrounding bytes. It never modifies the file.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pgaskin/hexpatch/patchlib"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	context := pflag.IntP("context", "c", 16, "number of bytes to show before and after the match")
	help := pflag.BoolP("help", "h", false, "show this help text")
	pflag.Parse()

	if *help || pflag.NArg() != 2 || *context < 0 {
		fmt.Fprintln(os.Stderr, "patfind finds the first match of a hex pattern (with * wildcards) in a file")
		fmt.Fprintln(os.Stderr, "Usage: patfind [OPTIONS] PATTERN FILE")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	off, ctx, err := find(afero.NewOsFs(), pflag.Arg(0), pflag.Arg(1), *context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found at offset %#x (%d)\n\n", off, off)
	fmt.Print(hex.Dump(ctx))
}

// find returns the offset of the first match of the pattern in the file, and
// the bytes from context before it to context after the end of it.
func find(fs afero.Fs, pattern, filename string, context int) (int, []byte, error) {
	p, err := patchlib.ParsePattern(pattern)
	if err != nil {
		return 0, nil, err
	}

	buf, err := afero.ReadFile(fs, filename)
	if err != nil {
		return 0, nil, fmt.Errorf("could not read file: %w", err)
	}

	pt := patchlib.NewPatcher(buf)
	if err := pt.FindPattern(p); err != nil {
		return 0, nil, err
	}

	// compare against the distance to either end of buf so a huge context
	// can't overflow
	off := pt.GetCur()
	start, end := 0, off+p.Len()
	if context < off {
		start = off - context
	}
	if context < len(buf)-end {
		end += context
	} else {
		end = len(buf)
	}
	return off, buf[start:end], nil
}
