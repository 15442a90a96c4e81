// Command hexpatch finds a byte pattern in a file and replaces it, keeping a
// backup of the original.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env"
	"github.com/fatih/color"
	"github.com/pgaskin/hexpatch/apply"
	"github.com/pgaskin/hexpatch/patchfile"
	"github.com/pgaskin/hexpatch/patchfile/cfg"
	"github.com/pgaskin/hexpatch/patchfile/yamlcfg"
	"github.com/pgaskin/hexpatch/patchlib"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

var version = "unknown"

const (
	exitOK = iota
	exitUsage
	exitConfigNotFound
	exitInvalidConfig
	exitFileNotFound
	exitMalformedPattern
	exitPatternNotFound
	exitBackupWriteFailed
	exitPatchWriteFailed
	exitOutOfRange
	exitError
)

type environment struct {
	Config string `env:"HEXPATCH_CONFIG" envDefault:"config.cfg"`
	Format string `env:"HEXPATCH_FORMAT" envDefault:"auto"`
}

// usage is the format description shown for invalid configs of each format.
var usage = map[string]string{
	"cfg":  cfg.Usage,
	"yaml": yamlcfg.Usage,
}

var (
	okc     = color.New(color.FgGreen)
	noticec = color.New(color.FgYellow)
	errc    = color.New(color.FgRed, color.Bold)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, afero.NewOsFs()))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, fs afero.Fs) int {
	var e environment
	if err := env.Parse(&e); err != nil {
		fmt.Fprintf(stderr, "Error: could not parse environment: %v\n", err)
		return exitUsage
	}

	fset := pflag.NewFlagSet("hexpatch", pflag.ContinueOnError)
	fset.SetOutput(stderr)
	format := fset.StringP("format", "f", e.Format, fmt.Sprintf("the config format (one of: %s, or %s to detect from the extension)", strings.Join(patchfile.GetFormats(), ","), patchfile.AutoFormat))
	dryRun := fset.BoolP("dry-run", "n", false, "find the bytes and check the replacement, but don't write anything")
	verbose := fset.BoolP("verbose", "v", false, "show verbose output")
	noColor := fset.Bool("no-color", false, "don't color the output")
	wait := fset.BoolP("wait", "w", false, "wait for enter to be pressed before exiting")
	help := fset.BoolP("help", "h", false, "show this help text")

	if err := fset.Parse(args); err != nil || *help || fset.NArg() > 1 {
		fmt.Fprintf(stderr, "Usage: hexpatch [OPTIONS] [CONFIG_FILE]\n")
		fmt.Fprintf(stderr, "\nVersion: %s\n\nCONFIG_FILE defaults to $HEXPATCH_CONFIG or %s.\n\nOptions:\n", version, "config.cfg")
		fset.PrintDefaults()
		return exitUsage
	}

	if *noColor {
		color.NoColor = true
	}

	if *verbose {
		logf := func(format string, a ...interface{}) {
			fmt.Fprintf(stdout, format, a...)
		}
		patchlib.Log = logf
		patchfile.Log = logf
		apply.Log = logf
	}

	code := patch(e, *format, fset.Arg(0), *dryRun, stdout, stderr, fs)

	if *wait {
		fmt.Fprintf(stdout, "\nPress enter to exit.\n")
		bufio.NewReader(stdin).ReadString('\n')
	}
	return code
}

func patch(e environment, format, cfgPath string, dryRun bool, stdout, stderr io.Writer, fs afero.Fs) int {
	if cfgPath == "" {
		cfgPath = e.Config
	}

	if format != patchfile.AutoFormat {
		if _, ok := patchfile.GetFormat(format); !ok {
			errc.Fprintf(stderr, "Error: invalid format %s. See --help for more info.\n", format)
			return exitUsage
		}
	}

	c, err := patchfile.ReadFromFile(fs, format, cfgPath)
	if err != nil {
		errc.Fprintf(stderr, "Error: could not read config: %v\n", err)
		switch {
		case errors.Is(err, patchfile.ErrConfigNotFound):
			if wd, err := os.Getwd(); err == nil {
				fmt.Fprintf(stderr, "Working directory path: %s\n", wd)
			}
		case errors.Is(err, patchfile.ErrInvalidConfig):
			if format == patchfile.AutoFormat {
				format = patchfile.DetectFormat(cfgPath, "cfg")
			}
			if u, ok := usage[format]; ok {
				fmt.Fprintf(stderr, "Please use the following format:\n%s", u)
			}
		}
		return exitCode(err)
	}

	res, err := apply.Run(fs, c, apply.Options{DryRun: dryRun})
	if err != nil {
		if errors.Is(err, patchlib.ErrPatternNotFound) {
			noticec.Fprintf(stdout, "Original bytes were not found in '%s'.\n", c.File)
		} else {
			errc.Fprintf(stderr, "Error: could not patch file: %v\n", err)
		}
		return exitCode(err)
	}

	if dryRun {
		noticec.Fprintf(stdout, "Dry run: would change %d of %d bytes at %#x in '%s'.\n", res.Changed, res.Length, res.Offset, res.File)
		return exitOK
	}
	fmt.Fprintf(stdout, "Bytes written to path: %s\n", res.Backup)
	fmt.Fprintf(stdout, "Bytes written to path: %s\n", res.File)
	okc.Fprintf(stdout, "Successfully patched %d of %d bytes at %#x in '%s'.\n", res.Changed, res.Length, res.Offset, res.File)
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, patchfile.ErrConfigNotFound):
		return exitConfigNotFound
	case errors.Is(err, patchfile.ErrInvalidConfig):
		return exitInvalidConfig
	case errors.Is(err, apply.ErrFileNotFound):
		return exitFileNotFound
	case errors.Is(err, patchlib.ErrMalformedPattern), errors.Is(err, patchlib.ErrEmptyPattern):
		return exitMalformedPattern
	case errors.Is(err, patchlib.ErrPatternNotFound):
		return exitPatternNotFound
	case errors.Is(err, apply.ErrBackupWriteFailed):
		return exitBackupWriteFailed
	case errors.Is(err, apply.ErrPatchWriteFailed):
		return exitPatchWriteFailed
	case errors.Is(err, patchlib.ErrOutOfRange):
		return exitOutOfRange
	}
	return exitError
}
