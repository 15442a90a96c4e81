// Package patchfile provides a standard interface to read patch configs from
// files.
package patchfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Log is used to log debugging messages.
var Log = func(format string, a ...interface{}) {}

// AutoFormat selects the format based on the file extension.
const AutoFormat = "auto"

var (
	// ErrConfigNotFound is returned when the patch config file does not exist.
	ErrConfigNotFound = errors.New("config not found")
	// ErrInvalidConfig is returned when the patch config could not be parsed or
	// is missing something.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config describes a single patch: the file to patch, the pattern to find in
// it, and the pattern to replace the first match with.
type Config struct {
	File    string
	Find    string
	Replace string
}

// Validate checks that all fields are set. It does not parse the patterns.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.File) == "":
		return errors.Wrap(ErrInvalidConfig, "no file to patch")
	case strings.TrimSpace(c.Find) == "":
		return errors.Wrap(ErrInvalidConfig, "no bytes to find")
	case strings.TrimSpace(c.Replace) == "":
		return errors.Wrap(ErrInvalidConfig, "no bytes to replace with")
	}
	return nil
}

var formats = map[string]func([]byte) (*Config, error){}
var extensions = map[string]string{}

// RegisterFormat registers a format, optionally for a list of file extensions
// (including the leading dot) for AutoFormat.
func RegisterFormat(name string, f func([]byte) (*Config, error), ext ...string) {
	if _, ok := formats[name]; ok {
		panic("attempt to register duplicate format " + name)
	}
	formats[name] = f
	for _, e := range ext {
		extensions[strings.ToLower(e)] = name
	}
}

// GetFormat gets a format.
func GetFormat(name string) (func([]byte) (*Config, error), bool) {
	f, ok := formats[name]
	return f, ok
}

// GetFormats gets all registered formats, sorted by name.
func GetFormats() []string {
	f := []string{}
	for n := range formats {
		f = append(f, n)
	}
	sort.Strings(f)
	return f
}

// DetectFormat returns the format registered for the extension of filename,
// or def if there isn't one.
func DetectFormat(filename, def string) string {
	if n, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return n
	}
	return def
}

// ReadFromFile reads and validates a patch config from a file. If format is
// AutoFormat, it is detected from the extension, falling back to "cfg".
func ReadFromFile(fs afero.Fs, format, filename string) (*Config, error) {
	if format == AutoFormat {
		format = DetectFormat(filename, "cfg")
		Log("detected format %s for %s\n", format, filename)
	}

	f, ok := GetFormat(format)
	if !ok {
		return nil, errors.Errorf("no format called '%s'", format)
	}

	if fi, err := fs.Stat(filename); os.IsNotExist(err) || (err == nil && fi.IsDir()) {
		return nil, errors.Wrapf(ErrConfigNotFound, "'%s'", filename)
	}

	buf, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.Wrap(err, "could not open patch config")
	}

	Log("parsing %s as %s (%d bytes)\n", filename, format, len(buf))
	cfg, err := f(buf)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse patch config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Log("config: %#v\n", cfg)
	return cfg, nil
}
