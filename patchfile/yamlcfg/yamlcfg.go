// Package yamlcfg reads patch configs in YAML:
//
//	file: path/to/binary
//	find: 48 8B 05 ** ** ** **
//	replace: 90 90 **
package yamlcfg

import (
	"bytes"
	"io"

	"github.com/pgaskin/hexpatch/patchfile"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Usage describes the format for error messages.
const Usage = "file: BINARY FILE PATH\nfind: ORIGINAL BYTES TO FIND\nreplace: MODIFIED BYTES TO REPLACE THE ORIGINAL WITH\n"

type config struct {
	File    string `yaml:"file"`
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Parse parses a Config from a buf. Unknown keys are an error.
func Parse(buf []byte) (*patchfile.Config, error) {
	var c config
	d := yaml.NewDecoder(bytes.NewReader(buf))
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(patchfile.ErrInvalidConfig, "empty document")
		}
		patchfile.Log("yaml: decode error: %v\n", err)
		return nil, errors.Wrapf(patchfile.ErrInvalidConfig, "%v", err)
	}
	patchfile.Log("yaml: %#v\n", c)
	return &patchfile.Config{
		File:    c.File,
		Find:    c.Find,
		Replace: c.Replace,
	}, nil
}

func init() {
	patchfile.RegisterFormat("yaml", Parse, ".yaml", ".yml")
}
