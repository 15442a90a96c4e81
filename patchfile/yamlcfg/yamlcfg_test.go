package yamlcfg

import (
	"testing"

	"github.com/pgaskin/hexpatch/patchfile"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
file: path/to/test.bin
find: 48 8B 05 ** ** ** **
replace: "90 90 **"
`))
	require.NoError(t, err)
	assert.Equal(t, &patchfile.Config{
		File:    "path/to/test.bin",
		Find:    "48 8B 05 ** ** ** **",
		Replace: "90 90 **",
	}, cfg)
}

func TestParseNumericScalar(t *testing.T) {
	cfg, err := Parse([]byte("file: test.bin\nfind: 1122\nreplace: 3344\n"))
	require.NoError(t, err)
	assert.Equal(t, "1122", cfg.Find)
	assert.Equal(t, "3344", cfg.Replace)
}

func TestParseInvalid(t *testing.T) {
	for _, c := range []struct {
		Name string
		In   string
	}{
		{"Empty", ""},
		{"UnknownKey", "file: test.bin\nfind: '11'\nreplace: '22'\nextra: true\n"},
		{"NotMap", "- test.bin\n- '11'\n"},
		{"Syntax", "file: [test.bin\n"},
	} {
		t.Run(c.Name, func(t *testing.T) {
			_, err := Parse([]byte(c.In))
			assert.True(t, errors.Is(err, patchfile.ErrInvalidConfig), "expected ErrInvalidConfig, got %v", err)
		})
	}
}

func TestRegistered(t *testing.T) {
	_, ok := patchfile.GetFormat("yaml")
	assert.True(t, ok)
	assert.Equal(t, "yaml", patchfile.DetectFormat("patch.yaml", ""))
	assert.Equal(t, "yaml", patchfile.DetectFormat("patch.YML", ""))
}
