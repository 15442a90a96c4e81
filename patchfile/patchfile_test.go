package patchfile_test

import (
	"testing"

	"github.com/pgaskin/hexpatch/patchfile"
	_ "github.com/pgaskin/hexpatch/patchfile/cfg"
	_ "github.com/pgaskin/hexpatch/patchfile/yamlcfg"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFormats(t *testing.T) {
	assert.Equal(t, []string{"cfg", "yaml"}, patchfile.GetFormats())
}

func TestRegisterDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		patchfile.RegisterFormat("cfg", func([]byte) (*patchfile.Config, error) { return nil, nil })
	})
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, "yaml", patchfile.DetectFormat("a/b/patch.yaml", "cfg"))
	assert.Equal(t, "cfg", patchfile.DetectFormat("config.cfg", "yaml"))
	assert.Equal(t, "def", patchfile.DetectFormat("config", "def"))
	assert.Equal(t, "def", patchfile.DetectFormat("config.json", "def"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&patchfile.Config{"a", "11", "22"}).Validate())
	for _, c := range []*patchfile.Config{
		{"", "11", "22"},
		{" ", "11", "22"},
		{"a", "", "22"},
		{"a", "11", "  "},
	} {
		assert.True(t, errors.Is(c.Validate(), patchfile.ErrInvalidConfig), "%#v", c)
	}
}

func TestReadFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.cfg", []byte("test.bin\n1122\n99**\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "patch.yaml", []byte("file: test.bin\nfind: '1122'\nreplace: '99**'\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "short.cfg", []byte("test.bin\n1122\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "blank.cfg", []byte("test.bin\n\n99\n"), 0644))
	require.NoError(t, fs.Mkdir("dir.cfg", 0755))

	exp := &patchfile.Config{File: "test.bin", Find: "1122", Replace: "99**"}

	cfg, err := patchfile.ReadFromFile(fs, patchfile.AutoFormat, "config.cfg")
	require.NoError(t, err)
	assert.Equal(t, exp, cfg)

	cfg, err = patchfile.ReadFromFile(fs, patchfile.AutoFormat, "patch.yaml")
	require.NoError(t, err)
	assert.Equal(t, exp, cfg)

	cfg, err = patchfile.ReadFromFile(fs, "cfg", "config.cfg")
	require.NoError(t, err)
	assert.Equal(t, exp, cfg)

	_, err = patchfile.ReadFromFile(fs, "yaml", "config.cfg")
	assert.True(t, errors.Is(err, patchfile.ErrInvalidConfig), "%v", err)

	_, err = patchfile.ReadFromFile(fs, patchfile.AutoFormat, "short.cfg")
	assert.True(t, errors.Is(err, patchfile.ErrInvalidConfig), "%v", err)

	_, err = patchfile.ReadFromFile(fs, patchfile.AutoFormat, "blank.cfg")
	assert.True(t, errors.Is(err, patchfile.ErrInvalidConfig), "%v", err)

	_, err = patchfile.ReadFromFile(fs, patchfile.AutoFormat, "missing.cfg")
	assert.True(t, errors.Is(err, patchfile.ErrConfigNotFound), "%v", err)

	_, err = patchfile.ReadFromFile(fs, patchfile.AutoFormat, "dir.cfg")
	assert.True(t, errors.Is(err, patchfile.ErrConfigNotFound), "%v", err)

	_, err = patchfile.ReadFromFile(fs, "nope", "config.cfg")
	assert.Error(t, err)
}
