// Package apply patches a file on disk from a patchfile.Config, keeping a
// backup of the original.
package apply

import (
	"os"

	"github.com/pgaskin/hexpatch/patchfile"
	"github.com/pgaskin/hexpatch/patchlib"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Log is used to log debugging messages.
var Log = func(format string, a ...interface{}) {}

// BackupSuffix is appended to the path of the patched file to get the path of
// the backup.
const BackupSuffix = ".bak"

var (
	// ErrFileNotFound is returned when the file to patch does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrBackupWriteFailed is returned when the backup could not be written.
	// The original file is untouched.
	ErrBackupWriteFailed = errors.New("could not write backup")
	// ErrPatchWriteFailed is returned when the patched file could not be
	// written after the backup was. The original may be damaged, but the
	// backup is intact.
	ErrPatchWriteFailed = errors.New("could not write patched file")
)

// Options controls Run.
type Options struct {
	// DryRun stops after the patch has been checked, without writing
	// anything.
	DryRun bool
}

// Result describes a successful (or dry) run.
type Result struct {
	File    string
	Backup  string // empty for dry runs
	Offset  int    // start of the match
	Length  int    // length of the replacement
	Changed int    // number of bytes which differ from the original
}

// Run applies cfg. It reads the whole file, finds the first match of
// cfg.Find, writes a backup of the unmodified file to File+BackupSuffix, then
// writes the file with cfg.Replace applied at the match. Nothing is written
// unless the patterns are valid and the match is found. The file is never
// written unless the backup was written successfully.
func Run(fs afero.Fs, cfg *patchfile.Config, opt Options) (*Result, error) {
	Log("run: %#v %#v\n", cfg, opt)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fi, err := fs.Stat(cfg.File)
	if err != nil || fi.IsDir() {
		if err == nil || os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrFileNotFound, "'%s'", cfg.File)
		}
		return nil, errors.Wrapf(err, "stat '%s'", cfg.File)
	}

	buf, err := afero.ReadFile(fs, cfg.File)
	if err != nil {
		return nil, errors.Wrapf(err, "read '%s'", cfg.File)
	}
	Log("read %d bytes from %s\n", len(buf), cfg.File)

	find, err := patchlib.ParsePattern(cfg.Find)
	if err != nil {
		return nil, errors.Wrap(err, "bytes to find")
	}
	replace, err := patchlib.ParsePattern(cfg.Replace)
	if err != nil {
		return nil, errors.Wrap(err, "bytes to replace with")
	}
	Log("find: %s (%d wildcards)\n", find, find.Wildcards())
	Log("replace: %s (%d wildcards)\n", replace, replace.Wildcards())

	pt := patchlib.NewPatcher(buf)
	if err := pt.FindPattern(find); err != nil {
		return nil, errors.Wrapf(err, "'%s'", cfg.File)
	}
	if err := pt.CheckPattern(0, replace); err != nil {
		return nil, errors.Wrapf(err, "'%s': bytes to replace with at %#x", cfg.File, pt.GetCur())
	}

	res := &Result{
		File:   cfg.File,
		Offset: pt.GetCur(),
		Length: replace.Len(),
	}

	if opt.DryRun {
		Log("dry run, not writing anything\n")
		res.Changed = countChanges(buf[res.Offset:], replace)
		return res, nil
	}

	// buf is patched in place, so this must happen before ApplyPattern.
	res.Backup = cfg.File + BackupSuffix
	if err := afero.WriteFile(fs, res.Backup, buf, fi.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(ErrBackupWriteFailed, "write '%s': %v", res.Backup, err)
	}
	Log("wrote backup to %s\n", res.Backup)

	pt.Hook(func(offset int, before, after []byte) error {
		Log("patching %d bytes at %#x: %X -> %X\n", len(before), offset, before, after)
		return nil
	})
	if res.Changed, err = pt.ApplyPattern(0, replace); err != nil {
		return nil, errors.Wrapf(err, "'%s'", cfg.File)
	}

	if err := afero.WriteFile(fs, cfg.File, pt.GetBytes(), fi.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(ErrPatchWriteFailed, "write '%s' (the original is at '%s'): %v", cfg.File, res.Backup, err)
	}
	Log("wrote %d bytes to %s (%d changed)\n", len(pt.GetBytes()), cfg.File, res.Changed)

	return res, nil
}

func countChanges(buf []byte, replace *patchlib.Pattern) int {
	var n int
	b := replace.Bytes()
	for i := range b {
		if !replace.IsWildcard(i) && buf[i] != b[i] {
			n++
		}
	}
	return n
}
