package archprune

import (
	"errors"
	"path/filepath"

	"git.fractalqb.de/fractalqb/archprune/mkfs"
)

// Layout describes where the orchestrator keeps the vendored library and its
// compiled objects.
type Layout struct {
	// DepsDir is the per-target dependency cache relative to the project
	// root, slash separated.
	DepsDir string
	// Library is the directory name of the vendored library.
	Library string
	// ObjectDirs is a glob for the per-library object directories in the
	// build directory. Each of them may have a subdirectory Library.
	ObjectDirs string
}

func DefaultLayout() Layout {
	return Layout{
		DepsDir:    ".pio/libdeps",
		Library:    "lvgl",
		ObjectDirs: "lib*",
	}
}

func (l Layout) withDefaults() Layout {
	def := DefaultLayout()
	if l.DepsDir == "" {
		l.DepsDir = def.DepsDir
	}
	if l.Library == "" {
		l.Library = def.Library
	}
	if l.ObjectDirs == "" {
		l.ObjectDirs = def.ObjectDirs
	}
	return l
}

type LibraryTarget struct {
	ProjectRoot   string
	BuildTargetID string
}

// Check fails if t cannot locate a per-target library root.
func (t LibraryTarget) Check() error {
	switch {
	case t.ProjectRoot == "" && t.BuildTargetID == "":
		return errors.New("no project root and no build target")
	case t.ProjectRoot == "":
		return errors.New("no project root")
	case t.BuildTargetID == "":
		return errors.New("no build target")
	}
	return nil
}

// LibraryRoot returns where the library is installed for t. It does not
// check whether it exists.
func (l Layout) LibraryRoot(t LibraryTarget) string {
	return filepath.Join(
		t.ProjectRoot,
		filepath.FromSlash(l.DepsDir),
		t.BuildTargetID,
		l.Library,
	)
}

// ObjectDirsIn returns the library's object directories relative to
// buildRoot, e.g. "libb3c/lvgl".
func (l Layout) ObjectDirsIn(buildRoot string) (ls []string, err error) {
	names, err := mkfs.DirList{
		Dir:    buildRoot,
		Filter: mkfs.All{mkfs.IsDir(true), mkfs.NameMatch(l.ObjectDirs)},
	}.List()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		rel := filepath.Join(n, l.Library)
		ok, err := mkfs.DirExists(filepath.Join(buildRoot, rel))
		switch {
		case err != nil && ok: // no directory
		case err != nil:
			return ls, err
		case ok:
			ls = append(ls, rel)
		}
	}
	return ls, nil
}
