package mkfs

import (
	"io/fs"
	"path/filepath"
)

// DirTree selects the entries of the whole tree below Dir that pass Filter.
// Dir itself is never selected.
type DirTree struct {
	Dir    string
	Filter Filter
}

// Walk calls do for each selected entry with its path relative to Dir. When
// a subdirectory cannot be read, onErr decides whether to go on (returning
// nil) or to stop the walk. A nil onErr stops on the first error. Errors on
// Dir itself always stop the walk.
func (d DirTree) Walk(
	do func(string, fs.DirEntry) error,
	onErr func(string, error) error,
) error {
	return filepath.WalkDir(d.Dir, func(path string, e fs.DirEntry, err error) error {
		if path == d.Dir {
			return err
		}
		rel, rerr := filepath.Rel(d.Dir, path)
		if rerr != nil {
			return rerr
		}
		if err != nil {
			if onErr == nil {
				return err
			}
			return onErr(rel, err)
		}
		if ok, err := d.ok(rel, e); err != nil {
			return err
		} else if ok {
			if err := do(rel, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the selected entries relative to Dir.
func (d DirTree) List() (ls []string, err error) {
	err = d.Walk(func(p string, _ fs.DirEntry) error {
		ls = append(ls, p)
		return nil
	}, nil)
	return
}

func (d DirTree) ok(p string, e fs.DirEntry) (ok bool, err error) {
	if d.Filter != nil {
		return d.Filter.Ok(p, e)
	}
	return true, nil
}
