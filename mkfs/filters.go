package mkfs

import (
	"io/fs"
	"path/filepath"
	"strings"
)

type Filter interface {
	Ok(path string, entry fs.DirEntry) (bool, error)
}

type IsDir bool

func (d IsDir) Ok(_ string, e fs.DirEntry) (bool, error) {
	return e.IsDir() == bool(d), nil
}

type NameMatch string

func (p NameMatch) Ok(_ string, e fs.DirEntry) (bool, error) {
	return filepath.Match(string(p), e.Name())
}

// Suffix matches entries whose name ends with the suffix. The comparison is
// case-sensitive, i.e. ".S" does not match "x.s".
type Suffix string

func (s Suffix) Ok(_ string, e fs.DirEntry) (bool, error) {
	return strings.HasSuffix(e.Name(), string(s)), nil
}

// Keywords matches entries whose name contains at least one of the keywords,
// ignoring case.
type Keywords []string

func (kws Keywords) Ok(_ string, e fs.DirEntry) (bool, error) {
	return kws.Contained(e.Name()), nil
}

func (kws Keywords) Contained(name string) bool {
	name = strings.ToLower(name)
	for _, kw := range kws {
		if strings.Contains(name, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

type All []Filter

func (fs All) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

type Any []Filter

func (fs Any) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil {
			return ok, err
		} else if ok {
			return true, nil
		}
	}
	return false, nil
}
