package archprune

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/archprune/mkfs"
)

// DirectoryRule excludes a whole subtree of the library, given as slash
// separated path relative to the library root.
type DirectoryRule string

func (r DirectoryRule) Path() string {
	return filepath.FromSlash(path.Clean(string(r)))
}

// FileSuffixRule excludes files anywhere in the library whose name ends with
// Suffix and contains at least one of Keywords. Suffix is compared
// case-sensitively, keywords are not.
type FileSuffixRule struct {
	Suffix   string
	Keywords []string
}

func (r FileSuffixRule) Match(name string) bool {
	return strings.HasSuffix(name, r.Suffix) &&
		mkfs.Keywords(r.Keywords).Contained(name)
}

func (r FileSuffixRule) Filter() mkfs.Filter {
	return mkfs.All{
		mkfs.IsDir(false),
		mkfs.Suffix(r.Suffix),
		mkfs.Keywords(r.Keywords),
	}
}

func (r FileSuffixRule) String() string {
	return fmt.Sprintf("*%s ~ %s", r.Suffix, strings.Join(r.Keywords, "|"))
}

// Policy is the set of exclusion rules for one library. The compiled objects
// of files matched by Files are matched with the same keywords and
// ObjectSuffix.
type Policy struct {
	Dirs         []DirectoryRule
	Files        []FileSuffixRule
	ObjectSuffix string
}

var armSIMD = []string{"helium", "neon", "arm2d"}

// DefaultPolicy excludes LVGL's ARM SIMD renderers (Helium, NEON, Arm-2D)
// that cannot be built for RISC-V.
func DefaultPolicy() Policy {
	return Policy{
		Dirs: []DirectoryRule{
			"src/draw/sw/blend/helium",
			"src/draw/sw/blend/neon",
			"src/draw/sw/blend/arm2d",
			"src/draw/sw/arm2d",
		},
		Files: []FileSuffixRule{
			{Suffix: ".S", Keywords: armSIMD},
		},
		ObjectSuffix: ".o",
	}
}

func (p Policy) IsZero() bool {
	return len(p.Dirs) == 0 && len(p.Files) == 0 && p.ObjectSuffix == ""
}

func (p Policy) Validate() error {
	var errs []error
	for _, d := range p.Dirs {
		switch c := path.Clean(string(d)); {
		case d == "":
			errs = append(errs, errors.New("empty directory rule"))
		case path.IsAbs(c) || filepath.IsAbs(string(d)):
			errs = append(errs, fmt.Errorf("absolute directory rule '%s'", d))
		case c == ".":
			errs = append(errs, fmt.Errorf("directory rule '%s' is the library root", d))
		case c == ".." || strings.HasPrefix(c, "../"):
			errs = append(errs, fmt.Errorf("directory rule '%s' leaves the library", d))
		}
	}
	for i, f := range p.Files {
		if f.Suffix == "" {
			errs = append(errs, fmt.Errorf("file rule %d without suffix", i+1))
		}
		if len(f.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("file rule %d without keywords", i+1))
		}
		for _, kw := range f.Keywords {
			if kw == "" {
				errs = append(errs, fmt.Errorf("file rule %d has empty keyword", i+1))
			}
		}
	}
	if len(p.Files) > 0 && p.ObjectSuffix == "" {
		errs = append(errs, errors.New("file rules without object suffix"))
	}
	return errors.Join(errs...)
}

// ObjectRules derives the rules for compiled objects from p.Files.
func (p Policy) ObjectRules() []FileSuffixRule {
	res := make([]FileSuffixRule, 0, len(p.Files))
	for _, f := range p.Files {
		res = append(res, FileSuffixRule{
			Suffix:   p.ObjectSuffix,
			Keywords: f.Keywords,
		})
	}
	return res
}

func filesFilter(rules []FileSuffixRule) mkfs.Filter {
	fs := make(mkfs.Any, 0, len(rules))
	for _, r := range rules {
		fs = append(fs, r.Filter())
	}
	return fs
}
