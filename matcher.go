package archprune

import (
	"io/fs"
	"path/filepath"

	"git.fractalqb.de/fractalqb/archprune/mkfs"
	"git.fractalqb.de/fractalqb/archprune/prunekore"
)

// Matcher selects the entries a [Policy] excludes.
type Matcher struct {
	Policy Policy
}

// Sources returns the excluded entries below the library root, relative to
// root. If root does not exist, installed is false and nothing is matched.
// Directory rules match existing subtrees as a whole, and also subtrees whose
// existence cannot be checked. File rules are checked
// against every file of the library, including files in matched subtrees.
func (m Matcher) Sources(tr *prunekore.Trace, root string) (installed bool, es []prunekore.Entry, err error) {
	if installed, err = mkfs.DirExists(root); err != nil || !installed {
		return installed, nil, err
	}
	for _, d := range m.Policy.Dirs {
		rel := d.Path()
		ok, err := mkfs.Exists(filepath.Join(root, rel))
		if ok || err != nil {
			// Unchecked dirs are left to the remover to fail on
			es = append(es, prunekore.Entry{Path: rel, Dir: true})
		}
	}
	if len(m.Policy.Files) == 0 {
		return true, es, nil
	}
	files, err := m.walk(tr, root, m.Policy.Files)
	return true, append(es, files...), err
}

// Objects returns the compiled objects below dir that derive from files the
// policy's file rules exclude, relative to dir.
func (m Matcher) Objects(tr *prunekore.Trace, dir string) ([]prunekore.Entry, error) {
	rules := m.Policy.ObjectRules()
	if len(rules) == 0 {
		return nil, nil
	}
	return m.walk(tr, dir, rules)
}

func (Matcher) walk(tr *prunekore.Trace, root string, rules []FileSuffixRule) (es []prunekore.Entry, err error) {
	err = mkfs.DirTree{Dir: root, Filter: filesFilter(rules)}.Walk(
		func(p string, _ fs.DirEntry) error {
			es = append(es, prunekore.Entry{Path: p})
			return nil
		},
		func(p string, err error) error {
			tr.Warn("skipping unreadable `path`: `err`", `path`, p, `err`, err)
			return nil
		},
	)
	return es, err
}
