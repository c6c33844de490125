package mkfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/archprune/prunekore"
)

// Remover deletes pruning entries one by one. The zero value removes with
// [os.Remove] and [os.RemoveAll].
type Remover struct {
	RemoveFile func(string) error
	RemoveDir  func(string) error
	DryRun     bool
}

// Remove tries to remove all entries, given relative to rep.Root, and adds
// one result per entry to rep. A failing entry never keeps the remaining
// entries from being removed. Entries that are already gone, or that lie in
// a directory removed before, are recorded as absent. Remove returns the
// number of successful removals of this call.
func (rm Remover) Remove(tr *prunekore.Trace, rep *prunekore.Report, es []prunekore.Entry) (n int) {
	rep.DryRun = rm.DryRun
	var gone []string
	for _, e := range es {
		res := prunekore.RemovalResult{Entry: e}
		if rm.inGone(e.Path, gone) {
			res.Absent = true
			rep.Add(res)
			continue
		}
		path := filepath.Join(rep.Root, e.Path)
		if ok, err := Exists(path); err != nil {
			res.Err = err
			tr.RemoveFailed(e.Path, err)
			rep.Add(res)
			continue
		} else if !ok {
			tr.Debug("already absent `entry`", `entry`, e.String())
			res.Absent = true
			rep.Add(res)
			continue
		}
		tr.RemoveEntry(e.Path, e)
		if !rm.DryRun {
			res.Err = rm.remove(path, e.Dir)
		}
		switch {
		case res.Err == nil:
			if e.Dir {
				gone = append(gone, filepath.Clean(e.Path))
			}
			n++
		case errors.Is(res.Err, fs.ErrNotExist):
			res.Err = nil
			res.Absent = true
		default:
			tr.RemoveFailed(e.Path, res.Err)
		}
		rep.Add(res)
	}
	return n
}

func (rm Remover) remove(path string, dir bool) error {
	if dir {
		if rm.RemoveDir != nil {
			return rm.RemoveDir(path)
		}
		return os.RemoveAll(path)
	}
	if rm.RemoveFile != nil {
		return rm.RemoveFile(path)
	}
	return os.Remove(path)
}

func (Remover) inGone(path string, gone []string) bool {
	path = filepath.Clean(path)
	for _, g := range gone {
		if Within(path, g) {
			return true
		}
	}
	return false
}
