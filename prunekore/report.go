package prunekore

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Pass names one of the two pruning pipelines.
type Pass string

const (
	PassSources Pass = "sources"
	PassObjects Pass = "objects"
)

// Entry is a filesystem entry selected for removal. Directories are removed
// with their whole subtree.
type Entry struct {
	Path string
	Dir  bool
}

func (e Entry) String() string {
	if e.Dir {
		return e.Path + "/"
	}
	return e.Path
}

// RemovalResult records one attempted removal. An absent entry was already
// gone, e.g. because a directory containing it was removed before. It counts
// neither as success nor as failure.
type RemovalResult struct {
	Entry
	Absent bool
	Err    error
}

func (r RemovalResult) Succeeded() bool { return r.Err == nil && !r.Absent }

// Report collects the results of one pruning pass below Root. Installed is
// false if Root did not exist, which is expected before the orchestrator
// installed the library or built anything.
type Report struct {
	Pass      Pass
	Root      string
	Installed bool
	DryRun    bool
	Results   []RemovalResult

	done *bitset.BitSet
}

func NewReport(p Pass, root string) *Report {
	return &Report{Pass: p, Root: root}
}

func (r *Report) Add(res RemovalResult) {
	if r.done == nil {
		r.done = bitset.New(8)
	}
	if res.Succeeded() {
		r.done.Set(uint(len(r.Results)))
	}
	r.Results = append(r.Results, res)
}

// Removed returns the number of successful removals.
func (r *Report) Removed() int {
	if r == nil || r.done == nil {
		return 0
	}
	return int(r.done.Count())
}

func (r *Report) Failed() (fs []RemovalResult) {
	if r == nil {
		return nil
	}
	for i, res := range r.Results {
		if r.done != nil && r.done.Test(uint(i)) {
			continue
		}
		if res.Err != nil {
			fs = append(fs, res)
		}
	}
	return fs
}

// Err joins the errors of all failed removals or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

func (r *Report) String() string {
	switch {
	case r == nil:
		return "<nil:Report>"
	case !r.Installed:
		return fmt.Sprintf("%s: %s not installed", r.Pass, r.Root)
	}
	return fmt.Sprintf("%s: %d removed, %d failed in %s",
		r.Pass,
		r.Removed(),
		len(r.Failed()),
		r.Root,
	)
}
