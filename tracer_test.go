package archprune

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/archprune/prunekore"
	"git.fractalqb.de/fractalqb/testerr"
)

type TestTracer struct{ t *testing.T }

var _ prunekore.Tracer = TestTracer{}

func (tr TestTracer) Debug(t *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"archprune-DEBUG:", t.Path(), msg}, args...)...)
}

func (tr TestTracer) Info(t *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"archprune-INFO:", t.Path(), msg}, args...)...)
}

func (tr TestTracer) Warn(t *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"archprune-WARN:", t.Path(), msg}, args...)...)
}

func (tr TestTracer) StartPass(t *prunekore.Trace, p prunekore.Pass, root string) {
	tr.t.Logf("archprune-StartPass: %s %s %s", t.Path(), p, root)
}

func (tr TestTracer) DonePass(t *prunekore.Trace, rep *prunekore.Report, dt time.Duration) {
	tr.t.Logf("archprune-DonePass: %s %s %s", t.Path(), rep, dt)
}

func (tr TestTracer) NotInstalled(t *prunekore.Trace, p prunekore.Pass, root string) {
	tr.t.Logf("archprune-NotInstalled: %s %s %s", t.Path(), p, root)
}

func (tr TestTracer) RemoveEntry(t *prunekore.Trace, rel string, e prunekore.Entry) {
	tr.t.Logf("archprune-RemoveEntry: %s %s", t.Path(), e)
}

func (tr TestTracer) RemoveFailed(t *prunekore.Trace, rel string, err error) {
	tr.t.Logf("archprune-RemoveFailed: %s %s %s", t.Path(), rel, err)
}

// mkTree creates the files, given as slash paths relative to root.
func mkTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		testerr.Shall(os.MkdirAll(filepath.Dir(p), 0777)).BeNil(t)
		testerr.Shall(os.WriteFile(p, []byte(f), 0666)).BeNil(t)
	}
}

func exists(t *testing.T, root, file string) bool {
	t.Helper()
	_, err := os.Lstat(filepath.Join(root, filepath.FromSlash(file)))
	switch {
	case err == nil:
		return true
	case os.IsNotExist(err):
		return false
	}
	t.Fatal(err)
	return false
}
