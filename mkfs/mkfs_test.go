package mkfs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/archprune/prunekore"
	"git.fractalqb.de/fractalqb/testerr"
)

// mkTree creates the files, given as slash paths relative to root.
func mkTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		testerr.Shall(os.MkdirAll(filepath.Dir(p), 0777)).BeNil(t)
		testerr.Shall(os.WriteFile(p, []byte(f), 0666)).BeNil(t)
	}
}

type testTracer struct{ t *testing.T }

func (tr testTracer) Debug(_ *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"DEBUG", msg}, args...)...)
}

func (tr testTracer) Info(_ *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"INFO", msg}, args...)...)
}

func (tr testTracer) Warn(_ *prunekore.Trace, msg string, args ...any) {
	tr.t.Log(append([]any{"WARN", msg}, args...)...)
}

func (tr testTracer) StartPass(_ *prunekore.Trace, p prunekore.Pass, root string) {
	tr.t.Logf("StartPass: %s %s", p, root)
}

func (tr testTracer) DonePass(_ *prunekore.Trace, rep *prunekore.Report, dt time.Duration) {
	tr.t.Logf("DonePass: %s %s", rep, dt)
}

func (tr testTracer) NotInstalled(_ *prunekore.Trace, p prunekore.Pass, root string) {
	tr.t.Logf("NotInstalled: %s %s", p, root)
}

func (tr testTracer) RemoveEntry(_ *prunekore.Trace, rel string, _ prunekore.Entry) {
	tr.t.Logf("RemoveEntry: %s", rel)
}

func (tr testTracer) RemoveFailed(_ *prunekore.Trace, rel string, err error) {
	tr.t.Logf("RemoveFailed: %s %s", rel, err)
}
