package archprune

import (
	"time"

	"git.fractalqb.de/fractalqb/archprune/prunekore"
)

// Logger is satisfied by *slog.Logger and by loggers embedding it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// LogTracer traces to a structured logger. Each record carries the run ID
// and the trace path.
type LogTracer struct {
	Log   Logger
	Level prunekore.TraceLog
}

var _ prunekore.Tracer = LogTracer{}

func (tr LogTracer) Debug(t *prunekore.Trace, msg string, args ...any) {
	if tr.Level&prunekore.TraceDebug != 0 {
		tr.Log.Debug(msg, tr.args(t, args)...)
	}
}

func (tr LogTracer) Info(t *prunekore.Trace, msg string, args ...any) {
	if tr.logInfo() {
		tr.Log.Info(msg, tr.args(t, args)...)
	}
}

func (tr LogTracer) Warn(t *prunekore.Trace, msg string, args ...any) {
	if tr.logWarn() {
		tr.Log.Warn(msg, tr.args(t, args)...)
	}
}

func (tr LogTracer) StartPass(t *prunekore.Trace, p prunekore.Pass, root string) {
	tr.Info(t, "pruning `pass` in `root`", `pass`, p, `root`, root)
}

// DonePass is logged as info, or as warning if removals failed.
func (tr LogTracer) DonePass(t *prunekore.Trace, rep *prunekore.Report, dt time.Duration) {
	failed := len(rep.Failed())
	log := tr.Log.Info
	switch {
	case failed > 0 && tr.logWarn():
		log = tr.Log.Warn
	case !tr.logInfo():
		return
	}
	log("pruning `pass` removed `count`, `failed` failed, took `dt`", tr.args(t, []any{
		`pass`, rep.Pass,
		`count`, rep.Removed(),
		`failed`, failed,
		`dt`, dt,
		`dryrun`, rep.DryRun,
	})...)
}

func (tr LogTracer) NotInstalled(t *prunekore.Trace, p prunekore.Pass, root string) {
	tr.Info(t, "`root` not installed yet, pruning `pass` deferred", `root`, root, `pass`, p)
}

func (tr LogTracer) RemoveEntry(t *prunekore.Trace, rel string, e prunekore.Entry) {
	tr.Info(t, "remove `entry`", `entry`, rel, `dir`, e.Dir)
}

func (tr LogTracer) RemoveFailed(t *prunekore.Trace, rel string, err error) {
	tr.Warn(t, "failed to remove `entry`: `err`", `entry`, rel, `err`, err)
}

func (tr LogTracer) args(t *prunekore.Trace, args []any) []any {
	res := make([]any, 0, len(args)+4)
	res = append(res, args...)
	return append(res, `run`, t.RunTag(), `trace`, t.Path())
}

func (tr LogTracer) logWarn() bool {
	return tr.Level&(prunekore.TraceWarn|prunekore.TraceInfo|prunekore.TraceDebug) != 0
}

func (tr LogTracer) logInfo() bool {
	return tr.Level&(prunekore.TraceInfo|prunekore.TraceDebug) != 0
}

// Tracers passes all events to each of its tracers.
type Tracers []prunekore.Tracer

var _ prunekore.Tracer = Tracers{}

func (ts Tracers) Debug(t *prunekore.Trace, msg string, args ...any) {
	for _, tr := range ts {
		tr.Debug(t, msg, args...)
	}
}

func (ts Tracers) Info(t *prunekore.Trace, msg string, args ...any) {
	for _, tr := range ts {
		tr.Info(t, msg, args...)
	}
}

func (ts Tracers) Warn(t *prunekore.Trace, msg string, args ...any) {
	for _, tr := range ts {
		tr.Warn(t, msg, args...)
	}
}

func (ts Tracers) StartPass(t *prunekore.Trace, p prunekore.Pass, root string) {
	for _, tr := range ts {
		tr.StartPass(t, p, root)
	}
}

func (ts Tracers) DonePass(t *prunekore.Trace, rep *prunekore.Report, dt time.Duration) {
	for _, tr := range ts {
		tr.DonePass(t, rep, dt)
	}
}

func (ts Tracers) NotInstalled(t *prunekore.Trace, p prunekore.Pass, root string) {
	for _, tr := range ts {
		tr.NotInstalled(t, p, root)
	}
}

func (ts Tracers) RemoveEntry(t *prunekore.Trace, rel string, e prunekore.Entry) {
	for _, tr := range ts {
		tr.RemoveEntry(t, rel, e)
	}
}

func (ts Tracers) RemoveFailed(t *prunekore.Trace, rel string, err error) {
	for _, tr := range ts {
		tr.RemoveFailed(t, rel, err)
	}
}
