package prunekore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tracer receives the progress of pruning passes. All methods must tolerate
// being called from hooks of any build stage.
type Tracer interface {
	Debug(t *Trace, msg string, args ...any)
	Info(t *Trace, msg string, args ...any)
	Warn(t *Trace, msg string, args ...any)

	StartPass(t *Trace, pass Pass, root string)
	DonePass(t *Trace, rep *Report, dt time.Duration)
	NotInstalled(t *Trace, pass Pass, root string)
	RemoveEntry(t *Trace, rel string, e Entry)
	RemoveFailed(t *Trace, rel string, err error)
}

type TraceLog int

var DefaultTraceLog TraceLog = TraceWarn

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)

// Trace is the handle passed down a pruning run. It knows the run's ID and
// the stage and pass it currently works for.
type Trace struct {
	root *traceRoot
	up   *Trace
	obj  any
}

func NewTrace(t Tracer) *Trace {
	root := &traceRoot{tr: t, run: uuid.New()}
	return &Trace{root: root}
}

// RunTag identifies all traces derived from the same [NewTrace] in log
// lines.
func (t *Trace) RunTag() string { return t.root.run.String()[:8] }

func (t *Trace) Debug(msg string, args ...any) { t.root.tr.Debug(t, msg, args...) }
func (t *Trace) Info(msg string, args ...any)  { t.root.tr.Info(t, msg, args...) }
func (t *Trace) Warn(msg string, args ...any)  { t.root.tr.Warn(t, msg, args...) }

func (t *Trace) StartPass(p Pass, root string) {
	t.root.tr.StartPass(t, p, root)
}

func (t *Trace) DonePass(rep *Report, dt time.Duration) {
	t.root.tr.DonePass(t, rep, dt)
}

func (t *Trace) NotInstalled(p Pass, root string) {
	t.root.tr.NotInstalled(t, p, root)
}

func (t *Trace) RemoveEntry(rel string, e Entry) {
	t.root.tr.RemoveEntry(t, rel, e)
}

func (t *Trace) RemoveFailed(rel string, err error) {
	t.root.tr.RemoveFailed(t, rel, err)
}

// Stage returns the innermost stage t belongs to or "" outside of any stage.
func (t *Trace) Stage() Stage {
	for ; t != nil; t = t.up {
		if s, ok := t.obj.(Stage); ok {
			return s
		}
	}
	return ""
}

// Pass returns the innermost pass t belongs to or "" outside of any pass.
func (t *Trace) Pass() Pass {
	for ; t != nil; t = t.up {
		if p, ok := t.obj.(Pass); ok {
			return p
		}
	}
	return ""
}

func (t *Trace) TopTag() string {
	switch o := t.obj.(type) {
	case Stage:
		return fmt.Sprintf("{%s}", o)
	case Pass:
		return fmt.Sprintf("(%s)", o)
	case nil:
		return ""
	}
	return fmt.Sprintf("!%T!", t.obj)
}

func (t *Trace) Path() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for ; t != nil; t = t.up {
		sb.WriteString(t.TopTag())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Trace) String() string {
	return fmt.Sprintf("%s@%s", t.RunTag(), t.Path())
}

func (t *Trace) PushStage(s Stage) *Trace { return t.push(s) }

func (t *Trace) PushPass(p Pass) *Trace { return t.push(p) }

func (t *Trace) push(obj any) *Trace {
	return &Trace{
		root: t.root,
		up:   t,
		obj:  obj,
	}
}

type traceRoot struct {
	tr  Tracer
	run uuid.UUID
}
