package archprune

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/archprune/prunekore"
	"git.fractalqb.de/fractalqb/sllm/v3"
)

type WriteTracer struct {
	W   io.Writer
	Log prunekore.TraceLog
}

var _ prunekore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() *WriteTracer {
	return &WriteTracer{W: os.Stderr, Log: prunekore.DefaultTraceLog}
}

// ParseTraceLog parses the level names used by command line flags.
func ParseTraceLog(f string) (prunekore.TraceLog, error) {
	switch f {
	case "off":
		return 0, nil
	case "warn", "w":
		return prunekore.TraceWarn, nil
	case "info", "i":
		return prunekore.TraceWarn | prunekore.TraceInfo, nil
	case "debug", "d":
		return prunekore.TraceWarn | prunekore.TraceInfo | prunekore.TraceDebug, nil
	}
	return 0, fmt.Errorf("illegal trace level '%s'", f)
}

func (tr *WriteTracer) ParseLogFlag(f string) error {
	if f == "" {
		return nil
	}
	l, err := ParseTraceLog(f)
	if err != nil {
		return fmt.Errorf("write tracer: %w", err)
	}
	tr.Log = l
	return nil
}

func (tr WriteTracer) Debug(t *prunekore.Trace, msg string, args ...any) {
	if tr.Log&prunekore.TraceDebug == 0 {
		return
	}
	tr.prefix(t, "  DEBUG ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) Info(t *prunekore.Trace, msg string, args ...any) {
	if !tr.logInfo() {
		return
	}
	tr.prefix(t, "  INFO  ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) Warn(t *prunekore.Trace, msg string, args ...any) {
	if !tr.logWarn() {
		return
	}
	tr.prefix(t, "  WARN  ")
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr WriteTracer) StartPass(t *prunekore.Trace, p prunekore.Pass, root string) {
	if !tr.logInfo() {
		return
	}
	tr.prefix(t, "{ ")
	fmt.Fprintf(tr.W, "pruning %s in %s\n", p, root)
}

// DonePass is logged as info, or as warning if removals failed.
func (tr WriteTracer) DonePass(t *prunekore.Trace, rep *prunekore.Report, dt time.Duration) {
	failed := len(rep.Failed())
	if !tr.logInfo() && (failed == 0 || !tr.logWarn()) {
		return
	}
	verb := "removed"
	if rep.DryRun {
		verb = "would remove"
	}
	tr.prefix(t, "} ")
	fmt.Fprintf(tr.W, "pruning %s %s %d, %d failed, took %s\n",
		rep.Pass,
		verb,
		rep.Removed(),
		failed,
		dt,
	)
}

func (tr WriteTracer) NotInstalled(t *prunekore.Trace, p prunekore.Pass, root string) {
	if !tr.logInfo() {
		return
	}
	tr.prefix(t, ". ")
	fmt.Fprintf(tr.W, "%s not installed yet, pruning %s deferred\n", root, p)
}

func (tr WriteTracer) RemoveEntry(t *prunekore.Trace, rel string, e prunekore.Entry) {
	if !tr.logInfo() {
		return
	}
	tr.prefix(t, "- ")
	if e.Dir {
		fmt.Fprintf(tr.W, "remove dir %s\n", rel)
	} else {
		fmt.Fprintf(tr.W, "remove %s\n", rel)
	}
}

func (tr WriteTracer) RemoveFailed(t *prunekore.Trace, rel string, err error) {
	if !tr.logWarn() {
		return
	}
	tr.prefix(t, "! ")
	fmt.Fprintf(tr.W, "failed to remove %s: %s\n", rel, err)
}

func (tr WriteTracer) prefix(t *prunekore.Trace, tag string) {
	fmt.Fprintf(tr.W, "%s@%s\t%s", t.RunTag(), t.Stage(), tag)
}

func (tr WriteTracer) logWarn() bool {
	return tr.Log&(prunekore.TraceWarn|prunekore.TraceInfo|prunekore.TraceDebug) != 0
}

func (tr WriteTracer) logInfo() bool {
	return tr.Log&(prunekore.TraceInfo|prunekore.TraceDebug) != 0
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
