package archprune

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"git.fractalqb.de/fractalqb/archprune/mkfs"
	"git.fractalqb.de/fractalqb/archprune/prunekore"
)

// ObjectStrategy selects how the objects pass invalidates compiled objects.
type ObjectStrategy int

const (
	// FineObjects removes only the objects compiled from excluded files.
	FineObjects ObjectStrategy = iota
	// CoarseObjects removes the library's whole object directory, which
	// forces a complete recompilation of the library.
	CoarseObjects
)

func (s ObjectStrategy) String() string {
	switch s {
	case FineObjects:
		return "fine"
	case CoarseObjects:
		return "coarse"
	}
	return fmt.Sprintf("ObjectStrategy(%d)", int(s))
}

func ParseObjectStrategy(s string) (ObjectStrategy, error) {
	switch s {
	case "", "fine":
		return FineObjects, nil
	case "coarse":
		return CoarseObjects, nil
	}
	return FineObjects, fmt.Errorf("illegal object strategy '%s'", s)
}

// Vars names the orchestrator variables hooks resolve on each call.
type Vars struct {
	ProjectDir  string
	BuildTarget string
	BuildDir    string
}

func DefaultVars() Vars {
	return Vars{
		ProjectDir:  "$PROJECT_DIR",
		BuildTarget: "$PIOENV",
		BuildDir:    "$BUILD_DIR",
	}
}

// Config is the complete configuration of a [Pruner]. Zero fields of Layout
// and Vars, as well as a zero Policy, are replaced by the defaults.
type Config struct {
	Layout  Layout
	Policy  Policy
	Vars    Vars
	Objects ObjectStrategy
	DryRun  bool

	// ForceRebuild drops the library's whole object directories whenever
	// the sources pass of a hook removed anything.
	ForceRebuild bool
}

// Pruner runs the pruning passes. It keeps no state between calls, every
// call locates the library anew.
type Pruner struct {
	cfg   Config
	match Matcher
	rm    mkfs.Remover
	trace *prunekore.Trace
}

func New(cfg Config, tr prunekore.Tracer) (*Pruner, error) {
	cfg.Layout = cfg.Layout.withDefaults()
	if cfg.Policy.IsZero() {
		cfg.Policy = DefaultPolicy()
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("pruning policy: %w", err)
	}
	if _, err := filepath.Match(cfg.Layout.ObjectDirs, ""); err != nil {
		return nil, fmt.Errorf("object dirs '%s': %w", cfg.Layout.ObjectDirs, err)
	}
	def := DefaultVars()
	if cfg.Vars.ProjectDir == "" {
		cfg.Vars.ProjectDir = def.ProjectDir
	}
	if cfg.Vars.BuildTarget == "" {
		cfg.Vars.BuildTarget = def.BuildTarget
	}
	if cfg.Vars.BuildDir == "" {
		cfg.Vars.BuildDir = def.BuildDir
	}
	switch cfg.Objects {
	case FineObjects, CoarseObjects:
	default:
		return nil, fmt.Errorf("illegal object strategy %d", cfg.Objects)
	}
	if tr == nil {
		tr = DefaultTracer()
	}
	return &Pruner{
		cfg:   cfg,
		match: Matcher{Policy: cfg.Policy},
		rm:    mkfs.Remover{DryRun: cfg.DryRun},
		trace: prunekore.NewTrace(tr),
	}, nil
}

func (p *Pruner) Config() Config { return p.cfg }

func (p *Pruner) Trace() *prunekore.Trace { return p.trace }

// PruneSources removes the excluded entries from the library installed for
// buildTargetID in projectRoot. A library that is not installed yields an
// empty report that is not Installed. The error is only set when the library
// could not be located or inspected at all; failed removals are in the report.
func (p *Pruner) PruneSources(projectRoot, buildTargetID string) (*prunekore.Report, error) {
	return p.pruneSources(p.trace, LibraryTarget{
		ProjectRoot:   projectRoot,
		BuildTargetID: buildTargetID,
	})
}

// PruneCompiledArtifacts removes compiled objects of excluded files from the
// library's object directories in buildRoot, according to the configured
// [ObjectStrategy].
func (p *Pruner) PruneCompiledArtifacts(buildRoot string) (*prunekore.Report, error) {
	return p.pruneObjects(p.trace, buildRoot, p.cfg.Objects)
}

func (p *Pruner) pruneSources(tr *prunekore.Trace, lt LibraryTarget) (*prunekore.Report, error) {
	if err := lt.Check(); err != nil {
		return nil, fmt.Errorf("locate library: %w", err)
	}
	start := time.Now()
	root := p.cfg.Layout.LibraryRoot(lt)
	tr = tr.PushPass(prunekore.PassSources)
	rep := prunekore.NewReport(prunekore.PassSources, root)
	tr.StartPass(prunekore.PassSources, root)
	installed, es, err := p.match.Sources(tr, root)
	rep.Installed = installed
	switch {
	case err != nil && !installed:
		return rep, fmt.Errorf("locate library: %w", err)
	case !installed:
		tr.NotInstalled(prunekore.PassSources, root)
		return rep, nil
	case err != nil:
		tr.Warn("incomplete match in `root`: `err`", `root`, root, `err`, err)
	}
	p.rm.Remove(tr, rep, es)
	tr.DonePass(rep, time.Since(start))
	return rep, err
}

func (p *Pruner) pruneObjects(tr *prunekore.Trace, buildRoot string, strategy ObjectStrategy) (*prunekore.Report, error) {
	if buildRoot == "" {
		return nil, errors.New("no build dir")
	}
	start := time.Now()
	tr = tr.PushPass(prunekore.PassObjects)
	rep := prunekore.NewReport(prunekore.PassObjects, buildRoot)
	tr.StartPass(prunekore.PassObjects, buildRoot)
	installed, err := mkfs.DirExists(buildRoot)
	rep.Installed = installed
	switch {
	case err != nil:
		return rep, fmt.Errorf("build dir: %w", err)
	case !installed:
		tr.NotInstalled(prunekore.PassObjects, buildRoot)
		return rep, nil
	}
	dirs, err := p.cfg.Layout.ObjectDirsIn(buildRoot)
	if err != nil {
		tr.Warn("incomplete object dirs in `root`: `err`", `root`, buildRoot, `err`, err)
	}
	var es []prunekore.Entry
	for _, dir := range dirs {
		if strategy == CoarseObjects {
			es = append(es, prunekore.Entry{Path: dir, Dir: true})
			continue
		}
		objs, oerr := p.match.Objects(tr, filepath.Join(buildRoot, dir))
		if oerr != nil {
			tr.Warn("incomplete match in `dir`: `err`", `dir`, dir, `err`, oerr)
			if err == nil {
				err = oerr
			}
		}
		for _, o := range objs {
			o.Path = filepath.Join(dir, o.Path)
			es = append(es, o)
		}
	}
	p.rm.Remove(tr, rep, es)
	tr.DonePass(rep, time.Since(start))
	return rep, err
}
