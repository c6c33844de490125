// Command archprune removes LVGL's ARM SIMD sources and objects from a
// PlatformIO build for RISC-V targets. It is meant to be called from the
// orchestrator's pre-actions, e.g.
//
//	archprune stage buildprog
//
// with PROJECT_DIR, PIOENV and BUILD_DIR taken from the environment.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/archprune"
	"git.fractalqb.de/fractalqb/archprune/prunekore"
	"git.fractalqb.de/fractalqb/qblog"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	app = kingpin.New("archprune", "Prune ARM-only sources of a vendored library from a RISC-V build.")

	fPrjDir   = app.Flag("project-dir", "Project root, defaults to the working dir").Envar("PROJECT_DIR").String()
	fTarget   = app.Flag("env", "Build target (PlatformIO environment)").Envar("PIOENV").String()
	fBuildDir = app.Flag("build-dir", "Build output dir, defaults to <project-dir>/.pio/build/<env>").Envar("BUILD_DIR").String()
	fVars     = app.Flag("var", "Set orchestrator variable KEY=VALUE (repeatable)").PlaceHolder("KEY=VALUE").Strings()

	fDepsDir  = app.Flag("deps-dir", "Dependency cache relative to the project root").Default(archprune.DefaultLayout().DepsDir).String()
	fLibrary  = app.Flag("library", "Directory name of the vendored library").Default(archprune.DefaultLayout().Library).String()
	fObjDirs  = app.Flag("object-dirs", "Glob of per-library object dirs in the build dir").Default(archprune.DefaultLayout().ObjectDirs).String()
	fObjects  = app.Flag("objects", "How to invalidate compiled objects").Default("fine").Enum("fine", "coarse")
	fRebuild  = app.Flag("force-rebuild", "Drop all objects of the library when sources were pruned").Bool()
	fDryRun   = app.Flag("dry-run", "Only report what would be removed").Short('n').Bool()
	fStrict   = app.Flag("strict", "Exit with failure if any removal failed").Bool()
	fTrace    = app.Flag("trace", "Trace level: off, warn, info, debug").Default("info").Enum("off", "warn", "w", "info", "i", "debug", "d")
	fTraceLog = app.Flag("trace-file", "Also write a debug trace to this rotated file").String()

	cmdSources = app.Command("sources", "Prune the library sources")
	cmdObjects = app.Command("objects", "Prune compiled objects of the library")
	cmdStage   = app.Command("stage", "Run the pre-stage hook like the orchestrator does")
	argStage   = cmdStage.Arg("name", "Stage name").Required().Enum(
		string(prunekore.StageCheckSize),
		string(prunekore.StageBuildProg),
		string(prunekore.StageBuildLib),
	)
	cmdPolicy = app.Command("policy", "Show the exclusion policy")
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := buildConfig()
	app.FatalIfError(err, "config")
	if cmd == cmdPolicy.FullCommand() {
		showPolicy(cfg)
		return
	}

	env := buildEnv()
	if err := checkVars(cmd, env, cfg.Vars); err != nil {
		app.FatalUsage("%s\n", err)
	}

	tracer, closeTrace, err := newTracer()
	app.FatalIfError(err, "trace")
	defer closeTrace()
	var reps []*prunekore.Report
	switch cmd {
	case cmdSources.FullCommand():
		p, err := archprune.New(cfg, tracer)
		app.FatalIfError(err, "sources")
		rep, err := p.PruneSources(env.Subst(cfg.Vars.ProjectDir), env.Subst(cfg.Vars.BuildTarget))
		app.FatalIfError(err, "sources")
		reps = append(reps, rep)
	case cmdObjects.FullCommand():
		p, err := archprune.New(cfg, tracer)
		app.FatalIfError(err, "objects")
		rep, err := p.PruneCompiledArtifacts(env.Subst(cfg.Vars.BuildDir))
		app.FatalIfError(err, "objects")
		reps = append(reps, rep)
	case cmdStage.FullCommand():
		p, err := archprune.New(cfg, tracer)
		app.FatalIfError(err, "stage")
		var stages prunekore.Stages
		for _, hs := range archprune.HookStages {
			stages.AddPreAction(hs, func(s prunekore.Stage, env *prunekore.Env) error {
				res := p.RunHook(s, env)
				reps = append(reps, res.Sources, res.Rebuild, res.Objects)
				return nil
			})
		}
		stage := prunekore.Stage(*argStage)
		app.FatalIfError(stages.Run(stage, env, nil), "stage %s", stage)
	}

	failed := 0
	for _, rep := range reps {
		if rep != nil {
			fmt.Println(rep)
			failed += len(rep.Failed())
		}
	}
	if *fStrict && failed > 0 {
		closeTrace()
		os.Exit(1)
	}
}

func buildConfig() (cfg archprune.Config, err error) {
	cfg.Layout = archprune.Layout{
		DepsDir:    *fDepsDir,
		Library:    *fLibrary,
		ObjectDirs: *fObjDirs,
	}
	cfg.Policy = archprune.DefaultPolicy()
	cfg.Vars = archprune.DefaultVars()
	cfg.Objects, err = archprune.ParseObjectStrategy(*fObjects)
	cfg.DryRun = *fDryRun
	cfg.ForceRebuild = *fRebuild
	if err == nil {
		err = cfg.Policy.Validate()
	}
	return cfg, err
}

// buildEnv derives the orchestrator variables from the process environment
// and the command line.
func buildEnv() *prunekore.Env {
	env := prunekore.DefaultEnv(nil).Sub()
	prjDir := *fPrjDir
	if prjDir == "" {
		prjDir, _ = os.Getwd()
	}
	env.SetTag("PROJECT_DIR", prjDir)
	if *fTarget != "" {
		env.SetTag("PIOENV", *fTarget)
	}
	switch {
	case *fBuildDir != "":
		env.SetTag("BUILD_DIR", *fBuildDir)
	case *fTarget != "":
		env.SetTag("BUILD_DIR", filepath.Join(prjDir, ".pio", "build", *fTarget))
	}
	env.SetTags(*fVars...)
	return env
}

// checkVars rejects one-shot commands whose orchestrator variables do not
// resolve. Hooks run for stages skip such passes instead.
func checkVars(cmd string, env *prunekore.Env, vars archprune.Vars) error {
	switch cmd {
	case cmdSources.FullCommand():
		err := archprune.LibraryTarget{
			ProjectRoot:   env.Subst(vars.ProjectDir),
			BuildTargetID: env.Subst(vars.BuildTarget),
		}.Check()
		if err != nil {
			return fmt.Errorf("%w, use --project-dir and --env", err)
		}
	case cmdObjects.FullCommand():
		if env.Subst(vars.BuildDir) == "" {
			return errors.New("no build dir, use --build-dir or --env")
		}
	}
	return nil
}

func newTracer() (prunekore.Tracer, func(), error) {
	lvl, err := archprune.ParseTraceLog(*fTrace)
	if err != nil {
		return nil, nil, err
	}
	trs := archprune.Tracers{archprune.LogTracer{
		Log:   qblog.New(&qblog.DefaultConfig),
		Level: lvl,
	}}
	if *fTraceLog == "" {
		return trs, func() {}, nil
	}
	lj := &lumberjack.Logger{
		Filename:   *fTraceLog,
		MaxSize:    1, // megabytes
		MaxBackups: 5,
	}
	trs = append(trs, &archprune.WriteTracer{
		W:   lj,
		Log: prunekore.TraceWarn | prunekore.TraceInfo | prunekore.TraceDebug,
	})
	return trs, func() { lj.Close() }, nil
}

func showPolicy(cfg archprune.Config) {
	fmt.Printf("library: %s/<env>/%s\n", cfg.Layout.DepsDir, cfg.Layout.Library)
	for _, d := range cfg.Policy.Dirs {
		fmt.Printf("dir:     %s\n", d)
	}
	for _, f := range cfg.Policy.Files {
		fmt.Printf("file:    %s\n", f)
	}
	for _, o := range cfg.Policy.ObjectRules() {
		fmt.Printf("object:  %s in <build-dir>/%s/%s\n", o, cfg.Layout.ObjectDirs, cfg.Layout.Library)
	}
	fmt.Printf("objects: %s\n", cfg.Objects)
}
