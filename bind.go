package archprune

import (
	"git.fractalqb.de/fractalqb/archprune/prunekore"
)

// HookStages are the stages before which the pruner hook is registered by
// [Bind].
var HookStages = []prunekore.Stage{
	prunekore.StageCheckSize,
	prunekore.StageBuildProg,
	prunekore.StageBuildLib,
}

// HookResult holds the reports of one hook run. Reports of skipped passes
// are nil.
type HookResult struct {
	Stage   prunekore.Stage
	Sources *prunekore.Report
	Rebuild *prunekore.Report
	Objects *prunekore.Report
}

func (hr HookResult) Removed() int {
	return hr.Sources.Removed() + hr.Rebuild.Removed() + hr.Objects.Removed()
}

// Hook returns the combined pruning hook. It resolves the configured [Vars]
// in the env passed by the orchestrator, runs the sources pass and then the
// objects pass. Pruning problems are traced and never fail the hook.
func (p *Pruner) Hook() prunekore.Hook {
	return func(stage prunekore.Stage, env *prunekore.Env) error {
		p.RunHook(stage, env)
		return nil
	}
}

// RunHook does what [Pruner.Hook] does and returns the reports.
func (p *Pruner) RunHook(stage prunekore.Stage, env *prunekore.Env) (res HookResult) {
	if env == nil {
		env = new(prunekore.Env)
	}
	res.Stage = stage
	tr := p.trace.PushStage(stage)
	var (
		prjDir   = env.Subst(p.cfg.Vars.ProjectDir)
		target   = env.Subst(p.cfg.Vars.BuildTarget)
		buildDir = env.Subst(p.cfg.Vars.BuildDir)
		err      error
	)
	if prjDir == "" || target == "" {
		tr.Warn("cannot locate library without `project` and `target`",
			`project`, p.cfg.Vars.ProjectDir,
			`target`, p.cfg.Vars.BuildTarget,
		)
	} else {
		res.Sources, err = p.pruneSources(tr, LibraryTarget{
			ProjectRoot:   prjDir,
			BuildTargetID: target,
		})
		if err != nil {
			tr.Warn("`err`", `err`, err)
		}
	}
	if buildDir == "" {
		tr.Debug("no build dir in `var`", `var`, p.cfg.Vars.BuildDir)
		return res
	}
	if p.cfg.ForceRebuild && p.cfg.Objects != CoarseObjects && res.Sources.Removed() > 0 {
		tr.Info("forcing rebuild of `library`", `library`, p.cfg.Layout.Library)
		if res.Rebuild, err = p.pruneObjects(tr, buildDir, CoarseObjects); err != nil {
			tr.Warn("`err`", `err`, err)
		}
	}
	if res.Objects, err = p.pruneObjects(tr, buildDir, p.cfg.Objects); err != nil {
		tr.Warn("`err`", `err`, err)
	}
	return res
}

// Bind registers p's hook as pre-action of all [HookStages] of o.
func (p *Pruner) Bind(o prunekore.Orchestrator) {
	hook := p.Hook()
	for _, s := range HookStages {
		o.AddPreAction(s, hook)
	}
}

// Init creates a pruner from cfg, runs its hook once for
// [prunekore.StageInit] with env and binds it to o.
func Init(o prunekore.Orchestrator, env *prunekore.Env, cfg Config, tr prunekore.Tracer) (*Pruner, error) {
	p, err := New(cfg, tr)
	if err != nil {
		return nil, err
	}
	p.RunHook(prunekore.StageInit, env)
	p.Bind(o)
	return p, nil
}
