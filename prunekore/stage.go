package prunekore

import "fmt"

// Stage names a step of the build orchestrator's lifecycle.
type Stage string

const (
	// StageInit is used for the eager run when the pruner is initialized.
	StageInit Stage = "init"

	StageCheckSize Stage = "checkprogsize"
	StageBuildProg Stage = "buildprog"
	StageBuildLib  Stage = "buildlib"
)

// Hook is called by an orchestrator right before it executes stage. The env
// carries the orchestrator's variables as they are at that moment.
type Hook func(stage Stage, env *Env) error

// Orchestrator is the part of a build orchestrator hooks get registered
// with. Hooks registered for a stage must run strictly before that stage's
// primary action.
type Orchestrator interface {
	AddPreAction(stage Stage, hook Hook)
}

// Stages is a minimal in-process [Orchestrator]. It is not safe for
// concurrent use; builds are expected to run one at a time.
type Stages struct {
	pre map[Stage][]Hook
}

var _ Orchestrator = (*Stages)(nil)

func (s *Stages) AddPreAction(stage Stage, hook Hook) {
	if s.pre == nil {
		s.pre = make(map[Stage][]Hook)
	}
	s.pre[stage] = append(s.pre[stage], hook)
}

// PreActions returns the number of hooks registered for stage.
func (s *Stages) PreActions(stage Stage) int { return len(s.pre[stage]) }

// Run fires all pre-actions of stage in registration order and then calls
// primary, if not nil. A failing pre-action aborts the stage.
func (s *Stages) Run(stage Stage, env *Env, primary func(*Env) error) error {
	for i, hook := range s.pre[stage] {
		if err := hook(stage, env); err != nil {
			return fmt.Errorf("pre-action %d of stage %s: %w", i+1, stage, err)
		}
	}
	if primary == nil {
		return nil
	}
	return primary(env)
}
