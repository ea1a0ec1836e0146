package app

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/engine/publisher"
)

// DryRun describes what a run would do without running anything.
type DryRun struct {
	Event        domain.RunEvent
	Environments []PlannedEnvironment
}

// PlannedEnvironment is one environment of a dry run.
type PlannedEnvironment struct {
	Env domain.BuildEnvironment
	// Gate is nil when the descriptor has no deploy.
	Gate   *domain.Decision
	Assets []domain.Asset
	// Err reports artifacts that could not be matched yet.
	Err error
}

// Plan resolves the environments and evaluates the deploy gate of each one.
// It starts no services, runs no stages and leaves the journal untouched.
func (a *App) Plan(_ context.Context, opts RunOptions) (*DryRun, error) {
	cfg, envs, err := a.load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	dry := &DryRun{
		Event: domain.RunEvent{
			RunID:            a.newRunID(),
			Ref:              opts.Ref,
			IsTag:            opts.IsTag,
			ToolchainVersion: opts.ToolchainVersion,
		},
		Environments: make([]PlannedEnvironment, 0, len(envs)),
	}

	var pub *publisher.Publisher
	if cfg.HasDeploy() {
		pub = publisher.New(cfg.Deploy, a.transports, a.secrets, publisher.NewLedger(),
			a.logger, a.metrics, publisher.Options{Root: cfg.Root})
	}

	for i := range envs {
		env := &envs[i]
		planned := PlannedEnvironment{Env: *env}
		if pub != nil {
			decision := domain.Evaluate(cfg.Deploy.Condition, dry.Event.For(env))
			planned.Gate = &decision
			if decision.Open {
				planned.Assets, planned.Err = pub.Plan(env, dry.Event)
			}
		}
		dry.Environments = append(dry.Environments, planned)
	}
	return dry, nil
}
