// Package scheduler runs the build environments of a release pipeline.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/runner"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// EnvStatus represents the status of a build environment.
type EnvStatus string

const (
	// StatusPending indicates the environment is waiting for a free slot.
	StatusPending EnvStatus = "Pending"
	// StatusRunning indicates the environment is executing its stages.
	StatusRunning EnvStatus = "Running"
	// StatusCompleted indicates the environment finished successfully.
	StatusCompleted EnvStatus = "Completed"
	// StatusFailed indicates a stage, service or publish of the environment failed.
	StatusFailed EnvStatus = "Failed"
)

// Provisioner gives environments access to the run's services.
type Provisioner interface {
	EnsureReady(ctx context.Context, id string) error
	Vars() map[string]string
}

// Publisher publishes the artifacts of an environment. Relative artifact
// patterns resolve against dir, the environment's working directory.
type Publisher interface {
	Publish(ctx context.Context, env *domain.BuildEnvironment, ev domain.RunEvent, dir string) domain.PublishResult
}

// Plan is everything the scheduler needs to run the environments of one run.
type Plan struct {
	Config       *domain.PipelineConfig
	Event        domain.RunEvent
	Environments []domain.BuildEnvironment
	Services     Provisioner
	// Publisher is only used when the descriptor configures a deploy.
	Publisher Publisher
	// Parallel bounds the number of environments running at once. Above one,
	// every environment builds in its own copy of the project root.
	Parallel int
	// StateDir holds the per-environment scratch directories.
	StateDir string
}

func (p *Plan) concurrent() bool {
	return p.Parallel > 1 && len(p.Environments) > 1
}

// Scheduler runs every environment of a plan through its stages.
type Scheduler struct {
	runner  *runner.Runner
	logger  ports.Logger
	metrics ports.Metrics

	mu       sync.RWMutex
	envState map[string]EnvStatus
	gates    map[string]domain.Decision
}

// NewScheduler creates a new Scheduler.
func NewScheduler(r *runner.Runner, logger ports.Logger, metrics ports.Metrics) *Scheduler {
	return &Scheduler{
		runner:   r,
		logger:   logger,
		metrics:  metrics,
		envState: make(map[string]EnvStatus),
		gates:    make(map[string]domain.Decision),
	}
}

// Run executes every environment of plan and returns one report per
// environment in plan order. A failing environment never stops its siblings.
func (s *Scheduler) Run(ctx context.Context, plan Plan) []domain.EnvironmentReport {
	s.reset(plan.Environments)

	parallel := plan.Parallel
	if parallel < 1 {
		parallel = 1
	}

	reports := make([]domain.EnvironmentReport, len(plan.Environments))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i := range plan.Environments {
		env := &plan.Environments[i]
		g.Go(func() error {
			reports[i] = s.runEnvironment(ctx, &plan, env)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

func (s *Scheduler) reset(envs []domain.BuildEnvironment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.envState = make(map[string]EnvStatus, len(envs))
	s.gates = make(map[string]domain.Decision, len(envs))
	for _, env := range envs {
		s.envState[env.ID] = StatusPending
	}
}

func (s *Scheduler) updateStatus(id string, status EnvStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envState[id] = status
}

// gate evaluates the deploy condition for env once per run.
func (s *Scheduler) gate(plan *Plan, env *domain.BuildEnvironment) domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.gates[env.ID]; ok {
		return d
	}
	d := domain.Evaluate(plan.Config.Deploy.Condition, plan.Event.For(env))
	s.gates[env.ID] = d
	s.metrics.ObserveGate(d)
	return d
}

func (s *Scheduler) runEnvironment(ctx context.Context, plan *Plan, env *domain.BuildEnvironment) domain.EnvironmentReport {
	s.updateStatus(env.ID, StatusRunning)
	start := time.Now()

	report := s.execute(ctx, plan, env)
	report.Env = *env
	report.Duration = time.Since(start)

	s.metrics.ObserveEnvironment(report.Outcome.Kind, report.Duration)
	if report.Outcome.Kind == domain.OutcomeFailed || report.Outcome.Kind == domain.OutcomeDeployFailed {
		s.updateStatus(env.ID, StatusFailed)
	} else {
		s.updateStatus(env.ID, StatusCompleted)
	}
	s.logOutcome(&report)
	return report
}

// execute runs install and script, then before_deploy and the publish when
// the deploy gate is open. The first failure ends the environment.
func (s *Scheduler) execute(ctx context.Context, plan *Plan, env *domain.BuildEnvironment) domain.EnvironmentReport {
	if err := ctx.Err(); err != nil {
		return failed(domain.Failed("", runner.ExitCodeCancelled,
			domain.Classify(domain.ErrStageCancelled, zerr.With(zerr.Wrap(err, "run cancelled"), "environment", env.ID))))
	}

	ws, err := runner.NewWorkspace(plan.Config, env, plan.StateDir, plan.concurrent())
	if err != nil {
		return failed(domain.Failed("", -1, domain.Classify(domain.ErrStage, zerr.With(err, "environment", env.ID))))
	}

	if plan.Services != nil {
		for _, svc := range plan.Config.Services {
			if err := plan.Services.EnsureReady(ctx, svc.ID); err != nil {
				return failed(domain.Failed("", -1, zerr.With(err, "environment", env.ID)))
			}
		}
		ws.ServiceVars = plan.Services.Vars()
	}
	ws.RunVars = plan.Event.For(env).Vars()

	for _, stage := range []domain.StageName{domain.StageInstall, domain.StageScript} {
		if res := s.runner.Run(ctx, ws, stage, plan.Config.Commands(stage)); !res.Ok() {
			return failed(res.Outcome())
		}
	}

	if !plan.Config.HasDeploy() || plan.Publisher == nil {
		return domain.EnvironmentReport{Outcome: domain.Success()}
	}

	decision := s.gate(plan, env)
	if !decision.Open {
		s.runner.Run(ctx, ws, domain.StageBeforeDeploy, nil)
		return domain.EnvironmentReport{Outcome: domain.DeploySkipped(decision.Reason), Gate: &decision}
	}

	if res := s.runner.Run(ctx, ws, domain.StageBeforeDeploy, plan.Config.Commands(domain.StageBeforeDeploy)); !res.Ok() {
		report := failed(res.Outcome())
		report.Gate = &decision
		return report
	}

	published := plan.Publisher.Publish(ctx, env, plan.Event, ws.Dir)
	report := domain.EnvironmentReport{Outcome: published.Outcome(), Gate: &decision, Assets: published.Assets}
	for _, asset := range published.Assets {
		report.Published = append(report.Published, asset.Name)
	}
	return report
}

func failed(outcome domain.Outcome) domain.EnvironmentReport {
	return domain.EnvironmentReport{Outcome: outcome}
}

func (s *Scheduler) logOutcome(report *domain.EnvironmentReport) {
	args := []any{
		"environment", report.Env.ID,
		"outcome", report.Outcome.String(),
		"duration", report.Duration.Round(time.Millisecond).String(),
	}
	if kind := report.Outcome.ErrorKind(); kind != "" {
		args = append(args, "error_kind", kind)
	}

	switch domain.LevelFor(report.Outcome.Kind) {
	case domain.LogLevelWarn:
		s.logger.Warn("environment completed", args...)
	case domain.LogLevelError:
		err := report.Outcome.Err
		if err == nil {
			err = zerr.New("environment failed")
		}
		s.logger.Error(err, args...)
	default:
		s.logger.Info("environment completed", args...)
	}
}
