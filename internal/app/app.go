// Package app implements the application layer for ferry.
package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/ferry/internal/adapters/journal" //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/notifier"
	"go.trai.ch/ferry/internal/engine/provisioner"
	"go.trai.ch/ferry/internal/engine/publisher"
	"go.trai.ch/ferry/internal/engine/resolver"
	"go.trai.ch/ferry/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// RunOptions configures a pipeline run.
type RunOptions struct {
	// ConfigPath is the descriptor file or a directory below the project root.
	ConfigPath       string
	Ref              string
	IsTag            bool
	ToolchainVersion string
	// Parallel bounds the number of environments running at once.
	Parallel int
	// MetricsFile, when set, receives the run metrics in the Prometheus text format.
	MetricsFile string
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	notifier     *notifier.Notifier
	services     ports.ServiceFactory
	transports   ports.TransportRegistry
	secrets      ports.SecretResolver
	logger       ports.Logger
	metrics      ports.Metrics

	newRunID    func() string
	now         func() time.Time
	openJournal func(stateDir string) (ports.Journal, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sched *scheduler.Scheduler,
	notif *notifier.Notifier,
	services ports.ServiceFactory,
	transports ports.TransportRegistry,
	secrets ports.SecretResolver,
	logger ports.Logger,
	metrics ports.Metrics,
) *App {
	return &App{
		configLoader: loader,
		scheduler:    sched,
		notifier:     notif,
		services:     services,
		transports:   transports,
		secrets:      secrets,
		logger:       logger,
		metrics:      metrics,
		newRunID:     uuid.NewString,
		now:          time.Now,
		openJournal: func(stateDir string) (ports.Journal, error) {
			return journal.NewStore(journal.Path(stateDir))
		},
	}
}

// WithJournal replaces how the run journal is opened.
func (a *App) WithJournal(open func(stateDir string) (ports.Journal, error)) *App {
	a.openJournal = open
	return a
}

// Run executes the pipeline: services are started, every environment runs
// its stages, gated environments publish, and services are torn down before
// the outcome is final. The returned error is nil when the run passed and
// otherwise carries the error kind deciding the exit code.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	cfg, envs, err := a.load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	// Deferred first so it runs after the service teardown.
	defer func() {
		if err := a.services.Close(); err != nil {
			a.logger.Error(err)
		}
	}()

	drivers := make([]ports.ServiceDriver, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		d, err := a.services.Driver(svc)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to configure services")
		}
		drivers = append(drivers, d)
	}

	report := &domain.RunReport{
		RunID:     a.newRunID(),
		StartedAt: a.now(),
	}
	report.Event = domain.RunEvent{
		RunID:            report.RunID,
		Ref:              opts.Ref,
		IsTag:            opts.IsTag,
		ToolchainVersion: opts.ToolchainVersion,
	}
	a.logger.Info("run started",
		"run_id", report.RunID,
		"ref", opts.Ref,
		"environments", len(envs),
	)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	services := provisioner.New(drivers, provisioner.Options{
		ReadyTimeout: cfg.ReadyTimeout,
		Logger:       a.logger,
		OnTimeout:    cancel,
	})
	teardown := func() {
		if err := services.Teardown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error(err)
		}
	}
	defer teardown()

	if err := services.Start(runCtx); err != nil {
		a.logger.Warn("services not started", "error", err.Error())
	}

	plan := scheduler.Plan{
		Config:       cfg,
		Event:        report.Event,
		Environments: envs,
		Services:     services,
		Parallel:     opts.Parallel,
		StateDir:     stateDir(cfg),
	}
	if cfg.HasDeploy() {
		plan.Publisher = publisher.New(cfg.Deploy, a.transports, a.secrets, publisher.NewLedger(),
			a.logger, a.metrics, publisher.Options{Root: cfg.Root})
	}

	report.Environments = a.scheduler.Run(runCtx, plan)
	teardown()

	report.Outcome = report.Aggregate()
	if cause := context.Cause(runCtx); cause != nil && domain.KindOf(cause) == domain.ErrProvision {
		report.Outcome = domain.Failed("", -1, cause)
	} else if err := ctx.Err(); err != nil {
		report.Outcome = domain.Failed("", ExitCodeCancelled,
			domain.Classify(domain.ErrStageCancelled, zerr.Wrap(err, "run cancelled")))
	}
	report.Err = outcomeError(report.Outcome)
	report.FinishedAt = a.now()

	a.finish(ctx, cfg, report, opts.MetricsFile)
	return report, report.Err
}

// load reads the descriptor, resolves its environments and checks that the
// deploy section names a usable provider.
func (a *App) load(path string) (*domain.PipelineConfig, []domain.BuildEnvironment, error) {
	if path == "" {
		path = "."
	}
	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to load configuration")
	}

	envs, err := resolver.Resolve(cfg)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to resolve build environments")
	}

	if cfg.HasDeploy() {
		if err := publisher.Validate(cfg.Deploy, a.transports); err != nil {
			return nil, nil, zerr.Wrap(err, "invalid deploy configuration")
		}
	}
	return cfg, envs, nil
}

// finish records the run in the journal, notifies the configured channels
// and flushes metrics. None of these steps changes the outcome.
func (a *App) finish(ctx context.Context, cfg *domain.PipelineConfig, report *domain.RunReport, metricsFile string) {
	var previous *domain.JournalEntry
	j, err := a.openJournal(stateDir(cfg))
	if err != nil {
		a.logger.Error(err)
	} else if previous, err = j.Last(); err != nil {
		a.logger.Error(err)
	}

	a.notifier.Notify(context.WithoutCancel(ctx), cfg.Notifications, report, previous)

	if j != nil {
		if err := j.Append(journalEntry(report)); err != nil {
			a.logger.Error(err)
		}
	}

	if metricsFile != "" {
		if err := a.metrics.Flush(metricsFile); err != nil {
			a.logger.Error(err)
		}
	}
}

func journalEntry(report *domain.RunReport) domain.JournalEntry {
	entry := domain.JournalEntry{
		RunID:      report.RunID,
		Ref:        report.Event.Ref,
		Tag:        report.Event.Tag(),
		Outcome:    report.Outcome.Kind.String(),
		FinishedAt: report.FinishedAt,
	}
	for _, env := range report.Environments {
		entry.Published = append(entry.Published, env.Assets...)
	}
	return entry
}

func stateDir(cfg *domain.PipelineConfig) string {
	return filepath.Join(cfg.Root, domain.StateDirName)
}
