// Package runner executes the stages of a build environment.
package runner

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// ExitCodeCancelled is reported for a stage interrupted by run cancellation.
const ExitCodeCancelled = 130

// Runner runs the commands of one stage sequentially through an executor.
type Runner struct {
	executor  ports.Executor
	logger    ports.Logger
	telemetry ports.Telemetry
	metrics   ports.Metrics
	lookupEnv func(string) (string, bool)
}

// New creates a new Runner.
func New(executor ports.Executor, logger ports.Logger, telemetry ports.Telemetry, metrics ports.Metrics) *Runner {
	return &Runner{
		executor:  executor,
		logger:    logger,
		telemetry: telemetry,
		metrics:   metrics,
		lookupEnv: os.LookupEnv,
	}
}

// Run executes commands as stage of the workspace's environment. The first
// failing command aborts the stage.
func (r *Runner) Run(ctx context.Context, ws *Workspace, stage domain.StageName, commands []string) domain.StageResult {
	result := domain.StageResult{Stage: stage, Commands: len(commands)}

	ctx, vertex := r.telemetry.Record(ctx, string(stage), ports.WithGroup(ws.Env.String()))
	if len(commands) == 0 {
		vertex.Skipped()
		return result
	}

	start := time.Now()
	for _, line := range commands {
		if err := r.runCommand(ctx, ws, line, vertex); err != nil {
			result.ExitCode = exitCode(err)
			result.Err = zerr.With(zerr.With(err, "stage", string(stage)), "environment", ws.Env.ID)
			break
		}
	}
	result.Duration = time.Since(start)

	r.metrics.ObserveStage(stage, result.Ok(), result.Duration)
	if result.Err != nil {
		r.logger.Warn("stage failed",
			"environment", ws.Env.ID,
			"stage", string(stage),
			"exit_code", result.ExitCode,
		)
	}
	vertex.Complete(result.Err)
	return result
}

func (r *Runner) runCommand(ctx context.Context, ws *Workspace, line string, vertex ports.Vertex) error {
	if err := ctx.Err(); err != nil {
		return domain.Classify(domain.ErrStageCancelled, zerr.With(zerr.Wrap(err, "stage interrupted"), "command", line))
	}

	env, err := ws.Environ(r.lookupEnv)
	if err != nil {
		return domain.Classify(domain.ErrCommandFailed, err)
	}

	vertex.Log(domain.LogLevelInfo, "$ "+line)
	return r.executor.Execute(ctx, domain.Command{Line: line, Dir: ws.Dir, Env: env}, vertex.Stdout(), vertex.Stderr())
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrStageCancelled) {
		return ExitCodeCancelled
	}
	if code := domain.ExitCodeOf(err); code > 0 {
		return code
	}
	return 1
}
