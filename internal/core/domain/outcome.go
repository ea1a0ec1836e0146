package domain

import (
	"fmt"
	"time"
)

// OutcomeKind is the terminal state of an environment or run. Kinds are
// ordered by severity.
type OutcomeKind int

const (
	// OutcomeSuccess means every stage ran and, if gated in, the publish succeeded.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeDeploySkipped means the build succeeded but the deploy gate was closed.
	OutcomeDeploySkipped
	// OutcomeDeployFailed means the build succeeded but publishing failed.
	OutcomeDeployFailed
	// OutcomeFailed means a stage or a service failed.
	OutcomeFailed
)

// String returns the outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDeploySkipped:
		return "deploy_skipped"
	case OutcomeDeployFailed:
		return "deploy_failed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether the kind counts as a passing build.
func (k OutcomeKind) IsSuccess() bool {
	return k == OutcomeSuccess || k == OutcomeDeploySkipped
}

// Outcome is the terminal state of one environment.
type Outcome struct {
	Kind     OutcomeKind
	Stage    StageName
	ExitCode int
	Reason   string
	Err      error
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// Failed returns the outcome of a stage that exited with exitCode.
func Failed(stage StageName, exitCode int, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Stage: stage, ExitCode: exitCode, Err: err}
}

// DeploySkipped returns the outcome of a build whose deploy gate was closed.
func DeploySkipped(reason string) Outcome {
	return Outcome{Kind: OutcomeDeploySkipped, Reason: reason}
}

// DeployFailed returns the outcome of a build whose publish failed.
func DeployFailed(reason string, err error) Outcome {
	return Outcome{Kind: OutcomeDeployFailed, Reason: reason, Err: err}
}

// String renders the outcome for summaries.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeFailed:
		if o.Stage != "" {
			return fmt.Sprintf("failed(%s, %d)", o.Stage, o.ExitCode)
		}
		return "failed"
	case OutcomeDeploySkipped:
		return fmt.Sprintf("deploy skipped(%s)", o.Reason)
	case OutcomeDeployFailed:
		return fmt.Sprintf("deploy failed(%s)", o.Reason)
	default:
		return o.Kind.String()
	}
}

// ErrorKind names the error kind of the outcome's error.
func (o Outcome) ErrorKind() string {
	if o.Err == nil {
		return ""
	}
	switch KindOf(o.Err) {
	case ErrConfig:
		return "ConfigError"
	case ErrProvision:
		return "ProvisionError"
	case ErrStage:
		return "StageError"
	case ErrPublish:
		return "PublishError"
	case ErrNotify:
		return "NotifyError"
	default:
		return "Error"
	}
}

// EnvironmentReport is the outcome of one environment along with its gate decision.
type EnvironmentReport struct {
	Env       BuildEnvironment
	Outcome   Outcome
	Gate      *Decision
	Published []string
	Assets    []PublishedAsset
	Duration  time.Duration
}

// RunReport is the result of a whole run.
type RunReport struct {
	RunID        string
	Event        RunEvent
	Environments []EnvironmentReport
	Outcome      Outcome
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Worst returns the most severe of the given outcomes. An empty list is a success.
func Worst(outcomes ...Outcome) Outcome {
	worst := Success()
	for _, o := range outcomes {
		if o.Kind > worst.Kind {
			worst = o
		}
	}
	return worst
}

// Aggregate computes the run outcome from the environment reports.
func (r *RunReport) Aggregate() Outcome {
	outcomes := make([]Outcome, 0, len(r.Environments))
	for _, e := range r.Environments {
		outcomes = append(outcomes, e.Outcome)
	}
	return Worst(outcomes...)
}
