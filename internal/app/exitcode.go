package app

import (
	"context"
	"errors"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// Process exit codes.
const (
	ExitCodeSuccess      = 0
	ExitCodeError        = 1
	ExitCodeConfig       = 2
	ExitCodeStage        = 3
	ExitCodeProvision    = 4
	ExitCodeDeployFailed = 5
	ExitCodeCancelled    = 130
)

// ExitCode maps the error returned by Run to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, domain.ErrStageCancelled):
		return ExitCodeCancelled
	case errors.Is(err, domain.ErrPublish):
		return ExitCodeDeployFailed
	}

	switch domain.KindOf(err) {
	case domain.ErrConfig:
		return ExitCodeConfig
	case domain.ErrStage:
		return ExitCodeStage
	case domain.ErrProvision:
		return ExitCodeProvision
	default:
		return ExitCodeError
	}
}

// outcomeError turns a run outcome into the error Run returns.
func outcomeError(o domain.Outcome) error {
	switch o.Kind {
	case domain.OutcomeSuccess, domain.OutcomeDeploySkipped:
		return nil
	case domain.OutcomeDeployFailed:
		return domain.Classify(domain.ErrPublish, o.Err)
	}

	if o.Err != nil {
		return o.Err
	}
	err := zerr.New("run failed")
	if o.Stage != "" {
		err = zerr.With(zerr.With(err, "stage", string(o.Stage)), "exit_code", o.ExitCode)
		return domain.Classify(domain.ErrStage, err)
	}
	return err
}
