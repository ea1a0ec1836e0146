package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestWorst(t *testing.T) {
	failed := domain.Failed(domain.StageInstall, 1, domain.ErrCommandFailed)

	assert.Equal(t, domain.OutcomeSuccess, domain.Worst().Kind)
	assert.Equal(t, domain.OutcomeDeploySkipped,
		domain.Worst(domain.Success(), domain.DeploySkipped("not a tag")).Kind)
	assert.Equal(t, domain.OutcomeDeployFailed,
		domain.Worst(domain.DeploySkipped("x"), domain.DeployFailed("upload", nil), domain.Success()).Kind)
	assert.Equal(t, failed, domain.Worst(domain.DeployFailed("upload", nil), failed, domain.Success()))
}

func TestRunReport_Aggregate(t *testing.T) {
	report := domain.RunReport{
		Environments: []domain.EnvironmentReport{
			{Outcome: domain.Success()},
			{Outcome: domain.Failed(domain.StageScript, 101, nil)},
			{Outcome: domain.DeploySkipped("toolchain mismatch")},
		},
	}

	got := report.Aggregate()
	assert.Equal(t, domain.OutcomeFailed, got.Kind)
	assert.Equal(t, domain.StageScript, got.Stage)
	assert.Equal(t, 101, got.ExitCode)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "success", domain.Success().String())
	assert.Equal(t, "failed(install, 1)", domain.Failed(domain.StageInstall, 1, nil).String())
	assert.Equal(t, "deploy skipped(not a tag)", domain.DeploySkipped("not a tag").String())
	assert.Equal(t, "deploy failed(no match)", domain.DeployFailed("no match", nil).String())
}

func TestOutcome_ErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"none", nil, ""},
		{"config", domain.Classify(domain.ErrMissingScript, zerr.New("x")), "ConfigError"},
		{"provision", domain.Classify(domain.ErrProvisionTimeout, nil), "ProvisionError"},
		{"stage", zerr.With(zerr.Wrap(domain.ErrCommandFailed, "exit"), "exit_code", 1), "StageError"},
		{"publish", domain.Classify(domain.ErrPublishNoMatch, errors.New("glob")), "PublishError"},
		{"other", errors.New("boom"), "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Outcome{Kind: domain.OutcomeFailed, Err: tt.err}.ErrorKind())
		})
	}
}

func TestPublishResult_Outcome(t *testing.T) {
	assert.Equal(t, domain.OutcomeSuccess, domain.PublishResult{}.Outcome().Kind)

	got := domain.PublishResult{Err: domain.Classify(domain.ErrPublishNoMatch, nil)}.Outcome()
	assert.Equal(t, domain.OutcomeDeployFailed, got.Kind)
	assert.Equal(t, "no match", got.Reason)
}
