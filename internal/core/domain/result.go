package domain

import (
	"errors"
	"time"
)

// StageResult is the result of running one stage in one environment.
type StageResult struct {
	Stage    StageName
	Commands int
	ExitCode int
	Duration time.Duration
	Err      error
}

// Ok reports whether every command of the stage succeeded.
func (r StageResult) Ok() bool {
	return r.Err == nil
}

// Outcome converts the result into an environment outcome.
func (r StageResult) Outcome() Outcome {
	if r.Err == nil {
		return Success()
	}
	return Failed(r.Stage, r.ExitCode, r.Err)
}

// Asset is one artifact file to be published.
type Asset struct {
	Provider string
	Repo     string
	Tag      string
	Name     string
	Path     string
}

// Key identifies the asset within a run. Two assets with equal keys would
// overwrite each other on the release host.
func (a Asset) Key() string {
	return a.Provider + "|" + a.Repo + "|" + a.Tag + "|" + a.Name
}

// PublishedAsset records an uploaded asset in the run journal.
type PublishedAsset struct {
	EnvID      string    `json:"env_id"`
	Provider   string    `json:"provider"`
	Tag        string    `json:"tag"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// PublishResult is the result of publishing one environment's artifacts.
type PublishResult struct {
	Assets []PublishedAsset
	Err    error
}

// Outcome converts the result into an environment outcome.
func (r PublishResult) Outcome() Outcome {
	if r.Err == nil {
		return Success()
	}
	return DeployFailed(publishReason(r.Err), r.Err)
}

func publishReason(err error) string {
	switch {
	case errors.Is(err, ErrPublishNoMatch):
		return "no match"
	case errors.Is(err, ErrPublishDuplicate):
		return "duplicate"
	case errors.Is(err, ErrPublishUpload):
		return "upload"
	case errors.Is(err, ErrSecretResolveFailed):
		return "secret"
	case errors.Is(err, ErrPublishCleanup):
		return "cleanup"
	default:
		return "error"
	}
}
