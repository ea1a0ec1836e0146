package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error kinds. Every failure surfaced by a run wraps exactly one of these so
// the CLI can classify it with errors.Is.
var (
	// ErrConfig is returned when the pipeline descriptor is malformed or incomplete.
	ErrConfig = zerr.New("configuration error")

	// ErrProvision is returned when an auxiliary service cannot be made ready.
	ErrProvision = zerr.New("service provisioning failed")

	// ErrStage is returned when a stage command exits with a non-zero status.
	ErrStage = zerr.New("stage failed")

	// ErrPublish is returned when artifacts cannot be published.
	ErrPublish = zerr.New("publish failed")

	// ErrNotify is returned when a notification cannot be delivered. It is never fatal.
	ErrNotify = zerr.New("notification delivery failed")
)

var (
	// ErrConfigReadFailed is returned when the descriptor file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read pipeline descriptor")

	// ErrConfigParseFailed is returned when the descriptor is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse pipeline descriptor")

	// ErrMissingLanguage is returned when the descriptor has no language.
	ErrMissingLanguage = zerr.New("missing required field 'language'")

	// ErrEmptyMatrix is returned when the descriptor has no matrix entries.
	ErrEmptyMatrix = zerr.New("at least one matrix entry is required")

	// ErrMissingScript is returned when the descriptor has no script stage.
	ErrMissingScript = zerr.New("missing required stage 'script'")

	// ErrUnknownOS is returned when a matrix entry names an OS without a target convention.
	ErrUnknownOS = zerr.New("unknown operating system")

	// ErrUnknownToolchain is returned when a matrix entry names an undefined toolchain channel.
	ErrUnknownToolchain = zerr.New("undefined toolchain channel")

	// ErrDuplicateTarget is returned when two matrix entries resolve to the same target.
	ErrDuplicateTarget = zerr.New("duplicate build target")

	// ErrUnknownService is returned when no driver exists for a configured service.
	ErrUnknownService = zerr.New("unknown service")

	// ErrInvalidCondition is returned when a deploy condition cannot be interpreted.
	ErrInvalidCondition = zerr.New("invalid deploy condition")

	// ErrInvalidNotifyPolicy is returned when a notification policy is not always, never or change.
	ErrInvalidNotifyPolicy = zerr.New("invalid notification policy, expected 'always', 'never' or 'change'")
)

var (
	// ErrProvisionTimeout is returned when a service does not become ready in time.
	ErrProvisionTimeout = zerr.New("service readiness timeout")

	// ErrServiceStartFailed is returned when a service driver cannot start its resource.
	ErrServiceStartFailed = zerr.New("failed to start service")

	// ErrServiceStopFailed is returned when a service driver cannot release its resource.
	ErrServiceStopFailed = zerr.New("failed to stop service")

	// ErrServiceNotStarted is returned when readiness is requested for a service that was never started.
	ErrServiceNotStarted = zerr.New("service not started")
)

var (
	// ErrCommandFailed is returned by executors when a command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")

	// ErrStageCancelled is returned when a stage is interrupted by run cancellation.
	ErrStageCancelled = zerr.New("stage cancelled")
)

var (
	// ErrPublishNoMatch is returned when the artifact selector matches no files.
	ErrPublishNoMatch = zerr.New("no artifacts matched")

	// ErrPublishDuplicate is returned when an artifact was already published in this run.
	ErrPublishDuplicate = zerr.New("artifact already published in this run")

	// ErrPublishUpload is returned when an upload fails after exhausting retries.
	ErrPublishUpload = zerr.New("artifact upload failed")

	// ErrPublishCleanup is returned when uploaded artifacts cannot be removed.
	ErrPublishCleanup = zerr.New("failed to clean up published artifacts")

	// ErrUnknownProvider is returned when no release transport exists for a provider.
	ErrUnknownProvider = zerr.New("unknown release provider")

	// ErrMissingRepo is returned when a release provider needs a repository slug and none is set.
	ErrMissingRepo = zerr.New("release provider requires a repository slug")

	// ErrAssetInvalid is returned by transports when an asset cannot be sent at
	// all, such as an unreadable file. Retrying cannot fix it.
	ErrAssetInvalid = zerr.New("release asset cannot be uploaded")

	// ErrSecretResolveFailed is returned when a secret reference cannot be resolved.
	ErrSecretResolveFailed = zerr.New("failed to resolve secret")
)

var (
	// ErrJournalReadFailed is returned when the run journal cannot be read.
	ErrJournalReadFailed = zerr.New("failed to read run journal")

	// ErrJournalWriteFailed is returned when the run journal cannot be written.
	ErrJournalWriteFailed = zerr.New("failed to write run journal")
)

// kindMembers maps every error kind to the sentinels classified under it.
var kindMembers = map[error][]error{
	ErrConfig: {
		ErrConfigReadFailed, ErrConfigParseFailed, ErrMissingLanguage, ErrEmptyMatrix,
		ErrMissingScript, ErrUnknownOS, ErrUnknownToolchain, ErrDuplicateTarget,
		ErrUnknownService, ErrInvalidCondition, ErrInvalidNotifyPolicy,
		ErrUnknownProvider, ErrMissingRepo,
	},
	ErrProvision: {ErrProvisionTimeout, ErrServiceStartFailed, ErrServiceNotStarted},
	ErrStage:     {ErrCommandFailed, ErrStageCancelled},
	ErrPublish: {
		ErrPublishNoMatch, ErrPublishDuplicate, ErrPublishUpload,
		ErrPublishCleanup, ErrSecretResolveFailed, ErrAssetInvalid,
	},
	ErrNotify: {},
}

// kindOrder fixes the lookup order of KindOf.
var kindOrder = []error{ErrConfig, ErrProvision, ErrStage, ErrPublish, ErrNotify}

// Classify joins sentinel with the underlying failure. The result matches the
// sentinel under errors.Is while cause keeps its own chain and metadata.
func Classify(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}

// KindOf returns the error kind err belongs to, or nil when it is unclassified.
// A kind joined explicitly with Classify wins over the kinds of member
// sentinels further down the chain.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kindOrder {
		if errors.Is(err, kind) {
			return kind
		}
	}
	for _, kind := range kindOrder {
		for _, member := range kindMembers[kind] {
			if errors.Is(err, member) {
				return kind
			}
		}
	}
	return nil
}

// ExitCodeOf returns the "exit_code" metadata carried in err's chain, or -1
// when none is present.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if md, ok := err.(interface{ Metadata() map[string]any }); ok {
		if code, ok := md.Metadata()["exit_code"].(int); ok {
			return code
		}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if code := ExitCodeOf(e); code != -1 {
				return code
			}
		}
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			return ExitCodeOf(next)
		}
	}
	return -1
}
