package domain

import "time"

// DefaultConfigFile is the descriptor file name looked up in the project root.
const DefaultConfigFile = "ferry.yaml"

// StateDirName is the directory, relative to the project root, holding run state.
const StateDirName = ".ferry"

// StageName identifies a pipeline stage.
type StageName string

const (
	// StageInstall prepares the toolchain and dependencies.
	StageInstall StageName = "install"
	// StageScript builds and tests the project.
	StageScript StageName = "script"
	// StageBeforeDeploy packages artifacts. It only runs when the deploy gate is open.
	StageBeforeDeploy StageName = "before_deploy"
)

// StageOrder is the fixed execution order of stages within one environment.
var StageOrder = []StageName{StageInstall, StageScript, StageBeforeDeploy}

// IsKnown reports whether s is one of the stages in StageOrder.
func (s StageName) IsKnown() bool {
	for _, known := range StageOrder {
		if s == known {
			return true
		}
	}
	return false
}

// EnvVar is one name/value pair of an ordered variable mapping.
type EnvVar struct {
	Name  string
	Value string
}

// MatrixEntry is one environment overlay of the build matrix.
type MatrixEntry struct {
	OS        string
	Toolchain string
	Arch      string
	Env       []EnvVar
}

// ServiceSpec describes an auxiliary service required by the stages.
type ServiceSpec struct {
	ID         string
	Image      string
	Port       int
	DSN        string
	Database   string
	Migrations string
	External   bool
}

// ConditionSpec holds the predicates gating the deploy.
type ConditionSpec struct {
	// RequiredToolchainVersion, when set, must equal the run's toolchain version.
	RequiredToolchainVersion string
	// TagsOnly requires the triggering ref to be a tag.
	TagsOnly bool
}

// DeploySpec describes how artifacts are published.
type DeploySpec struct {
	Provider    string
	APIKey      SecretRef
	FileGlob    bool
	FilePattern string
	SkipCleanup bool
	Repo        string
	Condition   ConditionSpec
}

// NotifyPolicy controls when a notification channel fires.
type NotifyPolicy string

const (
	// NotifyAlways sends on every matching outcome.
	NotifyAlways NotifyPolicy = "always"
	// NotifyNever suppresses notifications.
	NotifyNever NotifyPolicy = "never"
	// NotifyChange sends only when the outcome differs from the previous run.
	NotifyChange NotifyPolicy = "change"
)

// IsValid reports whether p is a known policy.
func (p NotifyPolicy) IsValid() bool {
	switch p {
	case NotifyAlways, NotifyNever, NotifyChange:
		return true
	default:
		return false
	}
}

// ChannelSpec configures one notification channel.
type ChannelSpec struct {
	Recipients []string
	OnSuccess  NotifyPolicy
	OnFailure  NotifyPolicy
}

// NotificationSpec configures all notification channels by sink name.
type NotificationSpec struct {
	Channels map[string]ChannelSpec
}

// PipelineConfig is the parsed pipeline descriptor. It is read-only once loaded.
type PipelineConfig struct {
	Root          string
	Language      string
	GlobalEnv     []EnvVar
	Matrix        []MatrixEntry
	Services      []ServiceSpec
	Stages        map[StageName][]string
	Paths         []string
	Deploy        *DeploySpec
	Notifications NotificationSpec
	ReadyTimeout  time.Duration
}

// Commands returns the commands of a stage, or nil when the stage is not defined.
func (c *PipelineConfig) Commands(stage StageName) []string {
	return c.Stages[stage]
}

// HasDeploy reports whether the descriptor configures a deploy.
func (c *PipelineConfig) HasDeploy() bool {
	return c.Deploy != nil && c.Deploy.Provider != ""
}
