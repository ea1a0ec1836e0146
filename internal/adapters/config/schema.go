package config

import (
	"gopkg.in/yaml.v3"
)

// Pipelinefile represents the structure of the ferry.yaml pipeline descriptor.
// Travis-style keys are accepted so existing descriptors load unchanged.
type Pipelinefile struct {
	Language      string                 `yaml:"language"`
	Env           EnvDTO                 `yaml:"env"`
	Matrix        MatrixDTO              `yaml:"matrix"`
	Services      StringList             `yaml:"services"`
	ServiceConfig map[string]ServiceDTO  `yaml:"service_config"`
	Paths         StringList             `yaml:"paths"`
	Stages        map[string]StringList  `yaml:"stages"`
	Install       StringList             `yaml:"install"`
	Script        StringList             `yaml:"script"`
	BeforeDeploy  StringList             `yaml:"before_deploy"`
	Deploy        *DeployDTO             `yaml:"deploy"`
	Notifications map[string]*ChannelDTO `yaml:"notifications"`
	ReadyTimeout  string                 `yaml:"ready_timeout"`
}

// EnvDTO holds the global environment. It accepts either a list of
// NAME=value strings or a mapping with a "global" list.
type EnvDTO struct {
	Global StringList `yaml:"global"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *EnvDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		type plain EnvDTO
		return node.Decode((*plain)(e))
	}
	return node.Decode(&e.Global)
}

// MatrixDTO holds the matrix entries. It accepts either a list of entries or
// a mapping with an "include" list.
type MatrixDTO struct {
	Include []MatrixEntryDTO `yaml:"include"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *MatrixDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		type plain MatrixDTO
		return node.Decode((*plain)(m))
	}
	return node.Decode(&m.Include)
}

// MatrixEntryDTO represents one matrix entry. The toolchain channel may be
// given as "toolchain" or under the language key, e.g. "rust: stable".
type MatrixEntryDTO struct {
	OS        string         `yaml:"os"`
	Toolchain string         `yaml:"toolchain"`
	Arch      string         `yaml:"arch"`
	Env       StringList     `yaml:"env"`
	Extra     map[string]any `yaml:",inline"`
}

// ServiceDTO holds per-service options.
type ServiceDTO struct {
	Image      string `yaml:"image"`
	Port       int    `yaml:"port"`
	DSN        string `yaml:"dsn"`
	Database   string `yaml:"database"`
	Migrations string `yaml:"migrations"`
	External   bool   `yaml:"external"`
}

// DeployDTO represents the deploy section.
type DeployDTO struct {
	Provider    string     `yaml:"provider"`
	APIKey      *SecretDTO `yaml:"api_key"`
	FileGlob    bool       `yaml:"file_glob"`
	File        string     `yaml:"file"`
	SkipCleanup bool       `yaml:"skip_cleanup"`
	Repo        string     `yaml:"repo"`
	On          *OnDTO     `yaml:"on"`
}

// SecretDTO references a credential, either age-encrypted inline ("secure")
// or read from the controller's environment ("env").
type SecretDTO struct {
	Secure string `yaml:"secure"`
	Env    string `yaml:"env"`
}

// UnmarshalYAML implements yaml.Unmarshaler. A scalar is taken as a
// reference string such as "env:GITHUB_TOKEN".
func (s *SecretDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		s.Env = raw
		return nil
	}
	type plain SecretDTO
	return node.Decode((*plain)(s))
}

// OnDTO holds the deploy conditions.
type OnDTO struct {
	Tags      bool           `yaml:"tags"`
	Condition string         `yaml:"condition"`
	Toolchain string         `yaml:"toolchain"`
	Extra     map[string]any `yaml:",inline"`
}

// ChannelDTO configures a notification channel. It accepts false to disable
// the channel, a list of recipients, or a full mapping.
type ChannelDTO struct {
	Recipients StringList `yaml:"recipients"`
	URLs       StringList `yaml:"urls"`
	OnSuccess  string     `yaml:"on_success"`
	OnFailure  string     `yaml:"on_failure"`
	Disabled   bool       `yaml:"-"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *ChannelDTO) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		type plain ChannelDTO
		return node.Decode((*plain)(c))
	case yaml.SequenceNode:
		return node.Decode(&c.Recipients)
	default:
		if node.ShortTag() == "!!bool" {
			var enabled bool
			if err := node.Decode(&enabled); err != nil {
				return err
			}
			c.Disabled = !enabled
			return nil
		}
		return node.Decode(&c.Recipients)
	}
}

// StringList is a list of strings that also accepts a single scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*s = many
	return nil
}
