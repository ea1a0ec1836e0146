package domain

import "strings"

// RunEvent describes what triggered the run. It is immutable for the run's duration.
type RunEvent struct {
	RunID            string
	Ref              string
	IsTag            bool
	ToolchainVersion string
}

// Tag returns the tag name when the event is a tag push, and "" otherwise.
func (e RunEvent) Tag() string {
	if !e.IsTag {
		return ""
	}
	return strings.TrimPrefix(e.Ref, "refs/tags/")
}

// For returns the event as seen by env. When the trigger did not pin a
// toolchain version the environment's channel is the selected version.
func (e RunEvent) For(env *BuildEnvironment) RunEvent {
	if e.ToolchainVersion == "" && env != nil {
		e.ToolchainVersion = env.Toolchain
	}
	return e
}

// Vars returns the run-scoped variables exported to every stage.
func (e RunEvent) Vars() map[string]string {
	return map[string]string{
		VarRunID:            e.RunID,
		VarRef:              e.Ref,
		VarTag:              e.Tag(),
		VarToolchainVersion: e.ToolchainVersion,
	}
}
