package domain

import (
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Variables injected into every build environment.
const (
	VarOS               = "FERRY_OS"
	VarToolchain        = "FERRY_TOOLCHAIN"
	VarTarget           = "TARGET"
	VarTag              = "FERRY_TAG"
	VarRef              = "FERRY_REF"
	VarRunID            = "FERRY_RUN_ID"
	VarToolchainVersion = "FERRY_TOOLCHAIN_VERSION"
	VarPathFile         = "FERRY_PATH"
	VarEnvDir           = "FERRY_ENV_DIR"
)

// BuildEnvironment is one concrete instantiation of the global environment and a matrix entry.
type BuildEnvironment struct {
	ID        string
	Index     int
	OS        string
	Toolchain string
	Target    string
	Vars      []EnvVar
}

// Lookup returns the value of a resolved variable.
func (e *BuildEnvironment) Lookup(name string) (string, bool) {
	for i := len(e.Vars) - 1; i >= 0; i-- {
		if e.Vars[i].Name == name {
			return e.Vars[i].Value, true
		}
	}
	return "", false
}

// Map returns the resolved variables as a map.
func (e *BuildEnvironment) Map() map[string]string {
	m := make(map[string]string, len(e.Vars))
	for _, v := range e.Vars {
		m[v.Name] = v.Value
	}
	return m
}

// Environ returns the resolved variables in KEY=VALUE form, in resolution order.
func (e *BuildEnvironment) Environ() []string {
	out := make([]string, 0, len(e.Vars))
	for _, v := range e.Vars {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// TargetKey identifies the build output class of the environment.
func (e *BuildEnvironment) TargetKey() string {
	return e.OS + "/" + e.Toolchain + "/" + e.Target
}

// Fingerprint hashes the resolved variable mapping. Two environments with the
// same fingerprint would produce indistinguishable builds.
func (e *BuildEnvironment) Fingerprint() uint64 {
	d := xxhash.New()
	for _, v := range e.Vars {
		_, _ = d.WriteString(v.Name)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(v.Value)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// String returns a short human-readable label.
func (e *BuildEnvironment) String() string {
	return "#" + strconv.Itoa(e.Index+1) + " " + e.OS + "/" + e.Toolchain + " (" + e.Target + ")"
}

// Expand substitutes $VAR and ${VAR} references using lookup. Unknown
// variables expand to the empty string.
func Expand(s string, lookup func(string) (string, bool)) string {
	return os.Expand(s, func(name string) string {
		v, _ := lookup(name)
		return v
	})
}

// Overlay returns a lookup consulting the given mappings from last to first.
func Overlay(layers ...map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		for i := len(layers) - 1; i >= 0; i-- {
			if v, ok := layers[i][name]; ok {
				return v, true
			}
		}
		return "", false
	}
}
