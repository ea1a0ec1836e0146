// Package resolver expands the pipeline matrix into concrete build environments.
package resolver

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultArch is the architecture used when a matrix entry does not name one.
const DefaultArch = "x86_64"

var (
	dottedVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}$`)
	unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

var channels = map[string]bool{"stable": true, "beta": true, "nightly": true}

// targetSuffix maps an operating system to its target triple suffix.
var targetSuffix = map[string]string{
	"linux":   "unknown-linux-gnu",
	"osx":     "apple-darwin",
	"windows": "pc-windows-msvc",
}

// Resolve returns one environment per matrix entry, in matrix order.
func Resolve(cfg *domain.PipelineConfig) ([]domain.BuildEnvironment, error) {
	envs := make([]domain.BuildEnvironment, 0, len(cfg.Matrix))
	byTarget := make(map[string]int, len(cfg.Matrix))
	byFingerprint := make(map[uint64]int, len(cfg.Matrix))

	for i, entry := range cfg.Matrix {
		env, err := resolveEntry(cfg, i, entry)
		if err != nil {
			return nil, err
		}

		if prev, ok := byTarget[env.TargetKey()]; ok {
			return nil, duplicate(prev, i, "target", env.TargetKey())
		}
		byTarget[env.TargetKey()] = i

		fp := env.Fingerprint()
		if prev, ok := byFingerprint[fp]; ok {
			return nil, duplicate(prev, i, "fingerprint", strconv.FormatUint(fp, 16))
		}
		byFingerprint[fp] = i

		envs = append(envs, env)
	}

	return envs, nil
}

func resolveEntry(cfg *domain.PipelineConfig, index int, entry domain.MatrixEntry) (domain.BuildEnvironment, error) {
	suffix, ok := targetSuffix[entry.OS]
	if !ok {
		return domain.BuildEnvironment{}, domain.Classify(domain.ErrUnknownOS,
			zerr.With(zerr.With(zerr.New("matrix entry names an unsupported os"), "entry", index+1), "os", entry.OS))
	}
	if !validToolchain(entry.Toolchain) {
		return domain.BuildEnvironment{}, domain.Classify(domain.ErrUnknownToolchain,
			zerr.With(zerr.With(zerr.New("matrix entry names an undefined toolchain"), "entry", index+1),
				"toolchain", entry.Toolchain))
	}

	arch := entry.Arch
	if arch == "" {
		arch = DefaultArch
	}

	vars := merge(cfg.GlobalEnv, entry.Env)
	vars = set(vars, domain.VarOS, entry.OS)
	vars = set(vars, domain.VarToolchain, entry.Toolchain)
	if _, ok := lookup(vars, domain.VarTarget); !ok {
		vars = set(vars, domain.VarTarget, arch+"-"+suffix)
	}
	vars = expand(vars)

	target, _ := lookup(vars, domain.VarTarget)
	env := domain.BuildEnvironment{
		Index:     index,
		OS:        entry.OS,
		Toolchain: entry.Toolchain,
		Target:    target,
		Vars:      vars,
	}
	env.ID = environmentID(index, entry.OS, entry.Toolchain, target)
	return env, nil
}

func validToolchain(name string) bool {
	return channels[name] || dottedVersion.MatchString(name)
}

// merge layers overlay over base. Overridden keys keep their position and
// new keys are appended in overlay order.
func merge(base, overlay []domain.EnvVar) []domain.EnvVar {
	out := make([]domain.EnvVar, 0, len(base)+len(overlay))
	for _, v := range base {
		out = set(out, v.Name, v.Value)
	}
	for _, v := range overlay {
		out = set(out, v.Name, v.Value)
	}
	return out
}

func set(vars []domain.EnvVar, name, value string) []domain.EnvVar {
	for i := range vars {
		if vars[i].Name == name {
			vars[i].Value = value
			return vars
		}
	}
	return append(vars, domain.EnvVar{Name: name, Value: value})
}

func lookup(vars []domain.EnvVar, name string) (string, bool) {
	for _, v := range vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// expand substitutes references between variables of the mapping. Earlier
// variables are seen expanded, later ones only when their raw value holds no
// reference itself. Anything else is kept as ${NAME} so it can be resolved
// at execution time.
func expand(vars []domain.EnvVar) []domain.EnvVar {
	out := make([]domain.EnvVar, len(vars))
	seen := make(map[string]string, len(vars))
	for i, v := range vars {
		value := os.Expand(v.Value, func(name string) string {
			if resolved, ok := seen[name]; ok {
				return resolved
			}
			if raw, ok := lookup(vars, name); ok && name != v.Name && !strings.Contains(raw, "$") {
				return raw
			}
			return "${" + name + "}"
		})
		out[i] = domain.EnvVar{Name: v.Name, Value: value}
		seen[v.Name] = value
	}
	return out
}

func environmentID(index int, osName, toolchain, target string) string {
	id := strings.Join([]string{strconv.Itoa(index + 1), osName, toolchain, target}, "-")
	return unsafeIDChars.ReplaceAllString(id, "_")
}

func duplicate(first, second int, key, value string) error {
	err := zerr.With(zerr.New("matrix entries resolve to the same build"), "entries",
		strconv.Itoa(first+1)+","+strconv.Itoa(second+1))
	return domain.Classify(domain.ErrDuplicateTarget, zerr.With(err, key, value))
}
