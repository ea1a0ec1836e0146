package runner

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// pathFileName is the name of the file stage commands append PATH entries to.
	pathFileName = "path"
	// sourceDirName is the name of an environment's private working copy.
	sourceDirName = "src"
)

// languagePaths are the toolchain bin directories added to PATH by language.
var languagePaths = map[string][]string{
	"rust": {"$HOME/.cargo/bin"},
	"go":   {"$HOME/go/bin"},
}

// Workspace is the execution context of one build environment.
type Workspace struct {
	Env *domain.BuildEnvironment
	// Dir is the working directory of every command.
	Dir string
	// StateDir is the scratch directory of the environment.
	StateDir string
	// ServiceVars are the connection variables exported by services.
	ServiceVars map[string]string
	// RunVars are the run-scoped variables.
	RunVars map[string]string
	// Paths are prepended to PATH before any directory listed in the path file.
	Paths []string
}

// NewWorkspace prepares the scratch directory of env under stateDir and
// returns its workspace. An isolated workspace runs in a fresh copy of the
// project root instead of the root itself, so environments building at the
// same time never share build outputs.
func NewWorkspace(cfg *domain.PipelineConfig, env *domain.BuildEnvironment, stateDir string, isolated bool) (*Workspace, error) {
	dir := filepath.Join(stateDir, "envs", env.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create environment directory"), "path", dir)
	}

	workDir := cfg.Root
	if isolated {
		var err error
		if workDir, err = checkout(cfg.Root, dir, stateDir); err != nil {
			return nil, err
		}
	}

	pathFile := filepath.Join(dir, pathFileName)
	if err := os.WriteFile(pathFile, nil, 0o600); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create path file"), "path", pathFile)
	}

	paths := slices.Concat(cfg.Paths, languagePaths[cfg.Language])
	return &Workspace{
		Env:         env,
		Dir:         workDir,
		StateDir:    dir,
		ServiceVars: map[string]string{},
		RunVars:     map[string]string{},
		Paths:       paths,
	}, nil
}

// checkout copies root into the environment directory envDir, leaving out
// the state directory, and returns the copy.
func checkout(root, envDir, stateDir string) (string, error) {
	src := filepath.Join(envDir, sourceDirName)
	if err := os.RemoveAll(src); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to reset working copy"), "path", src)
	}

	state, err := filepath.Abs(stateDir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve state directory"), "path", stateDir)
	}
	skip := func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && abs == state
	}
	if err := copyTree(root, src, skip); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create working copy"), "path", src)
	}
	return src, nil
}

// PathFile returns the file commands append PATH entries to.
func (w *Workspace) PathFile() string {
	return filepath.Join(w.StateDir, pathFileName)
}

// Environ returns the process environment of the next command. Later entries
// win: service variables, then run variables, then the environment mapping.
// References left unresolved by the resolver are expanded against lookupEnv
// and the service and run variables.
func (w *Workspace) Environ(lookupEnv func(string) (string, bool)) ([]string, error) {
	layered := func(name string) (string, bool) {
		if v, ok := domain.Overlay(w.ServiceVars, w.RunVars)(name); ok {
			return v, true
		}
		return lookupEnv(name)
	}

	out := make([]string, 0, len(w.ServiceVars)+len(w.RunVars)+len(w.Env.Vars)+3)
	out = appendSorted(out, w.ServiceVars)
	out = appendSorted(out, w.RunVars)

	var userPath string
	for _, v := range w.Env.Vars {
		value := domain.Expand(v.Value, layered)
		if v.Name == "PATH" {
			userPath = value
			continue
		}
		out = append(out, v.Name+"="+value)
	}

	added, err := w.addedPaths()
	if err != nil {
		return nil, err
	}
	prefix := make([]string, 0, len(added)+len(w.Paths)+1)
	prefix = append(prefix, added...)
	for _, p := range w.Paths {
		prefix = append(prefix, domain.Expand(p, layered))
	}
	if userPath != "" {
		prefix = append(prefix, userPath)
	}

	out = append(out,
		domain.VarPathFile+"="+w.PathFile(),
		domain.VarEnvDir+"="+w.StateDir,
		"PATH="+strings.Join(prefix, string(os.PathListSeparator)),
	)
	return out, nil
}

// addedPaths returns the directories listed in the path file, most recently
// added first.
func (w *Workspace) addedPaths() ([]string, error) {
	data, err := os.ReadFile(w.PathFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read path file"), "path", w.PathFile())
	}

	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || slices.Contains(paths, line) {
			continue
		}
		paths = append(paths, line)
	}
	slices.Reverse(paths)
	return paths, nil
}

func appendSorted(out []string, vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+vars[k])
	}
	return out
}
