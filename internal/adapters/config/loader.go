// Package config provides the pipeline descriptor loader for ferry.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultReadyTimeout bounds the readiness wait of services when the
// descriptor does not set ready_timeout.
const DefaultReadyTimeout = 60 * time.Second

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var _ ports.ConfigLoader = (*Loader)(nil)

var (
	envNameRegex   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	conditionRegex = regexp.MustCompile(`^\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?\s*==?\s*"?([^"\s]+)"?$`)
)

// Load reads the descriptor. path may name the file itself or a directory, in
// which case the descriptor is searched from that directory upwards.
func (l *Loader) Load(path string) (*domain.PipelineConfig, error) {
	configPath, err := l.findConfiguration(path)
	if err != nil {
		return nil, err
	}

	var file Pipelinefile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	cfg, err := l.buildConfig(&file, filepath.Dir(configPath))
	if err != nil {
		return nil, domain.Classify(domain.ErrConfig,
			domain.Classify(err, zerr.With(zerr.New("invalid pipeline descriptor"), "file", configPath)))
	}
	return cfg, nil
}

func (l *Loader) findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", domain.Classify(domain.ErrConfigReadFailed, zerr.Wrap(err, "failed to resolve path"))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", domain.Classify(domain.ErrConfigReadFailed, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", abs))
	}
	if !info.IsDir() {
		return abs, nil
	}

	for dir := abs; ; {
		candidate := filepath.Join(dir, domain.DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", domain.Classify(domain.ErrConfigReadFailed,
		zerr.With(zerr.New("no pipeline descriptor found"), "cwd", abs))
}

func readAndUnmarshalYAML(path string, out any) error {
	//nolint:gosec // path is resolved by findConfiguration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Classify(domain.ErrConfigReadFailed, zerr.With(zerr.Wrap(err, "descriptor does not exist"), "file", path))
		}
		return domain.Classify(domain.ErrConfigReadFailed, zerr.With(zerr.Wrap(err, "failed to read descriptor"), "file", path))
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return domain.Classify(domain.ErrConfigParseFailed, zerr.With(zerr.Wrap(err, "invalid YAML"), "file", path))
	}
	return nil
}

func (l *Loader) buildConfig(file *Pipelinefile, root string) (*domain.PipelineConfig, error) {
	language := strings.TrimSpace(file.Language)
	if language == "" {
		return nil, domain.ErrMissingLanguage
	}

	globalEnv, err := parseAssignments(file.Env.Global)
	if err != nil {
		return nil, zerr.With(err, "section", "env.global")
	}

	matrix, err := buildMatrix(file.Matrix.Include, language)
	if err != nil {
		return nil, err
	}

	stages, err := l.buildStages(file)
	if err != nil {
		return nil, err
	}

	deploy, err := buildDeploy(file.Deploy, language)
	if err != nil {
		return nil, err
	}

	notifications, err := buildNotifications(file.Notifications)
	if err != nil {
		return nil, err
	}

	readyTimeout := DefaultReadyTimeout
	if file.ReadyTimeout != "" {
		readyTimeout, err = time.ParseDuration(file.ReadyTimeout)
		if err != nil || readyTimeout <= 0 {
			return nil, zerr.With(zerr.New("invalid ready_timeout"), "value", file.ReadyTimeout)
		}
	}

	if deploy != nil && len(stages[domain.StageBeforeDeploy]) == 0 {
		l.Logger.Warn("deploy configured without a before_deploy stage")
	}

	return &domain.PipelineConfig{
		Root:          root,
		Language:      language,
		GlobalEnv:     globalEnv,
		Matrix:        matrix,
		Services:      buildServices(file.Services, file.ServiceConfig),
		Stages:        stages,
		Paths:         file.Paths,
		Deploy:        deploy,
		Notifications: notifications,
		ReadyTimeout:  readyTimeout,
	}, nil
}

func buildMatrix(entries []MatrixEntryDTO, language string) ([]domain.MatrixEntry, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyMatrix
	}

	matrix := make([]domain.MatrixEntry, 0, len(entries))
	for i, dto := range entries {
		toolchain := dto.Toolchain
		if toolchain == "" {
			if v, ok := dto.Extra[language]; ok {
				toolchain = fmt.Sprint(v)
			}
		}

		env, err := parseAssignments(dto.Env)
		if err != nil {
			return nil, zerr.With(err, "matrix_entry", i)
		}

		matrix = append(matrix, domain.MatrixEntry{
			OS:        strings.TrimSpace(dto.OS),
			Toolchain: strings.TrimSpace(toolchain),
			Arch:      strings.TrimSpace(dto.Arch),
			Env:       env,
		})
	}
	return matrix, nil
}

// buildStages collects the stage commands. Stages ferry does not run, such
// as after_success, are skipped with a warning.
func (l *Loader) buildStages(file *Pipelinefile) (map[domain.StageName][]string, error) {
	stages := make(map[domain.StageName][]string, len(domain.StageOrder))
	names := slices.Sorted(maps.Keys(file.Stages))
	for _, name := range names {
		stage := domain.StageName(name)
		if !stage.IsKnown() {
			l.Logger.Warn("ignoring unknown stage", "stage", name)
			continue
		}
		stages[stage] = nonEmpty(file.Stages[name])
	}

	// Top-level keys take precedence over the stages mapping.
	for stage, commands := range map[domain.StageName]StringList{
		domain.StageInstall:      file.Install,
		domain.StageScript:       file.Script,
		domain.StageBeforeDeploy: file.BeforeDeploy,
	} {
		if len(commands) > 0 {
			stages[stage] = nonEmpty(commands)
		}
	}

	if len(stages[domain.StageScript]) == 0 {
		return nil, domain.ErrMissingScript
	}
	return stages, nil
}

func nonEmpty(commands []string) []string {
	out := make([]string, 0, len(commands))
	for _, c := range commands {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func buildServices(ids []string, options map[string]ServiceDTO) []domain.ServiceSpec {
	services := make([]domain.ServiceSpec, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		opts := options[id]
		services = append(services, domain.ServiceSpec{
			ID:         id,
			Image:      opts.Image,
			Port:       opts.Port,
			DSN:        opts.DSN,
			Database:   opts.Database,
			Migrations: opts.Migrations,
			External:   opts.External,
		})
	}
	return services
}

func buildDeploy(dto *DeployDTO, language string) (*domain.DeploySpec, error) {
	if dto == nil {
		return nil, nil
	}
	if dto.Provider == "" {
		return nil, zerr.With(zerr.New("deploy requires a provider"), "section", "deploy")
	}
	if strings.TrimSpace(dto.File) == "" {
		return nil, zerr.With(zerr.New("deploy requires a file pattern"), "section", "deploy")
	}

	var ref domain.SecretRef
	if dto.APIKey != nil {
		switch {
		case dto.APIKey.Secure != "":
			ref = domain.NewSecretRef("secure:" + dto.APIKey.Secure)
		case strings.HasPrefix(dto.APIKey.Env, "env:"):
			ref = domain.NewSecretRef(dto.APIKey.Env)
		case dto.APIKey.Env != "":
			if !envNameRegex.MatchString(dto.APIKey.Env) {
				return nil, zerr.New("api_key must be a 'secure' value or an environment variable reference")
			}
			ref = domain.NewSecretRef("env:" + dto.APIKey.Env)
		}
	}

	cond, err := buildCondition(dto.On, language)
	if err != nil {
		return nil, err
	}

	return &domain.DeploySpec{
		Provider:    dto.Provider,
		APIKey:      ref,
		FileGlob:    dto.FileGlob,
		FilePattern: strings.TrimSpace(dto.File),
		SkipCleanup: dto.SkipCleanup,
		Repo:        dto.Repo,
		Condition:   cond,
	}, nil
}

// buildCondition reads the deploy predicates. The toolchain requirement may
// be given as "toolchain", under the language key, or as a condition
// expression comparing $FERRY_TOOLCHAIN_VERSION to a literal.
func buildCondition(on *OnDTO, language string) (domain.ConditionSpec, error) {
	if on == nil {
		return domain.ConditionSpec{}, nil
	}

	var candidates []string
	if on.Toolchain != "" {
		candidates = append(candidates, on.Toolchain)
	}
	if v, ok := on.Extra[language]; ok {
		candidates = append(candidates, fmt.Sprint(v))
	}
	if c := strings.TrimSpace(on.Condition); c != "" {
		m := conditionRegex.FindStringSubmatch(c)
		if m == nil || m[1] != domain.VarToolchainVersion {
			return domain.ConditionSpec{}, domain.Classify(domain.ErrInvalidCondition,
				zerr.With(zerr.New("only $FERRY_TOOLCHAIN_VERSION comparisons are supported"), "condition", c))
		}
		candidates = append(candidates, m[2])
	}

	slices.Sort(candidates)
	candidates = slices.Compact(candidates)
	if len(candidates) > 1 {
		return domain.ConditionSpec{}, domain.Classify(domain.ErrInvalidCondition,
			zerr.With(zerr.New("conflicting toolchain requirements"), "toolchains", strings.Join(candidates, ",")))
	}

	cond := domain.ConditionSpec{TagsOnly: on.Tags}
	if len(candidates) == 1 {
		cond.RequiredToolchainVersion = candidates[0]
	}
	return cond, nil
}

func buildNotifications(channels map[string]*ChannelDTO) (domain.NotificationSpec, error) {
	spec := domain.NotificationSpec{Channels: make(map[string]domain.ChannelSpec)}
	if len(channels) == 0 {
		spec.Channels["log"] = domain.ChannelSpec{OnSuccess: domain.NotifyAlways, OnFailure: domain.NotifyAlways}
		return spec, nil
	}

	for name, dto := range channels {
		if dto == nil {
			dto = &ChannelDTO{}
		}
		onSuccess, onFailure := defaultPolicies(name)
		if dto.Disabled {
			onSuccess, onFailure = domain.NotifyNever, domain.NotifyNever
		}
		if dto.OnSuccess != "" {
			onSuccess = domain.NotifyPolicy(dto.OnSuccess)
		}
		if dto.OnFailure != "" {
			onFailure = domain.NotifyPolicy(dto.OnFailure)
		}
		for _, p := range []domain.NotifyPolicy{onSuccess, onFailure} {
			if !p.IsValid() {
				return spec, domain.Classify(domain.ErrInvalidNotifyPolicy,
					zerr.With(zerr.With(zerr.New("unsupported policy"), "channel", name), "policy", string(p)))
			}
		}

		spec.Channels[name] = domain.ChannelSpec{
			Recipients: append(slices.Clone(dto.Recipients), dto.URLs...),
			OnSuccess:  onSuccess,
			OnFailure:  onFailure,
		}
	}
	return spec, nil
}

// defaultPolicies returns the policies a channel gets when the descriptor does
// not set them. Email only reports changed successes.
func defaultPolicies(channel string) (onSuccess, onFailure domain.NotifyPolicy) {
	if channel == "email" {
		return domain.NotifyChange, domain.NotifyAlways
	}
	return domain.NotifyAlways, domain.NotifyAlways
}

// parseAssignments parses NAME=value entries. An entry may hold several
// whitespace separated assignments; values may be single or double quoted.
func parseAssignments(entries []string) ([]domain.EnvVar, error) {
	var vars []domain.EnvVar
	for _, entry := range entries {
		words, err := splitWords(entry)
		if err != nil {
			return nil, zerr.With(err, "entry", entry)
		}
		for _, w := range words {
			name, value, ok := strings.Cut(w, "=")
			if !ok || !envNameRegex.MatchString(name) {
				return nil, zerr.With(zerr.New("expected NAME=value"), "entry", entry)
			}
			vars = append(vars, domain.EnvVar{Name: name, Value: value})
		}
	}
	return vars, nil
}

func splitWords(s string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, zerr.New("unterminated quote")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
