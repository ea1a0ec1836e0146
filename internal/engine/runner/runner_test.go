package runner_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/shell"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.trai.ch/ferry/internal/engine/runner"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
	vertex   *mocks.MockVertex
	metrics  *mocks.MockMetrics
	tel      *mocks.MockTelemetry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		vertex:   mocks.NewMockVertex(ctrl),
		metrics:  mocks.NewMockMetrics(ctrl),
		tel:      mocks.NewMockTelemetry(ctrl),
	}
	f.tel.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.VertexOption) (context.Context, ports.Vertex) {
			return ctx, f.vertex
		}).AnyTimes()
	f.vertex.EXPECT().Stdout().Return(io.Discard).AnyTimes()
	f.vertex.EXPECT().Stderr().Return(io.Discard).AnyTimes()
	f.vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	f.logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return f
}

func (f *fixture) runner(executor ports.Executor) *runner.Runner {
	r := runner.New(executor, f.logger, f.tel, f.metrics)
	return runner.WithLookupEnv(r, func(name string) (string, bool) {
		if name == "HOME" {
			return "/home/ci", true
		}
		return "", false
	})
}

func newWorkspace(t *testing.T, cfg *domain.PipelineConfig, env *domain.BuildEnvironment) *runner.Workspace {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = t.TempDir()
	}
	ws, err := runner.NewWorkspace(cfg, env, filepath.Join(cfg.Root, domain.StateDirName), false)
	require.NoError(t, err)
	return ws
}

func linuxStable() *domain.BuildEnvironment {
	return &domain.BuildEnvironment{
		ID:        "1-linux-stable-x86_64-unknown-linux-gnu",
		OS:        "linux",
		Toolchain: "stable",
		Target:    "x86_64-unknown-linux-gnu",
		Vars: []domain.EnvVar{
			{Name: "CRATE_NAME", Value: "t-rex"},
			{Name: "CACHE", Value: "${HOME}/.cache/${FERRY_TAG}"},
			{Name: "TARGET", Value: "x86_64-unknown-linux-gnu"},
		},
	}
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	f := newFixture(t)
	ws := newWorkspace(t, &domain.PipelineConfig{}, linuxStable())

	failure := domain.Classify(domain.ErrCommandFailed,
		zerr.With(zerr.New("command failed"), "exit_code", 3))

	gomock.InOrder(
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(failure),
	)
	f.metrics.EXPECT().ObserveStage(domain.StageScript, false, gomock.Any())
	f.vertex.EXPECT().Complete(gomock.Not(gomock.Nil()))

	result := f.runner(f.executor).Run(context.Background(), ws, domain.StageScript,
		[]string{"cargo build", "cargo test", "cargo doc"})

	assert.False(t, result.Ok())
	assert.Equal(t, 3, result.ExitCode)
	assert.ErrorIs(t, result.Err, domain.ErrCommandFailed)
	assert.Equal(t, domain.ErrStage, domain.KindOf(result.Err))
	assert.Equal(t, domain.Failed(domain.StageScript, 3, result.Err), result.Outcome())
}

func TestRun_NoCommandsIsSkipped(t *testing.T) {
	f := newFixture(t)
	ws := newWorkspace(t, &domain.PipelineConfig{}, linuxStable())

	f.vertex.EXPECT().Skipped()

	result := f.runner(f.executor).Run(context.Background(), ws, domain.StageInstall, nil)
	assert.True(t, result.Ok())
	assert.Equal(t, 0, result.Commands)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t)
	ws := newWorkspace(t, &domain.PipelineConfig{}, linuxStable())

	f.metrics.EXPECT().ObserveStage(domain.StageInstall, false, gomock.Any())
	f.vertex.EXPECT().Complete(gomock.Any())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.runner(f.executor).Run(ctx, ws, domain.StageInstall, []string{"ci/install.sh"})
	assert.Equal(t, runner.ExitCodeCancelled, result.ExitCode)
	assert.ErrorIs(t, result.Err, domain.ErrStageCancelled)
}

func TestRun_PassesEnvironment(t *testing.T) {
	f := newFixture(t)
	cfg := &domain.PipelineConfig{Language: "rust", Paths: []string{"/opt/tools"}}
	ws := newWorkspace(t, cfg, linuxStable())
	ws.ServiceVars["DBCONN"] = "postgresql://postgres@127.0.0.1:5432/t_rex_tests"
	ws.RunVars[domain.VarTag] = "v0.9.0"

	var got domain.Command
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command, _, _ io.Writer) error {
			got = cmd
			return nil
		})
	f.metrics.EXPECT().ObserveStage(domain.StageScript, true, gomock.Any())
	f.vertex.EXPECT().Complete(nil)

	result := f.runner(f.executor).Run(context.Background(), ws, domain.StageScript, []string{"cargo test"})
	require.True(t, result.Ok())

	assert.Equal(t, "cargo test", got.Line)
	assert.Equal(t, cfg.Root, got.Dir)
	assert.Equal(t, []string{
		"DBCONN=postgresql://postgres@127.0.0.1:5432/t_rex_tests",
		"FERRY_TAG=v0.9.0",
		"CRATE_NAME=t-rex",
		"CACHE=/home/ci/.cache/v0.9.0",
		"TARGET=x86_64-unknown-linux-gnu",
		"FERRY_PATH=" + ws.PathFile(),
		"FERRY_ENV_DIR=" + ws.StateDir,
		"PATH=/opt/tools:/home/ci/.cargo/bin",
	}, got.Env)
}

func TestRun_PathFileAffectsLaterCommands(t *testing.T) {
	f := newFixture(t)
	ws := newWorkspace(t, &domain.PipelineConfig{}, linuxStable())

	f.metrics.EXPECT().ObserveStage(domain.StageInstall, true, gomock.Any())
	f.vertex.EXPECT().Complete(nil)

	executor := shell.NewExecutor(f.logger)
	result := f.runner(executor).Run(context.Background(), ws, domain.StageInstall, []string{
		`mkdir -p "$FERRY_ENV_DIR/bin"`,
		`printf '#!/bin/sh\necho "$CRATE_NAME for $TARGET"\n' > "$FERRY_ENV_DIR/bin/hello" && chmod +x "$FERRY_ENV_DIR/bin/hello"`,
		`echo "$FERRY_ENV_DIR/bin" >> "$FERRY_PATH"`,
		`hello > out.txt`,
	})
	require.NoError(t, result.Err)

	out, err := os.ReadFile(filepath.Join(ws.Dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "t-rex for x86_64-unknown-linux-gnu", strings.TrimSpace(string(out)))
}

func TestNewWorkspace_ResetsPathFile(t *testing.T) {
	cfg := &domain.PipelineConfig{Root: t.TempDir()}
	ws := newWorkspace(t, cfg, linuxStable())
	require.NoError(t, os.WriteFile(ws.PathFile(), []byte("/stale\n"), 0o600))

	ws = newWorkspace(t, cfg, linuxStable())
	data, err := os.ReadFile(ws.PathFile())
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, filepath.Join(cfg.Root, domain.StateDirName, "envs", linuxStable().ID), ws.StateDir)
}

func TestNewWorkspace_IsolatedCopiesRoot(t *testing.T) {
	cfg := &domain.PipelineConfig{Root: t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Root, "ci"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "ci", "install.sh"), []byte("#!/bin/sh\n"), 0o700))
	require.NoError(t, os.Symlink("ci/install.sh", filepath.Join(cfg.Root, "install")))
	stateDir := filepath.Join(cfg.Root, domain.StateDirName)

	ws, err := runner.NewWorkspace(cfg, linuxStable(), stateDir, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(stateDir, "envs", linuxStable().ID, "src"), ws.Dir)

	info, err := os.Stat(filepath.Join(ws.Dir, "ci", "install.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	link, err := os.Readlink(filepath.Join(ws.Dir, "install"))
	require.NoError(t, err)
	assert.Equal(t, "ci/install.sh", link)
	assert.NoDirExists(t, filepath.Join(ws.Dir, domain.StateDirName))

	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir, "target.tar.gz"), nil, 0o600))
	ws, err = runner.NewWorkspace(cfg, linuxStable(), stateDir, true)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(ws.Dir, "target.tar.gz"))
	assert.NoFileExists(t, filepath.Join(cfg.Root, "target.tar.gz"))
}
