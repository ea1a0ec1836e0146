package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/config"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const releaseDescriptor = `
language: rust
env:
  global:
    - CRATE_NAME=t-rex
    - DBCONN="postgresql://postgres@127.0.0.1/t_rex_tests" RUST_BACKTRACE=1
matrix:
  include:
    - os: linux
      rust: stable
      env: TARGET=x86_64-unknown-linux-gnu
    - os: osx
      rust: stable
    - os: linux
      toolchain: nightly
      arch: aarch64
services:
  - postgresql
service_config:
  postgresql:
    image: postgis/postgis:16-3.4
    database: t_rex_tests
    migrations: testdata/migrations
install: ci/install.sh
script:
  - cargo build --verbose
  - cargo test --all
before_deploy: ci/before_deploy.sh
deploy:
  provider: releases
  repo: t-rex-tileserver/t-rex
  api_key:
    secure: YWdlLWVuY3J5cHRpb24=
  file_glob: true
  file: t-rex-$FERRY_TAG-$TARGET.*
  skip_cleanup: true
  on:
    condition: $FERRY_TOOLCHAIN_VERSION = stable
    tags: true
notifications:
  email:
    on_success: never
  webhooks:
    urls:
      - https://hooks.example.com/ferry
ready_timeout: 30s
`

func writeDescriptor(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	return config.NewLoader(logger)
}

func TestLoad_ReleaseDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := writeDescriptor(t, dir, releaseDescriptor)

	cfg, err := newLoader(t).Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, "rust", cfg.Language)
	assert.Equal(t, []domain.EnvVar{
		{Name: "CRATE_NAME", Value: "t-rex"},
		{Name: "DBCONN", Value: "postgresql://postgres@127.0.0.1/t_rex_tests"},
		{Name: "RUST_BACKTRACE", Value: "1"},
	}, cfg.GlobalEnv)

	require.Len(t, cfg.Matrix, 3)
	assert.Equal(t, domain.MatrixEntry{
		OS:        "linux",
		Toolchain: "stable",
		Env:       []domain.EnvVar{{Name: "TARGET", Value: "x86_64-unknown-linux-gnu"}},
	}, cfg.Matrix[0])
	assert.Equal(t, "osx", cfg.Matrix[1].OS)
	assert.Equal(t, "stable", cfg.Matrix[1].Toolchain)
	assert.Equal(t, "nightly", cfg.Matrix[2].Toolchain)
	assert.Equal(t, "aarch64", cfg.Matrix[2].Arch)

	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "postgresql", cfg.Services[0].ID)
	assert.Equal(t, "t_rex_tests", cfg.Services[0].Database)

	assert.Equal(t, []string{"ci/install.sh"}, cfg.Commands(domain.StageInstall))
	assert.Equal(t, []string{"cargo build --verbose", "cargo test --all"}, cfg.Commands(domain.StageScript))
	assert.Equal(t, []string{"ci/before_deploy.sh"}, cfg.Commands(domain.StageBeforeDeploy))

	require.True(t, cfg.HasDeploy())
	assert.Equal(t, "releases", cfg.Deploy.Provider)
	assert.Equal(t, "t-rex-tileserver/t-rex", cfg.Deploy.Repo)
	assert.Equal(t, "secure:YWdlLWVuY3J5cHRpb24=", cfg.Deploy.APIKey.Raw())
	assert.True(t, cfg.Deploy.FileGlob)
	assert.True(t, cfg.Deploy.SkipCleanup)
	assert.Equal(t, "t-rex-$FERRY_TAG-$TARGET.*", cfg.Deploy.FilePattern)
	assert.Equal(t, domain.ConditionSpec{RequiredToolchainVersion: "stable", TagsOnly: true}, cfg.Deploy.Condition)

	assert.Equal(t, domain.ChannelSpec{
		OnSuccess: domain.NotifyNever,
		OnFailure: domain.NotifyAlways,
	}, cfg.Notifications.Channels["email"])
	assert.Equal(t, []string{"https://hooks.example.com/ferry"}, cfg.Notifications.Channels["webhooks"].Recipients)

	assert.Equal(t, 30*time.Second, cfg.ReadyTimeout)
}

func TestLoad_FindsDescriptorInParent(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, releaseDescriptor)
	nested := filepath.Join(dir, "src", "bin")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Root)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeDescriptor(t, dir, `
language: go
matrix:
  - os: linux
    toolchain: "1.25"
stages:
  script: go test ./...
`)

	cfg, err := newLoader(t).Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.HasDeploy())
	assert.Equal(t, config.DefaultReadyTimeout, cfg.ReadyTimeout)
	assert.Equal(t, []string{"go test ./..."}, cfg.Commands(domain.StageScript))
	assert.Equal(t, map[string]domain.ChannelSpec{
		"log": {OnSuccess: domain.NotifyAlways, OnFailure: domain.NotifyAlways},
	}, cfg.Notifications.Channels)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "missing language",
			content: "matrix: [{os: linux, toolchain: stable}]\nscript: make\n",
			want:    domain.ErrMissingLanguage,
		},
		{
			name:    "empty matrix",
			content: "language: rust\nscript: make\n",
			want:    domain.ErrEmptyMatrix,
		},
		{
			name:    "missing script",
			content: "language: rust\nmatrix: [{os: linux, toolchain: stable}]\ninstall: make deps\n",
			want:    domain.ErrMissingScript,
		},
		{
			name: "unsupported condition",
			content: `language: rust
matrix: [{os: linux, toolchain: stable}]
script: make
deploy:
  provider: releases
  file: out.tar.gz
  on:
    condition: $TRAVIS_BRANCH = main
`,
			want: domain.ErrInvalidCondition,
		},
		{
			name: "conflicting toolchains",
			content: `language: rust
matrix: [{os: linux, toolchain: stable}]
script: make
deploy:
  provider: releases
  file: out.tar.gz
  on:
    rust: nightly
    condition: $FERRY_TOOLCHAIN_VERSION = stable
`,
			want: domain.ErrInvalidCondition,
		},
		{
			name: "invalid notify policy",
			content: `language: rust
matrix: [{os: linux, toolchain: stable}]
script: make
notifications:
  email:
    on_failure: sometimes
`,
			want: domain.ErrInvalidNotifyPolicy,
		},
		{
			name:    "invalid yaml",
			content: "language: [rust\n",
			want:    domain.ErrConfigParseFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDescriptor(t, t.TempDir(), tt.content)

			_, err := newLoader(t).Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
			assert.Equal(t, domain.ErrConfig, domain.KindOf(err))
		})
	}
}

func TestLoad_UnknownStageIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn("ignoring unknown stage", "stage", "after_success")
	path := writeDescriptor(t, t.TempDir(),
		"language: rust\nmatrix: [{os: linux, toolchain: stable}]\nstages:\n  script: make\n  after_success: echo\n")

	cfg, err := config.NewLoader(logger).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, cfg.Commands(domain.StageScript))
	assert.Len(t, cfg.Stages, 1)
}

func TestLoad_NoDescriptor(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestLoad_MultipleAssignments(t *testing.T) {
	dir := t.TempDir()
	path := writeDescriptor(t, dir, `
language: rust
env:
  - A=1 B='two words' C=
matrix:
  - os: linux
    toolchain: stable
script: make
`)

	cfg, err := newLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.EnvVar{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "two words"},
		{Name: "C", Value: ""},
	}, cfg.GlobalEnv)
}

func TestLoad_SecretFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeDescriptor(t, dir, `
language: rust
matrix: [{os: linux, toolchain: stable}]
script: make
before_deploy: make dist
deploy:
  provider: filesystem
  api_key: RELEASE_TOKEN
  file: dist/out.tar.gz
`)

	cfg, err := newLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env:RELEASE_TOKEN", cfg.Deploy.APIKey.Raw())
	assert.False(t, cfg.Deploy.FileGlob)
	assert.False(t, cfg.Deploy.SkipCleanup)
}
