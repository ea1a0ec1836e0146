package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := new(bytes.Buffer)
	return logger.NewWithWriter(buf), buf
}

func TestLogger_Info(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("stage started", "env", "#1 linux/stable", "stage", "install")

	assert.Equal(t, "stage started env=#1 linux/stable stage=install\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Warn("deploy skipped", "reason", "not a tag")

	assert.Equal(t, "! deploy skipped reason=not a tag\n", buf.String())
}

func TestLogger_Error_Chain(t *testing.T) {
	l, buf := newTestLogger(t)

	root := errors.New("exit status 1")
	err := zerr.Wrap(zerr.With(zerr.Wrap(root, "command failed"), "exit_code", 1), "stage install failed")

	l.Error(err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "✗ Error: stage install failed"), out)
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ command failed (exit_code=1)")
	assert.Contains(t, out, "→ exit status 1")
}

func TestLogger_Error_Joined(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Error(domain.Classify(domain.ErrPublishNoMatch, zerr.With(zerr.New("glob matched nothing"), "pattern", "x-*")))

	out := buf.String()
	assert.Contains(t, out, "Error: no artifacts matched")
	assert.Contains(t, out, "→ glob matched nothing (pattern=x-*)")
}

func TestLogger_Error_Nil(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Error(nil)

	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newTestLogger(t)
	l.SetJSON(true)

	l.Info("uploaded", "asset", "t-rex.tar.gz", "token", domain.NewSecret("hunter2"))
	l.Error(zerr.With(zerr.New("upload rejected"), "status", 422))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "uploaded", info["msg"])
	assert.Equal(t, "[REDACTED]", info["token"])

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failure))
	assert.Equal(t, "ERROR", failure["level"])
	assert.InDelta(t, 422, failure["status"], 0)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestLogger_SetOutput(t *testing.T) {
	l, first := newTestLogger(t)
	second := new(bytes.Buffer)

	l.SetOutput(second)
	l.Info("moved")

	assert.Empty(t, first.String())
	assert.Equal(t, "moved\n", second.String())
}

func TestPrettyHandler_RedactsSecrets(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Info("resolved", "token", domain.NewSecret("hunter2"))

	assert.Equal(t, "resolved token=[REDACTED]\n", buf.String())
}
