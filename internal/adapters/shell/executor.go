// Package shell provides the shell executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Shell is the interpreter every command line is passed to.
const Shell = "/bin/sh"

// waitDelay bounds how long output pipes are drained after the shell is killed,
// since background children may keep them open.
const waitDelay = 2 * time.Second

// Executor implements ports.Executor by running each command line through sh -c.
type Executor struct {
	logger ports.Logger
	sysEnv func() []string
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
		sysEnv: os.Environ,
	}
}

var _ ports.Executor = (*Executor)(nil)

// Execute runs cmd.Line with the merged environment and waits for it to exit.
//
// The environment is built with the following priority (low to high):
//  1. allow-listed variables from the system environment
//  2. cmd.Env, where PATH is prepended to the system PATH
func (e *Executor) Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error {
	if strings.TrimSpace(cmd.Line) == "" {
		return nil
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := exec.CommandContext(ctx, Shell, "-c", cmd.Line) //nolint:gosec // commands come from the pipeline descriptor
	c.Dir = cmd.Dir
	c.Env = resolveEnvironment(e.sysEnv(), cmd.Env)
	c.WaitDelay = waitDelay

	stdoutLog := &logWriter{logger: e.logger, stream: "stdout"}
	stderrLog := &logWriter{logger: e.logger, stream: "stderr"}
	c.Stdout = io.MultiWriter(stdoutLog, stdout)
	c.Stderr = io.MultiWriter(stderrLog, stderr)

	err := c.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return domain.Classify(domain.ErrStageCancelled, zerr.Wrap(ctx.Err(), "command interrupted"))
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return domain.Classify(domain.ErrCommandFailed,
		zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode), "command", cmd.Line))
}

// logWriter mirrors process output to the logger one line at a time.
type logWriter struct {
	logger ports.Logger
	stream string

	mu  sync.Mutex
	buf []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing partial line.
func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	w.logger.Info(strings.TrimSuffix(string(line), "\r"), "stream", w.stream)
}

// allowListedEnvVars are the system environment variables inherited by stage
// commands. Everything else must come from the build environment.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"LANG":   {},
	"TMPDIR": {},
	"CI":     {},
}

// resolveEnvironment merges the allow-listed system environment with env.
// A PATH in env is prepended to the system PATH. Later entries of env win.
func resolveEnvironment(sysEnv, env []string) []string {
	envMap := filterSystemEnv(sysEnv)
	sysPath := envMap["PATH"]

	for _, entry := range env {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" && sysPath != "" {
			if v == "" {
				v = sysPath
			} else {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	return envMap
}
