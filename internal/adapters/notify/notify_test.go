package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/notify"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func failedReport() *domain.RunReport {
	env := domain.BuildEnvironment{ID: "env-1", OS: "linux", Toolchain: "stable", Target: "x86_64-unknown-linux-gnu"}
	outcome := domain.Failed(domain.StageInstall, 1, domain.Classify(domain.ErrStage, errors.New("exit status 1")))
	return &domain.RunReport{
		RunID:        "run-1",
		Event:        domain.RunEvent{Ref: "refs/tags/v0.9.0", IsTag: true},
		Environments: []domain.EnvironmentReport{{Env: env, Outcome: outcome}},
		Outcome:      outcome,
	}
}

func TestNewPayload(t *testing.T) {
	p := notify.NewPayload(domain.Notification{Channel: "webhooks", Report: failedReport(), Changed: true})

	assert.Equal(t, "run-1", p.RunID)
	assert.Equal(t, "v0.9.0", p.Tag)
	assert.Equal(t, "failed", p.Outcome)
	assert.True(t, p.Changed)
	require.Len(t, p.Environments, 1)
	assert.Equal(t, "failed(install, 1)", p.Environments[0].Summary)
	assert.Equal(t, "StageError", p.Environments[0].ErrorKind)
}

func TestLogSink_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn("Run run-1 (v0.9.0) failed", gomock.Any()).Times(1)
	logger.EXPECT().Warn("environment finished", gomock.Any()).Times(1)

	sink := notify.NewLogSink(logger)
	assert.Equal(t, "log", sink.Name())
	require.NoError(t, sink.Send(context.Background(), domain.Notification{Report: failedReport()}))
}

func TestWebhookSink_Send(t *testing.T) {
	var got notify.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.Client())
	err := sink.Send(context.Background(), domain.Notification{
		Channel:    "webhooks",
		Recipients: []string{srv.URL},
		Report:     failedReport(),
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "failed", got.Outcome)
}

func TestWebhookSink_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.Client())
	err := sink.Send(context.Background(), domain.Notification{
		Recipients: []string{srv.URL},
		Report:     failedReport(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotify)
}

func TestEmailSink_Send(t *testing.T) {
	sink := notify.NewEmailSink("smtp.example.com:25", "", "", "")
	assert.Equal(t, "email", sink.Name())

	var (
		gotTo  []string
		gotMsg string
	)
	sink.SetSendMail(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.example.com:25", addr)
		assert.Equal(t, "ferry@localhost", from)
		gotTo = to
		gotMsg = string(msg)
		return nil
	})

	err := sink.Send(context.Background(), domain.Notification{
		Channel:    "email",
		Recipients: []string{"dev@example.com"},
		Report:     failedReport(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dev@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Run run-1 (v0.9.0) failed\r\n")
	assert.Contains(t, gotMsg, "failed(install, 1)")
}

func TestEmailSink_Failure(t *testing.T) {
	sink := notify.NewEmailSink("smtp.example.com:25", "", "", "")
	sink.SetSendMail(func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	})

	err := sink.Send(context.Background(), domain.Notification{
		Recipients: []string{"dev@example.com"},
		Report:     failedReport(),
	})
	assert.ErrorIs(t, err, domain.ErrNotify)
}

func TestSinks(t *testing.T) {
	logger := mocks.NewMockLogger(gomock.NewController(t))

	names := func(env map[string]string) []string {
		var out []string
		for _, s := range notify.Sinks(logger, func(k string) string { return env[k] }) {
			out = append(out, s.Name())
		}
		return out
	}

	assert.Equal(t, []string{"log", "webhooks"}, names(nil))
	assert.Equal(t, []string{"log", "webhooks", "email"}, names(map[string]string{notify.EnvSMTPAddr: "localhost:25"}))
}
