package notifier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.trai.ch/ferry/internal/engine/notifier"
	"go.uber.org/mock/gomock"
)

func TestShouldSend(t *testing.T) {
	spec := domain.ChannelSpec{OnSuccess: domain.NotifyChange, OnFailure: domain.NotifyAlways}

	tests := []struct {
		name    string
		success bool
		changed bool
		want    bool
	}{
		{name: "failure always", success: false, changed: false, want: true},
		{name: "success unchanged", success: true, changed: false, want: false},
		{name: "success after failure", success: true, changed: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notifier.ShouldSend(spec, tt.success, tt.changed))
		})
	}

	assert.False(t, notifier.ShouldSend(domain.ChannelSpec{OnSuccess: domain.NotifyNever, OnFailure: domain.NotifyNever}, false, true))
}

func newSink(ctrl *gomock.Controller, name string) *mocks.MockNotificationSink {
	sink := mocks.NewMockNotificationSink(ctrl)
	sink.EXPECT().Name().Return(name).AnyTimes()
	return sink
}

func failedReport() *domain.RunReport {
	err := domain.Classify(domain.ErrCommandFailed, errors.New("exit status 1"))
	return &domain.RunReport{
		RunID:   "run-1",
		Event:   domain.RunEvent{Ref: "refs/tags/v0.9.0", IsTag: true},
		Outcome: domain.Failed(domain.StageInstall, 1, err),
	}
}

func TestNotify_FailureReachesChannels(t *testing.T) {
	ctrl := gomock.NewController(t)
	email := newSink(ctrl, "email")
	webhooks := newSink(ctrl, "webhooks")
	logger := mocks.NewMockLogger(ctrl)

	spec := domain.NotificationSpec{Channels: map[string]domain.ChannelSpec{
		"email":    {Recipients: []string{"dev@example.com"}, OnSuccess: domain.NotifyChange, OnFailure: domain.NotifyAlways},
		"webhooks": {Recipients: []string{"https://hooks.example.com"}, OnSuccess: domain.NotifyAlways, OnFailure: domain.NotifyNever},
	}}
	report := failedReport()

	email.EXPECT().Send(gomock.Any(), domain.Notification{
		Channel:    "email",
		Recipients: []string{"dev@example.com"},
		Report:     report,
		Changed:    true,
	}).Return(nil)

	n := notifier.New([]ports.NotificationSink{email, webhooks}, logger)
	sent := n.Notify(t.Context(), spec, report, &domain.JournalEntry{Outcome: "success"})

	assert.Equal(t, []string{"email"}, sent)
}

func TestNotify_ChangeComparesWithPreviousRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	email := newSink(ctrl, "email")
	logger := mocks.NewMockLogger(ctrl)

	spec := domain.NotificationSpec{Channels: map[string]domain.ChannelSpec{
		"email": {OnSuccess: domain.NotifyChange, OnFailure: domain.NotifyChange},
	}}
	n := notifier.New([]ports.NotificationSink{email}, logger)

	assert.Empty(t, n.Notify(t.Context(), spec, failedReport(), &domain.JournalEntry{Outcome: "failed"}))

	email.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	assert.Equal(t, []string{"email"}, n.Notify(t.Context(), spec, failedReport(), nil))

	passed := &domain.RunReport{RunID: "run-2", Outcome: domain.DeploySkipped(domain.ReasonNotTag)}
	assert.Equal(t, []string{"email"}, n.Notify(t.Context(), spec, passed, &domain.JournalEntry{Outcome: "failed"}))
}

func TestNotify_DeliveryFailureIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	webhooks := newSink(ctrl, "webhooks")
	logger := mocks.NewMockLogger(ctrl)

	spec := domain.NotificationSpec{Channels: map[string]domain.ChannelSpec{
		"webhooks": {OnSuccess: domain.NotifyAlways, OnFailure: domain.NotifyAlways},
		"email":    {OnSuccess: domain.NotifyAlways, OnFailure: domain.NotifyAlways},
	}}

	webhooks.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	logger.EXPECT().Warn("notification channel unavailable", "channel", "email")
	logger.EXPECT().Error(gomock.Any()).Do(func(err error, _ ...any) {
		assert.ErrorIs(t, err, domain.ErrNotify)
	})

	n := notifier.New([]ports.NotificationSink{webhooks}, logger)
	assert.Empty(t, n.Notify(t.Context(), spec, failedReport(), nil))
}
