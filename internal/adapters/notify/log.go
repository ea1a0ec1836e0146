package notify

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// LogSink reports runs through the structured logger. It is always available.
type LogSink struct {
	logger ports.Logger
}

var _ ports.NotificationSink = (*LogSink)(nil)

// NewLogSink creates a LogSink.
func NewLogSink(logger ports.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Name returns "log".
func (s *LogSink) Name() string {
	return "log"
}

// Send logs the run subject followed by one line per environment.
func (s *LogSink) Send(_ context.Context, n domain.Notification) error {
	log := s.logger.Info
	if !n.Report.Outcome.Kind.IsSuccess() {
		log = s.logger.Warn
	}

	log(n.Subject(), "run_id", n.Report.RunID, "outcome", n.Report.Outcome.Kind.String(), "changed", n.Changed)
	for _, e := range n.Report.Environments {
		args := []any{"env", e.Env.String(), "outcome", e.Outcome.String()}
		if kind := e.Outcome.ErrorKind(); kind != "" {
			args = append(args, "error_kind", kind)
		}
		if len(e.Published) > 0 {
			args = append(args, "published", e.Published)
		}
		log("environment finished", args...)
	}
	return nil
}
