// Package notifier decides which channels hear about a finished run.
package notifier

import (
	"context"
	"sort"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Notifier dispatches run notifications to the configured channels.
type Notifier struct {
	sinks  map[string]ports.NotificationSink
	logger ports.Logger
}

// New creates a Notifier over the available sinks.
func New(sinks []ports.NotificationSink, logger ports.Logger) *Notifier {
	byName := make(map[string]ports.NotificationSink, len(sinks))
	for _, s := range sinks {
		byName[s.Name()] = s
	}
	return &Notifier{sinks: byName, logger: logger}
}

// ShouldSend reports whether a channel with spec fires for an outcome.
// changed tells whether the outcome differs from the previous run.
func ShouldSend(spec domain.ChannelSpec, success, changed bool) bool {
	policy := spec.OnFailure
	if success {
		policy = spec.OnSuccess
	}
	switch policy {
	case domain.NotifyAlways:
		return true
	case domain.NotifyChange:
		return changed
	default:
		return false
	}
}

// Notify sends report to every channel of spec whose policy matches. The
// previous run, when known, decides whether the outcome changed. Delivery
// failures are logged and never returned. It returns the channels notified.
func (n *Notifier) Notify(
	ctx context.Context,
	spec domain.NotificationSpec,
	report *domain.RunReport,
	previous *domain.JournalEntry,
) []string {
	success := report.Outcome.Kind.IsSuccess()
	changed := previous == nil || previous.Succeeded() != success

	names := make([]string, 0, len(spec.Channels))
	for name := range spec.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	var sent []string
	for _, name := range names {
		channel := spec.Channels[name]
		if !ShouldSend(channel, success, changed) {
			continue
		}

		sink, ok := n.sinks[name]
		if !ok {
			n.logger.Warn("notification channel unavailable", "channel", name)
			continue
		}

		err := sink.Send(ctx, domain.Notification{
			Channel:    name,
			Recipients: channel.Recipients,
			Report:     report,
			Changed:    changed,
		})
		if err != nil {
			n.logger.Error(domain.Classify(domain.ErrNotify,
				zerr.With(zerr.Wrap(err, "notification not delivered"), "channel", name)))
			continue
		}
		sent = append(sent, name)
	}
	return sent
}
