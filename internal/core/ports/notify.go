package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// NotificationSink delivers run notifications to one kind of channel.
//
//go:generate go run go.uber.org/mock/mockgen -source=notify.go -destination=mocks/mock_notify.go -package=mocks
type NotificationSink interface {
	// Name returns the channel name the sink serves, e.g. "email".
	Name() string
	// Send delivers n. Failures are reported but never retried.
	Send(ctx context.Context, n domain.Notification) error
}
