package notify

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the notification sinks Graft node.
const NodeID graft.ID = "adapter.notification_sinks"

func init() {
	graft.Register(graft.Node[[]ports.NotificationSink]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) ([]ports.NotificationSink, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return Sinks(log, os.Getenv), nil
		},
	})
}

// Sinks returns the available sinks. Email is only available when an SMTP
// relay is configured.
func Sinks(log ports.Logger, getenv func(string) string) []ports.NotificationSink {
	sinks := []ports.NotificationSink{NewLogSink(log), NewWebhookSink(nil)}
	if addr := getenv(EnvSMTPAddr); addr != "" {
		sinks = append(sinks, NewEmailSink(addr, getenv(EnvSMTPFrom), getenv(EnvSMTPUser), getenv(EnvSMTPPassword)))
	}
	return sinks
}
