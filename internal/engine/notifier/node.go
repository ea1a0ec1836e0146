package notifier

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/notify" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the notifier Graft node.
const NodeID graft.ID = "engine.notifier"

func init() {
	graft.Register(graft.Node[*Notifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{notify.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Notifier, error) {
			sinks, err := graft.Dep[[]ports.NotificationSink](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(sinks, log), nil
		},
	})
}
