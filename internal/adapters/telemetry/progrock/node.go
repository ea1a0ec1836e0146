package progrock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the stage recorder Graft node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	// Every run records its stage vertexes on one tape; the CLI closes it on exit.
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(context.Context) (ports.Telemetry, error) {
			return New(), nil
		},
	})
}
