package release

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the transport registry Graft node.
const NodeID graft.ID = "adapter.release_transports"

func init() {
	graft.Register(graft.Node[ports.TransportRegistry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TransportRegistry, error) {
			return NewDefaultRegistry(nil), nil
		},
	})
}
