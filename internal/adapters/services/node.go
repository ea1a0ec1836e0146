package services

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the service factory Graft node.
const NodeID graft.ID = "adapter.service_factory"

func init() {
	graft.Register(graft.Node[ports.ServiceFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ServiceFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(NewDockerRuntime(os.Getenv("FERRY_DOCKER_HOST")), log), nil
		},
	})
}
