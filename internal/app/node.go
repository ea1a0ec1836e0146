package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/metrics"            //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/release"            //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/secrets"            //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/services"           //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/notifier"
	"go.trai.ch/ferry/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			scheduler.NodeID,
			notifier.NodeID,
			services.NodeID,
			release.NodeID,
			secrets.NodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	notif, err := graft.Dep[*notifier.Notifier](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[ports.ServiceFactory](ctx)
	if err != nil {
		return nil, err
	}

	transports, err := graft.Dep[ports.TransportRegistry](ctx)
	if err != nil {
		return nil, err
	}

	resolver, err := graft.Dep[ports.SecretResolver](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[ports.Metrics](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, sched, notif, factory, transports, resolver, log, recorder), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
