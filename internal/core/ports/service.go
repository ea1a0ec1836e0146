package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// ServiceDriver manages one auxiliary service for the lifetime of a run.
//
//go:generate go run go.uber.org/mock/mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks
type ServiceDriver interface {
	// ID returns the service identifier from the descriptor.
	ID() string
	// Start acquires the service resource. It does not wait for readiness.
	Start(ctx context.Context) error
	// Ready probes the service once and returns nil when it accepts connections.
	Ready(ctx context.Context) error
	// Stop releases the resource acquired by Start.
	Stop(ctx context.Context) error
	// Vars returns the connection variables exported to every stage.
	Vars() map[string]string
}

// ServiceFactory builds drivers for configured services.
type ServiceFactory interface {
	// Driver returns the driver for spec, or an error matching
	// domain.ErrUnknownService when no driver handles it.
	Driver(spec domain.ServiceSpec) (ServiceDriver, error)
	// Close releases what the drivers share, such as a container runtime
	// client. It is called after every driver stopped; a later Driver call
	// acquires the shared resources again.
	Close() error
}
