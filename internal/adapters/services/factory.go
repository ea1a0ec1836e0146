package services

import (
	"io"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory implements ports.ServiceFactory for the supported services.
type Factory struct {
	runtime ContainerRuntime
	logger  ports.Logger
}

var _ ports.ServiceFactory = (*Factory)(nil)

// NewFactory creates a Factory starting containers through runtime.
func NewFactory(runtime ContainerRuntime, logger ports.Logger) *Factory {
	return &Factory{runtime: runtime, logger: logger}
}

// Driver returns the driver for spec.
func (f *Factory) Driver(spec domain.ServiceSpec) (ports.ServiceDriver, error) {
	switch spec.ID {
	case "postgresql", "postgres", "postgis":
		return NewPostgres(spec, f.runtime, f.logger), nil
	case "redis":
		return NewRedis(spec, f.runtime), nil
	default:
		return nil, domain.Classify(domain.ErrUnknownService,
			zerr.With(zerr.New("no driver for service"), "service", spec.ID))
	}
}

// Close releases the container runtime when it holds a connection.
func (f *Factory) Close() error {
	if c, ok := f.runtime.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
