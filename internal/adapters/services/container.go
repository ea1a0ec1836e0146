// Package services provides the drivers for the auxiliary services a run
// provisions, such as the test database.
package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/zerr"
)

// managedContainer holds the lifecycle shared by container backed drivers.
type managedContainer struct {
	runtime ContainerRuntime
	spec    ContainerSpec
	service string

	mu sync.Mutex
	id string
}

func newContainer(runtime ContainerRuntime, service string, spec ContainerSpec) *managedContainer {
	spec.Name = "ferry-" + service + "-" + uuid.NewString()[:8]
	return &managedContainer{runtime: runtime, spec: spec, service: service}
}

func (c *managedContainer) start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id != "" {
		return nil
	}
	id, err := c.runtime.Run(ctx, c.spec)
	if err != nil {
		return domain.Classify(domain.ErrServiceStartFailed,
			zerr.With(zerr.With(err, "service", c.service), "image", c.spec.Image))
	}
	c.id = id
	return nil
}

func (c *managedContainer) stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id == "" {
		return nil
	}
	if err := c.runtime.Remove(ctx, c.id); err != nil {
		return domain.Classify(domain.ErrServiceStopFailed, zerr.With(err, "service", c.service))
	}
	c.id = ""
	return nil
}

func (c *managedContainer) started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id != ""
}
