package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Redis defaults.
const (
	RedisImage = "redis:7-alpine"
	RedisPort  = 6379
)

// VarRedisURL is exported by the redis driver.
const VarRedisURL = "REDIS_URL"

// Redis runs a Redis server; readiness is a PING.
type Redis struct {
	spec      domain.ServiceSpec
	url       string
	container *managedContainer
}

var _ ports.ServiceDriver = (*Redis)(nil)

// NewRedis creates the driver. External services are only probed.
func NewRedis(spec domain.ServiceSpec, runtime ContainerRuntime) *Redis {
	port := spec.Port
	if port == 0 {
		port = RedisPort
	}
	url := spec.DSN
	if url == "" {
		url = fmt.Sprintf("redis://127.0.0.1:%d/0", port)
	}
	img := spec.Image
	if img == "" {
		img = RedisImage
	}

	r := &Redis{spec: spec, url: url}
	if !spec.External {
		r.container = newContainer(runtime, spec.ID, ContainerSpec{
			Image:         img,
			ContainerPort: RedisPort,
			HostPort:      port,
		})
	}
	return r
}

// ID returns the service identifier.
func (r *Redis) ID() string {
	return r.spec.ID
}

// Start launches the container.
func (r *Redis) Start(ctx context.Context) error {
	if r.container == nil {
		return nil
	}
	return r.container.start(ctx)
}

// Ready sends a PING.
func (r *Redis) Ready(ctx context.Context) error {
	if r.container != nil && !r.container.started() {
		return domain.Classify(domain.ErrServiceNotStarted,
			zerr.With(zerr.New("service was not started"), "service", r.spec.ID))
	}

	opts, err := redis.ParseURL(r.url)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid redis url"), "service", r.spec.ID)
	}
	opts.MaxRetries = -1

	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return zerr.Wrap(err, "redis ping failed")
	}
	return nil
}

// Stop removes the container.
func (r *Redis) Stop(ctx context.Context) error {
	if r.container == nil {
		return nil
	}
	return r.container.stop(ctx)
}

// Vars exports the connection URL.
func (r *Redis) Vars() map[string]string {
	return map[string]string{VarRedisURL: r.url}
}
