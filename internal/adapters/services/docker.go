package services

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"go.trai.ch/zerr"
)

// ContainerSpec describes a service container.
type ContainerSpec struct {
	Name          string
	Image         string
	Env           []string
	ContainerPort int
	HostPort      int
}

// ContainerRuntime starts and removes service containers.
type ContainerRuntime interface {
	// Run creates and starts a container and returns its ID.
	Run(ctx context.Context, spec ContainerSpec) (string, error)
	// Remove force-removes a container. A missing container is not an error.
	Remove(ctx context.Context, id string) error
}

// DockerRuntime implements ContainerRuntime with the Docker Engine API. The
// client is created on first use so that runs without containers never
// contact the daemon.
type DockerRuntime struct {
	host string

	mu    sync.Mutex
	inner *client.Client
}

// NewDockerRuntime creates a runtime for the daemon at host, or the daemon
// configured by DOCKER_HOST when host is empty.
func NewDockerRuntime(host string) *DockerRuntime {
	return &DockerRuntime{host: host}
}

func (d *DockerRuntime) client() (*client.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inner != nil {
		return d.inner, nil
	}
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if d.host != "" {
		opts = append(opts, client.WithHost(d.host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create docker client")
	}
	d.inner = cli
	return cli, nil
}

// Run pulls the image when missing, then creates and starts the container
// with its port published on the loopback interface.
func (d *DockerRuntime) Run(ctx context.Context, spec ContainerSpec) (string, error) {
	if strings.TrimSpace(spec.Image) == "" {
		return "", zerr.New("image name cannot be empty")
	}
	cli, err := d.client()
	if err != nil {
		return "", err
	}

	if err := d.ensureImage(ctx, cli, spec.Image); err != nil {
		return "", err
	}

	port, err := nat.NewPort("tcp", strconv.Itoa(spec.ContainerPort))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "invalid container port"), "port", spec.ContainerPort)
	}

	config := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		ExposedPorts: nat.PortSet{port: struct{}{}},
		Labels:       map[string]string{"ch.trai.ferry": "service"},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: strconv.Itoa(spec.HostPort)}},
		},
		AutoRemove: false,
	}

	r, err := cli.ContainerCreate(ctx, config, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "container create"), "image", spec.Image)
	}

	if err := cli.ContainerStart(ctx, r.ID, container.StartOptions{}); err != nil {
		_ = d.Remove(context.WithoutCancel(ctx), r.ID)
		return "", zerr.With(zerr.Wrap(err, "container start"), "image", spec.Image)
	}
	return r.ID, nil
}

func (d *DockerRuntime) ensureImage(ctx context.Context, cli *client.Client, ref string) error {
	if _, _, err := cli.ImageInspectWithRaw(ctx, ref); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return zerr.With(zerr.Wrap(err, "image inspect"), "image", ref)
	}

	rc, err := cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "image pull"), "image", ref)
	}
	defer func() { _ = rc.Close() }()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return zerr.With(zerr.Wrap(err, "image pull"), "image", ref)
	}
	return nil
}

// Remove force-removes the container and its anonymous volumes.
func (d *DockerRuntime) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	cli, err := d.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "container remove"), "container", id)
	}
	return nil
}

// Close releases the Docker client. The next container operation creates a
// new one.
func (d *DockerRuntime) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inner == nil {
		return nil
	}
	err := d.inner.Close()
	d.inner = nil
	if err != nil {
		return zerr.Wrap(err, "failed to close docker client")
	}
	return nil
}

// Connected reports whether a Docker client is currently open.
func (d *DockerRuntime) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inner != nil
}
