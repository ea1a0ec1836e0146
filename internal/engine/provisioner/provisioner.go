// Package provisioner manages the auxiliary services of a run.
package provisioner

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultReadyTimeout bounds the readiness wait of a service.
	DefaultReadyTimeout = 60 * time.Second
	// DefaultPollInterval is the delay between two readiness probes.
	DefaultPollInterval = time.Second
)

// Options configures a Provisioner.
type Options struct {
	ReadyTimeout time.Duration
	PollInterval time.Duration
	Logger       ports.Logger
	// OnTimeout is called with the timeout error after teardown. The run uses
	// it to cancel every environment.
	OnTimeout func(error)
}

// Provisioner starts every service once per run, waits for readiness on
// demand and tears everything down exactly once.
type Provisioner struct {
	drivers []ports.ServiceDriver
	byID    map[string]*service
	opts    Options

	mu       sync.Mutex
	torndown bool

	teardownOnce sync.Once
	teardownErr  error
}

type service struct {
	driver ports.ServiceDriver

	started atomic.Bool

	// mu serialises readiness probes so concurrent environments share one wait.
	mu       sync.Mutex
	startErr error
	readyErr error
	ready    bool
}

// New creates a Provisioner for the given drivers.
func New(drivers []ports.ServiceDriver, opts Options) *Provisioner {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.OnTimeout == nil {
		opts.OnTimeout = func(error) {}
	}

	byID := make(map[string]*service, len(drivers))
	for _, d := range drivers {
		byID[d.ID()] = &service{driver: d}
	}
	return &Provisioner{drivers: drivers, byID: byID, opts: opts}
}

// Start launches every service. A service that fails to start only fails the
// environments waiting for it, so Start returns an error for cancellation only.
func (p *Provisioner) Start(ctx context.Context) error {
	for _, d := range p.drivers {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(err, "service start interrupted")
		}

		svc := p.byID[d.ID()]
		svc.mu.Lock()
		svc.started.Store(true)
		if err := d.Start(ctx); err != nil {
			svc.startErr = err
			p.opts.Logger.Error(err, "service", d.ID())
		} else {
			p.opts.Logger.Info("service started", "service", d.ID())
		}
		svc.mu.Unlock()
	}
	return nil
}

// EnsureReady blocks until the service answers its readiness probe. A
// service that does not become ready within the timeout tears down every
// service and reports the timeout through Options.OnTimeout.
func (p *Provisioner) EnsureReady(ctx context.Context, id string) error {
	svc, ok := p.byID[id]
	if !ok {
		return domain.Classify(domain.ErrServiceNotStarted,
			zerr.With(zerr.New("service is not configured"), "service", id))
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	switch {
	case !svc.started.Load():
		return domain.Classify(domain.ErrServiceNotStarted,
			zerr.With(zerr.New("service was never started"), "service", id))
	case svc.startErr != nil:
		return svc.startErr
	case svc.readyErr != nil:
		return svc.readyErr
	case p.isTornDown():
		return domain.Classify(domain.ErrServiceNotStarted,
			zerr.With(zerr.New("services were torn down"), "service", id))
	case svc.ready:
		return nil
	}

	if err := p.waitReady(ctx, svc.driver); err != nil {
		if errors.Is(err, domain.ErrProvisionTimeout) {
			svc.readyErr = err
		}
		return err
	}
	svc.ready = true
	p.opts.Logger.Info("service ready", "service", id)
	return nil
}

func (p *Provisioner) waitReady(ctx context.Context, d ports.ServiceDriver) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.opts.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		if lastErr = d.Ready(waitCtx); lastErr == nil {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return domain.Classify(domain.ErrProvision,
					zerr.With(zerr.Wrap(ctx.Err(), "readiness wait interrupted"), "service", d.ID()))
			}
			return p.timeout(ctx, d.ID(), lastErr)
		case <-ticker.C:
		}
	}
}

func (p *Provisioner) timeout(ctx context.Context, id string, lastErr error) error {
	cause := zerr.New("service did not become ready")
	if lastErr != nil {
		cause = zerr.Wrap(lastErr, "service did not become ready")
	}
	err := domain.Classify(domain.ErrProvisionTimeout,
		zerr.With(zerr.With(cause, "service", id), "timeout", p.opts.ReadyTimeout.String()))

	p.opts.Logger.Error(err)
	if stopErr := p.Teardown(context.WithoutCancel(ctx)); stopErr != nil {
		p.opts.Logger.Error(stopErr)
	}
	p.opts.OnTimeout(err)
	return err
}

func (p *Provisioner) isTornDown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.torndown
}

// Vars returns the connection variables of every service. Later services win
// on conflicting names.
func (p *Provisioner) Vars() map[string]string {
	vars := make(map[string]string)
	for _, d := range p.drivers {
		maps.Copy(vars, d.Vars())
	}
	return vars
}

// Teardown stops every started service in reverse start order. Only the first
// call has an effect; later calls return the first call's result.
func (p *Provisioner) Teardown(ctx context.Context) error {
	p.teardownOnce.Do(func() {
		p.mu.Lock()
		p.torndown = true
		p.mu.Unlock()

		var errs []error
		for i := len(p.drivers) - 1; i >= 0; i-- {
			d := p.drivers[i]
			if !p.byID[d.ID()].started.Load() {
				continue
			}
			if err := d.Stop(ctx); err != nil {
				errs = append(errs, err)
				continue
			}
			p.opts.Logger.Info("service stopped", "service", d.ID())
		}
		p.teardownErr = errors.Join(errs...)
	})
	return p.teardownErr
}
