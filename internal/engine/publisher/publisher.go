// Package publisher uploads the artifacts of a build environment to the
// release provider.
package publisher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultMaxAttempts bounds the upload attempts of one asset.
	DefaultMaxAttempts = 5
	// DefaultInitialInterval is the delay before the first retry.
	DefaultInitialInterval = 500 * time.Millisecond
)

// Options configures a Publisher.
type Options struct {
	// Root is the directory file patterns are relative to.
	Root            string
	MaxAttempts     int
	InitialInterval time.Duration
}

// Publisher publishes the artifacts of every environment of a run.
type Publisher struct {
	spec     *domain.DeploySpec
	registry ports.TransportRegistry
	secrets  ports.SecretResolver
	ledger   *Ledger
	logger   ports.Logger
	metrics  ports.Metrics
	opts     Options
	removeFn func(string) error
	nowFn    func() time.Time
	secretFn func(ctx context.Context) (domain.Secret, error)
}

// New creates a Publisher for spec sharing ledger with the rest of the run.
func New(
	spec *domain.DeploySpec,
	registry ports.TransportRegistry,
	secrets ports.SecretResolver,
	ledger *Ledger,
	logger ports.Logger,
	metrics ports.Metrics,
	opts Options,
) *Publisher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialInterval
	}

	p := &Publisher{
		spec:     spec,
		registry: registry,
		secrets:  secrets,
		ledger:   ledger,
		logger:   logger,
		metrics:  metrics,
		opts:     opts,
		removeFn: os.Remove,
		nowFn:    time.Now,
	}
	p.secretFn = p.resolveSecretOnce()
	return p
}

// Validate checks that spec can be published at all: the provider has a
// transport and a provider needing a repository slug has one.
func Validate(spec *domain.DeploySpec, registry ports.TransportRegistry) error {
	transport, err := registry.Transport(spec.Provider)
	if err != nil {
		return domain.Classify(domain.ErrConfig,
			zerr.With(zerr.Wrap(err, "unsupported deploy provider"), "field", "deploy.provider"))
	}
	if r, ok := transport.(interface{ RequiresRepo() bool }); ok && r.RequiresRepo() && spec.Repo == "" {
		return domain.Classify(domain.ErrConfig, domain.Classify(domain.ErrMissingRepo,
			zerr.With(zerr.New("deploy.repo is not set"), "provider", spec.Provider)))
	}
	return nil
}

// resolveSecretOnce resolves the API key on first use. Every environment
// shares the result, including a failure.
func (p *Publisher) resolveSecretOnce() func(ctx context.Context) (domain.Secret, error) {
	var (
		once   sync.Once
		secret domain.Secret
		err    error
	)
	return func(ctx context.Context) (domain.Secret, error) {
		once.Do(func() {
			secret, err = p.secrets.Resolve(ctx, p.spec.APIKey)
		})
		return secret, err
	}
}

// Plan returns the assets env would publish for ev from the project root,
// without claiming or uploading anything.
func (p *Publisher) Plan(env *domain.BuildEnvironment, ev domain.RunEvent) ([]domain.Asset, error) {
	return p.plan(env, ev, p.opts.Root)
}

func (p *Publisher) plan(env *domain.BuildEnvironment, ev domain.RunEvent, dir string) ([]domain.Asset, error) {
	pattern := domain.Expand(p.spec.FilePattern, domain.Overlay(env.Map(), ev.For(env).Vars()))
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(dir, pattern)
	}

	paths, err := match(pattern, p.spec.FileGlob)
	if err != nil {
		return nil, domain.Classify(domain.ErrPublishNoMatch,
			zerr.With(zerr.Wrap(err, "invalid artifact pattern"), "pattern", pattern))
	}
	if len(paths) == 0 {
		return nil, domain.Classify(domain.ErrPublishNoMatch,
			zerr.With(zerr.With(zerr.New("artifact pattern matched no files"), "pattern", pattern),
				"environment", env.ID))
	}

	tag := releaseTag(ev)
	assets := make([]domain.Asset, 0, len(paths))
	for _, path := range paths {
		assets = append(assets, domain.Asset{
			Provider: p.spec.Provider,
			Repo:     p.spec.Repo,
			Tag:      tag,
			Name:     filepath.Base(path),
			Path:     path,
		})
	}
	return assets, nil
}

// Publish uploads the artifacts env built in dir. An empty dir selects the
// project root. Each asset is uploaded at most once per run; an asset already
// claimed by another environment fails the publish before anything is
// uploaded.
func (p *Publisher) Publish(ctx context.Context, env *domain.BuildEnvironment, ev domain.RunEvent, dir string) domain.PublishResult {
	if dir == "" {
		dir = p.opts.Root
	}

	transport, err := p.registry.Transport(p.spec.Provider)
	if err != nil {
		return domain.PublishResult{Err: domain.Classify(domain.ErrPublish, err)}
	}

	assets, err := p.plan(env, ev, dir)
	if err != nil {
		return domain.PublishResult{Err: err}
	}

	secret, err := p.secretFn(ctx)
	if err != nil {
		return domain.PublishResult{Err: err}
	}

	if err := p.claim(env.ID, assets); err != nil {
		return domain.PublishResult{Err: err}
	}

	result := domain.PublishResult{Assets: make([]domain.PublishedAsset, 0, len(assets))}
	for _, asset := range assets {
		if err := p.upload(ctx, transport, asset, secret); err != nil {
			result.Err = err
			return result
		}

		var size int64
		if info, statErr := os.Stat(asset.Path); statErr == nil {
			size = info.Size()
		}
		result.Assets = append(result.Assets, domain.PublishedAsset{
			EnvID:      env.ID,
			Provider:   asset.Provider,
			Tag:        asset.Tag,
			Name:       asset.Name,
			Size:       size,
			UploadedAt: p.nowFn(),
		})
		p.logger.Info("asset published",
			"environment", env.ID,
			"asset", asset.Name,
			"tag", asset.Tag,
			"provider", asset.Provider,
		)
	}

	if !p.spec.SkipCleanup {
		p.cleanup(env, assets)
	}
	return result
}

func (p *Publisher) claim(owner string, assets []domain.Asset) error {
	claimed := make([]string, 0, len(assets))
	for _, asset := range assets {
		prev, ok := p.ledger.Claim(asset.Key(), owner)
		if !ok {
			p.ledger.Release(owner, claimed...)
			err := zerr.With(zerr.New("asset was already published by another environment"), "asset", asset.Name)
			return domain.Classify(domain.ErrPublishDuplicate,
				zerr.With(zerr.With(err, "tag", asset.Tag), "claimed_by", prev))
		}
		claimed = append(claimed, asset.Key())
	}
	return nil
}

func (p *Publisher) upload(ctx context.Context, transport ports.ReleaseTransport, asset domain.Asset, token domain.Secret) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.opts.InitialInterval
	policy.MaxElapsedTime = 0

	attempts := 0
	operation := func() error {
		attempts++
		err := transport.Upload(ctx, asset, token)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		p.logger.Warn("asset upload failed, retrying",
			"asset", asset.Name,
			"attempt", attempts,
			"retry_in", next.String(),
			"error", err.Error(),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(p.opts.MaxAttempts-1)), ctx) //nolint:gosec // MaxAttempts is positive
	err := backoff.RetryNotify(operation, b, notify)
	p.metrics.ObserveUpload(asset.Provider, err == nil, attempts)
	if err == nil {
		return nil
	}

	wrapped := zerr.With(zerr.With(zerr.Wrap(err, "upload failed"), "asset", asset.Name), "attempts", attempts)
	if errors.Is(err, domain.ErrMissingRepo) {
		return domain.Classify(domain.ErrPublish, wrapped)
	}
	return domain.Classify(domain.ErrPublishUpload, wrapped)
}

// cleanup removes uploaded artifacts. A file that cannot be removed is
// reported but does not fail the publish.
func (p *Publisher) cleanup(env *domain.BuildEnvironment, assets []domain.Asset) {
	for _, asset := range assets {
		if err := p.removeFn(asset.Path); err != nil && !os.IsNotExist(err) {
			p.logger.Error(domain.Classify(domain.ErrPublishCleanup,
				zerr.With(zerr.Wrap(err, "failed to remove artifact"), "path", asset.Path)),
				"environment", env.ID)
		}
	}
}

// isPermanent reports whether retrying err cannot succeed. Provider
// rejections decide for themselves; network failures are always retried.
func isPermanent(err error) bool {
	switch {
	case errors.Is(err, domain.ErrMissingRepo),
		errors.Is(err, domain.ErrAssetInvalid),
		errors.Is(err, context.Canceled):
		return true
	}
	var rejection interface{ Retryable() bool }
	if errors.As(err, &rejection) {
		return !rejection.Retryable()
	}
	return false
}

func match(pattern string, glob bool) ([]string, error) {
	if !glob {
		info, err := os.Stat(pattern)
		if err != nil || info.IsDir() {
			return nil, nil //nolint:nilerr // a missing file is an empty match
		}
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// releaseTag names the release assets are attached to. Untagged runs publish
// under the short name of their ref.
func releaseTag(ev domain.RunEvent) string {
	if tag := ev.Tag(); tag != "" {
		return tag
	}
	ref := strings.TrimPrefix(ev.Ref, "refs/heads/")
	if ref == "" {
		return ev.RunID
	}
	return ref
}
