// Package release provides the transports that upload artifacts to a
// release provider.
package release

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// DefaultAPIURL is the base URL of the public GitHub REST API.
	DefaultAPIURL = "https://api.github.com"
	// DefaultUploadURL is the base URL for release asset uploads.
	DefaultUploadURL = "https://uploads.github.com"

	githubAPIVersion = "2022-11-28"
	maxErrorBody     = 64 << 10
)

// GitHub uploads assets to GitHub releases. The release for a tag is found
// or created once and shared by every upload to that tag.
type GitHub struct {
	apiURL     string
	uploadURL  string
	httpClient *http.Client

	mu       sync.Mutex
	releases map[string]*releaseEntry
}

type releaseEntry struct {
	once sync.Once
	id   int64
	err  error
}

var _ ports.ReleaseTransport = (*GitHub)(nil)

// NewGitHub creates a transport against the given API and upload base URLs.
// Empty URLs select the public GitHub endpoints.
func NewGitHub(apiURL, uploadURL string, httpClient *http.Client) *GitHub {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &GitHub{
		apiURL:     strings.TrimRight(apiURL, "/"),
		uploadURL:  strings.TrimRight(uploadURL, "/"),
		httpClient: httpClient,
		releases:   make(map[string]*releaseEntry),
	}
}

// RequiresRepo reports that every GitHub upload needs deploy.repo.
func (g *GitHub) RequiresRepo() bool {
	return true
}

type releaseJSON struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
}

// Upload attaches asset to the release of asset.Tag, creating the release
// when it does not exist yet.
func (g *GitHub) Upload(ctx context.Context, asset domain.Asset, token domain.Secret) error {
	if asset.Repo == "" {
		return domain.Classify(domain.ErrMissingRepo, zerr.With(zerr.New("deploy.repo is not set"), "provider", asset.Provider))
	}
	if asset.Tag == "" {
		return domain.Classify(domain.ErrAssetInvalid, zerr.With(zerr.New("asset has no release tag"), "asset", asset.Name))
	}

	releaseID, err := g.release(ctx, asset.Repo, asset.Tag, token)
	if err != nil {
		return err
	}

	f, err := os.Open(asset.Path)
	if err != nil {
		return domain.Classify(domain.ErrAssetInvalid, zerr.With(zerr.Wrap(err, "failed to open asset"), "path", asset.Path))
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return domain.Classify(domain.ErrAssetInvalid, zerr.With(zerr.Wrap(err, "failed to stat asset"), "path", asset.Path))
	}

	endpoint := g.uploadURL + "/repos/" + asset.Repo + "/releases/" +
		strconv.FormatInt(releaseID, 10) + "/assets?name=" + url.QueryEscape(asset.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
	if err != nil {
		return zerr.Wrap(err, "failed to build upload request")
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	if _, err := g.do(req, token); err != nil {
		return errors.Join(err, zerr.With(zerr.With(zerr.New("asset upload rejected"), "asset", asset.Name), "tag", asset.Tag))
	}
	return nil
}

// release returns the ID of the release for tag, creating it at most once
// per transport. A failed lookup is retried by a later call.
func (g *GitHub) release(ctx context.Context, repo, tag string, token domain.Secret) (int64, error) {
	key := repo + "@" + tag

	g.mu.Lock()
	entry, ok := g.releases[key]
	if !ok {
		entry = &releaseEntry{}
		g.releases[key] = entry
	}
	g.mu.Unlock()

	entry.once.Do(func() {
		entry.id, entry.err = g.findOrCreateRelease(ctx, repo, tag, token)
	})

	if entry.err != nil {
		g.mu.Lock()
		if g.releases[key] == entry {
			delete(g.releases, key)
		}
		g.mu.Unlock()
	}
	return entry.id, entry.err
}

func (g *GitHub) findOrCreateRelease(ctx context.Context, repo, tag string, token domain.Secret) (int64, error) {
	rel, err := g.getRelease(ctx, repo, tag, token)
	if err == nil {
		return rel.ID, nil
	}
	if !isStatus(err, http.StatusNotFound) {
		return 0, err
	}

	body, err := json.Marshal(map[string]any{"tag_name": tag, "name": tag})
	if err != nil {
		return 0, zerr.Wrap(err, "failed to encode release")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/repos/"+repo+"/releases", bytes.NewReader(body))
	if err != nil {
		return 0, zerr.Wrap(err, "failed to build release request")
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := g.do(req, token)
	if err != nil {
		// Another controller created the release concurrently.
		if isStatus(err, http.StatusUnprocessableEntity) {
			if rel, getErr := g.getRelease(ctx, repo, tag, token); getErr == nil {
				return rel.ID, nil
			}
		}
		return 0, errors.Join(err, zerr.With(zerr.New("failed to create release"), "tag", tag))
	}

	var created releaseJSON
	if err := json.Unmarshal(data, &created); err != nil {
		return 0, zerr.Wrap(err, "failed to decode release")
	}
	return created.ID, nil
}

func (g *GitHub) getRelease(ctx context.Context, repo, tag string, token domain.Secret) (*releaseJSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.apiURL+"/repos/"+repo+"/releases/tags/"+url.PathEscape(tag), http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build release request")
	}

	data, err := g.do(req, token)
	if err != nil {
		return nil, err
	}

	var rel releaseJSON
	if err := json.Unmarshal(data, &rel); err != nil {
		return nil, zerr.Wrap(err, "failed to decode release")
	}
	return &rel, nil
}

func (g *GitHub) do(req *http.Request, token domain.Secret) ([]byte, error) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if !token.IsZero() {
		req.Header.Set("Authorization", "Bearer "+token.Expose())
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "release host request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read release host response")
	}
	return data, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
