package release

import (
	"os"
	"path/filepath"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment variables configuring the default transports.
const (
	EnvGitHubAPIURL    = "FERRY_GITHUB_API_URL"
	EnvGitHubUploadURL = "FERRY_GITHUB_UPLOAD_URL"
	EnvReleaseDir      = "FERRY_RELEASE_DIR"
)

// Registry implements ports.TransportRegistry over a fixed set of providers.
type Registry struct {
	transports map[string]ports.ReleaseTransport
}

var _ ports.TransportRegistry = (*Registry)(nil)

// NewRegistry creates a registry from provider names to transports.
func NewRegistry(transports map[string]ports.ReleaseTransport) *Registry {
	return &Registry{transports: transports}
}

// NewDefaultRegistry registers GitHub under "releases" and "github", and the
// filesystem transport under "filesystem".
func NewDefaultRegistry(lookupEnv func(string) string) *Registry {
	if lookupEnv == nil {
		lookupEnv = os.Getenv
	}
	gh := NewGitHub(lookupEnv(EnvGitHubAPIURL), lookupEnv(EnvGitHubUploadURL), nil)

	dir := lookupEnv(EnvReleaseDir)
	if dir == "" {
		dir = filepath.Join(domain.StateDirName, "releases")
	}

	return NewRegistry(map[string]ports.ReleaseTransport{
		"releases":   gh,
		"github":     gh,
		"filesystem": NewFilesystem(dir),
	})
}

// Transport returns the transport registered for provider.
func (r *Registry) Transport(provider string) (ports.ReleaseTransport, error) {
	t, ok := r.transports[provider]
	if !ok {
		return nil, domain.Classify(domain.ErrUnknownProvider,
			zerr.With(zerr.New("no transport for provider"), "provider", provider))
	}
	return t, nil
}
