package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// ReleaseTransport uploads artifacts to a release provider.
//
//go:generate go run go.uber.org/mock/mockgen -source=release.go -destination=mocks/mock_release.go -package=mocks
type ReleaseTransport interface {
	// Upload publishes a single asset. It is the only place allowed to expose the token.
	Upload(ctx context.Context, asset domain.Asset, token domain.Secret) error
}

// TransportRegistry looks up the transport for a provider name.
type TransportRegistry interface {
	// Transport returns the transport for provider, or an error matching
	// domain.ErrUnknownProvider.
	Transport(provider string) (ReleaseTransport, error)
}
