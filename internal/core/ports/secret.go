package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// SecretResolver turns an opaque reference into credential material.
//
//go:generate go run go.uber.org/mock/mockgen -source=secret.go -destination=mocks/mock_secret.go -package=mocks
type SecretResolver interface {
	Resolve(ctx context.Context, ref domain.SecretRef) (domain.Secret, error)
}
