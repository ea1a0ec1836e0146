package ports

import "go.trai.ch/ferry/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline descriptor.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the descriptor at path and returns the validated pipeline configuration.
	Load(path string) (*domain.PipelineConfig, error)
}
