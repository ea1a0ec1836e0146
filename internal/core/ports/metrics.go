package ports

import (
	"time"

	"go.trai.ch/ferry/internal/core/domain"
)

// Metrics records run measurements.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	ObserveStage(stage domain.StageName, ok bool, d time.Duration)
	ObserveEnvironment(outcome domain.OutcomeKind, d time.Duration)
	ObserveUpload(provider string, ok bool, attempts int)
	ObserveGate(decision domain.Decision)
	// Flush writes the collected metrics to path in the Prometheus text format.
	Flush(path string) error
}
