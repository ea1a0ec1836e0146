// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/ferry/internal/core/domain"
)

// Executor defines the interface for executing stage commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and waits for it to exit.
	//
	// Output is streamed to stdout and stderr as it is produced. A non-zero exit
	// is returned as an error matching domain.ErrCommandFailed and carrying the
	// "exit_code" metadata. Cancelling ctx kills the process.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}
