package ports

import "go.trai.ch/ferry/internal/core/domain"

// Journal persists run summaries between runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=mocks/mock_journal.go -package=mocks
type Journal interface {
	// Last returns the most recent entry, or nil, nil when no run was recorded.
	Last() (*domain.JournalEntry, error)
	// Append records a finished run.
	Append(entry domain.JournalEntry) error
}
