// Package journal persists run summaries in a flat JSON file.
package journal

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// FileName is the journal file name inside the state directory.
const FileName = "journal.json"

// DefaultLimit is the number of runs kept in the journal.
const DefaultLimit = 50

// Store implements ports.Journal using a flat JSON file.
type Store struct {
	path    string
	limit   int
	mu      sync.RWMutex
	entries []domain.JournalEntry
}

var _ ports.Journal = (*Store)(nil)

// NewStore opens the journal backed by the file at the given path. A missing
// file is an empty journal.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		limit: DefaultLimit,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the journal location for the state directory stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return domain.Classify(domain.ErrJournalReadFailed, zerr.With(zerr.Wrap(err, "failed to read journal"), "path", s.path))
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return domain.Classify(domain.ErrJournalReadFailed, zerr.With(zerr.Wrap(err, "failed to unmarshal journal"), "path", s.path))
	}
	return nil
}

// save writes the entries through a temporary file so that an interrupted
// run never leaves a truncated journal behind. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal journal")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for journal")
	}

	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary journal")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write journal")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to write journal")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return zerr.Wrap(err, "failed to replace journal")
	}
	return nil
}

// Last returns the most recent entry.
func (s *Store) Last() (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	entry := s.entries[len(s.entries)-1]
	return &entry, nil
}

// Entries returns a copy of all recorded runs, oldest first.
func (s *Store) Entries() []domain.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.JournalEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Append records a finished run, dropping the oldest entries beyond the limit.
func (s *Store) Append(entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}

	if err := s.save(); err != nil {
		return domain.Classify(domain.ErrJournalWriteFailed, zerr.With(err, "path", s.path))
	}
	return nil
}
