package journal_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/journal"
	"go.trai.ch/ferry/internal/core/domain"
)

func TestStore_EmptyJournal(t *testing.T) {
	store, err := journal.NewStore(journal.Path(t.TempDir()))
	require.NoError(t, err)

	last, err := store.Last()
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestStore_Persistence(t *testing.T) {
	path := journal.Path(t.TempDir())

	store1, err := journal.NewStore(path)
	require.NoError(t, err)

	finished := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store1.Append(domain.JournalEntry{
		RunID:      "run-1",
		Ref:        "refs/tags/v0.9.0",
		Tag:        "v0.9.0",
		Outcome:    domain.OutcomeSuccess.String(),
		FinishedAt: finished,
		Published: []domain.PublishedAsset{{
			EnvID:    "env-1",
			Provider: "releases",
			Tag:      "v0.9.0",
			Name:     "t-rex-v0.9.0-x86_64-unknown-linux-gnu.tar.gz",
			Size:     1024,
		}},
	}))
	require.NoError(t, store1.Append(domain.JournalEntry{
		RunID:   "run-2",
		Outcome: domain.OutcomeFailed.String(),
	}))

	store2, err := journal.NewStore(path)
	require.NoError(t, err)

	last, err := store2.Last()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-2", last.RunID)
	assert.False(t, last.Succeeded())

	entries := store2.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Succeeded())
	assert.Equal(t, finished, entries[0].FinishedAt)
	require.Len(t, entries[0].Published, 1)
	assert.Equal(t, int64(1024), entries[0].Published[0].Size)
}

func TestStore_Limit(t *testing.T) {
	path := journal.Path(t.TempDir())
	store, err := journal.NewStore(path)
	require.NoError(t, err)

	for i := range journal.DefaultLimit + 5 {
		require.NoError(t, store.Append(domain.JournalEntry{RunID: fmt.Sprintf("run-%d", i)}))
	}

	entries := store.Entries()
	require.Len(t, entries, journal.DefaultLimit)
	assert.Equal(t, "run-5", entries[0].RunID)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), journal.FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := journal.NewStore(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrJournalReadFailed)
}
