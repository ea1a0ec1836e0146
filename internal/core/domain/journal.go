package domain

import "time"

// JournalEntry is the persisted summary of a finished run.
type JournalEntry struct {
	RunID      string           `json:"run_id"`
	Ref        string           `json:"ref,omitzero"`
	Tag        string           `json:"tag,omitzero"`
	Outcome    string           `json:"outcome"`
	FinishedAt time.Time        `json:"finished_at"`
	Published  []PublishedAsset `json:"published,omitzero"`
}

// Succeeded reports whether the recorded run passed.
func (e JournalEntry) Succeeded() bool {
	return e.Outcome == OutcomeSuccess.String() || e.Outcome == OutcomeDeploySkipped.String()
}
