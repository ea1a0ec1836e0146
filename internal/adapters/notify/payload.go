// Package notify provides the sinks that deliver run notifications.
package notify

import (
	"time"

	"go.trai.ch/ferry/internal/core/domain"
)

// Payload is the JSON document describing a finished run. It carries no
// credential material.
type Payload struct {
	RunID        string               `json:"run_id"`
	Subject      string               `json:"subject"`
	Ref          string               `json:"ref,omitzero"`
	Tag          string               `json:"tag,omitzero"`
	Outcome      string               `json:"outcome"`
	Changed      bool                 `json:"changed"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
	Environments []EnvironmentPayload `json:"environments"`
}

// EnvironmentPayload is the per-environment part of a Payload.
type EnvironmentPayload struct {
	ID        string   `json:"id"`
	OS        string   `json:"os"`
	Toolchain string   `json:"toolchain"`
	Target    string   `json:"target"`
	Outcome   string   `json:"outcome"`
	Summary   string   `json:"summary"`
	ErrorKind string   `json:"error_kind,omitzero"`
	Published []string `json:"published,omitzero"`
}

// NewPayload builds the payload of n.
func NewPayload(n domain.Notification) Payload {
	r := n.Report
	p := Payload{
		RunID:        r.RunID,
		Subject:      n.Subject(),
		Ref:          r.Event.Ref,
		Tag:          r.Event.Tag(),
		Outcome:      r.Outcome.Kind.String(),
		Changed:      n.Changed,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Environments: make([]EnvironmentPayload, 0, len(r.Environments)),
	}
	for _, e := range r.Environments {
		p.Environments = append(p.Environments, EnvironmentPayload{
			ID:        e.Env.ID,
			OS:        e.Env.OS,
			Toolchain: e.Env.Toolchain,
			Target:    e.Env.Target,
			Outcome:   e.Outcome.Kind.String(),
			Summary:   e.Outcome.String(),
			ErrorKind: e.Outcome.ErrorKind(),
			Published: e.Published,
		})
	}
	return p
}
