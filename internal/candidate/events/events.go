// Package events publishes candidate change events for downstream consumers
// (the search-index pipeline reads them to schedule re-indexing).
//
// Publishing is best-effort: candidate persistence is the source of truth and
// must not fail because the broker is unreachable. The index pipeline
// reconciles by re-reading candidates, so a lost event delays visibility
// rather than losing data.
package events

import (
	"context"
	"time"

	id "pubcred/pkg/domain"
)

// ChangeKind classifies what happened to a candidate.
type ChangeKind string

const (
	KindUpserted       ChangeKind = "candidate_upserted"
	KindNonCandidate   ChangeKind = "candidate_not_applicable"
	KindApprovalUpdate ChangeKind = "approval_updated"
	KindNoteAdded      ChangeKind = "note_added"
	KindNoteRemoved    ChangeKind = "note_removed"
)

// CandidateChange is the event payload. Keyed by candidate ID so per-candidate
// ordering survives partitioning.
type CandidateChange struct {
	CandidateID   id.CandidateID   `json:"candidate_id"`
	PublicationID id.PublicationID `json:"publication_id"`
	Kind          ChangeKind       `json:"kind"`
	Version       int64            `json:"version"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// Publisher emits candidate change events.
type Publisher interface {
	Publish(ctx context.Context, change CandidateChange)
}

// NoopPublisher drops events. Used in tests and when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, change CandidateChange) {}
