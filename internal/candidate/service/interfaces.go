package service

import (
	"context"

	"pubcred/internal/candidate/models"
	"pubcred/internal/period"
	id "pubcred/pkg/domain"
)

// CandidateStore defines the persistence interface the engine requires: atomic
// read-modify-write by identity or by publication reference, with optimistic
// versioning.
type CandidateStore interface {
	// FindByID returns the candidate, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)

	// FindByPublicationID returns the candidate holding the publication
	// reference, or sentinel.ErrNotFound.
	FindByPublicationID(ctx context.Context, publicationID id.PublicationID) (*models.Candidate, error)

	// Save creates or replaces the candidate, conditional on expectedVersion
	// matching the persisted version (0 for creation). Returns the stored
	// candidate with its incremented version, or sentinel.ErrVersionConflict.
	Save(ctx context.Context, candidate *models.Candidate, expectedVersion int64) (*models.Candidate, error)
}

// PeriodLookup resolves reporting-period windows for candidate years.
type PeriodLookup interface {
	// StatusFor returns the window status for a year; years with no
	// configured period read as StatusNoPeriod.
	StatusFor(ctx context.Context, year int) (period.Status, error)

	// CanMutateApprovals reports whether the year's window is open.
	CanMutateApprovals(ctx context.Context, year int) (bool, error)
}
