package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"pubcred/internal/candidate/events"
	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/platform/sentinel"
	"pubcred/pkg/requestcontext"
)

// Upsert merges one upstream evaluation result into the candidate set.
// Idempotent by publication reference: re-submitting an unchanged request
// changes nothing but the modified timestamp.
//
// Validation failures are caught before any store access, so a failed upsert
// never leaves a partial write behind. Version conflicts re-run the whole
// algorithm from the load step, up to the configured retry bound.
func (s *Service) Upsert(ctx context.Context, req models.UpsertRequest) (*models.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("publication_id", req.PublicationID.String()))

	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	var outcome models.UpsertOutcome
	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		existing, err := s.store.FindByPublicationID(ctx, req.PublicationID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "candidate store failure")
		}

		if existing == nil {
			candidate, created := models.NewCandidate(id.NewCandidateID(), req, now)
			outcome = created
			return s.store.Save(ctx, candidate, 0)
		}

		if err := existing.CanUpsert(); err != nil {
			return nil, err
		}
		outcome = existing.ApplyUpsert(req, now)
		return s.store.Save(ctx, existing, existing.Version)
	})
	if err != nil {
		return nil, err
	}

	s.recordUpsert(saved, outcome)
	kind := events.KindUpserted
	if !saved.Applicable {
		kind = events.KindNonCandidate
	}
	s.publish(ctx, saved, kind)
	return saved, nil
}

// MarkNonCandidate marks a publication reference out of scope for funding. An
// unknown reference is a tolerated no-op (nil candidate, nil error): upstream
// retracts publications this service has never seen.
func (s *Service) MarkNonCandidate(ctx context.Context, publicationID id.PublicationID) (*models.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.MarkNonCandidate")
	defer span.End()

	if publicationID.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "publication id is required")
	}

	now := requestcontext.Now(ctx)

	var removed int
	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		existing, err := s.store.FindByPublicationID(ctx, publicationID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "candidate store failure")
		}
		if err := existing.CanUpsert(); err != nil {
			return nil, err
		}
		outcome := existing.ApplyNonCandidate(now)
		removed = outcome.Removed
		return s.store.Save(ctx, existing, existing.Version)
	})
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, nil
	}

	s.metrics.IncrementUpserts("non_candidate")
	s.metrics.AddApprovalsRemoved(removed)
	s.publish(ctx, saved, events.KindNonCandidate)
	return saved, nil
}

func (s *Service) recordUpsert(saved *models.Candidate, outcome models.UpsertOutcome) {
	switch {
	case !saved.Applicable:
		s.metrics.IncrementUpserts("non_candidate")
	case outcome.Created:
		s.metrics.IncrementUpserts("created")
	default:
		s.metrics.IncrementUpserts("updated")
	}
	if !outcome.Created {
		s.metrics.AddApprovalResets(outcome.Reset)
	}
	s.metrics.AddApprovalsRemoved(outcome.Removed)
}
