package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"pubcred/internal/candidate/events"
	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/requestcontext"
)

// UpdateApprovalStatus transitions one institution's approval. Every status
// change requires attribution; rejections require a reason; the candidate's
// reporting period must be open.
//
// Re-affirming the current status is legal and still refreshes finalization
// metadata. The period gate and the reported-state invariant are re-validated
// on every retry attempt, since a concurrent upsert may have changed both the
// approval set and the candidate's year.
func (s *Service) UpdateApprovalStatus(
	ctx context.Context,
	candidateID id.CandidateID,
	institutionID id.InstitutionID,
	status models.ApprovalStatus,
	username, reason string,
) (*models.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.UpdateApprovalStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("candidate_id", candidateID.String()),
		attribute.String("status", string(status)),
	)

	now := requestcontext.Now(ctx)

	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		c, err := s.store.FindByID(ctx, candidateID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}

		approval, ok := c.Approval(institutionID)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound,
				"institution %s has no approval on this candidate", institutionID)
		}
		if err := approval.CanUpdateStatus(status, username, reason); err != nil {
			return nil, err
		}
		if err := s.gateApprovalMutation(ctx, c); err != nil {
			return nil, err
		}

		approval.ApplyStatus(status, username, reason, now)
		return s.store.Save(ctx, c, c.Version)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementStatusUpdates(string(status))
	s.publish(ctx, saved, events.KindApprovalUpdate)
	return saved, nil
}

// UpdateApprovalAssignee explicitly assigns a curator to one institution's
// approval. Does not change status. Requires an open period.
func (s *Service) UpdateApprovalAssignee(
	ctx context.Context,
	candidateID id.CandidateID,
	institutionID id.InstitutionID,
	username string,
) (*models.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.UpdateApprovalAssignee")
	defer span.End()

	if strings.TrimSpace(username) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "assignee username is required")
	}

	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		c, err := s.store.FindByID(ctx, candidateID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}

		approval, ok := c.Approval(institutionID)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound,
				"institution %s has no approval on this candidate", institutionID)
		}
		if err := s.gateApprovalMutation(ctx, c); err != nil {
			return nil, err
		}

		approval.ApplySetAssignee(username)
		return s.store.Save(ctx, c, c.Version)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, saved, events.KindApprovalUpdate)
	return saved, nil
}
