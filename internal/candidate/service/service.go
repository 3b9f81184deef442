// Package service implements the candidate engine: the upsert/merge algorithm
// with its approval reset semantics, approval status transitions behind the
// period gate, and the notes subsystem.
//
// All operations follow the same concurrency discipline: read the current
// version, apply business rules, write conditionally on that version. Version
// conflicts re-run the whole operation (rules included) a bounded number of
// times; diffs from two writers are never merged blindly, because approval
// resets are not commutative.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pubcred/internal/candidate/events"
	"pubcred/internal/candidate/metrics"
	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/platform/sentinel"
	"pubcred/pkg/requestcontext"
)

const defaultRetryAttempts = 3

// Service orchestrates candidate lifecycle operations.
type Service struct {
	store         CandidateStore
	periods       PeriodLookup
	publisher     events.Publisher
	metrics       *metrics.Metrics
	retryAttempts int
	tracer        trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher sets the change-event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRetryAttempts overrides the optimistic-retry bound.
func WithRetryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retryAttempts = n
		}
	}
}

// New creates a candidate service.
func New(store CandidateStore, periods PeriodLookup, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("candidate store is required")
	}
	if periods == nil {
		return nil, errors.New("period lookup is required")
	}
	s := &Service{
		store:         store,
		periods:       periods,
		publisher:     events.NoopPublisher{},
		retryAttempts: defaultRetryAttempts,
		tracer:        otel.Tracer("pubcred/candidate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// runWithRetry re-runs op on version conflicts, up to the configured bound.
// op must re-read state on every attempt; anything it decided before the
// conflicting write is stale.
func (s *Service) runWithRetry(ctx context.Context, op func(context.Context) (*models.Candidate, error)) (*models.Candidate, error) {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		c, err := op(ctx)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, sentinel.ErrVersionConflict) {
			return nil, err
		}
		s.metrics.IncrementVersionConflicts()
		lastErr = err
	}
	return nil, dErrors.Wrap(lastErr, dErrors.CodeConflict, "concurrent modification")
}

// GetSummary returns the read projection for a candidate.
func (s *Service) GetSummary(ctx context.Context, candidateID id.CandidateID) (*models.Summary, error) {
	c, err := s.store.FindByID(ctx, candidateID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return s.toSummary(ctx, c)
}

// GetSummaryByPublication returns the read projection for the candidate
// holding a publication reference.
func (s *Service) GetSummaryByPublication(ctx context.Context, publicationID id.PublicationID) (*models.Summary, error) {
	c, err := s.store.FindByPublicationID(ctx, publicationID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return s.toSummary(ctx, c)
}

func (s *Service) toSummary(ctx context.Context, c *models.Candidate) (*models.Summary, error) {
	status, err := s.periods.StatusFor(ctx, c.ReportingYear)
	if err != nil {
		return nil, err
	}
	summary := c.ToSummary(string(status))
	return &summary, nil
}

// gateApprovalMutation enforces the period gate and the reported-state
// invariant before any approval mutation. Both are re-checked on every retry
// attempt: a concurrent upsert may have changed either.
func (s *Service) gateApprovalMutation(ctx context.Context, c *models.Candidate) error {
	if c.ReportStatus == models.ReportStatusReported {
		return dErrors.New(dErrors.CodeIllegalUpdate, "reported candidate is frozen")
	}
	open, err := s.periods.CanMutateApprovals(ctx, c.ReportingYear)
	if err != nil {
		return err
	}
	if !open {
		return dErrors.New(dErrors.CodeIllegalState,
			"approvals can only be changed while the reporting period is open")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, c *models.Candidate, kind events.ChangeKind) {
	s.publisher.Publish(ctx, events.CandidateChange{
		CandidateID:   c.ID,
		PublicationID: c.PublicationID,
		Kind:          kind,
		Version:       c.Version,
		OccurredAt:    requestcontext.Now(ctx),
	})
}

func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "candidate not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "candidate store failure")
	}
}
