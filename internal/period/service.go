package period

import (
	"context"
	"errors"

	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/platform/sentinel"
	"pubcred/pkg/requestcontext"
)

// Store defines the persistence interface for reporting periods.
type Store interface {
	// FindByYear returns the period for a publishing year, or
	// sentinel.ErrNotFound.
	FindByYear(ctx context.Context, year int) (*Period, error)

	// Save creates or replaces the period for its year.
	Save(ctx context.Context, p *Period) error
}

// Service resolves period windows and gates approval mutation on them.
type Service struct {
	store Store
}

// NewService creates a period service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("period store is required")
	}
	return &Service{store: store}, nil
}

// StatusFor resolves the window status for a publishing year. A year with no
// configured period reads as StatusNoPeriod, not an error; callers decide
// what that means for them.
func (s *Service) StatusFor(ctx context.Context, year int) (Status, error) {
	if year == 0 {
		return StatusNoPeriod, nil
	}
	p, err := s.store.FindByYear(ctx, year)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return StatusNoPeriod, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve reporting period")
	}
	return p.StatusAt(requestcontext.Now(ctx)), nil
}

// CanMutateApprovals reports whether approval state for the given year may
// change right now. Only an open window permits mutation.
func (s *Service) CanMutateApprovals(ctx context.Context, year int) (bool, error) {
	status, err := s.StatusFor(ctx, year)
	if err != nil {
		return false, err
	}
	return status == StatusOpen, nil
}

// UpsertPeriod creates or replaces a reporting period. Administrative; the
// window must be coherent.
func (s *Service) UpsertPeriod(ctx context.Context, p Period) error {
	if p.Year == 0 {
		return dErrors.New(dErrors.CodeValidation, "period year is required")
	}
	if p.StartDate.IsZero() || p.ReportingDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "period start and reporting dates are required")
	}
	if !p.ReportingDate.After(p.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "reporting date must be after start date")
	}
	if err := s.store.Save(ctx, &p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save reporting period")
	}
	return nil
}

// GetPeriod returns the configured period for a year.
func (s *Service) GetPeriod(ctx context.Context, year int) (*Period, error) {
	p, err := s.store.FindByYear(ctx, year)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no reporting period for year %d", year)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reporting period")
	}
	return p, nil
}
