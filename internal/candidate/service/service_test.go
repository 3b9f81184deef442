package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pubcred/internal/candidate/events"
	"pubcred/internal/candidate/models"
	candidatestore "pubcred/internal/candidate/store/candidate"
	"pubcred/internal/period"
	mocks "pubcred/mocks/candidate"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/platform/sentinel"
	"pubcred/pkg/requestcontext"
)

const (
	instA = id.InstitutionID("https://example.org/inst/A")
	instB = id.InstitutionID("https://example.org/inst/B")
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// capturingPublisher records published changes for assertions.
type capturingPublisher struct {
	changes []events.CandidateChange
}

func (p *capturingPublisher) Publish(ctx context.Context, change events.CandidateChange) {
	p.changes = append(p.changes, change)
}

// conflictingStore wraps a store and fails the first n Save calls with a
// version conflict, simulating a concurrent writer.
type conflictingStore struct {
	CandidateStore
	failures int
}

func (s *conflictingStore) Save(ctx context.Context, c *models.Candidate, expectedVersion int64) (*models.Candidate, error) {
	if s.failures > 0 {
		s.failures--
		return nil, sentinel.ErrVersionConflict
	}
	return s.CandidateStore.Save(ctx, c, expectedVersion)
}

type CandidateServiceSuite struct {
	suite.Suite
	store     *candidatestore.InMemory
	periods   *period.Service
	publisher *capturingPublisher
	service   *Service
	ctx       context.Context
}

func TestCandidateServiceSuite(t *testing.T) {
	suite.Run(t, new(CandidateServiceSuite))
}

func (s *CandidateServiceSuite) SetupTest() {
	s.store = candidatestore.NewInMemory()
	s.publisher = &capturingPublisher{}

	periodStore := period.NewInMemoryStore()
	var err error
	s.periods, err = period.NewService(periodStore)
	s.Require().NoError(err)

	// 2026 is open around testNow; 2025 closed; 2024 not yet opened (odd but
	// exercises the state); 2023 has no period at all.
	s.Require().NoError(periodStore.Save(context.Background(), &period.Period{
		Year: 2026, StartDate: testNow.AddDate(0, -2, 0), ReportingDate: testNow.AddDate(0, 8, 0),
	}))
	s.Require().NoError(periodStore.Save(context.Background(), &period.Period{
		Year: 2025, StartDate: testNow.AddDate(-1, 0, 0), ReportingDate: testNow.AddDate(0, -1, 0),
	}))
	s.Require().NoError(periodStore.Save(context.Background(), &period.Period{
		Year: 2024, StartDate: testNow.AddDate(0, 2, 0), ReportingDate: testNow.AddDate(0, 8, 0),
	}))

	s.service, err = New(s.store, s.periods, WithPublisher(s.publisher))
	s.Require().NoError(err)

	s.ctx = requestcontext.WithTime(context.Background(), testNow)
}

func (s *CandidateServiceSuite) request(pubID string) models.UpsertRequest {
	return models.UpsertRequest{
		PublicationID: id.PublicationID(pubID),
		Applicable:    true,
		InstanceType:  "AcademicArticle",
		Channel:       models.Channel{ID: "channel-1", Level: "1"},
		ReportingYear: 2026,
		Creators: []models.Creator{
			{ID: "creator-1", Affiliations: []models.CreatorAffiliation{{InstitutionID: instA, OrganizationID: "org-A1"}}},
			{ID: "creator-2", Affiliations: []models.CreatorAffiliation{{InstitutionID: instB, OrganizationID: "org-B1"}}},
		},
		TotalPoints: dec("4.5"),
		InstitutionPoints: []models.InstitutionPoints{
			{InstitutionID: instA, Points: dec("2.50")},
			{InstitutionID: instB, Points: dec("2.00")},
		},
	}
}

func (s *CandidateServiceSuite) upsert(pubID string) *models.Candidate {
	c, err := s.service.Upsert(s.ctx, s.request(pubID))
	s.Require().NoError(err)
	return c
}

// =============================================================================
// Upsert
// =============================================================================

func (s *CandidateServiceSuite) TestUpsertCreates() {
	c := s.upsert("pub-1")

	s.False(c.ID.IsNil())
	s.EqualValues(1, c.Version)
	s.Len(c.Approvals, 2)
	s.Equal(models.GlobalStatusPending, c.GlobalStatus())

	s.Require().Len(s.publisher.changes, 1)
	s.Equal(events.KindUpserted, s.publisher.changes[0].Kind)
}

func (s *CandidateServiceSuite) TestUpsertIsIdempotent() {
	first := s.upsert("pub-1")

	laterCtx := requestcontext.WithTime(context.Background(), testNow.Add(time.Hour))
	second, err := s.service.Upsert(laterCtx, s.request("pub-1"))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.NotEqual(first.UpdatedAt, second.UpdatedAt)

	// Everything but the modified timestamp and the storage version counter
	// is unchanged.
	second.UpdatedAt = first.UpdatedAt
	second.Version = first.Version
	s.Equal(first, second)
}

func (s *CandidateServiceSuite) TestUpsertRejectsContradictoryState() {
	req := s.request("pub-1")
	req.InstanceType = models.InstanceTypeNonCandidate

	_, err := s.service.Upsert(s.ctx, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCandidateState))

	_, findErr := s.store.FindByPublicationID(s.ctx, "pub-1")
	s.ErrorIs(findErr, sentinel.ErrNotFound, "validation failures never persist")
}

func (s *CandidateServiceSuite) TestUpsertFrozenCandidate() {
	c := s.upsert("pub-1")

	// Freeze the candidate the way reporting does.
	c.ReportStatus = models.ReportStatusReported
	_, err := s.store.Save(s.ctx, c, c.Version)
	s.Require().NoError(err)

	_, err = s.service.Upsert(s.ctx, s.request("pub-1"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeIllegalUpdate))
}

func (s *CandidateServiceSuite) TestUpsertRetriesOnConflict() {
	s.upsert("pub-1")

	flaky := &conflictingStore{CandidateStore: s.store, failures: 2}
	svc, err := New(flaky, s.periods, WithPublisher(s.publisher))
	s.Require().NoError(err)

	req := s.request("pub-1")
	req.InstitutionPoints[0].Points = dec("3.00")
	c, err := svc.Upsert(s.ctx, req)
	s.Require().NoError(err)
	s.True(c.InstitutionPoints[0].Points.Equal(dec("3.00")))
}

func (s *CandidateServiceSuite) TestUpsertExhaustsRetries() {
	s.upsert("pub-1")

	flaky := &conflictingStore{CandidateStore: s.store, failures: 10}
	svc, err := New(flaky, s.periods, WithPublisher(s.publisher))
	s.Require().NoError(err)

	_, err = svc.Upsert(s.ctx, s.request("pub-1"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *CandidateServiceSuite) TestMarkNonCandidate() {
	s.Run("clears approvals on an existing candidate", func() {
		c := s.upsert("pub-1")
		_, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
		s.Require().NoError(err)

		updated, err := s.service.MarkNonCandidate(s.ctx, "pub-1")
		s.Require().NoError(err)
		s.False(updated.Applicable)
		s.Empty(updated.Approvals)
	})

	s.Run("unknown reference is a tolerated no-op", func() {
		c, err := s.service.MarkNonCandidate(s.ctx, "never-seen")
		s.NoError(err)
		s.Nil(c)
	})

	s.Run("upsert with applicable false takes the same path", func() {
		s.upsert("pub-2")
		req := models.UpsertRequest{
			PublicationID: "pub-2",
			Applicable:    false,
			InstanceType:  models.InstanceTypeNonCandidate,
		}
		c, err := s.service.Upsert(s.ctx, req)
		s.Require().NoError(err)
		s.False(c.Applicable)
		s.Empty(c.Approvals)
	})
}

// =============================================================================
// Approval status updates
// =============================================================================

func (s *CandidateServiceSuite) TestUpdateApprovalStatus() {
	c := s.upsert("pub-1")

	s.Run("approve stamps finalization", func() {
		updated, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
		s.Require().NoError(err)
		a, _ := updated.Approval(instA)
		s.Equal(models.ApprovalStatusApproved, a.Status)
		s.Equal("alice", a.FinalizedBy)
		s.Require().NotNil(a.FinalizedDate)
		s.True(a.FinalizedDate.Equal(testNow))
	})

	s.Run("missing username fails validation", func() {
		_, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusPending, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejection without reason fails validation", func() {
		_, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instB, models.ApprovalStatusRejected, "bob", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejection with reason sticks until status changes", func() {
		updated, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instB, models.ApprovalStatusRejected, "bob", "duplicate")
		s.Require().NoError(err)
		b, _ := updated.Approval(instB)
		s.Equal("duplicate", b.Reason)

		updated, err = s.service.UpdateApprovalStatus(s.ctx, c.ID, instB, models.ApprovalStatusApproved, "bob", "")
		s.Require().NoError(err)
		b, _ = updated.Approval(instB)
		s.Empty(b.Reason)
	})

	s.Run("unknown institution is not found", func() {
		_, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, "https://example.org/inst/unknown", models.ApprovalStatusApproved, "alice", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CandidateServiceSuite) TestPeriodGating() {
	gatedYears := map[string]int{
		"closed period":     2025,
		"not opened period": 2024,
		"missing period":    2023,
	}

	for name, year := range gatedYears {
		s.Run(name, func() {
			req := s.request("pub-" + name)
			req.ReportingYear = year
			c, err := s.service.Upsert(s.ctx, req)
			s.Require().NoError(err, "upserts are not period-gated")

			_, err = s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeIllegalState))

			_, err = s.service.UpdateApprovalAssignee(s.ctx, c.ID, instA, "alice")
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeIllegalState))

			stored, err := s.store.FindByID(s.ctx, c.ID)
			s.Require().NoError(err)
			a, _ := stored.Approval(instA)
			s.Equal(models.ApprovalStatusPending, a.Status, "gate failures never mutate")
			s.Empty(a.Assignee)
		})
	}
}

func (s *CandidateServiceSuite) TestApprovalPreservationScenario() {
	// §8-style end-to-end: approve at 2.50, re-upsert at 2.5000 (no change),
	// then at 3.00 (reset).
	c := s.upsert("pub-1")
	_, err := s.service.UpdateApprovalAssignee(s.ctx, c.ID, instA, "alice")
	s.Require().NoError(err)
	_, err = s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
	s.Require().NoError(err)

	sameValue := s.request("pub-1")
	sameValue.InstitutionPoints[0].Points = dec("2.5000")
	updated, err := s.service.Upsert(s.ctx, sameValue)
	s.Require().NoError(err)
	a, _ := updated.Approval(instA)
	s.Equal(models.ApprovalStatusApproved, a.Status)
	s.Equal("alice", a.FinalizedBy)

	changed := s.request("pub-1")
	changed.InstitutionPoints[0].Points = dec("3.00")
	updated, err = s.service.Upsert(s.ctx, changed)
	s.Require().NoError(err)
	a, _ = updated.Approval(instA)
	s.Equal(models.ApprovalStatusPending, a.Status)
	s.Empty(a.FinalizedBy)
	s.Nil(a.FinalizedDate)
	s.Equal("alice", a.Assignee, "assignee survives the reset")
}

func (s *CandidateServiceSuite) TestUpdateAssignee() {
	c := s.upsert("pub-1")

	s.Run("explicit assignment always wins", func() {
		updated, err := s.service.UpdateApprovalAssignee(s.ctx, c.ID, instA, "alice")
		s.Require().NoError(err)
		a, _ := updated.Approval(instA)
		s.Equal("alice", a.Assignee)

		updated, err = s.service.UpdateApprovalAssignee(s.ctx, c.ID, instA, "bob")
		s.Require().NoError(err)
		a, _ = updated.Approval(instA)
		s.Equal("bob", a.Assignee)
		s.Equal(models.ApprovalStatusPending, a.Status, "assignment does not touch status")
	})

	s.Run("missing username fails validation", func() {
		_, err := s.service.UpdateApprovalAssignee(s.ctx, c.ID, instA, " ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// =============================================================================
// Notes
// =============================================================================

func (s *CandidateServiceSuite) TestNotes() {
	c := s.upsert("pub-1")

	s.Run("requires text and author", func() {
		_, err := s.service.CreateNote(s.ctx, c.ID, "", "alice", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.CreateNote(s.ctx, c.ID, "text", "", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("first institution note claims the approval", func() {
		updated, err := s.service.CreateNote(s.ctx, c.ID, "checking this one", "alice", instA)
		s.Require().NoError(err)
		a, _ := updated.Approval(instA)
		s.Equal("alice", a.Assignee)
	})

	s.Run("only the author may delete", func() {
		updated, err := s.service.CreateNote(s.ctx, c.ID, "mine", "alice", "")
		s.Require().NoError(err)
		noteID := updated.Notes[len(updated.Notes)-1].ID

		_, err = s.service.DeleteNote(s.ctx, c.ID, noteID, "mallory")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		updated, err = s.service.DeleteNote(s.ctx, c.ID, noteID, "alice")
		s.Require().NoError(err)
		for _, n := range updated.Notes {
			s.NotEqual(noteID, n.ID)
		}
	})

	s.Run("deleting an unknown note is not found", func() {
		_, err := s.service.DeleteNote(s.ctx, c.ID, id.NewNoteID(), "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Summaries
// =============================================================================

func (s *CandidateServiceSuite) TestGetSummary() {
	c := s.upsert("pub-1")
	_, err := s.service.UpdateApprovalStatus(s.ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
	s.Require().NoError(err)
	_, err = s.service.UpdateApprovalStatus(s.ctx, c.ID, instB, models.ApprovalStatusRejected, "bob", "duplicate")
	s.Require().NoError(err)

	summary, err := s.service.GetSummary(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(models.GlobalStatusDispute, summary.GlobalStatus)
	s.Equal(string(period.StatusOpen), summary.PeriodStatus)
	s.Len(summary.Approvals, 2)

	byPub, err := s.service.GetSummaryByPublication(s.ctx, "pub-1")
	s.Require().NoError(err)
	s.Equal(summary.ID, byPub.ID)

	_, err = s.service.GetSummary(s.ctx, id.NewCandidateID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Period lookup failure propagation (mocked lookup)
// =============================================================================

func TestPeriodLookupFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockPeriodLookup(ctrl)

	store := candidatestore.NewInMemory()
	svc, err := New(store, lookup)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	ctx := requestcontext.WithTime(context.Background(), testNow)
	req := models.UpsertRequest{
		PublicationID: "pub-err",
		Applicable:    true,
		InstanceType:  "AcademicArticle",
		Channel:       models.Channel{ID: "channel-1", Level: "1"},
		ReportingYear: 2026,
		Creators: []models.Creator{
			{ID: "creator-1", Affiliations: []models.CreatorAffiliation{{InstitutionID: instA}}},
		},
		InstitutionPoints: []models.InstitutionPoints{{InstitutionID: instA, Points: dec("1.00")}},
	}
	c, err := svc.Upsert(ctx, req)
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	lookupErr := dErrors.New(dErrors.CodeInternal, "period backend down")
	lookup.EXPECT().CanMutateApprovals(gomock.Any(), 2026).Return(false, lookupErr)

	_, err = svc.UpdateApprovalStatus(ctx, c.ID, instA, models.ApprovalStatusApproved, "alice", "")
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error from period lookup, got %v", err)
	}

	lookup.EXPECT().StatusFor(gomock.Any(), 2026).Return(period.StatusOpen, nil)
	summary, err := svc.GetSummary(ctx, c.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.PeriodStatus != string(period.StatusOpen) {
		t.Fatalf("expected open period status, got %s", summary.PeriodStatus)
	}
}
