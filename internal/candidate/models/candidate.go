package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
)

// ReportStatus tracks whether a candidate has been included in a submitted
// institutional report. Reported candidates are frozen.
type ReportStatus string

const (
	ReportStatusUnreported ReportStatus = "unreported"
	ReportStatusReported   ReportStatus = "reported"
)

// Candidate is the aggregate root: one publication under evaluation for
// funding credit, with one Approval per contributing institution.
//
// Invariants:
//   - PublicationID is unique across candidates and stable for the lifetime
//     of the aggregate
//   - If Applicable is false, Approvals is empty
//   - When Applicable, the set of institutions with an Approval equals the
//     set of institutions with non-zero points
//   - A reported candidate rejects every upsert
//   - Version is incremented by the store on every successful save; all
//     writes are conditional on it
//
// Candidates are never physically deleted; retraction is modeled as an upsert
// with Applicable=false.
type Candidate struct {
	ID                 id.CandidateID   `json:"id"`
	PublicationID      id.PublicationID `json:"publication_id"`
	PublicationBlobURI string           `json:"publication_blob_uri,omitempty"`

	Applicable   bool         `json:"applicable"`
	InstanceType InstanceType `json:"instance_type,omitempty"`
	Channel      Channel      `json:"channel"`

	ReportingYear int                `json:"reporting_year,omitempty"`
	Details       PublicationDetails `json:"details"`
	Creators      []Creator          `json:"creators,omitempty"`

	TotalPoints         decimal.Decimal     `json:"total_points"`
	BasePoints          decimal.Decimal     `json:"base_points"`
	CollaborationFactor decimal.Decimal     `json:"collaboration_factor"`
	InstitutionPoints   []InstitutionPoints `json:"institution_points,omitempty"`

	Approvals map[id.InstitutionID]*Approval `json:"approvals,omitempty"`
	Notes     []Note                         `json:"notes,omitempty"`

	ReportStatus ReportStatus `json:"report_status"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertOutcome describes what an upsert did to the approval set, for metrics
// and event payloads.
type UpsertOutcome struct {
	Created   bool
	Preserved int
	Reset     int
	Removed   int
}

// NewCandidate creates a candidate from its first upsert. The request must
// already be validated.
func NewCandidate(candidateID id.CandidateID, req UpsertRequest, now time.Time) (*Candidate, UpsertOutcome) {
	c := &Candidate{
		ID:            candidateID,
		PublicationID: req.PublicationID,
		ReportStatus:  ReportStatusUnreported,
		CreatedAt:     now,
	}
	outcome := c.applyRequest(req, now)
	outcome.Created = true
	return c, outcome
}

// CanUpsert rejects updates to frozen candidates.
func (c *Candidate) CanUpsert() error {
	if c.ReportStatus == ReportStatusReported {
		return dErrors.New(dErrors.CodeIllegalUpdate, "reported candidate cannot be updated")
	}
	return nil
}

// ApplyUpsert merges an evaluation result into the candidate. Call CanUpsert
// first.
//
// The approval-affecting field set is: instance type, channel id, channel
// level, the verified creator→institution mapping, and each institution's
// point value (compared scale-insensitively). For each institution in the new
// points set:
//   - existing approval, no approval-affecting change: preserved untouched
//   - existing approval, any approval-affecting change: reset to pending,
//     assignee kept
//   - no existing approval: created pending
//
// Institutions absent from the new set lose their approval entirely. A
// non-applicable request clears all approvals unconditionally.
func (c *Candidate) ApplyUpsert(req UpsertRequest, now time.Time) UpsertOutcome {
	return c.applyRequest(req, now)
}

// ApplyNonCandidate marks the candidate out of scope, destroying all
// approvals. This is the soft-retraction path.
func (c *Candidate) ApplyNonCandidate(now time.Time) UpsertOutcome {
	outcome := UpsertOutcome{Removed: len(c.Approvals)}
	c.Applicable = false
	c.InstanceType = InstanceTypeNonCandidate
	c.Approvals = nil
	c.InstitutionPoints = nil
	c.TotalPoints = decimal.Zero
	c.BasePoints = decimal.Zero
	c.CollaborationFactor = decimal.Zero
	c.UpdatedAt = now
	return outcome
}

func (c *Candidate) applyRequest(req UpsertRequest, now time.Time) UpsertOutcome {
	if !req.Applicable {
		c.PublicationBlobURI = req.PublicationBlobURI
		c.Details = req.Details
		c.Creators = req.Creators
		if req.ReportingYear != 0 {
			c.ReportingYear = req.ReportingYear
		}
		return c.ApplyNonCandidate(now)
	}

	newPoints := req.contributingPoints()
	affectingChanged := c.approvalAffectingChanged(req)
	oldPoints := pointsByInstitution(c.InstitutionPoints)
	involvedOrgs := involvedOrganizations(req.Creators)

	var outcome UpsertOutcome
	approvals := make(map[id.InstitutionID]*Approval, len(newPoints))
	for _, p := range newPoints {
		existing := c.Approvals[p.InstitutionID]
		if existing == nil {
			approvals[p.InstitutionID] = NewApproval(p.InstitutionID, involvedOrgs[p.InstitutionID])
			outcome.Reset++
			continue
		}
		old, hadPoints := oldPoints[p.InstitutionID]
		if !affectingChanged && hadPoints && old.Points.Equal(p.Points) {
			existing.InvolvedOrganizations = involvedOrgs[p.InstitutionID]
			approvals[p.InstitutionID] = existing
			outcome.Preserved++
			continue
		}
		existing.ApplyReset(involvedOrgs[p.InstitutionID])
		approvals[p.InstitutionID] = existing
		outcome.Reset++
	}
	for inst := range c.Approvals {
		if _, kept := approvals[inst]; !kept {
			outcome.Removed++
		}
	}

	c.Applicable = true
	c.PublicationBlobURI = req.PublicationBlobURI
	c.InstanceType = req.InstanceType
	c.Channel = req.Channel
	c.ReportingYear = req.ReportingYear
	c.Details = req.Details
	c.Creators = req.Creators
	c.TotalPoints = req.TotalPoints
	c.BasePoints = req.BasePoints
	c.CollaborationFactor = req.CollaborationFactor
	c.InstitutionPoints = newPoints
	c.Approvals = approvals
	c.UpdatedAt = now
	return outcome
}

// approvalAffectingChanged diffs the incoming request against persisted state
// on the fields whose change invalidates existing decisions: instance type,
// channel identifier, channel level, and the verified creator→institution
// mapping. Per-institution point values are diffed separately so an unchanged
// institution keeps its approval even when a sibling's points moved.
func (c *Candidate) approvalAffectingChanged(req UpsertRequest) bool {
	if !c.Applicable {
		// A candidate coming back from non-applicable has no decisions worth
		// preserving; treat as a full diff.
		return true
	}
	if c.InstanceType != req.InstanceType {
		return true
	}
	if c.Channel.ID != req.Channel.ID || c.Channel.Level != req.Channel.Level {
		return true
	}
	return !creatorMappingEqual(creatorInstitutions(c.Creators), creatorInstitutions(req.Creators))
}

func creatorMappingEqual(a, b map[id.CreatorID]map[id.InstitutionID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for creator, aInsts := range a {
		bInsts, ok := b[creator]
		if !ok || len(aInsts) != len(bInsts) {
			return false
		}
		for inst := range aInsts {
			if _, ok := bInsts[inst]; !ok {
				return false
			}
		}
	}
	return true
}

// GlobalStatus derives the cross-institution approval status:
//   - all approved → approved
//   - all rejected → rejected
//   - approved and rejected both present → dispute
//   - otherwise → pending
//
// A candidate with no approvals (non-applicable) reads as pending.
func (c *Candidate) GlobalStatus() GlobalApprovalStatus {
	var approved, rejected, pending int
	for _, a := range c.Approvals {
		switch a.Status {
		case ApprovalStatusApproved:
			approved++
		case ApprovalStatusRejected:
			rejected++
		default:
			pending++
		}
	}
	switch {
	case approved > 0 && rejected > 0:
		return GlobalStatusDispute
	case pending > 0 || len(c.Approvals) == 0:
		return GlobalStatusPending
	case rejected > 0 && approved == 0:
		return GlobalStatusRejected
	default:
		return GlobalStatusApproved
	}
}

// Approval returns the approval for an institution, if any.
func (c *Candidate) Approval(institutionID id.InstitutionID) (*Approval, bool) {
	a, ok := c.Approvals[institutionID]
	return a, ok
}

// AddNote appends a note. Side effect: a note tied to an institution whose
// approval has no assignee claims that approval for the note's author.
func (c *Candidate) AddNote(note Note) {
	c.Notes = append(c.Notes, note)
	if note.InstitutionID == "" {
		return
	}
	if a, ok := c.Approvals[note.InstitutionID]; ok && a.Assignee == "" {
		a.Assignee = note.Author
	}
}

// RemoveNote deletes exactly one note by id. Only the author may delete.
func (c *Candidate) RemoveNote(noteID id.NoteID, username string) error {
	for i, n := range c.Notes {
		if n.ID != noteID {
			continue
		}
		if n.Author != username {
			return dErrors.New(dErrors.CodeUnauthorized, "only the author can delete a note")
		}
		c.Notes = append(c.Notes[:i], c.Notes[i+1:]...)
		return nil
	}
	return dErrors.New(dErrors.CodeNotFound, "note not found")
}

// Clone returns a deep copy, used by stores to keep persisted state isolated
// from caller mutation.
func (c *Candidate) Clone() *Candidate {
	cp := *c
	cp.Creators = make([]Creator, len(c.Creators))
	for i, cr := range c.Creators {
		cp.Creators[i] = Creator{
			ID:           cr.ID,
			Affiliations: append([]CreatorAffiliation(nil), cr.Affiliations...),
		}
	}
	cp.InstitutionPoints = make([]InstitutionPoints, len(c.InstitutionPoints))
	for i, p := range c.InstitutionPoints {
		p.CreatorPoints = append([]CreatorAffiliationPoints(nil), p.CreatorPoints...)
		cp.InstitutionPoints[i] = p
	}
	if c.Approvals != nil {
		cp.Approvals = make(map[id.InstitutionID]*Approval, len(c.Approvals))
		for inst, a := range c.Approvals {
			cp.Approvals[inst] = a.clone()
		}
	}
	cp.Notes = append([]Note(nil), c.Notes...)
	cp.Details.UnverifiedCreators = append([]string(nil), c.Details.UnverifiedCreators...)
	return &cp
}
