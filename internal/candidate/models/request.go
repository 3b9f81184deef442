package models

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
)

// InstanceType categorizes a publication. The evaluation pipeline sends
// InstanceTypeNonCandidate for publications it has ruled out of scope; every
// other value names an in-scope publication category (journal article,
// monograph chapter, ...) that this service treats as opaque.
type InstanceType string

// InstanceTypeNonCandidate marks a publication out of scope for funding.
const InstanceTypeNonCandidate InstanceType = "NonCandidate"

// Channel is the publication venue (journal, series, publisher) with its
// scientific level.
type Channel struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Level string `json:"level,omitempty"`
}

// Creator is a verified contributing author with affiliations resolved to
// institutions and their sub-units.
type Creator struct {
	ID           id.CreatorID         `json:"id"`
	Affiliations []CreatorAffiliation `json:"affiliations,omitempty"`
}

// CreatorAffiliation ties a creator to one sub-unit of one institution.
type CreatorAffiliation struct {
	InstitutionID  id.InstitutionID  `json:"institution_id"`
	OrganizationID id.OrganizationID `json:"organization_id,omitempty"`
}

// PublicationDetails is display metadata carried on the candidate. None of it
// participates in the approval-affecting diff.
type PublicationDetails struct {
	Title              string   `json:"title,omitempty"`
	Abstract           string   `json:"abstract,omitempty"`
	PublicationDate    string   `json:"publication_date,omitempty"`
	PageCount          int      `json:"page_count,omitempty"`
	CreatorShareCount  int      `json:"creator_share_count,omitempty"`
	UnverifiedCreators []string `json:"unverified_creators,omitempty"`
}

// UpsertRequest is one upstream evaluation result for a publication: either a
// scored candidate (Applicable true) or an explicit non-candidate. It is a
// plain immutable value; Validate enforces the required-field and
// mutual-exclusion rules before the engine touches any state.
type UpsertRequest struct {
	PublicationID      id.PublicationID
	PublicationBlobURI string

	Applicable   bool
	InstanceType InstanceType
	Channel      Channel

	ReportingYear int
	Details       PublicationDetails

	Creators []Creator

	TotalPoints         decimal.Decimal
	BasePoints          decimal.Decimal
	CollaborationFactor decimal.Decimal
	InstitutionPoints   []InstitutionPoints
}

// Validate checks the request against the candidate-state rules.
//
// Applicability and instance type are mutually exclusive signals: an
// applicable request must carry a real instance type, and a NonCandidate
// instance type must not claim applicability.
func (r UpsertRequest) Validate() error {
	if r.PublicationID.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "publication id is required")
	}
	if r.Applicable && (r.InstanceType == "" || r.InstanceType == InstanceTypeNonCandidate) {
		return dErrors.New(dErrors.CodeInvalidCandidateState,
			"applicable candidate cannot carry a non-candidate instance type")
	}
	if !r.Applicable && r.InstanceType != "" && r.InstanceType != InstanceTypeNonCandidate {
		return dErrors.New(dErrors.CodeInvalidCandidateState,
			"non-applicable candidate cannot carry a candidate instance type")
	}
	if r.Applicable {
		if strings.TrimSpace(r.Channel.ID) == "" {
			return dErrors.New(dErrors.CodeValidation, "applicable candidate requires a channel")
		}
		if r.ReportingYear == 0 {
			return dErrors.New(dErrors.CodeValidation, "applicable candidate requires a reporting year")
		}
		if len(r.contributingPoints()) == 0 {
			return dErrors.New(dErrors.CodeValidation,
				"applicable candidate requires at least one institution with points")
		}
	}
	return nil
}

// contributingPoints filters out zero-value entries: an institution with zero
// points has no contribution and therefore no approval.
func (r UpsertRequest) contributingPoints() []InstitutionPoints {
	points := make([]InstitutionPoints, 0, len(r.InstitutionPoints))
	for _, p := range r.InstitutionPoints {
		if !p.Points.IsZero() {
			points = append(points, p)
		}
	}
	return points
}

// creatorInstitutions builds the verified creator→institution mapping used in
// the approval-affecting diff. Deterministic: institutions are deduplicated
// per creator and order-insensitive comparison is done via set semantics.
func creatorInstitutions(creators []Creator) map[id.CreatorID]map[id.InstitutionID]struct{} {
	m := make(map[id.CreatorID]map[id.InstitutionID]struct{}, len(creators))
	for _, c := range creators {
		insts, ok := m[c.ID]
		if !ok {
			insts = make(map[id.InstitutionID]struct{})
			m[c.ID] = insts
		}
		for _, aff := range c.Affiliations {
			insts[aff.InstitutionID] = struct{}{}
		}
	}
	return m
}

// involvedOrganizations collects, per institution, the sub-units with at least
// one contributing creator.
func involvedOrganizations(creators []Creator) map[id.InstitutionID][]id.OrganizationID {
	seen := make(map[id.InstitutionID]map[id.OrganizationID]struct{})
	for _, c := range creators {
		for _, aff := range c.Affiliations {
			if aff.OrganizationID == "" {
				continue
			}
			orgs, ok := seen[aff.InstitutionID]
			if !ok {
				orgs = make(map[id.OrganizationID]struct{})
				seen[aff.InstitutionID] = orgs
			}
			orgs[aff.OrganizationID] = struct{}{}
		}
	}
	out := make(map[id.InstitutionID][]id.OrganizationID, len(seen))
	for inst, orgs := range seen {
		list := make([]id.OrganizationID, 0, len(orgs))
		for org := range orgs {
			list = append(list, org)
		}
		slices.Sort(list)
		out[inst] = list
	}
	return out
}
