package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "pubcred/pkg/domain"
)

// Summary is the read projection served to downstream collaborators (search
// indexing, reporting, HTTP). It exposes resolved state only: global status
// is computed at read time and the reset-diff mechanics stay internal.
type Summary struct {
	ID            id.CandidateID   `json:"id"`
	PublicationID id.PublicationID `json:"publication_id"`
	Applicable    bool             `json:"applicable"`
	InstanceType  InstanceType     `json:"instance_type,omitempty"`
	Channel       Channel          `json:"channel"`
	ReportingYear int              `json:"reporting_year,omitempty"`
	// PeriodStatus is the reporting window state for the candidate's year,
	// resolved by the service at read time.
	PeriodStatus string `json:"period_status"`

	GlobalStatus GlobalApprovalStatus `json:"global_status"`
	Approvals    []ApprovalSummary    `json:"approvals"`

	TotalPoints       decimal.Decimal     `json:"total_points"`
	InstitutionPoints []InstitutionPoints `json:"institution_points,omitempty"`

	Notes []Note `json:"notes,omitempty"`

	ReportStatus ReportStatus `json:"report_status"`
	Version      int64        `json:"version"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ApprovalSummary is one institution's approval in the read projection.
type ApprovalSummary struct {
	InstitutionID         id.InstitutionID    `json:"institution_id"`
	Status                ApprovalStatus      `json:"status"`
	Assignee              string              `json:"assignee,omitempty"`
	FinalizedBy           string              `json:"finalized_by,omitempty"`
	FinalizedDate         *time.Time          `json:"finalized_date,omitempty"`
	Reason                string              `json:"reason,omitempty"`
	Points                decimal.Decimal     `json:"points"`
	InvolvedOrganizations []id.OrganizationID `json:"involved_organizations,omitempty"`
}

// ToSummary builds the read projection. periodStatus is resolved by the
// caller from the period lookup.
func (c *Candidate) ToSummary(periodStatus string) Summary {
	points := pointsByInstitution(c.InstitutionPoints)
	approvals := make([]ApprovalSummary, 0, len(c.Approvals))
	for _, p := range c.InstitutionPoints {
		a, ok := c.Approvals[p.InstitutionID]
		if !ok {
			continue
		}
		approvals = append(approvals, ApprovalSummary{
			InstitutionID:         a.InstitutionID,
			Status:                a.Status,
			Assignee:              a.Assignee,
			FinalizedBy:           a.FinalizedBy,
			FinalizedDate:         a.FinalizedDate,
			Reason:                a.Reason,
			Points:                points[a.InstitutionID].Points,
			InvolvedOrganizations: a.InvolvedOrganizations,
		})
	}
	return Summary{
		ID:                c.ID,
		PublicationID:     c.PublicationID,
		Applicable:        c.Applicable,
		InstanceType:      c.InstanceType,
		Channel:           c.Channel,
		ReportingYear:     c.ReportingYear,
		PeriodStatus:      periodStatus,
		GlobalStatus:      c.GlobalStatus(),
		Approvals:         approvals,
		TotalPoints:       c.TotalPoints,
		InstitutionPoints: c.InstitutionPoints,
		Notes:             c.Notes,
		ReportStatus:      c.ReportStatus,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
