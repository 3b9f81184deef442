package models

import (
	"strings"
	"time"

	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
)

// ApprovalStatus is one institution's decision state on a candidate.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// Finalized reports whether s is a decided state.
func (s ApprovalStatus) Finalized() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// GlobalApprovalStatus is the cross-institution aggregate of all approvals on
// a candidate. Derived on read, never persisted.
type GlobalApprovalStatus string

const (
	GlobalStatusPending  GlobalApprovalStatus = "pending"
	GlobalStatusApproved GlobalApprovalStatus = "approved"
	GlobalStatusRejected GlobalApprovalStatus = "rejected"
	GlobalStatusDispute  GlobalApprovalStatus = "dispute"
)

// Approval is one institution's decision on a candidate.
//
// Invariants:
//   - Reason is present iff Status is rejected
//   - FinalizedBy/FinalizedDate are present iff Status is approved or rejected
//   - Assignee survives resets; it is cleared only when the Approval itself is
//     destroyed (institution loses its contribution)
//
// An approval is only "final" relative to the candidate snapshot it was made
// against: any approval-affecting upsert forces it back to pending.
type Approval struct {
	InstitutionID id.InstitutionID `json:"institution_id"`
	Status        ApprovalStatus   `json:"status"`
	Assignee      string           `json:"assignee,omitempty"`
	FinalizedBy   string           `json:"finalized_by,omitempty"`
	FinalizedDate *time.Time       `json:"finalized_date,omitempty"`
	Reason        string           `json:"reason,omitempty"`

	// InvolvedOrganizations lists the institution's sub-units with at least
	// one contributing creator. Recomputed on every upsert.
	InvolvedOrganizations []id.OrganizationID `json:"involved_organizations,omitempty"`
}

// NewApproval creates a pending approval for an institution.
func NewApproval(institutionID id.InstitutionID, involvedOrgs []id.OrganizationID) *Approval {
	return &Approval{
		InstitutionID:         institutionID,
		Status:                ApprovalStatusPending,
		InvolvedOrganizations: involvedOrgs,
	}
}

// CanUpdateStatus validates a requested status transition. Any target status
// is a legal transition (including re-affirming the current one); only the
// attribution and reason requirements can fail it.
func (a *Approval) CanUpdateStatus(status ApprovalStatus, username, reason string) error {
	if !status.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown approval status %q", status)
	}
	if strings.TrimSpace(username) == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required for approval status changes")
	}
	if status == ApprovalStatusRejected && strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection requires a reason")
	}
	return nil
}

// ApplyStatus transitions the approval. Call CanUpdateStatus first.
//
// Transitions to pending clear reason and finalization but keep the assignee.
// Transitions to approved/rejected stamp finalization; the reason is kept only
// on rejection.
func (a *Approval) ApplyStatus(status ApprovalStatus, username, reason string, now time.Time) {
	a.Status = status
	switch status {
	case ApprovalStatusPending:
		a.Reason = ""
		a.FinalizedBy = ""
		a.FinalizedDate = nil
	case ApprovalStatusApproved:
		a.Reason = ""
		a.FinalizedBy = username
		a.FinalizedDate = &now
	case ApprovalStatusRejected:
		a.Reason = reason
		a.FinalizedBy = username
		a.FinalizedDate = &now
	}
}

// ApplyReset forces the approval back to pending after an approval-affecting
// change, clearing the decision but keeping the assignee: an assignee is not
// forgotten merely because points were recalculated.
func (a *Approval) ApplyReset(involvedOrgs []id.OrganizationID) {
	a.Status = ApprovalStatusPending
	a.Reason = ""
	a.FinalizedBy = ""
	a.FinalizedDate = nil
	a.InvolvedOrganizations = involvedOrgs
}

// ApplySetAssignee assigns a curator. Explicit assignment always wins.
func (a *Approval) ApplySetAssignee(username string) {
	a.Assignee = username
}

// clone returns a deep copy.
func (a *Approval) clone() *Approval {
	cp := *a
	if a.FinalizedDate != nil {
		d := *a.FinalizedDate
		cp.FinalizedDate = &d
	}
	cp.InvolvedOrganizations = append([]id.OrganizationID(nil), a.InvolvedOrganizations...)
	return &cp
}
