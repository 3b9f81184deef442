package models

import (
	"github.com/shopspring/decimal"

	id "pubcred/pkg/domain"
)

// CreatorAffiliationPoints is one creator's contribution through one
// affiliation, as computed by the upstream evaluation pipeline.
type CreatorAffiliationPoints struct {
	CreatorID      id.CreatorID      `json:"creator_id"`
	OrganizationID id.OrganizationID `json:"organization_id"`
	Points         decimal.Decimal   `json:"points"`
}

// InstitutionPoints is one institution's total contribution for a candidate,
// with the per-creator-affiliation breakdown it was computed from.
//
// Point values are opaque to this service: they arrive computed and are only
// stored, compared and aggregated. Comparison is on numeric value, never on
// decimal scale (1.50 == 1.5000).
type InstitutionPoints struct {
	InstitutionID id.InstitutionID           `json:"institution_id"`
	Points        decimal.Decimal            `json:"points"`
	CreatorPoints []CreatorAffiliationPoints `json:"creator_points,omitempty"`
}

// Equal reports value equality of the institution total. The per-creator
// breakdown is display data and does not participate: a breakdown reshuffle
// that leaves the institution total unchanged is not an approval-affecting
// change.
func (p InstitutionPoints) Equal(other InstitutionPoints) bool {
	return p.InstitutionID == other.InstitutionID && p.Points.Equal(other.Points)
}

// pointsByInstitution indexes a points list for diffing.
func pointsByInstitution(points []InstitutionPoints) map[id.InstitutionID]InstitutionPoints {
	m := make(map[id.InstitutionID]InstitutionPoints, len(points))
	for _, p := range points {
		m[p.InstitutionID] = p
	}
	return m
}
