package handler

import (
	"github.com/shopspring/decimal"

	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
)

// upsertRequest is the wire shape of an upstream evaluation result.
type upsertRequest struct {
	PublicationID      string `json:"publication_id"`
	PublicationBlobURI string `json:"publication_blob_uri,omitempty"`

	Applicable   bool           `json:"applicable"`
	InstanceType string         `json:"instance_type,omitempty"`
	Channel      models.Channel `json:"channel"`

	ReportingYear int                       `json:"reporting_year,omitempty"`
	Details       models.PublicationDetails `json:"details"`
	Creators      []models.Creator          `json:"creators,omitempty"`

	TotalPoints         decimal.Decimal            `json:"total_points"`
	BasePoints          decimal.Decimal            `json:"base_points"`
	CollaborationFactor decimal.Decimal            `json:"collaboration_factor"`
	InstitutionPoints   []models.InstitutionPoints `json:"institution_points,omitempty"`
}

func (r upsertRequest) toModel() models.UpsertRequest {
	return models.UpsertRequest{
		PublicationID:       id.PublicationID(r.PublicationID),
		PublicationBlobURI:  r.PublicationBlobURI,
		Applicable:          r.Applicable,
		InstanceType:        models.InstanceType(r.InstanceType),
		Channel:             r.Channel,
		ReportingYear:       r.ReportingYear,
		Details:             r.Details,
		Creators:            r.Creators,
		TotalPoints:         r.TotalPoints,
		BasePoints:          r.BasePoints,
		CollaborationFactor: r.CollaborationFactor,
		InstitutionPoints:   r.InstitutionPoints,
	}
}

type nonCandidateRequest struct {
	PublicationID string `json:"publication_id"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type updateAssigneeRequest struct {
	Assignee string `json:"assignee"`
}

type createNoteRequest struct {
	Text          string `json:"text"`
	InstitutionID string `json:"institution_id,omitempty"`
}
