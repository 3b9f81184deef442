package domain

import (
	"github.com/google/uuid"

	dErrors "pubcred/pkg/domain-errors"
)

// Typed identifiers for the candidate domain. UUID-backed IDs are distinct
// types so a CandidateID can never be passed where a NoteID is expected;
// the compiler enforces what the storage layer cannot.
type (
	// CandidateID identifies a funding candidate. Stable across upserts.
	CandidateID uuid.UUID

	// NoteID identifies a single note on a candidate.
	NoteID uuid.UUID
)

// String-backed identifiers come from upstream registries and are opaque here.
type (
	// PublicationID is the upstream publication reference. One-to-one with a
	// candidate.
	PublicationID string

	// InstitutionID identifies a top-level institution with creators on a
	// publication.
	InstitutionID string

	// OrganizationID identifies a sub-unit of an institution.
	OrganizationID string

	// CreatorID identifies a contributing creator (author).
	CreatorID string
)

// NewCandidateID generates a fresh candidate identifier.
func NewCandidateID() CandidateID {
	return CandidateID(uuid.New())
}

// NewNoteID generates a fresh note identifier.
func NewNoteID() NoteID {
	return NoteID(uuid.New())
}

// ParseCandidateID validates and converts a string into a CandidateID.
// IDs must be valid, non-nil UUIDs.
func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CandidateID{}, err
	}
	return CandidateID(u), nil
}

// ParseNoteID validates and converts a string into a NoteID.
func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return NoteID{}, err
	}
	return NoteID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id CandidateID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical UUID string, for JSON and
// storage documents.
func (id CandidateID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *CandidateID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = CandidateID(u)
	return nil
}

func (id NoteID) String() string { return uuid.UUID(id).String() }
func (id NoteID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id NoteID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *NoteID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = NoteID(u)
	return nil
}

func (id PublicationID) String() string { return string(id) }
func (id PublicationID) IsEmpty() bool  { return id == "" }

func (id InstitutionID) String() string { return string(id) }
func (id InstitutionID) IsEmpty() bool  { return id == "" }
