package models

import (
	"time"

	id "pubcred/pkg/domain"
)

// Note is an append-only annotation on a candidate. Notes are never edited,
// only appended or removed by their author.
type Note struct {
	ID        id.NoteID `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// InstitutionID associates the note with one institution's approval work.
	// Optional; empty means the note concerns the candidate as a whole.
	InstitutionID id.InstitutionID `json:"institution_id,omitempty"`
}

// NewNote creates a note.
func NewNote(author, text string, institutionID id.InstitutionID, now time.Time) Note {
	return Note{
		ID:            id.NewNoteID(),
		Author:        author,
		Text:          text,
		CreatedAt:     now,
		InstitutionID: institutionID,
	}
}
