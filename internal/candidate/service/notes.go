package service

import (
	"context"
	"strings"

	"pubcred/internal/candidate/events"
	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	dErrors "pubcred/pkg/domain-errors"
	"pubcred/pkg/requestcontext"
)

// CreateNote appends a note to a candidate. If the note is tied to an
// institution whose approval has no assignee yet, the author claims that
// approval: writing the first note is how a curator picks up the work.
//
// Notes are not period-gated; curators annotate candidates year-round.
func (s *Service) CreateNote(
	ctx context.Context,
	candidateID id.CandidateID,
	text, username string,
	institutionID id.InstitutionID,
) (*models.Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "note text is required")
	}
	if strings.TrimSpace(username) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "note author is required")
	}

	now := requestcontext.Now(ctx)

	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		c, err := s.store.FindByID(ctx, candidateID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		c.AddNote(models.NewNote(username, text, institutionID, now))
		return s.store.Save(ctx, c, c.Version)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementNotesCreated()
	s.publish(ctx, saved, events.KindNoteAdded)
	return saved, nil
}

// DeleteNote removes exactly one note. Only its author may delete it.
func (s *Service) DeleteNote(
	ctx context.Context,
	candidateID id.CandidateID,
	noteID id.NoteID,
	username string,
) (*models.Candidate, error) {
	if strings.TrimSpace(username) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username is required")
	}

	saved, err := s.runWithRetry(ctx, func(ctx context.Context) (*models.Candidate, error) {
		c, err := s.store.FindByID(ctx, candidateID)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		if err := c.RemoveNote(noteID, username); err != nil {
			return nil, err
		}
		return s.store.Save(ctx, c, c.Version)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementNotesDeleted()
	s.publish(ctx, saved, events.KindNoteRemoved)
	return saved, nil
}
