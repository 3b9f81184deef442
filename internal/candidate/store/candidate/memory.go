// Package candidate provides candidate persistence: an in-memory store for
// tests and development, and a PostgreSQL store for deployment. Both enforce
// the same contract: conditional writes on a version counter, and a unique
// publication reference per candidate.
package candidate

import (
	"context"
	"sync"

	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	"pubcred/pkg/platform/sentinel"
)

// InMemory keeps candidates in maps guarded by a RWMutex. Candidates are
// deep-copied on the way in and out so callers can never mutate persisted
// state without going through Save.
type InMemory struct {
	mu            sync.RWMutex
	byID          map[id.CandidateID]*models.Candidate
	byPublication map[id.PublicationID]id.CandidateID
}

// NewInMemory creates an empty in-memory candidate store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:          make(map[id.CandidateID]*models.Candidate),
		byPublication: make(map[id.PublicationID]id.CandidateID),
	}
}

func (s *InMemory) FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[candidateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemory) FindByPublicationID(ctx context.Context, publicationID id.PublicationID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidateID, ok := s.byPublication[publicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[candidateID].Clone(), nil
}

// Save writes the candidate conditional on expectedVersion matching the
// persisted version. expectedVersion 0 means creation; creating over an
// existing candidate (or an existing publication reference) is a conflict.
func (s *InMemory) Save(ctx context.Context, candidate *models.Candidate, expectedVersion int64) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.byID[candidate.ID]

	if expectedVersion == 0 {
		if exists {
			return nil, sentinel.ErrVersionConflict
		}
		if _, taken := s.byPublication[candidate.PublicationID]; taken {
			return nil, sentinel.ErrVersionConflict
		}
	} else {
		if !exists {
			return nil, sentinel.ErrNotFound
		}
		if existing.Version != expectedVersion {
			return nil, sentinel.ErrVersionConflict
		}
	}

	stored := candidate.Clone()
	stored.Version = expectedVersion + 1
	s.byID[stored.ID] = stored
	s.byPublication[stored.PublicationID] = stored.ID
	return stored.Clone(), nil
}
