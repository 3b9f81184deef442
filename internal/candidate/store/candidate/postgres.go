package candidate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"pubcred/internal/candidate/models"
	id "pubcred/pkg/domain"
	"pubcred/pkg/platform/sentinel"
)

// PostgresStore persists candidates in PostgreSQL. The aggregate is stored as
// a single JSONB document with the identity, the unique publication reference
// and the version counter broken out into indexed columns; the conditional
// write on version is what serializes concurrent writers.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed candidate store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema for the candidates table. Applied by migrations in deployment; tests
// apply it directly.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS candidates (
    id              UUID PRIMARY KEY,
    publication_id  TEXT NOT NULL UNIQUE,
    version         BIGINT NOT NULL,
    document        JSONB NOT NULL
);
`

const uniqueViolation = "23505"

func (s *PostgresStore) FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	return s.findWhere(ctx, `SELECT document FROM candidates WHERE id = $1`, candidateID.String())
}

func (s *PostgresStore) FindByPublicationID(ctx context.Context, publicationID id.PublicationID) (*models.Candidate, error) {
	return s.findWhere(ctx, `SELECT document FROM candidates WHERE publication_id = $1`, publicationID.String())
}

func (s *PostgresStore) findWhere(ctx context.Context, query string, arg any) (*models.Candidate, error) {
	var document []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	var c models.Candidate
	if err := json.Unmarshal(document, &c); err != nil {
		return nil, fmt.Errorf("decode candidate document: %w", err)
	}
	return &c, nil
}

// Save writes the candidate conditional on expectedVersion. Creation
// (expectedVersion 0) relies on the primary key and the unique publication
// reference; updates rely on the version column. Zero affected rows means a
// concurrent writer won.
func (s *PostgresStore) Save(ctx context.Context, candidate *models.Candidate, expectedVersion int64) (*models.Candidate, error) {
	stored := candidate.Clone()
	stored.Version = expectedVersion + 1

	document, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode candidate document: %w", err)
	}

	if expectedVersion == 0 {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO candidates (id, publication_id, version, document)
			 VALUES ($1, $2, $3, $4)`,
			stored.ID.String(), stored.PublicationID.String(), stored.Version, document,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return nil, sentinel.ErrVersionConflict
			}
			return nil, fmt.Errorf("insert candidate: %w", err)
		}
		return stored, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates
		 SET version = $1, document = $2
		 WHERE id = $3 AND version = $4`,
		stored.Version, document, stored.ID.String(), expectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}
	if affected == 0 {
		// Distinguish a lost race from a missing row.
		if _, findErr := s.FindByID(ctx, stored.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, sentinel.ErrVersionConflict
	}
	return stored, nil
}
