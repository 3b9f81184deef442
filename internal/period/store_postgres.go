package period

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pubcred/pkg/platform/sentinel"
)

// PostgresStore persists periods in PostgreSQL, one row per year.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed period store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema for the periods table. Applied by migrations in deployment; tests
// apply it directly.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS periods (
    year            INTEGER PRIMARY KEY,
    start_date      TIMESTAMPTZ NOT NULL,
    reporting_date  TIMESTAMPTZ NOT NULL
);
`

func (s *PostgresStore) FindByYear(ctx context.Context, year int) (*Period, error) {
	var p Period
	err := s.db.QueryRowContext(ctx,
		`SELECT year, start_date, reporting_date FROM periods WHERE year = $1`,
		year,
	).Scan(&p.Year, &p.StartDate, &p.ReportingDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find period: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Period) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO periods (year, start_date, reporting_date)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (year) DO UPDATE
		 SET start_date = EXCLUDED.start_date, reporting_date = EXCLUDED.reporting_date`,
		p.Year, p.StartDate, p.ReportingDate,
	)
	if err != nil {
		return fmt.Errorf("save period: %w", err)
	}
	return nil
}
