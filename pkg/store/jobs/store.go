package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/activereport/pkg/models/store"
	"github.com/rs/zerolog"
)

const JobsTableSchema = `
	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY,
		job_number VARCHAR NOT NULL,
		company VARCHAR NOT NULL,
		stage VARCHAR NOT NULL,
		amount DOUBLE NOT NULL DEFAULT 0,
		currency VARCHAR NOT NULL DEFAULT 'USD',
		created_at TIMESTAMP NOT NULL
	);
`

// Store reads jobs for report build routines. It never writes.
type Store interface {
	FindByJobNumber(ctx context.Context, jobNumber string) ([]store.Job, error)
	FindCreatedBetween(ctx context.Context, from, to time.Time, stage string) ([]store.Job, error)
	TotalsByStage(ctx context.Context, from, to time.Time) ([]store.JobStageTotal, error)
}

type jobStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &jobStore{db: db}, nil
}

// EnsureSchema creates the jobs table when it is missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, JobsTableSchema); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}

func (s *jobStore) FindByJobNumber(ctx context.Context, jobNumber string) ([]store.Job, error) {
	query := `
		SELECT id, job_number, company, stage, amount, currency, created_at
		FROM jobs
		WHERE job_number = ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, jobNumber)
	if err != nil {
		return nil, fmt.Errorf("jobs by number query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	return scanJobs(rows)
}

func (s *jobStore) FindCreatedBetween(ctx context.Context, from, to time.Time, stage string) ([]store.Job, error) {
	query := `
		SELECT id, job_number, company, stage, amount, currency, created_at
		FROM jobs
		WHERE created_at >= ? AND created_at < ?`
	args := []interface{}{from, to}
	if stage != "" {
		query += ` AND stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("jobs by period query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	return scanJobs(rows)
}

func (s *jobStore) TotalsByStage(ctx context.Context, from, to time.Time) ([]store.JobStageTotal, error) {
	query := `
		SELECT stage, COUNT(*) AS jobs, SUM(amount) AS amount
		FROM jobs
		WHERE created_at >= ? AND created_at < ?
		GROUP BY stage
		ORDER BY stage`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("job totals query failed: %w", err)
	}
	defer closeRows(ctx, rows)

	var totals []store.JobStageTotal
	for rows.Next() {
		var t store.JobStageTotal
		if err := rows.Scan(&t.Stage, &t.Count, &t.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func scanJobs(rows *sql.Rows) ([]store.Job, error) {
	var jobs []store.Job
	for rows.Next() {
		var j store.Job
		if err := rows.Scan(&j.ID, &j.JobNumber, &j.Company, &j.Stage, &j.Amount, &j.Currency, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close jobs query rows")
	}
}
