package jobs

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/activereport/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobColumns = []string{"id", "job_number", "company", "stage", "amount", "currency", "created_at"}

func TestFindByJobNumber(t *testing.T) {
	// Given
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs
		WHERE job_number = ?`)).
		WithArgs("123456").
		WillReturnRows(sqlmock.NewRows(jobColumns).
			AddRow(1, "123456", "Apple Inc.", "open", 100.0, "USD", created).
			AddRow(2, "123456", "37signals", "closed", 50.5, "USD", created))

	s, err := NewStore(db)
	require.NoError(t, err)

	// When
	jobs, err := s.FindByJobNumber(context.Background(), "123456")

	// Then
	require.NoError(t, err)
	assert.Equal(t, []store.Job{
		{ID: 1, JobNumber: "123456", Company: "Apple Inc.", Stage: "open", Amount: 100, Currency: "USD", CreatedAt: created},
		{ID: 2, JobNumber: "123456", Company: "37signals", Stage: "closed", Amount: 50.5, Currency: "USD", CreatedAt: created},
	}, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCreatedBetween(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		stage string
		args  []driver.Value
		query string
	}{
		{
			name:  "all stages",
			args:  []driver.Value{from, to},
			query: `WHERE created_at >= ? AND created_at < ? ORDER BY created_at, id`,
		},
		{
			name:  "single stage",
			stage: "open",
			args:  []driver.Value{from, to, "open"},
			query: `WHERE created_at >= ? AND created_at < ? AND stage = ? ORDER BY created_at, id`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(tt.query)).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(jobColumns).
					AddRow(3, "42", "Acme", "open", 10.0, "USD", from))

			s, err := NewStore(db)
			require.NoError(t, err)

			jobs, err := s.FindCreatedBetween(context.Background(), from, to, tt.stage)
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, "Acme", jobs[0].Company)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTotalsByStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY stage`)).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"stage", "jobs", "amount"}).
			AddRow("closed", 2, 80.0).
			AddRow("open", 1, 20.0))

	s, err := NewStore(db)
	require.NoError(t, err)

	totals, err := s.TotalsByStage(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []store.JobStageTotal{
		{Stage: "closed", Count: 2, Amount: 80},
		{Stage: "open", Count: 1, Amount: 20},
	}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryErrorIsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("warehouse offline")
	mock.ExpectQuery("FROM jobs").WillReturnError(boom)

	s, err := NewStore(db)
	require.NoError(t, err)

	_, err = s.FindByJobNumber(context.Background(), "1")
	assert.ErrorIs(t, err, boom)
}

func TestNewStore_NilDB(t *testing.T) {
	_, err := NewStore(nil)
	assert.EqualError(t, err, "database connection is nil")
}
