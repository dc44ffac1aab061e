package duckdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	jobstore "github.com/de-tools/activereport/pkg/store/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsJobsTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reports.db")

	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	created := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	_, err = db.ExecContext(ctx,
		`INSERT INTO jobs (id, job_number, company, stage, amount, currency, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		1, "123456", "Apple Inc.", "open", 10.0, "USD", created,
	)
	require.NoError(t, err)

	store, err := jobstore.NewStore(db)
	require.NoError(t, err)

	jobs, err := store.FindByJobNumber(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Apple Inc.", jobs[0].Company)
	assert.True(t, created.Equal(jobs[0].CreatedAt))
}
