package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	jobstore "github.com/de-tools/activereport/pkg/store/jobs"
	"github.com/marcboeker/go-duckdb/v2"
)

const defaultThreads = 4

var bootQueries = []string{
	jobstore.JobsTableSchema,
}

type Settings struct {
	DbPath  string
	Threads int
}

// NewDB opens a local DuckDB file and makes sure the report tables exist on
// every new connection.
func NewDB(settings Settings) (*sql.DB, error) {
	threads := settings.Threads
	if threads <= 0 {
		threads = defaultThreads
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=%d", settings.DbPath, threads), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
