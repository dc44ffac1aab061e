package source

import (
	"context"
	"database/sql"
	"fmt"

	duckdbstore "github.com/de-tools/activereport/pkg/store/duckdb"
	_ "github.com/databricks/databricks-sql-go"
	_ "github.com/snowflakedb/gosnowflake"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite     = "sqlite"
	DriverDuckDB     = "duckdb"
	DriverDatabricks = "databricks"
	DriverSnowflake  = "snowflake"
)

// Open connects to the data source of p and verifies the connection.
func Open(ctx context.Context, p Profile) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch p.Driver {
	case DriverDuckDB:
		db, err = duckdbstore.NewDB(duckdbstore.Settings{DbPath: p.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to create duckdb connector for %s: %w", p.Name, err)
		}
	case DriverSQLite, DriverDatabricks, DriverSnowflake:
		db, err = sql.Open(p.Driver, p.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s source %s: %w", p.Driver, p.Name, err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q for source %s", p.Driver, p.Name)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach source %s: %w", p.Name, err)
	}
	return db, nil
}
