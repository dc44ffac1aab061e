package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/activereport/pkg/config"
	"github.com/de-tools/activereport/pkg/reports/jobs"
	"github.com/de-tools/activereport/pkg/services/registry"
	"github.com/de-tools/activereport/pkg/store/source"
	jobstore "github.com/de-tools/activereport/pkg/store/jobs"
	"github.com/rs/zerolog"
)

// Load opens the configured data source and registers every report built on
// top of it. The caller owns the returned connection.
func Load(ctx context.Context, cfg config.SourcesConfig) (registry.Registry, *sql.DB, error) {
	logger := zerolog.Ctx(ctx)

	profiles, err := source.NewRegistry(cfg.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sources from %s: %w", cfg.File, err)
	}

	profile, err := profiles.GetProfile(ctx, cfg.Default)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve source %s: %w", cfg.Default, err)
	}

	db, err := source.Open(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	// DuckDB files boot their own schema; warehouses are read-only.
	if profile.Driver == source.DriverSQLite {
		if err := jobstore.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	store, err := jobstore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	reg, err := registry.NewRegistry(jobs.Definitions(store))
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to register reports: %w", err)
	}

	logger.Info().
		Str("source", profile.Name).
		Str("driver", profile.Driver).
		Strs("reports", reg.ListResources()).
		Msg("reports loaded")

	return reg, db, nil
}
