package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/de-tools/activereport/pkg/config"
	"github.com/de-tools/activereport/pkg/reports"
	"github.com/de-tools/activereport/pkg/runtime/terminal"
	"github.com/de-tools/activereport/pkg/services/registry"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var db *sql.DB
	load := func(ctx context.Context) (registry.Registry, error) {
		cfg, err := config.Load(os.Getenv("ACTIVEREPORT_CONFIG"))
		if err != nil {
			return nil, err
		}
		if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
			logger = logger.Level(level)
		}

		reg, conn, err := reports.Load(logger.WithContext(ctx), cfg.Sources)
		if err != nil {
			return nil, err
		}
		db = conn
		return reg, nil
	}

	cli := terminal.NewCLI(terminal.Options{
		Registry: load,
		Output:   os.Stdout,
	})

	err := cli.ExecuteContext(logger.WithContext(context.Background()))
	if db != nil {
		_ = db.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
