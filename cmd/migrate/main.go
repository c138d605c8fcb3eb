// Package main provides the migration CLI for the catalog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/readcircle/book-recommendation-service/internal/config"
	"github.com/readcircle/book-recommendation-service/internal/database"
	"github.com/readcircle/book-recommendation-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	up := flag.Bool("up", false, "Apply all pending migrations")
	down := flag.Bool("down", false, "Roll back all migrations (drops the catalog schema)")
	steps := flag.Int("steps", 0, "Apply N migration steps (negative rolls back)")
	version := flag.Bool("version", false, "Print the current schema version")
	force := flag.Int("force", -1, "Force the schema version after a failed migration")
	dir := flag.String("path", "", "Override the migrations directory")
	flag.Parse()

	// Exactly one action per invocation.
	actions := 0
	for _, selected := range []bool{*up, *down, *steps != 0, *version, *force >= 0} {
		if selected {
			actions++
		}
	}
	switch {
	case actions == 0:
		flag.Usage()
		fmt.Fprintln(os.Stderr, "\nSpecify one of: -up, -down, -steps N, -version, -force V")
		return fmt.Errorf("no action specified")
	case actions > 1:
		return fmt.Errorf("specify only one action at a time")
	}

	// Database settings come from the same env/config surface as the server.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	logger = logger.With().Str("component", "migrate").Logger()

	migrationDir := cfg.Database.MigrationPath
	if *dir != "" {
		migrationDir = *dir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, migrationDir, logger)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close migrator")
		}
	}()

	switch {
	case *up:
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case *down:
		if err := migrator.Down(); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case *steps != 0:
		if err := migrator.Steps(*steps); err != nil {
			return fmt.Errorf("migrate steps: %w", err)
		}
	case *force >= 0:
		if err := migrator.Force(*force); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
	}

	printVersion(migrator, logger)
	return nil
}

// printVersion logs the current schema version.
func printVersion(migrator *database.Migrator, logger zerolog.Logger) {
	v, dirty, err := migrator.Version()
	if err != nil {
		logger.Warn().Err(err).Msg("could not determine schema version")
		return
	}
	logger.Info().
		Uint("version", v).
		Bool("dirty", dirty).
		Msg("current schema version")
}
