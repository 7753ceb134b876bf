// cmd/tools/dbmigrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mandrade85ma-cloud/site/internal/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		configPath     = flag.String("config", "", "Path to config.yaml; supplies the database file when -db is empty")
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "internal/db/migrations", "Path to migrations directory")
		command        = flag.String("command", "", "Command to run (up, down, version, force)")
		forceVersion   = flag.String("version", "", "Version to force when -command=force")
	)
	flag.Parse()

	if *dbPath == "" && *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("config", *configPath).Msg("Failed to load configuration")
		}
		*dbPath = cfg.Database.Filename
	}

	if *dbPath == "" || *command == "" {
		fmt.Fprintln(os.Stderr, "-command and one of -db or -config are required:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	m, err := newMigrator(*dbPath, *migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrate instance")
	}
	defer m.Close()

	if err := run(m, *command, *forceVersion); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration command failed")
	}
}

func newMigrator(dbPath, migrationsPath string) (*migrate.Migrate, error) {
	absDB, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}
	absMigrations, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid migrations path: %w", err)
	}
	if _, err := os.Stat(absMigrations); err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return migrate.New(
		"file://"+absMigrations,
		"sqlite3://"+absDB+"?_fk=1",
	)
}

func run(m *migrate.Migrate, command, forceVersion string) error {
	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info().Msg("Migrations applied")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info().Msg("Migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info().Msg("No migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current schema version")
	case "force":
		version, err := strconv.Atoi(forceVersion)
		if err != nil {
			return fmt.Errorf("force requires a numeric -version: %w", err)
		}
		if err := m.Force(version); err != nil {
			return err
		}
		log.Info().Int("version", version).Msg("Schema version forced")
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}
