package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var fs embed.FS

func newMigrate(config Config) (*migrate.Migrate, error) {
	if _, err := config.flavor(); err != nil {
		return nil, err
	}

	// Create a new source instance using the embedded migrations
	d, err := iofs.New(fs, "migrations")
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, config.migrateURL())
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.WithFields(log.Fields{
			"source_error":   srcErr,
			"database_error": dbErr,
		}).Warn("Error closing migrate instance")
	}
}

// Migrate runs all pending migrations using golang-migrate
func Migrate(config Config) error {
	log.WithFields(log.Fields{
		"database": config.String(),
	}).Info("Running migrations")

	m, err := newMigrate(config)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// Rollback reverts the most recent migration
func Rollback(config Config) error {
	log.WithFields(log.Fields{
		"database": config.String(),
	}).Info("Rolling back last migration")

	m, err := newMigrate(config)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
