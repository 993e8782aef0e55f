/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/StephRoos/ladtc-sub000/config"
	"github.com/StephRoos/ladtc-sub000/db"
)

// databaseFlags are shared by every command touching the database
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a TOML or YAML configuration file",
			EnvVars: []string{"LADTC_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "db-driver",
			Value:   db.DriverSQLite,
			Usage:   "Database driver: sqlite or postgres",
			EnvVars: []string{"LADTC_DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Value:   "ladtc.db",
			Usage:   "SQLite database file location",
			EnvVars: []string{"LADTC_DATABASE"},
		},
		&cli.StringFlag{
			Name:    "db-host",
			Usage:   "PostgreSQL host",
			EnvVars: []string{"LADTC_DB_HOST"},
			Value:   "localhost",
		},
		&cli.IntFlag{
			Name:    "db-port",
			Usage:   "PostgreSQL port",
			EnvVars: []string{"LADTC_DB_PORT"},
			Value:   5432,
		},
		&cli.StringFlag{
			Name:    "db-user",
			Usage:   "PostgreSQL user",
			EnvVars: []string{"LADTC_DB_USER"},
			Value:   "ladtc",
		},
		&cli.StringFlag{
			Name:    "db-password",
			Usage:   "PostgreSQL password",
			EnvVars: []string{"LADTC_DB_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "db-name",
			Usage:   "PostgreSQL database name",
			EnvVars: []string{"LADTC_DB_NAME"},
			Value:   "ladtc",
		},
		&cli.StringFlag{
			Name:    "db-sslmode",
			Usage:   "PostgreSQL sslmode",
			EnvVars: []string{"LADTC_DB_SSLMODE"},
			Value:   "disable",
		},
	}
}

// loadConfig reads the optional config file, then lets flags and
// environment variables that were explicitly set win over it
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.Path("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		log.WithFields(log.Fields{
			"path": path,
		}).Info("Loaded configuration file")
	}

	overrideString(ctx, "db-driver", &cfg.Database.Driver)
	overrideString(ctx, "database", &cfg.Database.Path)
	overrideString(ctx, "db-host", &cfg.Database.Host)
	overrideInt(ctx, "db-port", &cfg.Database.Port)
	overrideString(ctx, "db-user", &cfg.Database.User)
	overrideString(ctx, "db-password", &cfg.Database.Password)
	overrideString(ctx, "db-name", &cfg.Database.Name)
	overrideString(ctx, "db-sslmode", &cfg.Database.SSLMode)

	overrideString(ctx, "host", &cfg.Server.Host)
	overrideInt(ctx, "port", &cfg.Server.Port)
	overrideString(ctx, "hostname", &cfg.Server.Hostname)
	overrideString(ctx, "cors-origins", &cfg.Server.CorsOrigins)
	if ctx.IsSet("cache-expiration") {
		cfg.Server.CacheExpiration = ctx.Duration("cache-expiration")
	}

	overrideString(ctx, "tidy-schedule", &cfg.Tidy.Schedule)
	overrideInt(ctx, "retention-days", &cfg.Tidy.RetentionDays)

	return cfg, nil
}

func overrideString(ctx *cli.Context, name string, target *string) {
	if ctx.IsSet(name) {
		*target = ctx.String(name)
	}
}

func overrideInt(ctx *cli.Context, name string, target *int) {
	if ctx.IsSet(name) {
		*target = ctx.Int(name)
	}
}

func databaseConfig(cfg *config.Config) db.Config {
	return db.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	}
}

// openDatabase opens the configured database and waits until it answers
func openDatabase(ctx *cli.Context, cfg *config.Config) (*db.DB, error) {
	dbConfig := databaseConfig(cfg)
	log.WithFields(log.Fields{
		"database": dbConfig.String(),
	}).Info("Database configured")

	database, err := db.Open(dbConfig)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx.Context, 30*time.Second)
	defer cancel()

	if err := database.WaitReady(waitCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	return database, nil
}
