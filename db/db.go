package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// DB handles all database operations with a shared connection pool
type DB struct {
	db     *sql.DB
	flavor sqlbuilder.Flavor
}

// Open connects to the configured database. It does not run migrations.
func Open(config Config) (*DB, error) {
	flavor, err := config.flavor()
	if err != nil {
		return nil, err
	}

	conn, err := connection(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return &DB{db: conn, flavor: flavor}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

// WaitReady pings the database with exponential backoff until it answers
// or ctx is done.
func (db *DB) WaitReady(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 1.5
	b.MaxElapsedTime = 0 // Bounded by ctx

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := db.Ping(ctx)
		if err != nil {
			log.WithFields(log.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Database not ready")
		}
		return err
	}, backoff.WithContext(b, ctx))
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullableInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}

func nullableTime(i sql.NullInt64) *time.Time {
	if !i.Valid {
		return nil
	}
	t := fromMillis(i.Int64)
	return &t
}
