package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Tidy removes events that took place before the cutoff. Their
// registrations are removed by the foreign key cascade.
func (db *DB) Tidy(ctx context.Context, before time.Time) (int64, error) {
	deleteEvents := db.flavor.NewDeleteBuilder()
	deleteEvents.DeleteFrom("events").Where(deleteEvents.LessThan("starts_at", toMillis(before)))

	stmt, args := deleteEvents.Build()

	log.WithFields(log.Fields{
		"sql":    stmt,
		"args":   args,
		"before": before.Format(time.RFC3339),
	}).Info("Tidying database")

	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("tidy error: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("tidy error: %w", err)
	}

	return deleted, nil
}

// RetentionCutoff is the instant before which events are tidied away
func RetentionCutoff(now time.Time, retentionDays int) time.Time {
	return now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
}
