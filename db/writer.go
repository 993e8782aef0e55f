package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/StephRoos/ladtc-sub000/models"
)

// stamps fills in missing creation and update times
func stamps(createdAt, updatedAt time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	return createdAt, updatedAt
}

func newId(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// CreateEvent inserts a calendar event and returns its id.
// RegistrationCount is ignored: it is derived from event_registrations.
func (db *DB) CreateEvent(ctx context.Context, event models.RawEvent) (string, error) {
	id := newId(event.Id)
	createdAt, updatedAt := stamps(event.CreatedAt, event.UpdatedAt)

	ib := db.flavor.NewInsertBuilder()
	ib.InsertInto("events").
		Cols("id", "title", "description", "starts_at", "location", "type", "difficulty", "max_participants", "created_at", "updated_at").
		Values(id, event.Title, event.Description, toMillis(event.Date), event.Location, string(event.Type),
			event.Difficulty, event.MaxParticipants, toMillis(createdAt), toMillis(updatedAt))

	stmt, args := ib.Build()
	if _, err := db.db.ExecContext(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("insert event error: %w", err)
	}

	log.WithFields(log.Fields{
		"id":   id,
		"type": event.Type,
		"date": event.Date.Format(time.RFC3339),
	}).Info("Created event")

	return id, nil
}

// CreatePost inserts a blog post and returns its id
func (db *DB) CreatePost(ctx context.Context, post models.Post) (string, error) {
	id := newId(post.Id)
	createdAt, updatedAt := stamps(post.CreatedAt, post.UpdatedAt)

	var eventDate *int64
	if post.EventDate != nil {
		ms := toMillis(*post.EventDate)
		eventDate = &ms
	}

	ib := db.flavor.NewInsertBuilder()
	ib.InsertInto("posts").
		Cols("id", "title", "slug", "excerpt", "featured_image_url", "category", "published", "event_date", "event_location", "created_at", "updated_at").
		Values(id, post.Title, post.Slug, post.Excerpt, post.FeaturedImageUrl, string(post.Category), post.Published,
			eventDate, post.EventLocation, toMillis(createdAt), toMillis(updatedAt))

	stmt, args := ib.Build()
	if _, err := db.db.ExecContext(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("insert post error: %w", err)
	}

	log.WithFields(log.Fields{
		"id":        id,
		"slug":      post.Slug,
		"category":  post.Category,
		"published": post.Published,
	}).Info("Created post")

	return id, nil
}

// CreateRegistration registers a member on an event and returns the
// registration id. An empty status means confirmed.
func (db *DB) CreateRegistration(ctx context.Context, registration models.Registration) (string, error) {
	id := newId(registration.Id)
	createdAt, _ := stamps(registration.CreatedAt, time.Time{})

	status := registration.Status
	if status == "" {
		status = models.RegistrationConfirmed
	}

	ib := db.flavor.NewInsertBuilder()
	ib.InsertInto("event_registrations").
		Cols("id", "event_id", "user_id", "status", "created_at").
		Values(id, registration.EventId, registration.UserId, status, toMillis(createdAt))

	stmt, args := ib.Build()
	if _, err := db.db.ExecContext(ctx, stmt, args...); err != nil {
		return "", fmt.Errorf("insert registration error: %w", err)
	}

	return id, nil
}

// CancelRegistration marks a registration as cancelled so it no longer
// counts towards the event's registrations.
func (db *DB) CancelRegistration(ctx context.Context, id string) error {
	ub := db.flavor.NewUpdateBuilder()
	ub.Update("event_registrations").
		Set(ub.Assign("status", models.RegistrationCancelled)).
		Where(ub.Equal("id", id))

	stmt, args := ub.Build()
	res, err := db.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("cancel registration error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel registration error: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("registration %s not found", id)
	}

	return nil
}
