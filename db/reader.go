package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/StephRoos/ladtc-sub000/models"
	"github.com/StephRoos/ladtc-sub000/query"
)

// Number of registrations that still hold a place on the event
const registrationCountColumn = `(SELECT COUNT(*) FROM event_registrations
	WHERE event_registrations.event_id = events.id
	AND event_registrations.status <> '` + models.RegistrationCancelled + `') AS registration_count`

// GetUpcomingEvents returns calendar events dated at or after now, optionally
// restricted to one event type, ordered by date.
func (db *DB) GetUpcomingEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.RawEvent, error) {
	sb := db.flavor.NewSelectBuilder()
	sb.Select(
		"events.id",
		"events.title",
		"events.description",
		"events.starts_at",
		"events.location",
		"events.type",
		"events.difficulty",
		"events.max_participants",
		"events.created_at",
		"events.updated_at",
		registrationCountColumn,
	).From("events")

	filters := []query.FilterStrategy{
		&query.UpcomingFilter{Column: "events.starts_at", Now: now},
	}
	if eventType != nil {
		filters = append(filters, &query.EqualFilter{Column: "events.type", Value: string(*eventType)})
	}
	query.Apply(sb, filters...)

	sb.OrderBy("events.starts_at", "events.id").Asc()

	stmt, args := sb.Build()
	log.WithFields(log.Fields{
		"sql":  stmt,
		"args": args,
	}).Debug("Generated upcoming events query")

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	events := []models.RawEvent{}
	for rows.Next() {
		var (
			event           models.RawEvent
			description     sql.NullString
			difficulty      sql.NullString
			maxParticipants sql.NullInt64
			rawType         string
			startsAt        int64
			createdAt       int64
			updatedAt       int64
		)
		if err := rows.Scan(
			&event.Id,
			&event.Title,
			&description,
			&startsAt,
			&event.Location,
			&rawType,
			&difficulty,
			&maxParticipants,
			&createdAt,
			&updatedAt,
			&event.RegistrationCount,
		); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		event.Description = nullableString(description)
		event.Difficulty = nullableString(difficulty)
		event.MaxParticipants = nullableInt(maxParticipants)
		event.Type = models.EventType(rawType)
		event.Date = fromMillis(startsAt)
		event.CreatedAt = fromMillis(createdAt)
		event.UpdatedAt = fromMillis(updatedAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

// GetUpcomingBlogEvents returns published posts whose event date is at or
// after now and whose category is one of categories, ordered by event date.
// No query is issued when categories is empty.
func (db *DB) GetUpcomingBlogEvents(ctx context.Context, now time.Time, categories []models.Category) ([]models.RawBlogEvent, error) {
	if len(categories) == 0 {
		return []models.RawBlogEvent{}, nil
	}

	sb := db.flavor.NewSelectBuilder()
	sb.Select(
		"posts.id",
		"posts.title",
		"posts.excerpt",
		"posts.slug",
		"posts.featured_image_url",
		"posts.category",
		"posts.event_date",
		"posts.event_location",
		"posts.created_at",
		"posts.updated_at",
	).From("posts")

	query.Apply(sb,
		&query.EqualFilter{Column: "posts.published", Value: true},
		&query.UpcomingFilter{Column: "posts.event_date", Now: now},
		&query.InFilter[string]{
			Column: "posts.category",
			Values: lo.Map(categories, func(c models.Category, _ int) string { return string(c) }),
		},
	)

	sb.OrderBy("posts.event_date", "posts.id").Asc()

	stmt, args := sb.Build()
	log.WithFields(log.Fields{
		"sql":  stmt,
		"args": args,
	}).Debug("Generated upcoming blog events query")

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	posts := []models.RawBlogEvent{}
	for rows.Next() {
		var (
			post             models.RawBlogEvent
			excerpt          sql.NullString
			featuredImageUrl sql.NullString
			eventLocation    sql.NullString
			eventDate        sql.NullInt64
			category         string
			createdAt        int64
			updatedAt        int64
		)
		if err := rows.Scan(
			&post.Id,
			&post.Title,
			&excerpt,
			&post.Slug,
			&featuredImageUrl,
			&category,
			&eventDate,
			&eventLocation,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		post.Excerpt = nullableString(excerpt)
		post.FeaturedImageUrl = nullableString(featuredImageUrl)
		post.EventLocation = nullableString(eventLocation)
		post.EventDate = nullableTime(eventDate)
		post.Category = models.Category(category)
		post.CreatedAt = fromMillis(createdAt)
		post.UpdatedAt = fromMillis(updatedAt)
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return posts, nil
}
