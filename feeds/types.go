// Package feeds builds the public list of upcoming events by merging
// calendar events with event-like blog posts.
package feeds

import (
	"context"
	"time"

	"github.com/StephRoos/ladtc-sub000/models"
)

// Store is the persistence layer the feed reads from
type Store interface {
	// GetUpcomingEvents returns events dated at or after now, ordered by
	// date, optionally restricted to one event type
	GetUpcomingEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.RawEvent, error)

	// GetUpcomingBlogEvents returns published posts with an event date at or
	// after now in one of the given categories, ordered by event date
	GetUpcomingBlogEvents(ctx context.Context, now time.Time, categories []models.Category) ([]models.RawBlogEvent, error)
}

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 50
)

// Request is a validated feed query. Build it with NewRequest.
type Request struct {
	Page    int
	PerPage int
	Type    *models.EventType
}

// Page is one window over the merged, date ordered feed
type Page struct {
	Items      []models.FeedItem
	Total      int
	TotalPages int
}
