package feeds

import (
	"github.com/samber/lo"

	"github.com/StephRoos/ladtc-sub000/models"
	"github.com/StephRoos/ladtc-sub000/taxonomy"
)

// fallbackEventType guards a blog post whose category has no event type.
// Readers only select taxonomy.EventCategories, so it should never apply.
const fallbackEventType = models.EventTypeSocial

// NormalizeEvent projects a calendar event onto a FeedItem
func NormalizeEvent(event models.RawEvent) models.FeedItem {
	return models.FeedItem{
		Id:                event.Id,
		Title:             event.Title,
		Description:       event.Description,
		Date:              event.Date,
		Location:          event.Location,
		Type:              event.Type,
		Difficulty:        event.Difficulty,
		MaxParticipants:   event.MaxParticipants,
		RegistrationCount: event.RegistrationCount,
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
		Source:            models.SourceEvent,
	}
}

// NormalizeBlogEvent projects an event-like blog post onto a FeedItem.
// post.EventDate must be set; the blog reader only returns dated posts.
func NormalizeBlogEvent(post models.RawBlogEvent, tx *taxonomy.Taxonomy) models.FeedItem {
	eventType, ok := tx.EventTypeFor(post.Category)
	if !ok {
		eventType = fallbackEventType
	}

	return models.FeedItem{
		Id:                post.Id,
		Title:             post.Title,
		Description:       post.Excerpt,
		Date:              lo.FromPtr(post.EventDate),
		Location:          lo.FromPtr(post.EventLocation),
		Type:              eventType,
		Difficulty:        nil,
		MaxParticipants:   nil,
		RegistrationCount: 0,
		CreatedAt:         post.CreatedAt,
		UpdatedAt:         post.UpdatedAt,
		Source:            models.SourceBlogEvent,
		Slug:              lo.ToPtr(post.Slug),
		FeaturedImageUrl:  post.FeaturedImageUrl,
	}
}

func normalizeEvents(events []models.RawEvent) []models.FeedItem {
	return lo.Map(events, func(event models.RawEvent, _ int) models.FeedItem {
		return NormalizeEvent(event)
	})
}

func normalizeBlogEvents(posts []models.RawBlogEvent, tx *taxonomy.Taxonomy) []models.FeedItem {
	return lo.Map(posts, func(post models.RawBlogEvent, _ int) models.FeedItem {
		return NormalizeBlogEvent(post, tx)
	})
}
