package feeds_test

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/mock"

	"github.com/StephRoos/ladtc-sub000/models"
)

var now = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 18, 30, 0, 0, time.UTC)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUpcomingEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.RawEvent, error) {
	args := m.Called(ctx, now, eventType)
	events, _ := args.Get(0).([]models.RawEvent)
	return events, args.Error(1)
}

func (m *mockStore) GetUpcomingBlogEvents(ctx context.Context, now time.Time, categories []models.Category) ([]models.RawBlogEvent, error) {
	args := m.Called(ctx, now, categories)
	posts, _ := args.Get(0).([]models.RawBlogEvent)
	return posts, args.Error(1)
}

// memoryStore filters like the SQL readers do
type memoryStore struct {
	events []models.RawEvent
	posts  []models.Post
}

func (s *memoryStore) GetUpcomingEvents(_ context.Context, now time.Time, eventType *models.EventType) ([]models.RawEvent, error) {
	events := lo.Filter(s.events, func(event models.RawEvent, _ int) bool {
		if event.Date.Before(now) {
			return false
		}
		return eventType == nil || event.Type == *eventType
	})
	slices.SortFunc(events, func(a, b models.RawEvent) int {
		return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Id, b.Id))
	})
	return events, nil
}

func (s *memoryStore) GetUpcomingBlogEvents(_ context.Context, now time.Time, categories []models.Category) ([]models.RawBlogEvent, error) {
	posts := lo.Filter(s.posts, func(post models.Post, _ int) bool {
		return post.Published &&
			post.EventDate != nil &&
			!post.EventDate.Before(now) &&
			slices.Contains(categories, post.Category)
	})
	slices.SortFunc(posts, func(a, b models.Post) int {
		return cmp.Or(a.EventDate.Compare(*b.EventDate), cmp.Compare(a.Id, b.Id))
	})
	return lo.Map(posts, func(post models.Post, _ int) models.RawBlogEvent {
		return models.RawBlogEvent{
			Id:               post.Id,
			Title:            post.Title,
			Excerpt:          post.Excerpt,
			Slug:             post.Slug,
			FeaturedImageUrl: post.FeaturedImageUrl,
			Category:         post.Category,
			EventDate:        post.EventDate,
			EventLocation:    post.EventLocation,
			CreatedAt:        post.CreatedAt,
			UpdatedAt:        post.UpdatedAt,
		}
	}), nil
}

func rawEvent(id string, date time.Time, eventType models.EventType) models.RawEvent {
	return models.RawEvent{
		Id:        id,
		Title:     "Event " + id,
		Date:      date,
		Location:  "Stade du Pachis",
		Type:      eventType,
		CreatedAt: now.Add(-48 * time.Hour),
		UpdatedAt: now.Add(-48 * time.Hour),
	}
}

func rawBlogEvent(id string, date time.Time, category models.Category) models.RawBlogEvent {
	return models.RawBlogEvent{
		Id:            id,
		Title:         "Post " + id,
		Slug:          "post-" + id,
		Category:      category,
		EventDate:     lo.ToPtr(date),
		EventLocation: lo.ToPtr("Bois de la Cambre"),
		CreatedAt:     now.Add(-24 * time.Hour),
		UpdatedAt:     now.Add(-24 * time.Hour),
	}
}

func post(id string, date time.Time, category models.Category) models.Post {
	return models.Post{
		Id:            id,
		Title:         "Post " + id,
		Slug:          "post-" + id,
		Category:      category,
		Published:     true,
		EventDate:     lo.ToPtr(date),
		EventLocation: lo.ToPtr("Bois de la Cambre"),
		CreatedAt:     now.Add(-24 * time.Hour),
		UpdatedAt:     now.Add(-24 * time.Hour),
	}
}

func ids(items []models.FeedItem) []string {
	return lo.Map(items, func(item models.FeedItem, _ int) string {
		return item.Id
	})
}
