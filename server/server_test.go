package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/StephRoos/ladtc-sub000/feeds"
	"github.com/StephRoos/ladtc-sub000/models"
	"github.com/StephRoos/ladtc-sub000/server"
)

var now = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

type stubStore struct {
	events []models.RawEvent
	posts  []models.RawBlogEvent
	err    error
}

func (s *stubStore) GetUpcomingEvents(_ context.Context, _ time.Time, eventType *models.EventType) ([]models.RawEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return lo.Filter(s.events, func(event models.RawEvent, _ int) bool {
		return eventType == nil || event.Type == *eventType
	}), nil
}

func (s *stubStore) GetUpcomingBlogEvents(_ context.Context, _ time.Time, categories []models.Category) ([]models.RawBlogEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return lo.Filter(s.posts, func(post models.RawBlogEvent, _ int) bool {
		return lo.Contains(categories, post.Category)
	}), nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func newStore() *stubStore {
	return &stubStore{
		events: []models.RawEvent{
			{Id: "e-1", Title: "Piste", Date: time.Date(2026, time.April, 1, 18, 30, 0, 0, time.UTC), Type: models.EventTypeTraining, Location: "Stade"},
			{Id: "e-2", Title: "Barbecue", Date: time.Date(2026, time.April, 10, 12, 0, 0, 0, time.UTC), Type: models.EventTypeSocial, Location: "Club house"},
		},
		posts: []models.RawBlogEvent{
			{Id: "p-1", Title: "20 km de Bruxelles", Slug: "20-km", Category: models.CategoryRace, EventDate: lo.ToPtr(time.Date(2026, time.April, 5, 9, 0, 0, 0, time.UTC))},
		},
	}
}

func newApp(store feeds.Store, config server.ServerConfig) *fiber.App {
	config.Aggregator = feeds.NewAggregator(store, feeds.WithClock(func() time.Time { return now }))
	config.Hostname = "https://ladtc.be"
	return server.Server(&config)
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	return resp, string(body)
}

func decodeFeed(t *testing.T, body string) models.FeedResponse {
	var feed models.FeedResponse
	assert.NoError(t, json.Unmarshal([]byte(body), &feed))
	return feed
}

func TestEvents(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{})

	resp, body := get(t, app, "/api/events")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	feed := decodeFeed(t, body)
	assert.Equal(t, 3, feed.Total)
	assert.Equal(t, 1, feed.TotalPages)
	assert.Equal(t, []string{"e-1", "p-1", "e-2"}, lo.Map(feed.Events, func(item models.FeedItem, _ int) string {
		return item.Id
	}))
	assert.Equal(t, models.SourceBlogEvent, feed.Events[1].Source)
	assert.Equal(t, "20-km", lo.FromPtr(feed.Events[1].Slug))
	assert.Contains(t, body, `"totalPages":1`)
	assert.Contains(t, body, `"source":"blog-event"`)
}

func TestEventsQueryParameters(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{})

	tests := []struct {
		name       string
		target     string
		ids        []string
		total      int
		totalPages int
	}{
		{"paged", "/api/events?page=2&per_page=2", []string{"e-2"}, 3, 2},
		{"malformed numbers", "/api/events?page=abc&per_page=-4", []string{"e-1", "p-1", "e-2"}, 3, 1},
		{"per page capped", "/api/events?per_page=1000", []string{"e-1", "p-1", "e-2"}, 3, 1},
		{"type filter", "/api/events?type=RACE", []string{"p-1"}, 1, 1},
		{"lower case type", "/api/events?type=social", []string{"e-2"}, 1, 1},
		{"unknown type", "/api/events?type=MARATHON", []string{"e-1", "p-1", "e-2"}, 3, 1},
		{"past the end", "/api/events?page=9", []string{}, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, tt.target)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			feed := decodeFeed(t, body)
			assert.Equal(t, tt.ids, lo.Map(feed.Events, func(item models.FeedItem, _ int) string {
				return item.Id
			}))
			assert.Equal(t, tt.total, feed.Total)
			assert.Equal(t, tt.totalPages, feed.TotalPages)
		})
	}
}

func TestEventsSourceFailure(t *testing.T) {
	store := newStore()
	store.err = errors.New("no such table: events")
	app := newApp(store, server.ServerConfig{})

	resp, body := get(t, app, "/api/events")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "could not load events", body)
	assert.NotContains(t, body, "no such table")
}

func TestEventsCache(t *testing.T) {
	store := newStore()
	store.err = errors.New("database is locked")
	app := newApp(store, server.ServerConfig{CacheExpiration: time.Minute})

	resp, _ := get(t, app, "/api/events?page=1")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// Failures are not cached
	store.err = nil
	resp, _ = get(t, app, "/api/events?page=1")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))

	resp, body := get(t, app, "/api/events?page=1")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))
	assert.Equal(t, 3, decodeFeed(t, body).Total)

	resp, _ = get(t, app, "/api/events?page=2")
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
}

func TestEventsCacheOversizedBody(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{CacheExpiration: time.Minute, CacheSize: 300})

	first, want := get(t, app, "/api/events")
	assert.Equal(t, fiber.StatusOK, first.StatusCode)
	assert.Equal(t, "unreachable", first.Header.Get("X-Cache"))

	resp, body := get(t, app, "/api/events")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "unreachable", resp.Header.Get("X-Cache"))
	assert.NotEmpty(t, body)
	assert.Equal(t, want, body)
}

func TestEventsCacheEviction(t *testing.T) {
	_, want := get(t, newApp(newStore(), server.ServerConfig{}), "/api/events")
	assert.NotEmpty(t, want)

	// Room for two bodies, every new URI evicts the oldest entry
	app := newApp(newStore(), server.ServerConfig{
		CacheExpiration: time.Minute,
		CacheSize:       int64(2 * len(want)),
	})

	target := func(i int) string {
		return "/api/events?junk=" + strconv.Itoa(i)
	}

	for round := 0; round < 2; round++ {
		for i := 0; i < 20; i++ {
			resp, body := get(t, app, target(i))
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, target(i))
			assert.Equal(t, want, body, target(i))
		}
	}

	tests := []struct {
		name  string
		index int
		cache string
	}{
		{"latest entry is kept", 19, "hit"},
		{"oldest entry was evicted", 0, "miss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, target(tt.index))
			assert.Equal(t, tt.cache, resp.Header.Get("X-Cache"))
			assert.Equal(t, want, body)
		})
	}
}

func TestRequestLogRoute(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	app := newApp(newStore(), server.ServerConfig{CacheExpiration: time.Minute})

	tests := []struct {
		name  string
		cache string
	}{
		{"routed request", "miss"},
		{"cache hit", "hit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()

			resp, _ := get(t, app, "/api/events?page=1")
			assert.Equal(t, tt.cache, resp.Header.Get("X-Cache"))

			entry := hook.LastEntry()
			if assert.NotNil(t, entry) {
				assert.Equal(t, "Request", entry.Message)
				assert.Equal(t, "/api/events", entry.Data["route"])
			}
		})
	}
}

func TestCalendar(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{CalendarName: "LADTC"})

	resp, body := get(t, app, "/api/events.ics?type=TRAINING")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/calendar")
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Contains(t, body, "X-WR-CALNAME:LADTC")
	assert.Contains(t, body, "UID:event-e-1@ladtc.be")
	assert.NotContains(t, body, "UID:event-e-2@ladtc.be")
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
}

func TestCalendarSourceFailure(t *testing.T) {
	store := newStore()
	store.err = errors.New("connection refused")
	app := newApp(store, server.ServerConfig{})

	resp, body := get(t, app, "/api/events.ics")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "could not load events", body)
}

func TestEventTypes(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{})

	resp, body := get(t, app, "/api/event-types")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var described []models.EventTypeCategories
	assert.NoError(t, json.Unmarshal([]byte(body), &described))
	assert.Len(t, described, len(models.EventTypes))

	race, ok := lo.Find(described, func(d models.EventTypeCategories) bool {
		return d.Type == models.EventTypeRace
	})
	assert.True(t, ok)
	assert.Equal(t, []models.Category{models.CategoryRace, models.CategoryTrail}, race.Categories)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		database server.Pinger
		status   int
	}{
		{"no database", nil, fiber.StatusOK},
		{"database up", stubPinger{}, fiber.StatusOK},
		{"database down", stubPinger{err: errors.New("dial tcp: connection refused")}, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(newStore(), server.ServerConfig{Database: tt.database})

			resp, _ := get(t, app, "/healthz")

			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMetrics(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{})
	get(t, app, "/api/events?type=CAMP")

	resp, body := get(t, app, "/metrics")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `ladtc_feed_requests_total{type="CAMP"}`)
}

func TestCors(t *testing.T) {
	app := newApp(newStore(), server.ServerConfig{CorsOrigins: "https://ladtc.be"})

	req := httptest.NewRequest(fiber.MethodGet, "/api/event-types", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://ladtc.be")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, "https://ladtc.be", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
