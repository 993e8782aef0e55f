package calendar_test

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/StephRoos/ladtc-sub000/calendar"
	"github.com/StephRoos/ladtc-sub000/models"
)

var stamp = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

func feedItems() []models.FeedItem {
	return []models.FeedItem{
		{
			Id:          "evt-1",
			Title:       "Sortie longue",
			Description: lo.ToPtr("20 km en endurance"),
			Date:        time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC),
			Location:    "Forêt de Soignes",
			Type:        models.EventTypeTraining,
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
			Source:      models.SourceEvent,
		},
		{
			Id:        "post-1",
			Title:     "Trail des Lacs",
			Date:      time.Date(2026, time.April, 5, 9, 30, 0, 0, time.UTC),
			Type:      models.EventTypeRace,
			CreatedAt: stamp,
			UpdatedAt: stamp,
			Source:    models.SourceBlogEvent,
			Slug:      lo.ToPtr("trail-des-lacs"),
		},
	}
}

func parse(t *testing.T, body string) []*ical.VEvent {
	cal, err := ical.ParseCalendar(strings.NewReader(body))
	assert.NoError(t, err)
	return cal.Events()
}

func TestExport(t *testing.T) {
	body := calendar.Export(feedItems(), calendar.Options{
		Hostname: "https://ladtc.be",
		Name:     "LADTC",
		Stamp:    stamp,
	})

	assert.Contains(t, body, "X-WR-CALNAME:LADTC")
	assert.Contains(t, body, "METHOD:PUBLISH")

	events := parse(t, body)
	assert.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "event-evt-1@ladtc.be", first.Id())
	assert.Equal(t, "Sortie longue", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "https://ladtc.be/events/evt-1", first.GetProperty(ical.ComponentPropertyUrl).Value)
	assert.Equal(t, "TRAINING", first.GetProperty(ical.ComponentPropertyCategories).Value)

	start, err := first.GetStartAt()
	assert.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)))

	end, err := first.GetEndAt()
	assert.NoError(t, err)
	assert.Equal(t, calendar.DefaultDuration, end.Sub(start))

	second := events[1]
	assert.Equal(t, "blog-event-post-1@ladtc.be", second.Id())
	assert.Equal(t, "https://ladtc.be/blog/trail-des-lacs", second.GetProperty(ical.ComponentPropertyUrl).Value)
	assert.Nil(t, second.GetProperty(ical.ComponentPropertyDescription))
	assert.Nil(t, second.GetProperty(ical.ComponentPropertyLocation))
}

func TestExportCustomDuration(t *testing.T) {
	body := calendar.Export(feedItems()[:1], calendar.Options{DefaultDuration: 90 * time.Minute, Stamp: stamp})

	events := parse(t, body)
	start, _ := events[0].GetStartAt()
	end, _ := events[0].GetEndAt()

	assert.Equal(t, 90*time.Minute, end.Sub(start))
	assert.Equal(t, "event-evt-1@localhost", events[0].Id())
	assert.Nil(t, events[0].GetProperty(ical.ComponentPropertyUrl))
}

func TestExportEmpty(t *testing.T) {
	body := calendar.Export(nil, calendar.Options{})

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Empty(t, parse(t, body))
}
