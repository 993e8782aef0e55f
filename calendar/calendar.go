// Package calendar renders the upcoming events feed as an iCalendar
// subscription.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/samber/lo"

	"github.com/StephRoos/ladtc-sub000/models"
)

const DefaultDuration = 2 * time.Hour

type Options struct {
	// Hostname is the public base URL of the site, e.g. https://ladtc.be
	Hostname        string
	Name            string
	DefaultDuration time.Duration
	// Stamp is written as DTSTAMP on every event, defaults to time.Now
	Stamp time.Time
}

// Export serializes feed items as a VCALENDAR. Items have no end date so
// each event lasts DefaultDuration.
func Export(items []models.FeedItem, opts Options) string {
	duration := lo.Ternary(opts.DefaultDuration > 0, opts.DefaultDuration, DefaultDuration)
	stamp := lo.Ternary(opts.Stamp.IsZero(), time.Now(), opts.Stamp).UTC()
	host := uidHost(opts.Hostname)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//ladtc//upcoming events//FR")
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, item := range items {
		event := cal.AddEvent(fmt.Sprintf("%s-%s@%s", item.Source, item.Id, host))
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(item.CreatedAt.UTC())
		event.SetModifiedAt(item.UpdatedAt.UTC())
		event.SetStartAt(item.Date.UTC())
		event.SetEndAt(item.Date.Add(duration).UTC())
		event.SetSummary(item.Title)
		if item.Description != nil && *item.Description != "" {
			event.SetDescription(*item.Description)
		}
		if item.Location != "" {
			event.SetLocation(item.Location)
		}
		if link := itemURL(opts.Hostname, item); link != "" {
			event.SetURL(link)
		}
		event.AddCategory(string(item.Type))
	}

	return cal.Serialize()
}

// itemURL links events to their page and blog-events to the post
func itemURL(hostname string, item models.FeedItem) string {
	if hostname == "" {
		return ""
	}
	base := strings.TrimSuffix(hostname, "/")

	if item.Source == models.SourceBlogEvent && item.Slug != nil {
		return base + "/blog/" + url.PathEscape(*item.Slug)
	}
	return base + "/events/" + url.PathEscape(item.Id)
}

func uidHost(hostname string) string {
	if parsed, err := url.Parse(hostname); err == nil && parsed.Hostname() != "" {
		return parsed.Hostname()
	}
	return "localhost"
}
