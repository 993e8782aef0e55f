package feeds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/StephRoos/ladtc-sub000/models"
	"github.com/StephRoos/ladtc-sub000/taxonomy"
)

// ErrSourceRead wraps any failure to read one of the feed sources. The feed
// is never built from a single source when the other one failed.
var ErrSourceRead = errors.New("could not read feed source")

// Aggregator builds the upcoming events feed from a Store
type Aggregator struct {
	store    Store
	taxonomy *taxonomy.Taxonomy
	now      func() time.Time
}

type Option func(*Aggregator)

// WithClock replaces time.Now as the source of the request's "now"
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// WithTaxonomy replaces the default category taxonomy
func WithTaxonomy(tx *taxonomy.Taxonomy) Option {
	return func(a *Aggregator) {
		a.taxonomy = tx
	}
}

func NewAggregator(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    store,
		taxonomy: taxonomy.Default,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Taxonomy returns the category taxonomy the aggregator filters with
func (a *Aggregator) Taxonomy() *taxonomy.Taxonomy {
	return a.taxonomy
}

// Upcoming returns one page of upcoming events from both sources
func (a *Aggregator) Upcoming(ctx context.Context, req Request) (*models.FeedResponse, error) {
	feedRequests.WithLabelValues(typeLabel(req.Type)).Inc()

	items, err := a.All(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	page := Paginate(items, req.Page, req.PerPage)

	log.WithFields(log.Fields{
		"page":     req.Page,
		"per_page": req.PerPage,
		"type":     typeLabel(req.Type),
		"total":    page.Total,
		"returned": len(page.Items),
	}).Info("Built upcoming events feed")

	return BuildResponse(page), nil
}

// All returns every upcoming item from both sources, merged and sorted by
// date, without pagination
func (a *Aggregator) All(ctx context.Context, eventType *models.EventType) ([]models.FeedItem, error) {
	// Sampled once so both sources share the same cutoff
	now := a.now()

	var (
		events     []models.FeedItem
		blogEvents []models.FeedItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = a.readEvents(gctx, now, eventType)
		return err
	})
	g.Go(func() error {
		var err error
		blogEvents, err = a.readBlogEvents(gctx, now, eventType)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := Merge(events, blogEvents)
	feedItems.Observe(float64(len(merged)))

	return merged, nil
}

// readEvents is the calendar event source
func (a *Aggregator) readEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.FeedItem, error) {
	source := string(models.SourceEvent)
	timer := prometheus.NewTimer(sourceReadDuration.WithLabelValues(source))
	defer timer.ObserveDuration()

	events, err := a.store.GetUpcomingEvents(ctx, now, eventType)
	if err != nil {
		return nil, sourceError(source, err)
	}

	// Keep the cutoff even if the store is lenient
	events = lo.Filter(events, func(event models.RawEvent, _ int) bool {
		return !event.Date.Before(now)
	})

	return normalizeEvents(events), nil
}

// readBlogEvents is the event-like blog post source
func (a *Aggregator) readBlogEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.FeedItem, error) {
	categories := a.taxonomy.EventCategories()
	if eventType != nil {
		categories = a.taxonomy.CategoriesFor(*eventType)
	}

	// No category can match: nothing to ask the store for
	if len(categories) == 0 {
		return []models.FeedItem{}, nil
	}

	source := string(models.SourceBlogEvent)
	timer := prometheus.NewTimer(sourceReadDuration.WithLabelValues(source))
	defer timer.ObserveDuration()

	posts, err := a.store.GetUpcomingBlogEvents(ctx, now, categories)
	if err != nil {
		return nil, sourceError(source, err)
	}

	posts = lo.Filter(posts, func(post models.RawBlogEvent, _ int) bool {
		return post.EventDate != nil && !post.EventDate.Before(now)
	})

	return normalizeBlogEvents(posts, a.taxonomy), nil
}

func sourceError(source string, err error) error {
	sourceReadErrors.WithLabelValues(source).Inc()
	log.WithFields(log.Fields{
		"source": source,
		"error":  err,
	}).Error("Error reading feed source")
	return fmt.Errorf("%w: %s: %w", ErrSourceRead, source, err)
}

func typeLabel(eventType *models.EventType) string {
	if eventType == nil {
		return "all"
	}
	return string(*eventType)
}
