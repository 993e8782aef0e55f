package feeds

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/StephRoos/ladtc-sub000/models"
)

// BreakerSettings configures the circuit breaker placed in front of a Store
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// BreakerStore fails fast while the underlying store keeps failing. An open
// breaker surfaces as a read error like any other.
type BreakerStore struct {
	store   Store
	breaker *gobreaker.CircuitBreaker
}

var _ Store = (*BreakerStore)(nil)

func NewBreakerStore(store Store, settings BreakerSettings) *BreakerStore {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 3
	}
	if settings.Interval <= 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}

	return &BreakerStore{
		store: store,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "feed-store",
			MaxRequests: settings.MaxRequests,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.FailureThreshold
			},
			// A request abandoned by its caller says nothing about the store
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(log.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Circuit breaker state changed")
			},
		}),
	}
}

// State reports the breaker state, mostly for health checks
func (b *BreakerStore) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerStore) GetUpcomingEvents(ctx context.Context, now time.Time, eventType *models.EventType) ([]models.RawEvent, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.store.GetUpcomingEvents(ctx, now, eventType)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.RawEvent), nil
}

func (b *BreakerStore) GetUpcomingBlogEvents(ctx context.Context, now time.Time, categories []models.Category) ([]models.RawBlogEvent, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.store.GetUpcomingBlogEvents(ctx, now, categories)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.RawBlogEvent), nil
}
