// Package taxonomy maps editorial blog categories to event types.
//
// The forward map is the only hand-maintained structure. The reverse index
// and the set of event-qualifying categories are derived from it when a
// Taxonomy is built, so the two directions cannot drift apart.
package taxonomy

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/StephRoos/ladtc-sub000/models"
)

// Taxonomy is an immutable category to event type mapping
type Taxonomy struct {
	forward    map[models.Category]models.EventType
	categories []models.Category
	reverse    map[models.EventType][]models.Category
}

// defaultMapping is the club's category list. An empty EventType marks a
// category that never produces feed items.
var defaultMapping = map[models.Category]models.EventType{
	models.CategoryNews:     "",
	models.CategoryRace:     models.EventTypeRace,
	models.CategoryTrail:    models.EventTypeRace,
	models.CategoryTraining: models.EventTypeTraining,
	models.CategoryCamp:     models.EventTypeCamp,
	models.CategoryClubLife: models.EventTypeSocial,
	models.CategoryResults:  "",
	models.CategoryAdvice:   "",
}

// Default is the taxonomy used by the public feed
var Default = New(defaultMapping)

// New builds a Taxonomy from a forward mapping. The map is copied.
// It panics when a category maps to an unknown event type.
func New(mapping map[models.Category]models.EventType) *Taxonomy {
	forward := make(map[models.Category]models.EventType, len(mapping))
	for category, eventType := range mapping {
		if eventType != "" && !slices.Contains(models.EventTypes, eventType) {
			panic(fmt.Sprintf("taxonomy: category %q maps to unknown event type %q", category, eventType))
		}
		forward[category] = eventType
	}

	categories := lo.Keys(forward)
	slices.Sort(categories)

	t := &Taxonomy{
		forward:    forward,
		categories: categories,
		reverse:    make(map[models.EventType][]models.Category),
	}

	for _, eventType := range models.EventTypes {
		t.reverse[eventType] = lo.Filter(categories, func(category models.Category, _ int) bool {
			return forward[category] == eventType
		})
	}

	return t
}

// Categories returns every known category, sorted
func (t *Taxonomy) Categories() []models.Category {
	return slices.Clone(t.categories)
}

// EventTypeFor returns the event type a category maps to. The boolean is
// false for unknown categories and for categories that are not event-qualifying.
func (t *Taxonomy) EventTypeFor(category models.Category) (models.EventType, bool) {
	eventType, ok := t.forward[category]
	if !ok || eventType == "" {
		return "", false
	}
	return eventType, true
}

// CategoriesFor returns the categories mapping to eventType, sorted. An
// empty result is valid: no blog post can match that type.
func (t *Taxonomy) CategoriesFor(eventType models.EventType) []models.Category {
	return slices.Clone(t.reverse[eventType])
}

// EventCategories returns every event-qualifying category
func (t *Taxonomy) EventCategories() []models.Category {
	return lo.Filter(t.categories, func(category models.Category, _ int) bool {
		return t.forward[category] != ""
	})
}

// IsEventCategory reports whether category maps to an event type
func (t *Taxonomy) IsEventCategory(category models.Category) bool {
	_, ok := t.EventTypeFor(category)
	return ok
}

// Describe lists every event type with the categories feeding it
func (t *Taxonomy) Describe() []models.EventTypeCategories {
	return lo.Map(models.EventTypes, func(eventType models.EventType, _ int) models.EventTypeCategories {
		return models.EventTypeCategories{
			Type:       eventType,
			Categories: t.CategoriesFor(eventType),
		}
	})
}
