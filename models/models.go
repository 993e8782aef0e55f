package models

import (
	"strings"
	"time"
)

// EventType is the closed set of event kinds shared by calendar events and
// event-like blog posts.
type EventType string

const (
	EventTypeTraining EventType = "TRAINING"
	EventTypeRace     EventType = "RACE"
	EventTypeCamp     EventType = "CAMP"
	EventTypeSocial   EventType = "SOCIAL"
)

// EventTypes lists every EventType in display order
var EventTypes = []EventType{
	EventTypeTraining,
	EventTypeRace,
	EventTypeCamp,
	EventTypeSocial,
}

// ParseEventType resolves a user supplied value to an EventType.
// Matching ignores case and surrounding whitespace.
func ParseEventType(value string) (EventType, bool) {
	candidate := EventType(strings.ToUpper(strings.TrimSpace(value)))
	for _, t := range EventTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Category is an editorial blog label
type Category string

const (
	CategoryNews     Category = "Actualites"
	CategoryRace     Category = "Course"
	CategoryTrail    Category = "Trail"
	CategoryTraining Category = "Entrainement"
	CategoryCamp     Category = "Stage"
	CategoryClubLife Category = "Vie du club"
	CategoryResults  Category = "Resultats"
	CategoryAdvice   Category = "Conseils"
)

// Registration statuses. Every status except cancelled counts towards an
// event's registration count.
const (
	RegistrationConfirmed = "CONFIRMED"
	RegistrationWaitlist  = "WAITLIST"
	RegistrationCancelled = "CANCELLED"
)

// RawEvent is a calendar event as read from the events table
type RawEvent struct {
	Id                string
	Title             string
	Description       *string
	Date              time.Time
	Location          string
	Type              EventType
	Difficulty        *string
	MaxParticipants   *int
	RegistrationCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RawBlogEvent is a published blog post carrying an event date
type RawBlogEvent struct {
	Id               string
	Title            string
	Excerpt          *string
	Slug             string
	FeaturedImageUrl *string
	Category         Category
	EventDate        *time.Time
	EventLocation    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FeedSource tells consumers where a FeedItem came from
type FeedSource string

const (
	SourceEvent     FeedSource = "event"
	SourceBlogEvent FeedSource = "blog-event"
)

// FeedItem is the normalized representation of an upcoming event,
// regardless of the table it was read from.
type FeedItem struct {
	Id                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	Date              time.Time  `json:"date"`
	Location          string     `json:"location"`
	Type              EventType  `json:"type"`
	Difficulty        *string    `json:"difficulty"`
	MaxParticipants   *int       `json:"maxParticipants"`
	RegistrationCount int        `json:"registrationCount"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	Source            FeedSource `json:"source"`

	// Only set for blog-events
	Slug             *string `json:"slug,omitempty"`
	FeaturedImageUrl *string `json:"featuredImageUrl,omitempty"`
}

type FeedResponse struct {
	Events     []FeedItem `json:"events"`
	Total      int        `json:"total"`
	TotalPages int        `json:"totalPages"`
}

// EventTypeCategories describes which blog categories feed an EventType
type EventTypeCategories struct {
	Type       EventType  `json:"type"`
	Categories []Category `json:"categories"`
}

// Registration links a member to a calendar event
type Registration struct {
	Id        string
	EventId   string
	UserId    string
	Status    string
	CreatedAt time.Time
}

// Post is a blog post as written by the editorial tooling
type Post struct {
	Id               string
	Title            string
	Slug             string
	Excerpt          *string
	FeaturedImageUrl *string
	Category         Category
	Published        bool
	EventDate        *time.Time
	EventLocation    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
