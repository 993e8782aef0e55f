package feeds

import (
	"github.com/StephRoos/ladtc-sub000/models"
)

// NewRequest clamps raw query values into a usable Request. Nothing here is
// an error: a page below 1 becomes 1, a missing or non-positive per page
// becomes DefaultPerPage, anything above MaxPerPage is capped and an
// unknown event type means no type filter.
func NewRequest(page, perPage int, eventType string) Request {
	req := Request{
		Page:    page,
		PerPage: perPage,
	}

	if req.Page < 1 {
		req.Page = DefaultPage
	}

	if req.PerPage < 1 {
		req.PerPage = DefaultPerPage
	} else if req.PerPage > MaxPerPage {
		req.PerPage = MaxPerPage
	}

	if parsed, ok := models.ParseEventType(eventType); ok {
		req.Type = &parsed
	}

	return req
}
