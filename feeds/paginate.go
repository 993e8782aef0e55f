package feeds

import (
	"slices"

	"github.com/StephRoos/ladtc-sub000/models"
)

// Merge concatenates both sources and sorts the result by date. The sort
// is stable: items sharing a date keep events before blog-events and each
// source's own order.
func Merge(events, blogEvents []models.FeedItem) []models.FeedItem {
	merged := make([]models.FeedItem, 0, len(events)+len(blogEvents))
	merged = append(merged, events...)
	merged = append(merged, blogEvents...)

	slices.SortStableFunc(merged, func(a, b models.FeedItem) int {
		return a.Date.Compare(b.Date)
	})

	return merged
}

// Paginate slices one page out of a merged feed. A page past the end is
// empty but still reports the totals.
func Paginate(items []models.FeedItem, page, perPage int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := len(items)
	result := Page{
		Items:      []models.FeedItem{},
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	skip := (page - 1) * perPage
	if skip >= total {
		return result
	}

	end := min(skip+perPage, total)
	result.Items = slices.Clone(items[skip:end])

	return result
}

// MergeSortPaginate merges both normalized sources and returns the
// requested page
func MergeSortPaginate(events, blogEvents []models.FeedItem, page, perPage int) Page {
	return Paginate(Merge(events, blogEvents), page, perPage)
}

// BuildResponse turns a page into the public response payload
func BuildResponse(page Page) *models.FeedResponse {
	events := page.Items
	if events == nil {
		events = []models.FeedItem{}
	}

	return &models.FeedResponse{
		Events:     events,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}
