package query

import (
	"github.com/huandu/go-sqlbuilder"
)

// FilterStrategy adds WHERE conditions to the query
type FilterStrategy interface {
	// ApplyFilter adds filter conditions to the query builder
	ApplyFilter(sb *sqlbuilder.SelectBuilder)
}

// Apply runs every filter against the builder in order
func Apply(sb *sqlbuilder.SelectBuilder, filters ...FilterStrategy) {
	for _, filter := range filters {
		filter.ApplyFilter(sb)
	}
}
