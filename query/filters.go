package query

import (
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
)

// UpcomingFilter keeps rows whose instant column is at or after Now.
// Instants are stored as Unix milliseconds.
type UpcomingFilter struct {
	Column string
	Now    time.Time
}

func (f *UpcomingFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	sb.Where(
		sb.IsNotNull(f.Column),
		sb.GreaterEqualThan(f.Column, f.Now.UnixMilli()),
	)
}

// EqualFilter keeps rows where Column equals Value
type EqualFilter struct {
	Column string
	Value  interface{}
}

func (f *EqualFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	sb.Where(sb.Equal(f.Column, f.Value))
}

// InFilter keeps rows where Column is one of Values. An empty list matches
// nothing; callers are expected to skip the query entirely in that case.
type InFilter[T any] struct {
	Column string
	Values []T
}

func (f *InFilter[T]) ApplyFilter(sb *sqlbuilder.SelectBuilder) {
	if len(f.Values) == 0 {
		sb.Where("1 = 0")
		return
	}
	sb.Where(sb.In(f.Column, lo.ToAnySlice(f.Values)...))
}

var _ FilterStrategy = (*UpcomingFilter)(nil)
var _ FilterStrategy = (*EqualFilter)(nil)
var _ FilterStrategy = (*InFilter[string])(nil)
