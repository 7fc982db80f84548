package paging

import "context"

// DefaultPageSize is used when a filter arrives without a size
const DefaultPageSize = 10

// Filter holds the query criteria plus the pagination cursor.
// Offset is owned by the Controller; callers never set it.
type Filter struct {
	Category string
	Query    string
	Offset   int
	Size     int
}

// SameCriteria reports whether two filters select the same result set,
// ignoring the pagination cursor
func (f Filter) SameCriteria(other Filter) bool {
	return f.Category == other.Category && f.Query == other.Query
}

// Page is one fetch's worth of results
type Page[T any] struct {
	Items     []T
	TotalSize int // server-side count of all matches
}

// State is what the render surface reads
type State[T any] struct {
	Items     []T
	HasMore   bool
	TotalSize int
	Loading   bool // a request is in flight for the current filter
	Pending   bool // a filter change is waiting for its debounce
}

// SearchProvider fetches one page. Calls may overlap.
type SearchProvider[T any] interface {
	Search(ctx context.Context, filter Filter) (Page[T], error)
}

// SearchFunc adapts a function to SearchProvider
type SearchFunc[T any] func(ctx context.Context, filter Filter) (Page[T], error)

func (f SearchFunc[T]) Search(ctx context.Context, filter Filter) (Page[T], error) {
	return f(ctx, filter)
}

// ErrorSink receives failed fetches
type ErrorSink interface {
	Report(err error)
}

// ErrorSinkFunc adapts a function to ErrorSink
type ErrorSinkFunc func(err error)

func (f ErrorSinkFunc) Report(err error) { f(err) }

// Loader is the part of the controller a scroll host drives
type Loader interface {
	LoadMore(pageIndex int)
}
