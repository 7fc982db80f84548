// Package paging mediates between a filter-driven search provider and a
// scroll-driven consumer.
//
// A Controller lives on a single logical thread (the owner's event loop).
// Fetches run on their own goroutines and hand their results back through
// the post function supplied at construction, so every state mutation
// happens on the owner's loop. Each request captures the generation that
// was current when it was issued; a filter change bumps the generation, so
// the settlement of a superseded request is inert.
package paging

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"vsxbrowse/internal/debounce"
)

// DefaultDebounce is the quiet period before a filter change is searched
const DefaultDebounce = 200 * time.Millisecond

// Options tunes a Controller
type Options struct {
	Debounce  time.Duration      // zero or negative searches on the next loop turn
	Scheduler debounce.Scheduler // nil means debounce.RealScheduler
	Logger    *zap.Logger
	Context   context.Context // parent of every request context
}

// Controller owns the filter, the accumulated items and the bookkeeping of
// in-flight requests
type Controller[T any] struct {
	provider SearchProvider[T]
	sink     ErrorSink
	post     func(func())
	debounce *debounce.Debouncer
	logger   *zap.Logger
	ctx      context.Context

	initialized bool
	base        Filter
	size        int
	state       State[T]

	generation uint64
	nextID     uint64
	inflight   map[uint64]context.CancelFunc
}

// NewController creates a controller. post must run its argument on the
// owner's loop; it is called from fetch and timer goroutines.
func NewController[T any](provider SearchProvider[T], sink ErrorSink, post func(func()), opts Options) *Controller[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if sink == nil {
		sink = ErrorSinkFunc(func(error) {})
	}

	return &Controller[T]{
		provider: provider,
		sink:     sink,
		post:     post,
		debounce: debounce.New(opts.Debounce, opts.Scheduler, post),
		logger:   logger.Named("paging"),
		ctx:      ctx,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

// Initialize sets the base filter and page size and fetches page 0
func (c *Controller[T]) Initialize(filter Filter) {
	c.size = filter.Size
	if c.size <= 0 {
		c.size = DefaultPageSize
	}
	c.base = filter
	c.base.Size = c.size
	c.base.Offset = 0
	c.initialized = true

	// a filter change still waiting for its quiet period is superseded
	c.debounce.Cancel()

	c.reset()
	c.fetch(0, true)
}

// OnFilterChanged schedules a fresh search when the category or query
// changed. Offset and size changes alone are ignored.
func (c *Controller[T]) OnFilterChanged(oldFilter, newFilter Filter) {
	if oldFilter.SameCriteria(newFilter) {
		return
	}
	if !c.initialized {
		c.Initialize(newFilter)
		return
	}

	c.cancelInflight()
	c.state.HasMore = false

	category, query := newFilter.Category, newFilter.Query
	c.debounce.Arm(func() {
		c.base.Category = category
		c.base.Query = query
		c.reset()
		c.fetch(0, true)
	})
}

// LoadMore fetches page pageIndex and appends it
func (c *Controller[T]) LoadMore(pageIndex int) {
	if !c.initialized || pageIndex < 0 {
		return
	}
	c.fetch(pageIndex*c.size, false)
}

// Snapshot returns the current state. The item slice is a copy.
func (c *Controller[T]) Snapshot() State[T] {
	s := c.state
	s.Items = slices.Clone(c.state.Items)
	s.Pending = c.debounce.Pending()
	return s
}

// Filter returns the filter the current items were fetched for
func (c *Controller[T]) Filter() Filter {
	return c.base
}

// PageSize returns the fixed page size
func (c *Controller[T]) PageSize() int {
	return c.size
}

// Close drops any pending debounce and cancels in-flight requests
func (c *Controller[T]) Close() {
	c.debounce.Cancel()
	c.cancelInflight()
}

func (c *Controller[T]) reset() {
	c.cancelInflight()
	c.state = State[T]{Items: []T{}}
}

// cancelInflight invalidates every outstanding request
func (c *Controller[T]) cancelInflight() {
	c.generation++
	for id, cancel := range c.inflight {
		cancel()
		delete(c.inflight, id)
	}
	c.state.Loading = false
}

func (c *Controller[T]) fetch(offset int, replace bool) {
	filter := c.base
	filter.Offset = offset
	filter.Size = c.size

	c.nextID++
	id := c.nextID
	gen := c.generation
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight[id] = cancel
	c.state.Loading = true

	c.logger.Debug("search issued",
		zap.Uint64("request", id),
		zap.Uint64("generation", gen),
		zap.String("category", filter.Category),
		zap.String("query", filter.Query),
		zap.Int("offset", filter.Offset),
		zap.Int("size", filter.Size),
	)

	go func() {
		page, err := c.provider.Search(ctx, filter)
		c.post(func() {
			c.settle(id, gen, replace, page, err)
		})
	}()
}

func (c *Controller[T]) settle(id, gen uint64, replace bool, page Page[T], err error) {
	if cancel, ok := c.inflight[id]; ok {
		cancel()
		delete(c.inflight, id)
	}
	if gen != c.generation {
		c.logger.Debug("discarding stale response", zap.Uint64("request", id), zap.Uint64("generation", gen))
		return
	}
	c.state.Loading = len(c.inflight) > 0

	if err != nil {
		if errors.Is(err, context.Canceled) && c.ctx.Err() != nil {
			// owner is shutting down
			return
		}
		c.logger.Warn("search failed", zap.Uint64("request", id), zap.Error(err))
		c.sink.Report(err)
		return
	}

	if replace {
		c.state.Items = append([]T{}, page.Items...)
	} else {
		c.state.Items = append(c.state.Items, page.Items...)
	}
	c.state.TotalSize = page.TotalSize
	c.state.HasMore = hasMore(len(c.state.Items), len(page.Items), c.size, page.TotalSize)

	c.logger.Debug("page applied",
		zap.Uint64("request", id),
		zap.Int("received", len(page.Items)),
		zap.Int("accumulated", len(c.state.Items)),
		zap.Int("total", page.TotalSize),
		zap.Bool("has_more", c.state.HasMore),
	)
}

// hasMore is true iff the last page was non-empty and full, and the
// accumulated count is still below the server total
func hasMore(accumulated, received, size, total int) bool {
	return received > 0 && received >= size && accumulated < total
}
