package paging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsxbrowse/internal/debounce"
)

type item struct {
	Namespace string
	Name      string
}

func items(prefix string, from, n int) []item {
	out := make([]item, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, item{Namespace: prefix, Name: fmt.Sprintf("ext%d", i)})
	}
	return out
}

type reply struct {
	page Page[item]
	err  error
}

type request struct {
	ctx    context.Context
	filter Filter
	reply  chan reply
}

func (r request) respond(page Page[item]) { r.reply <- reply{page: page} }
func (r request) fail(err error)          { r.reply <- reply{err: err} }

// blockingProvider hands every call to the test and waits for an answer,
// ignoring cancellation like a transport that completes anyway
type blockingProvider struct {
	requests chan request
}

func (p *blockingProvider) Search(ctx context.Context, filter Filter) (Page[item], error) {
	r := request{ctx: ctx, filter: filter, reply: make(chan reply, 1)}
	p.requests <- r
	res := <-r.reply
	return res.page, res.err
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool { t.stopped = true; return true }

type fakeScheduler struct {
	timers []*fakeTimer
	delays []time.Duration
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) debounce.Stopper {
	t := &fakeTimer{fn: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

type recordingSink struct {
	errs []error
}

func (s *recordingSink) Report(err error) { s.errs = append(s.errs, err) }

type harness struct {
	t        *testing.T
	loop     *Loop
	provider *blockingProvider
	sched    *fakeScheduler
	sink     *recordingSink
	ctrl     *Controller[item]
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, Options{})
}

func newHarnessWith(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		loop:     NewLoop(16),
		provider: &blockingProvider{requests: make(chan request, 16)},
		sched:    &fakeScheduler{},
		sink:     &recordingSink{},
	}
	opts.Scheduler = h.sched
	h.ctrl = NewController[item](h.provider, h.sink, h.loop.Post, opts)
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) nextRequest() request {
	h.t.Helper()
	select {
	case r := <-h.provider.requests:
		return r
	case <-time.After(2 * time.Second):
		h.t.Fatal("expected a search request")
		return request{}
	}
}

// settle runs one posted callback on the test goroutine
func (h *harness) settle() {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(h.t, h.loop.Next(ctx))
}

// fire expires timer i and runs the action it posts
func (h *harness) fire(i int) {
	h.t.Helper()
	require.Greater(h.t, len(h.sched.timers), i)
	h.sched.timers[i].fn()
	h.settle()
}

func (h *harness) noMoreRequests() {
	h.t.Helper()
	assert.Never(h.t, func() bool { return len(h.provider.requests) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func (h *harness) load(pageIndex int, page Page[item]) {
	h.t.Helper()
	h.ctrl.LoadMore(pageIndex)
	h.nextRequest().respond(page)
	h.settle()
}

func TestInitialLoad(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10, Offset: 0})

	req := h.nextRequest()
	assert.Equal(t, 0, req.filter.Offset)
	assert.Equal(t, 10, req.filter.Size)

	pending := h.ctrl.Snapshot()
	assert.True(t, pending.Loading)
	assert.Empty(t, pending.Items)
	assert.False(t, pending.HasMore)

	req.respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Items, 10)
	assert.True(t, snap.HasMore)
	assert.Equal(t, 35, snap.TotalSize)
	assert.False(t, snap.Loading)
	assert.Empty(t, h.sink.errs)
}

func TestInitializeDefaultsPageSize(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Query: "python", Offset: 40})

	req := h.nextRequest()
	assert.Equal(t, DefaultPageSize, req.filter.Size)
	assert.Equal(t, 0, req.filter.Offset, "caller offsets are ignored")
	assert.Equal(t, "python", req.filter.Query)
	assert.Equal(t, DefaultPageSize, h.ctrl.PageSize())
}

func TestLoadMoreUsesPageOffset(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10, Category: "Themes"})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 100})
	h.settle()

	h.ctrl.LoadMore(3)
	req := h.nextRequest()
	assert.Equal(t, 30, req.filter.Offset)
	assert.Equal(t, 10, req.filter.Size)
	assert.Equal(t, "Themes", req.filter.Category)
	req.respond(Page[item]{Items: items("a", 30, 10), TotalSize: 100})
	h.settle()
}

func TestExhaustion(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	h.load(1, Page[item]{Items: items("a", 10, 10), TotalSize: 35})
	assert.True(t, h.ctrl.Snapshot().HasMore)
	h.load(2, Page[item]{Items: items("a", 20, 10), TotalSize: 35})
	assert.True(t, h.ctrl.Snapshot().HasMore)
	h.load(3, Page[item]{Items: items("a", 30, 5), TotalSize: 35})

	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Items, 35)
	assert.False(t, snap.HasMore)
}

func TestExhaustionOnFullLastPage(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 30})
	h.settle()
	h.load(1, Page[item]{Items: items("a", 10, 10), TotalSize: 30})
	h.load(2, Page[item]{Items: items("a", 20, 10), TotalSize: 30})

	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Items, 30)
	assert.False(t, snap.HasMore, "accumulated count reached the total even though the page was full")
}

func TestShortPageEndsPagination(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 100})
	h.settle()

	h.load(1, Page[item]{Items: items("a", 10, 4), TotalSize: 100})

	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Items, 14)
	assert.Less(t, len(snap.Items), snap.TotalSize)
	assert.False(t, snap.HasMore, "a page smaller than the page size ends pagination")
}

func TestZeroTotalHasNoMore(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().respond(Page[item]{TotalSize: 0})
	h.settle()

	snap := h.ctrl.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.HasMore)
}

func TestHasMoreDualCondition(t *testing.T) {
	cases := []struct {
		name                             string
		accumulated, received, size, tot int
		want                             bool
	}{
		{"full page below total", 20, 10, 10, 35, true},
		{"full page reaching total", 30, 10, 10, 30, false},
		{"short page below total", 14, 4, 10, 100, false},
		{"empty page", 10, 0, 10, 35, false},
		{"zero total", 0, 0, 10, 0, false},
		{"oversized page below total", 12, 12, 10, 50, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasMore(tc.accumulated, tc.received, tc.size, tc.tot))
		})
	}
}

func TestFilterChangeIsDebounced(t *testing.T) {
	h := newHarness(t)
	base := Filter{Size: 10}
	h.ctrl.Initialize(base)
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	a := Filter{Size: 10, Query: "a"}
	b := Filter{Size: 10, Query: "ab"}
	h.ctrl.OnFilterChanged(base, a)
	h.ctrl.OnFilterChanged(a, b)

	require.Len(t, h.sched.timers, 2)
	assert.True(t, h.sched.timers[0].stopped)
	assert.True(t, h.ctrl.Snapshot().Pending)
	assert.False(t, h.ctrl.Snapshot().HasMore, "a pending reset hides the load-more trigger")

	// the superseded timer is inert even if it fires
	h.sched.timers[0].fn()
	h.settle()
	h.noMoreRequests()

	h.fire(1)
	req := h.nextRequest()
	assert.Equal(t, "ab", req.filter.Query)
	assert.Equal(t, 0, req.filter.Offset)
	h.noMoreRequests()

	snap := h.ctrl.Snapshot()
	assert.Empty(t, snap.Items, "state is reset when the debounced search fires")
	assert.False(t, snap.Pending)
	assert.True(t, snap.Loading)

	req.respond(Page[item]{Items: items("b", 0, 3), TotalSize: 3})
	h.settle()
	assert.Equal(t, items("b", 0, 3), h.ctrl.Snapshot().Items)
	assert.Equal(t, "ab", h.ctrl.Filter().Query)
}

func TestCursorOnlyChangesDoNotReset(t *testing.T) {
	h := newHarness(t)
	base := Filter{Size: 10, Query: "go"}
	h.ctrl.Initialize(base)
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	h.ctrl.OnFilterChanged(base, Filter{Size: 20, Query: "go", Offset: 50})
	assert.Empty(t, h.sched.timers)
	assert.Len(t, h.ctrl.Snapshot().Items, 10)
	h.noMoreRequests()
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	h := newHarness(t)
	a := Filter{Size: 10, Query: "a"}
	b := Filter{Size: 10, Query: "b"}

	h.ctrl.Initialize(a)
	reqA := h.nextRequest()

	h.ctrl.OnFilterChanged(a, b)
	assert.ErrorIs(t, reqA.ctx.Err(), context.Canceled, "the superseded request context is cancelled")

	h.fire(0)
	reqB := h.nextRequest()
	reqB.respond(Page[item]{Items: items("b", 0, 10), TotalSize: 20})
	h.settle()

	// A's transport call completes anyway, after B
	reqA.respond(Page[item]{Items: items("a", 0, 10), TotalSize: 99})
	h.settle()

	snap := h.ctrl.Snapshot()
	assert.Equal(t, items("b", 0, 10), snap.Items)
	assert.Equal(t, 20, snap.TotalSize)
	assert.Empty(t, h.sink.errs)
}

func TestStaleResponseBeforeDebounceFires(t *testing.T) {
	h := newHarness(t)
	a := Filter{Size: 10, Query: "a"}
	b := Filter{Size: 10, Query: "b"}

	h.ctrl.Initialize(a)
	reqA := h.nextRequest()
	h.ctrl.OnFilterChanged(a, b)

	reqA.respond(Page[item]{Items: items("a", 0, 10), TotalSize: 99})
	h.settle()
	assert.Empty(t, h.ctrl.Snapshot().Items)

	h.fire(0)
	h.nextRequest().respond(Page[item]{Items: items("b", 0, 2), TotalSize: 2})
	h.settle()
	assert.Equal(t, items("b", 0, 2), h.ctrl.Snapshot().Items)
}

func TestStaleFailureIsInert(t *testing.T) {
	h := newHarness(t)
	a := Filter{Size: 10, Query: "a"}
	b := Filter{Size: 10, Query: "b"}

	h.ctrl.Initialize(a)
	reqA := h.nextRequest()
	h.ctrl.OnFilterChanged(a, b)

	reqA.fail(errors.New("connection reset"))
	h.settle()
	assert.Empty(t, h.sink.errs, "a cancelled fetch must not reach the error path")
}

func TestErrorLeavesStateUntouched(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	before := h.ctrl.Snapshot()
	boom := errors.New("registry unavailable")

	h.ctrl.LoadMore(1)
	h.nextRequest().fail(boom)
	h.settle()

	assert.Equal(t, before, h.ctrl.Snapshot())
	require.Len(t, h.sink.errs, 1)
	assert.Same(t, boom, h.sink.errs[0])
}

func TestFailedInitialLoadHasNoMore(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 10})
	h.nextRequest().fail(errors.New("dns failure"))
	h.settle()

	snap := h.ctrl.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.HasMore)
	assert.False(t, snap.Loading)
	assert.Len(t, h.sink.errs, 1)
}

func TestAppendOrderKeepsDuplicates(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 2})
	x, y, z := item{"ns", "x"}, item{"ns", "y"}, item{"ns", "z"}

	h.nextRequest().respond(Page[item]{Items: []item{x, y}, TotalSize: 10})
	h.settle()
	h.load(1, Page[item]{Items: []item{y, z}, TotalSize: 10})

	assert.Equal(t, []item{x, y, y, z}, h.ctrl.Snapshot().Items)
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Initialize(Filter{Size: 2})
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 2), TotalSize: 2})
	h.settle()

	snap := h.ctrl.Snapshot()
	snap.Items[0] = item{"mutated", "mutated"}
	assert.Equal(t, items("a", 0, 2), h.ctrl.Snapshot().Items)
}

func TestLoadMoreBeforeInitializeIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.ctrl.LoadMore(1)
	h.noMoreRequests()
}

func TestCloseCancelsEverything(t *testing.T) {
	h := newHarness(t)
	base := Filter{Size: 10}
	h.ctrl.Initialize(base)
	req := h.nextRequest()
	h.ctrl.OnFilterChanged(base, Filter{Size: 10, Query: "x"})

	h.ctrl.Close()
	assert.Error(t, req.ctx.Err())
	assert.False(t, h.ctrl.Snapshot().Pending)

	req.respond(Page[item]{Items: items("a", 0, 10), TotalSize: 10})
	h.settle()
	assert.Empty(t, h.ctrl.Snapshot().Items)
}

func TestDebounceDelayIsUsedAsConfigured(t *testing.T) {
	cases := map[string]struct {
		configured time.Duration
		want       time.Duration
	}{
		"default": {configured: DefaultDebounce, want: DefaultDebounce},
		"custom":  {configured: 350 * time.Millisecond, want: 350 * time.Millisecond},
		"zero":    {configured: 0, want: 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarnessWith(t, Options{Debounce: tc.configured})
			base := Filter{Size: 10}
			h.ctrl.Initialize(base)
			h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
			h.settle()

			h.ctrl.OnFilterChanged(base, Filter{Size: 10, Query: "go"})
			require.Equal(t, []time.Duration{tc.want}, h.sched.delays)

			h.fire(0)
			assert.Equal(t, "go", h.nextRequest().filter.Query)
		})
	}
}

func TestInitializeSupersedesPendingFilterChange(t *testing.T) {
	h := newHarness(t)
	base := Filter{Size: 10}
	h.ctrl.Initialize(base)
	h.nextRequest().respond(Page[item]{Items: items("a", 0, 10), TotalSize: 35})
	h.settle()

	next := Filter{Size: 10, Query: "go"}
	h.ctrl.OnFilterChanged(base, next)
	require.Len(t, h.sched.timers, 1)

	h.ctrl.Initialize(next)
	assert.True(t, h.sched.timers[0].stopped)
	assert.False(t, h.ctrl.Snapshot().Pending)
	req := h.nextRequest()
	assert.Equal(t, "go", req.filter.Query)

	// the old timer expiring late must not reset the list again
	h.sched.timers[0].fn()
	h.settle()
	h.noMoreRequests()

	req.respond(Page[item]{Items: items("go", 0, 10), TotalSize: 12})
	h.settle()
	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Items, 10)
	assert.True(t, snap.HasMore)
}
