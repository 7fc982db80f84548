// Package scroll tracks a cursor over a growing list and asks for the next
// page when the viewport nears the end of what has been loaded.
package scroll

import "vsxbrowse/internal/paging"

// DefaultThreshold is how many unseen rows may remain below the viewport
// before the next page is requested
const DefaultThreshold = 3

// Host owns the cursor and viewport of a paged list
type Host struct {
	threshold int
	pageSize  int

	cursor int
	offset int
	height int

	awaiting   bool
	awaitCount int
	stalled    bool // the last requested page settled without adding rows
}

// New creates a host for pages of pageSize rows
func New(pageSize, threshold int) *Host {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Host{threshold: threshold, pageSize: pageSize, height: 1}
}

// SetHeight sets how many rows are visible
func (h *Host) SetHeight(rows int) {
	if rows < 1 {
		rows = 1
	}
	h.height = rows
	h.follow()
}

// MoveBy moves the cursor by delta rows within a list of total rows
func (h *Host) MoveBy(delta, total int) {
	h.cursor += delta
	h.clamp(total)
	h.follow()
	if delta != 0 {
		h.stalled = false
	}
}

// Home jumps to the first row
func (h *Host) Home() {
	h.cursor = 0
	h.offset = 0
}

// End jumps to the last row
func (h *Host) End(total int) {
	h.cursor = total - 1
	h.clamp(total)
	h.follow()
	h.stalled = false
}

func (h *Host) Cursor() int { return h.cursor }
func (h *Host) Offset() int { return h.offset }
func (h *Host) Height() int { return h.height }

// Window returns the half-open range of visible rows in a list of total rows
func (h *Host) Window(total int) (start, end int) {
	start = min(h.offset, total)
	end = min(h.offset+h.height, total)
	return start, end
}

// Reset moves back to the top and forgets any outstanding request. Call it
// whenever the list is replaced.
func (h *Host) Reset() {
	h.cursor = 0
	h.offset = 0
	h.awaiting = false
	h.awaitCount = 0
	h.stalled = false
}

// Check requests the next page from loader when fewer than threshold rows
// remain below the viewport. The page index is derived from count so a page
// that failed is requested again rather than skipped. After a failure no
// further request is made until the cursor moves.
func (h *Host) Check(count int, hasMore, loading bool, loader paging.Loader) bool {
	if h.awaiting {
		if loading {
			return false
		}
		h.awaiting = false
		if count == h.awaitCount {
			h.stalled = true
		}
	}
	if h.stalled || loading || !hasMore || count == 0 {
		return false
	}
	if count-(h.offset+h.height) >= h.threshold {
		return false
	}

	h.awaiting = true
	h.awaitCount = count
	loader.LoadMore(count / h.pageSize)
	return true
}

func (h *Host) clamp(total int) {
	if h.cursor >= total {
		h.cursor = total - 1
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
}

// follow scrolls the viewport so the cursor stays visible
func (h *Host) follow() {
	if h.cursor < h.offset {
		h.offset = h.cursor
	}
	if h.cursor >= h.offset+h.height {
		h.offset = h.cursor - h.height + 1
	}
	if h.offset < 0 {
		h.offset = 0
	}
}
