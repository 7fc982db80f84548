package paging

import "context"

// Loop serializes callbacks onto whichever goroutine calls Next. It is the
// host loop for code that has no UI event loop of its own.
type Loop struct {
	queue chan func()
}

// NewLoop creates a loop with the given queue capacity
func NewLoop(capacity int) *Loop {
	if capacity < 1 {
		capacity = 1
	}
	return &Loop{queue: make(chan func(), capacity)}
}

// Post queues fn; safe from any goroutine
func (l *Loop) Post(fn func()) {
	l.queue <- fn
}

// Next waits for one callback and runs it on the caller's goroutine
func (l *Loop) Next(ctx context.Context) error {
	select {
	case fn := <-l.queue:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
