package eventbus

import (
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	"vsxbrowse/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventError         = domain.EventError
	EventSearchFailed  = domain.EventSearchFailed
	EventConfigLoaded  = domain.EventConfigLoaded
	EventConfigSaved   = domain.EventConfigSaved
	EventFilterChanged = domain.EventFilterChanged
)

// Re-export domain event types
type ErrorEvent = domain.ErrorEvent
type SearchFailedEvent = domain.SearchFailedEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type FilterChangedEvent = domain.FilterChangedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	pubMu     sync.RWMutex // held for writing only to flip closed
	closed    bool
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

// New creates a new event bus
func New(logger *zap.Logger) EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
		logger:    logger.Named("eventbus"),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers. It never blocks; when the
// queue is full or the bus is closed the event is dropped.
func (b *bus) Publish(event DomainEvent) {
	b.logger.Debug("publishing event", zap.String("type", string(event.Type())))

	b.pubMu.RLock()
	defer b.pubMu.RUnlock()
	if b.closed {
		b.logger.Warn("event bus closed, dropping event", zap.String("type", string(event.Type())))
		return
	}

	select {
	case b.eventChan <- event:
	default:
		b.logger.Warn("event bus channel full, dropping event", zap.String("type", string(event.Type())))
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops accepting events, waits until every queued event has been
// handled and then stops the dispatcher
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		b.pubMu.Lock()
		b.closed = true
		b.pubMu.Unlock()

		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)

		case <-b.quit:
			// Publish can no longer enqueue, so the queue only shrinks
			for {
				select {
				case event := <-b.eventChan:
					b.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, s := range subs {
		b.call(s.handler, event)
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic",
				zap.String("type", string(event.Type())),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	h(event)
}
