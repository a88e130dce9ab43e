// Package events provides the synchronous change-notification bus the
// store publishes on.
package events

import (
	"sync"
	"time"

	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// Type identifies a kind of store change.
type Type string

const (
	SequenceCreated Type = "sequence_created"
	SequenceUpdated Type = "sequence_updated"
	SegmentCreated  Type = "segment_created"
	BoundaryChanged Type = "boundary_changed"
)

// AllTypes lists every event type, for subscribers that want the full feed.
var AllTypes = []Type{SequenceCreated, SequenceUpdated, SegmentCreated, BoundaryChanged}

// Event describes one store change.
type Event struct {
	Type       Type
	SequenceID types.SequenceID
	SegmentID  types.SegmentID
	SourceFile string
	At         time.Time
}

// Handler receives events synchronously on the emitting goroutine.
type Handler func(Event)

// Bus is a synchronous multicast notifier keyed by event type. Emit invokes
// every handler registered for the event's type, in registration order,
// before returning. There is no queue and no recovery: a panicking handler
// propagates to the emitter after earlier handlers have already run.
//
// A Bus is owned by the store that publishes on it; it is never a
// process-wide singleton, so independent stores can coexist.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for the given event type. Multiple handlers
// for the same type all fire, in the order they were registered.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Emit delivers the event to all handlers registered for its type.
func (b *Bus) Emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[ev.Type]...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}
