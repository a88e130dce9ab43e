package events

import (
	"testing"

	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

func TestBus_MulticastInOrder(t *testing.T) {
	bus := NewBus()

	var calls []string
	bus.Subscribe(SegmentCreated, func(ev Event) { calls = append(calls, "first") })
	bus.Subscribe(SegmentCreated, func(ev Event) { calls = append(calls, "second") })

	bus.Emit(Event{Type: SegmentCreated, SegmentID: types.SegmentID("seg-1")})

	if len(calls) != 2 {
		t.Fatalf("expected 2 handler calls, got %d", len(calls))
	}
	if calls[0] != "first" || calls[1] != "second" {
		t.Errorf("handlers fired out of registration order: %v", calls)
	}
}

func TestBus_TypeIsolation(t *testing.T) {
	bus := NewBus()

	fired := false
	bus.Subscribe(SequenceCreated, func(ev Event) { fired = true })

	bus.Emit(Event{Type: SegmentCreated})
	if fired {
		t.Error("handler fired for a type it never subscribed to")
	}

	bus.Emit(Event{Type: SequenceCreated})
	if !fired {
		t.Error("handler did not fire for its subscribed type")
	}
}

func TestBus_Synchronous(t *testing.T) {
	bus := NewBus()

	delivered := false
	bus.Subscribe(BoundaryChanged, func(ev Event) { delivered = true })
	bus.Emit(Event{Type: BoundaryChanged})

	// Emit must not return before all handlers ran.
	if !delivered {
		t.Error("Emit returned before the handler ran")
	}
}

func TestBus_StampsTime(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(SequenceUpdated, func(ev Event) { got = ev })
	bus.Emit(Event{Type: SequenceUpdated})

	if got.At.IsZero() {
		t.Error("expected Emit to stamp a non-zero time")
	}
}

func TestBus_NoHandlers(t *testing.T) {
	// Emitting with no subscribers is a no-op, not a panic.
	NewBus().Emit(Event{Type: SegmentCreated})
}
