package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
)

const DefaultHistory = 256

// Handler receives every emitted event.
type Handler func(ctx context.Context, event events.Event)

// Bus is an in-process EventSink. Handlers run synchronously inside Emit,
// in subscription order, outside the bus lock, so a slow handler does not
// hold up emitters of unrelated accounts. Callers that need ordering for
// an account serialize their Emit calls for it. The last events are kept
// for Recent.
type Bus struct {
	mu       sync.Mutex
	handlers map[int]Handler
	order    []int
	nextID   int
	history  []events.Event
	capacity int
}

// NewBus keeps up to capacity recent events; capacity <= 0 uses DefaultHistory.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &Bus{
		handlers: make(map[int]Handler),
		capacity: capacity,
	}
}

// Subscribe registers h and returns a function removing it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Emit records the event and then runs a snapshot of the handlers without
// holding the bus lock.
func (b *Bus) Emit(ctx context.Context, event events.Event) {
	b.mu.Lock()
	b.history = append(b.history, event)
	if len(b.history) > b.capacity {
		b.history = b.history[len(b.history)-b.capacity:]
	}

	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// Recent returns up to n of the latest events, oldest first. n <= 0 returns all kept.
func (b *Bus) Recent(n int) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || n > len(b.history) {
		n = len(b.history)
	}
	out := make([]events.Event, n)
	copy(out, b.history[len(b.history)-n:])
	return out
}

var _ interfaces.EventSink = (*Bus)(nil)
