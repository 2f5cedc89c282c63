package event

import (
	"context"
	"fmt"
	"sort"
)

// DefaultPriority is the subscriber priority used when callers have no
// ordering requirement.
const DefaultPriority = 100

// Handler reacts to a published event. A non-nil error is captured by the
// bus and surfaced through LastPublishErrors; it never interrupts delivery
// to the remaining subscribers.
type Handler func(context.Context, Event) error

// Bus routes published events to subscribers of the matching kind.
//
// # Ordering
//
// Subscribers for a kind run in ascending priority order. Ties are broken
// by a monotonically increasing sequence captured at subscribe time, so
// registration order is the secondary key. Ordering never depends on map
// iteration.
//
// # Fault isolation
//
// Each handler invocation is isolated: a handler that returns an error or
// panics is recorded and dispatch continues with the next subscriber.
// Publish itself never fails and never retries. The bus holds no domain
// state of its own.
//
// Bus is not safe for concurrent use; the engine is cooperatively
// sequential and every publish runs to completion before control returns.
type Bus struct {
	subscribers map[Kind][]subscription
	nextSeq     int
	lastErrors  []error
}

type subscription struct {
	priority int
	seq      int
	handler  Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Kind][]subscription)}
}

// Subscribe registers a handler for a kind at the given priority. Lower
// priorities run first.
func (b *Bus) Subscribe(kind Kind, handler Handler, priority int) {
	if handler == nil {
		return
	}
	rows := append(b.subscribers[kind], subscription{
		priority: priority,
		seq:      b.nextSeq,
		handler:  handler,
	})
	b.nextSeq++
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].priority != rows[j].priority {
			return rows[i].priority < rows[j].priority
		}
		return rows[i].seq < rows[j].seq
	})
	b.subscribers[kind] = rows
}

// SubscribeDefault registers a handler at DefaultPriority.
func (b *Bus) SubscribeDefault(kind Kind, handler Handler) {
	b.Subscribe(kind, handler, DefaultPriority)
}

// Publish dispatches the event to every subscriber of its exact kind, in
// order. Handler failures are collected and retrievable through
// LastPublishErrors until the next publish.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.lastErrors = b.lastErrors[:0]
	if evt == nil {
		return
	}
	for _, sub := range b.subscribers[evt.EventKind()] {
		if err := b.invoke(ctx, sub.handler, evt); err != nil {
			b.lastErrors = append(b.lastErrors, err)
		}
	}
}

// LastPublishErrors returns the handler errors captured by the most recent
// Publish. The returned slice is a copy.
func (b *Bus) LastPublishErrors() []error {
	out := make([]error, len(b.lastErrors))
	copy(out, b.lastErrors)
	return out
}

// invoke runs one handler, converting a panic into an error so a
// misbehaving subscriber can only fail its own contribution.
func (b *Bus) invoke(ctx context.Context, handler Handler, evt Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panic for %s: %v", evt.EventKind(), recovered)
		}
	}()
	return handler(ctx, evt)
}
