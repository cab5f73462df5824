package events

import (
	"context"
	"sync"

	"github.com/civicai/backend/internal/models"
)

// Signals emitted after each lifecycle transition.
const (
	SignalSubmitted = "issue submitted"
	SignalAssigned  = "issue assigned"
	SignalResolved  = "issue resolved"
)

// Event carries the full notification payload of a transition. Subscribers
// may listen without affecting engine correctness.
type Event struct {
	Signal       string              `json:"signal"`
	Notification models.Notification `json:"notification"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Bus is an in-process fan-out publisher for local subscribers (UI, logger).
type Bus struct {
	mu   sync.RWMutex
	subs map[int]func(Event)
	next int
}

func NewBus() *Bus {
	return &Bus{subs: map[int]func(Event){}}
}

// Subscribe registers fn and returns an unsubscribe func. fn runs
// synchronously on the publishing goroutine.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		fn(event)
	}
	return nil
}

// Fanout publishes to every wrapped publisher, returning the first error
// after all have been attempted.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
