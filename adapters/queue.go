// Package adapters holds what every platform binding shares: the single-slot
// queue between an ingestion loop and the runtime's drain loop.
package adapters

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"context"
	"sync"
)

const queueCapacity = 1

// EventQueue has one producer side (the adapter's decode goroutines) and one
// logical consumer (the drain loop). Pushing blocks until the previous event
// has been pulled.
// The data channel is never closed, so pushes racing with Close are safe.
type EventQueue struct {
	events    chan domain.Event
	closed    chan struct{}
	closeOnce sync.Once
	pullMu    sync.Mutex
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make(chan domain.Event, queueCapacity),
		closed: make(chan struct{}),
	}
}

// Push blocks until the slot is free, the queue is closed or ctx ends.
func (q *EventQueue) Push(ctx context.Context, evt domain.Event) error {
	select {
	case <-q.closed:
		return errors.ErrQueueClosed
	default:
	}
	select {
	case q.events <- evt:
		return nil
	case <-q.closed:
		return errors.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pull returns the next event. It returns false once the queue is closed and
// drained, or when ctx ends.
func (q *EventQueue) Pull(ctx context.Context) (domain.Event, bool) {
	q.pullMu.Lock()
	defer q.pullMu.Unlock()

	select {
	case evt := <-q.events:
		return evt, true
	default:
	}
	select {
	case evt := <-q.events:
		return evt, true
	case <-q.closed:
		select {
		case evt := <-q.events:
			return evt, true
		default:
			return domain.Event{}, false
		}
	case <-ctx.Done():
		return domain.Event{}, false
	}
}

// Close ends the stream. Calling it more than once is fine.
func (q *EventQueue) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
}

func (q *EventQueue) Closed() bool {
	select {
	case <-q.closed:
		return true
	default:
		return false
	}
}

func (q *EventQueue) Len() int { return len(q.events) }

func (q *EventQueue) Cap() int { return cap(q.events) }
