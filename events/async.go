package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/senpow/italy-restaurant-booking/utils"
)

const (
	DefaultQueueSize      = 256
	DefaultPublishTimeout = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event queue closed")
)

// Async hands events to one background worker so that callers never wait on
// the sinks. Events are delivered in the order they were queued, each under
// its own timeout. A full queue drops the event.
type Async struct {
	next    Publisher
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu      sync.Mutex
	drained *sync.Cond
	pending int
	closed  bool
}

func NewAsync(next Publisher, size int, timeout time.Duration) *Async {
	if next == nil {
		next = Nop{}
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	a := &Async{
		next:    next,
		timeout: timeout,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
	a.drained = sync.NewCond(&a.mu)
	go a.run()
	return a
}

// Publish queues e and returns at once. ctx is not used for delivery, the
// worker applies its own timeout.
func (a *Async) Publish(_ context.Context, e Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- e:
		a.pending++
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for e := range a.queue {
		a.deliver(e)

		a.mu.Lock()
		a.pending--
		if a.pending == 0 {
			a.drained.Broadcast()
		}
		a.mu.Unlock()
	}
}

func (a *Async) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.next.Publish(ctx, e); err != nil {
		utils.ErrorLogger.Printf("Error publishing %s: %v", e.Topic(), err)
	}
}

// Flush blocks until every queued event has been handed to the sinks.
func (a *Async) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.pending > 0 {
		a.drained.Wait()
	}
}

// Close stops accepting events and waits for the queue to drain.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
	return nil
}
