package websocket

import (
	"context"
	"sync"
)

const queueSize = 256

type queuedEvent struct {
	name string
	args []any
}

// eventQueue runs one connection's events on a single goroutine in the order
// they arrived. The socket library hands each named event to its own
// goroutine, so designer events are routed here instead.
type eventQueue struct {
	mu       sync.Mutex
	handlers map[string]func(...any)

	events chan queuedEvent
	ctx    context.Context
	cancel context.CancelFunc
}

func newEventQueue() *eventQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &eventQueue{
		handlers: make(map[string]func(...any)),
		events:   make(chan queuedEvent, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// On sets the handler for name, replacing any previous one.
func (q *eventQueue) On(name string, fn func(...any)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[name] = fn
}

func (q *eventQueue) Off(names ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, name := range names {
		delete(q.handlers, name)
	}
}

// Push enqueues one incoming packet: the event name followed by its payload.
// It blocks while the queue is full and drops the event once stopped.
func (q *eventQueue) Push(args ...any) {
	if len(args) == 0 {
		return
	}
	name, ok := args[0].(string)
	if !ok {
		return
	}
	select {
	case q.events <- queuedEvent{name: name, args: args[1:]}:
	case <-q.ctx.Done():
	}
}

// Run drains the queue until Stop is called.
func (q *eventQueue) Run() {
	for {
		select {
		case ev := <-q.events:
			q.dispatch(ev)
		case <-q.ctx.Done():
			return
		}
	}
}

func (q *eventQueue) Stop() {
	q.cancel()
}

func (q *eventQueue) dispatch(ev queuedEvent) {
	q.mu.Lock()
	fn := q.handlers[ev.name]
	q.mu.Unlock()
	if fn != nil {
		fn(ev.args...)
	}
}
