package engine

import "sync"

// subscriberBufferSize is the channel buffer for each event subscriber.
// Events are dropped for a subscriber that falls this far behind.
const subscriberBufferSize = 256

// Event types published by the engine.
const (
	EventStepStarted   = "step_started"
	EventStepCompleted = "step_completed"
	EventCellUpdated   = "cell_updated"
	EventCellFailed    = "cell_failed"
	EventGridResized   = "grid_resized"
)

// Event is one engine state change. X and Y are meaningful only for cell
// events, Cols and Rows only for resizes; StepID is empty for single-cell
// updates and manual edits.
type Event struct {
	Type   string `json:"type"`
	StepID string `json:"step_id,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Cols   int    `json:"cols,omitempty"`
	Rows   int    `json:"rows,omitempty"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Broker fans engine events out to SSE subscribers. It is safe for
// concurrent use. There is a single stream: every subscriber sees every
// event published after it subscribed.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]chan Event),
	}
}

// Subscribe returns a channel receiving all future events and an
// unsubscribe function. After Close, the returned channel is immediately
// closed.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish sends an event to all subscribers. Events are dropped for
// subscribers whose buffers are full so a slow client cannot stall the
// engine.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Drop for slow subscribers.
		}
	}
}

// Close shuts the broker down: all subscriber channels are closed and
// future Subscribe calls return a closed channel. Used at process
// shutdown.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
