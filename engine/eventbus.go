package engine

import (
	"sync"
	"time"
)

type EventType int

type SubscriberID int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// liftEvent is implemented by payloads that describe one lift.
type liftEvent interface {
	liftID() string
}

type subscriber struct {
	id     SubscriberID
	fn     func(Event)
	filter map[EventType]struct{}
}

func (s subscriber) wants(t EventType) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[t]
	return ok
}

// EventBus delivers events two ways. Emit runs subscribers on the caller's
// goroutine. Post queues the event for the bus goroutine started by Start,
// so lift workers never wait on database or Redis subscribers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	nextID      SubscriberID

	queue     chan Event
	closed    bool
	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	running   bool
}

func NewEventBus(queueSize int) *EventBus {
	return &EventBus{
		queue: make(chan Event, queueSize),
		done:  make(chan struct{}),
	}
}

// Subscribe registers a handler for all event types.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	return eb.add(fn, nil)
}

// SubscribeTypes registers a handler for specific event types.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	filter := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		filter[t] = struct{}{}
	}
	return eb.add(fn, filter)
}

// SubscribeLifts registers a handler for every event about a single lift.
func (eb *EventBus) SubscribeLifts(fn func(liftID string, evt Event)) SubscriberID {
	return eb.add(func(evt Event) {
		if le, ok := evt.Payload.(liftEvent); ok {
			fn(le.liftID(), evt)
		}
	}, nil)
}

func (eb *EventBus) add(fn func(Event), filter map[EventType]struct{}) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	eb.subscribers = append(eb.subscribers, subscriber{id: eb.nextID, fn: fn, filter: filter})
	return eb.nextID
}

func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, s := range eb.subscribers {
		if s.id == id {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Emit sends an event to all matching subscribers before returning.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	subs := make([]subscriber, len(eb.subscribers))
	copy(subs, eb.subscribers)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.wants(evt.Type) {
			s.fn(evt)
		}
	}
}

// Post queues an event without blocking. It reports false when the queue is
// full or the bus is closed, and the event is dropped.
func (eb *EventBus) Post(evt Event) bool {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return false
	}
	select {
	case eb.queue <- evt:
		return true
	default:
		return false
	}
}

// Start launches the goroutine that delivers posted events.
func (eb *EventBus) Start() {
	eb.startOnce.Do(func() {
		eb.mu.Lock()
		eb.running = true
		eb.mu.Unlock()
		go func() {
			defer close(eb.done)
			for evt := range eb.queue {
				eb.Emit(evt)
			}
		}()
	})
}

// Close stops accepting posts, then waits until queued events are delivered.
func (eb *EventBus) Close() {
	eb.closeOnce.Do(func() {
		eb.mu.Lock()
		eb.closed = true
		close(eb.queue)
		running := eb.running
		eb.mu.Unlock()
		if running {
			<-eb.done
		}
	})
}
