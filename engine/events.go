package engine

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventType tags a cache telemetry event.
type EventType string

const (
	EventHit        EventType = "hit"
	EventMiss       EventType = "miss"
	EventStore      EventType = "store"
	EventEvict      EventType = "evict"
	EventExpire     EventType = "expire"
	EventInvalidate EventType = "invalidate"
)

// Event is published on every cache operation. Subscribers (cost
// dashboard, websocket bridge, console logger) consume independently.
type Event struct {
	Type      EventType `json:"type"`
	Key       string    `json:"key"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	FromCache bool      `json:"from_cache,omitempty"`
	At        time.Time `json:"at"`
}

// Subscriber receives published events. A failing (panicking) subscriber
// must not affect cache correctness; panics are recovered and logged.
type Subscriber func(Event)

const eventHistorySize = 256

// EventPublisher fans cache events out to subscribers and keeps a small
// in-memory ring of recent events for the monitoring surface. It is an
// explicit instance, not a process-wide global, so independent engines can
// be tested in isolation.
type EventPublisher struct {
	mu      sync.RWMutex
	subs    map[int]Subscriber
	nextID  int
	history [eventHistorySize]Event
	histLen int
	histPos int
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns an unsubscribe function.
func (p *EventPublisher) Subscribe(fn Subscriber) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Publish delivers ev to every subscriber and records it in the ring.
func (p *EventPublisher) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	p.mu.Lock()
	p.history[p.histPos] = ev
	p.histPos = (p.histPos + 1) % eventHistorySize
	if p.histLen < eventHistorySize {
		p.histLen++
	}
	subs := make([]Subscriber, 0, len(p.subs))
	for _, s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("[EVENTS] Subscriber panic: %v", r)
				}
			}()
			s(ev)
		}()
	}
}

// Recent returns the buffered events, newest last.
func (p *EventPublisher) Recent() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Event, 0, p.histLen)
	start := p.histPos - p.histLen
	for i := 0; i < p.histLen; i++ {
		idx := (start + i + eventHistorySize) % eventHistorySize
		out = append(out, p.history[idx])
	}
	return out
}

func (p *EventPublisher) publish(t EventType, key string, size int64) {
	p.Publish(Event{Type: t, Key: key, SizeBytes: size})
}
