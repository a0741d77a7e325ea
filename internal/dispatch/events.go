package dispatch

import (
	"sync"
	"time"
)

// Event names published by the dispatcher.
const (
	EventDispatchStart = "dispatch.start"
	EventBackendDone   = "backend.done"
	EventDispatchDone  = "dispatch.done"
)

// Event is a dispatch lifecycle event. Minimal and stable: name, dispatch id,
// optional backend and free-form fields.
type Event struct {
	Name       string         `json:"name"`
	DispatchID string         `json:"dispatch_id"`
	Backend    string         `json:"backend,omitempty"`
	Time       time.Time      `json:"time"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// EventPublisher receives events from the dispatcher. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
