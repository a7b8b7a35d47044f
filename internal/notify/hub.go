package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/tellhub/internal/protocol"
)

// Subscriber receives pushed messages.
type Subscriber interface {
	ID() string
	Push(msg protocol.Message) error
}

// Source builds the message sent on each notification.
type Source func(ctx context.Context) (protocol.Message, error)

// Logger is the logging surface used by the hub.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Hub is a set of subscribers notified together.
type Hub struct {
	name   string
	source Source

	mu     sync.RWMutex
	order  []string
	subs   map[string]Subscriber
	logger Logger
}

// NewHub creates a hub whose notifications are built by source.
func NewHub(name string, source Source) *Hub {
	return &Hub{
		name:   name,
		source: source,
		subs:   make(map[string]Subscriber),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger.
func (h *Hub) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	h.mu.Lock()
	h.logger = l
	h.mu.Unlock()
}

// Name returns the hub name.
func (h *Hub) Name() string { return h.name }

// Subscribe adds s. It returns false if a subscriber with the same ID is
// already present, in which case nothing changes.
func (h *Hub) Subscribe(s Subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := s.ID()
	if _, exists := h.subs[id]; exists {
		return false
	}
	h.subs[id] = s
	h.order = append(h.order, id)
	return true
}

// Unsubscribe removes the subscriber with id. Unknown ids are ignored.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subs[id]; !exists {
		return
	}
	delete(h.subs, id)
	for i, sid := range h.order {
		if sid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify builds the current state once and pushes it to every subscriber.
//
// Subscribers are pushed synchronously in subscription order from a
// snapshot, so they may subscribe or unsubscribe during delivery. A failing
// or panicking subscriber is logged and skipped. If the source fails,
// nothing is pushed.
func (h *Hub) Notify(ctx context.Context) {
	logger := h.currentLogger()

	msg, err := h.source(ctx)
	if err != nil {
		logger.Error("notification source failed", "hub", h.name, "error", err)
		return
	}

	targets := h.snapshot()
	delivered := 0
	for _, s := range targets {
		if err := h.push(s, msg); err != nil {
			logger.Warn("push failed", "hub", h.name, "subscriber", s.ID(), "error", err)
			continue
		}
		delivered++
	}

	logger.Debug("notified subscribers",
		"hub", h.name,
		"kind", string(msg.Kind),
		"delivered", delivered,
		"subscribers", len(targets),
	)
}

func (h *Hub) snapshot() []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Subscriber, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.subs[id])
	}
	return out
}

func (h *Hub) currentLogger() Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.logger
}

// push delivers to one subscriber, converting a panic into an error.
func (h *Hub) push(s Subscriber, msg protocol.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return s.Push(msg)
}
