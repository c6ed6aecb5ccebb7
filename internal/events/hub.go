// Package events delivers backend push notifications to in-process subscribers.
package events

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event names pushed by the backend.
const (
	PointsUpdate = "points_update"
)

// Event is one push notification envelope.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Handler receives events. It runs on the publisher's goroutine.
type Handler func(Event)

// Hub fans events out to subscribers by name.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscription
	log  logrus.FieldLogger
}

// NewHub returns an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		subs: make(map[string]map[string]*Subscription),
		log:  log.WithField("component", "events"),
	}
}

// Subscription is a registered handler.
type Subscription struct {
	ID    string
	event string
	hub   *Hub

	mu     sync.Mutex
	fn     Handler
	active bool
}

// Subscribe registers fn for events named event.
func (h *Hub) Subscribe(event string, fn Handler) *Subscription {
	s := &Subscription{
		ID:     uuid.NewString(),
		event:  event,
		hub:    h,
		fn:     fn,
		active: true,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[event] == nil {
		h.subs[event] = make(map[string]*Subscription)
	}
	h.subs[event][s.ID] = s
	return s
}

// SubscribeJSON registers fn for events named event, decoding each payload
// into T. Payloads that do not decode are logged and skipped.
func SubscribeJSON[T any](h *Hub, event string, fn func(T)) *Subscription {
	return h.Subscribe(event, func(e Event) {
		var v T
		if err := json.Unmarshal(e.Payload, &v); err != nil {
			h.log.WithField("event", e.Name).Warnf("discarding malformed payload: %v", err)
			return
		}
		fn(v)
	})
}

// Unsubscribe removes the subscription. When it returns, the handler is not
// running and will never run again. A handler must not unsubscribe itself.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if m := s.hub.subs[s.event]; m != nil {
		delete(m, s.ID)
		if len(m) == 0 {
			delete(s.hub.subs, s.event)
		}
	}
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.fn(e)
}

// Publish delivers e to every current subscriber of e.Name.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs[e.Name]))
	for _, s := range h.subs[e.Name] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		h.log.WithField("event", e.Name).Debug("no subscribers")
		return
	}
	for _, s := range targets {
		s.deliver(e)
	}
}

// Subscribers returns how many handlers listen for event.
func (h *Hub) Subscribers(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[event])
}
