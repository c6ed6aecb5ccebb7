// Package store holds the process-wide domain state the sync layer writes and
// the presentation layer reads.
//
// Every field has exactly one writer role (the status or details poller,
// the token refresh manager, the event listener, the hardware sampler, or a
// user action). Values are guarded by a mutex so readers on other goroutines
// always see a whole value, but nothing orders writes from different roles.
package store

import "sync"

// Value is a last-writer-wins container with change notification.
// The zero Value is ready to use and holds T's zero value.
type Value[T any] struct {
	mu      sync.RWMutex
	v       T
	version uint64

	subMu  sync.Mutex
	subs   map[uint64]*subscription[T]
	nextID uint64
}

type subscription[T any] struct {
	mu     sync.Mutex
	active bool
	fn     func(T)
}

func (s *subscription[T]) deliver(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.fn(v)
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (s *Value[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Version counts the writes made so far.
func (s *Value[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Set replaces the value and notifies subscribers.
func (s *Value[T]) Set(v T) {
	s.mu.Lock()
	s.v = v
	s.version++
	s.mu.Unlock()
	s.notify(v)
}

// SetIf replaces the value only while Version still equals version. It
// reports whether the write happened.
func (s *Value[T]) SetIf(version uint64, v T) bool {
	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		return false
	}
	s.v = v
	s.version++
	s.mu.Unlock()
	s.notify(v)
	return true
}

// Update replaces the value with fn(current) atomically and notifies subscribers.
func (s *Value[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.v)
	s.v = v
	s.version++
	s.mu.Unlock()
	s.notify(v)
	return v
}

// Subscribe registers fn to run after every write, on the writer's goroutine.
// fn must not block and must not call its own unsubscribe.
//
// Once the returned func returns, fn is not running and will not run again,
// even for a write that was already being delivered.
func (s *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	sub := &subscription[T]{active: true, fn: fn}

	s.subMu.Lock()
	if s.subs == nil {
		s.subs = make(map[uint64]*subscription[T])
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.subMu.Unlock()

	return func() {
		sub.mu.Lock()
		sub.active = false
		sub.mu.Unlock()

		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Value[T]) notify(v T) {
	s.subMu.Lock()
	subs := make([]*subscription[T], 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.deliver(v)
	}
}
