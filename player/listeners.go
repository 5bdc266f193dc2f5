package player

import "sync"

// Fanout is a set of callbacks safe for concurrent use. The player backends
// use it for events; the playback controller reuses it for state changes.
type Fanout[T any] struct {
	mu   sync.Mutex
	next uint64
	m    map[uint64]func(T)
}

// Listeners is the subscriber set backends embed to implement Subscribe
type Listeners = Fanout[Event]

// Subscribe adds fn and returns an idempotent function that removes it
func (s *Fanout[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	if s.m == nil {
		s.m = make(map[uint64]func(T))
	}
	s.next++
	id := s.next
	s.m[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.m, id)
			s.mu.Unlock()
		})
	}
}

// Emit calls every current subscriber. Subscribers run without the lock
// held, so they may subscribe or unsubscribe from inside the callback.
func (s *Fanout[T]) Emit(v T) {
	s.mu.Lock()
	targets := make([]func(T), 0, len(s.m))
	for _, fn := range s.m {
		targets = append(targets, fn)
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(v)
	}
}

// Len returns the number of attached subscribers
func (s *Fanout[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
