// Package store provides a small observable state container. A Store holds
// one snapshot value, replaces it atomically on every mutation and notifies
// subscribers with the new snapshot.
package store

import "sync"

// Listener receives the snapshot produced by a mutation.
type Listener[S any] func(S)

// Store is a process-local state container. The zero value is not usable;
// create one with New.
type Store[S any] struct {
	mu        sync.Mutex
	state     S
	nextID    uint64
	listeners map[uint64]Listener[S]
	order     []uint64
}

// New returns a store holding initial.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		state:     initial,
		listeners: make(map[uint64]Listener[S]),
	}
}

// Snapshot returns the current state.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set replaces the state.
func (s *Store[S]) Set(next S) {
	s.Update(func(S) S { return next })
}

// Update applies fn to the current state and stores the result. fn runs
// under the store lock and must not call back into the store.
func (s *Store[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next
}

// Subscribe registers l for every future mutation. The returned function
// removes the subscription and may be called more than once.
func (s *Store[S]) Subscribe(l Listener[S]) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *Store[S]) snapshotListeners() []Listener[S] {
	listeners := make([]Listener[S], 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	return listeners
}
