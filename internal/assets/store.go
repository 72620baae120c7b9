package assets

import "sync"

// Handle is a typed reference into a Store. The zero handle is invalid.
type Handle[T any] struct {
	id uint32
}

// IsValid reports whether the handle was issued by a store.
func (h Handle[T]) IsValid() bool { return h.id != 0 }

// ID returns the raw id.
func (h Handle[T]) ID() uint32 { return h.id }

// Store is an arena of values addressed by handle. A reserved handle resolves
// only once a value has been set.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[uint32]*T
	next  uint32
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[uint32]*T), next: 1}
}

// Reserve issues a handle without a value.
func (s *Store[T]) Reserve() Handle[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Handle[T]{id: s.next}
	s.next++
	s.items[h.id] = nil
	return h
}

// Add stores v under a new handle.
func (s *Store[T]) Add(v *T) Handle[T] {
	h := s.Reserve()
	s.Set(h, v)
	return h
}

// Set stores v under an issued handle.
func (s *Store[T]) Set(h Handle[T], v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[h.id]; ok {
		s.items[h.id] = v
	}
}

// Get returns the value, or false while it is unset or after removal.
func (s *Store[T]) Get(h Handle[T]) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.items[h.id]
	return v, v != nil
}

// Remove frees a handle.
func (s *Store[T]) Remove(h Handle[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, h.id)
}

// Len returns the number of issued handles still held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
