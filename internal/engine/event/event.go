// Package event turns pushed notifications into a polled, per-tick stream.
package event

import "sync"

// Queue is a FIFO safe for concurrent producers.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// Push appends an item.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns every queued item in push order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Stream holds the batch published for the current tick.
type Stream[T any] struct {
	events []T
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{events: make([]T, 0, 16)}
}

// Reset clears the previous tick's batch.
func (s *Stream[T]) Reset() {
	clear(s.events)
	s.events = s.events[:0]
}

// Send appends to the current batch.
func (s *Stream[T]) Send(events ...T) {
	s.events = append(s.events, events...)
}

// Events returns the current batch. The slice is reused next tick.
func (s *Stream[T]) Events() []T {
	return s.events
}
