package ring

import (
	"errors"
	"fmt"
)

// MaxCapacity bounds the slot array so a misconfigured size fails with an
// error instead of an out-of-memory panic inside make.
const MaxCapacity = 1 << 24

var (
	ErrInvalidCapacity = errors.New("ring: capacity must be at least 1")
	ErrTooLarge        = errors.New("ring: capacity exceeds maximum")
)

// Buffer is a fixed-capacity circular queue of slots.
//
// Buffer performs no synchronization and no bounds checking. Callers must
// hold the owning lock and must have reserved a free slot (Insert) or a
// filled slot (Remove) before calling.
type Buffer[T any] struct {
	slots []T
	head  int
	tail  int
	count int
}

// New allocates a buffer with the given number of slots.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, capacity, MaxCapacity)
	}
	return &Buffer[T]{slots: make([]T, capacity)}, nil
}

// Insert writes item at the tail slot and advances the tail.
// It returns the slot index that was written.
func (b *Buffer[T]) Insert(item T) int {
	idx := b.tail
	b.slots[idx] = item
	b.tail = (b.tail + 1) % len(b.slots)
	b.count++
	return idx
}

// Remove reads the head slot, clears it and advances the head.
// It returns the item and the slot index that was read.
func (b *Buffer[T]) Remove() (T, int) {
	var zero T
	idx := b.head
	item := b.slots[idx]
	b.slots[idx] = zero
	b.head = (b.head + 1) % len(b.slots)
	b.count--
	return item, idx
}

// Cap returns the number of slots.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

// Len returns the number of occupied slots.
func (b *Buffer[T]) Len() int {
	return b.count
}

// Head returns the index of the next slot to remove.
func (b *Buffer[T]) Head() int {
	return b.head
}

// Tail returns the index of the next slot to insert.
func (b *Buffer[T]) Tail() int {
	return b.tail
}

// Reset drops every reference held by the buffer and rewinds both indices.
func (b *Buffer[T]) Reset() {
	clear(b.slots)
	b.head, b.tail, b.count = 0, 0, 0
}
