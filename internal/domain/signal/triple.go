package signal

import "fmt"

// Triple coordinates one producer and many consumers around a shared buffer.
//
// Free starts at capacity and Filled at zero. The producer acquires Free and
// releases Filled; consumers do the reverse. Lock guards the buffer indices
// and the aggregate statistics and is never held across a Free/Filled wait.
type Triple struct {
	Free   *Counting
	Filled *Counting
	Lock   *Mutex

	capacity int
}

// NewTriple creates the signals for a buffer of the given capacity.
func NewTriple(capacity int) (*Triple, error) {
	free, err := NewCounting(int64(capacity), int64(capacity))
	if err != nil {
		return nil, fmt.Errorf("free slots: %w", err)
	}
	filled, err := NewCounting(0, int64(capacity))
	if err != nil {
		return nil, fmt.Errorf("filled slots: %w", err)
	}
	return &Triple{
		Free:     free,
		Filled:   filled,
		Lock:     NewMutex(),
		capacity: capacity,
	}, nil
}

// Capacity returns the buffer capacity the triple was built for.
func (t *Triple) Capacity() int {
	return t.capacity
}

// Balanced reports whether free+filled equals capacity. It only holds while
// no task is between a signal acquisition and its matching release.
func (t *Triple) Balanced() bool {
	return t.Free.Value()+t.Filled.Value() == int64(t.capacity)
}
