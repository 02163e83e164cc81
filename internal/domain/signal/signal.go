package signal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrStopping is the cancellation cause used by the lifecycle manager when it
// tears the pipeline down. Waits interrupted with this cause report Stopped.
var ErrStopping = errors.New("signal: pipeline stopping")

// Outcome is the result of an interruptible acquisition.
type Outcome int

const (
	// Acquired means the unit was taken and must later be released.
	Acquired Outcome = iota
	// Cancelled means the wait was interrupted by an external cancellation.
	Cancelled
	// Stopped means the wait was interrupted because the pipeline is stopping.
	Stopped
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Acquired:
		return "acquired"
	case Cancelled:
		return "cancelled"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func interrupted(ctx context.Context) Outcome {
	if errors.Is(context.Cause(ctx), ErrStopping) {
		return Stopped
	}
	return Cancelled
}

// Counting is a counting signal bounded by a maximum value.
//
// Acquire blocks until the value is positive and then decrements it; Release
// increments it and wakes at most one waiter. Cancelling the context passed
// to Acquire wakes every waiter on that context.
type Counting struct {
	sem   *semaphore.Weighted
	max   int64
	value atomic.Int64
}

// NewCounting creates a signal holding initial units out of max.
func NewCounting(initial, max int64) (*Counting, error) {
	if max < 1 || initial < 0 || initial > max {
		return nil, fmt.Errorf("signal: invalid counting signal %d/%d", initial, max)
	}
	c := &Counting{
		sem: semaphore.NewWeighted(max),
		max: max,
	}
	// A fresh Weighted starts fully available; hold back the missing units.
	if held := max - initial; held > 0 && !c.sem.TryAcquire(held) {
		return nil, fmt.Errorf("signal: could not reserve %d units", held)
	}
	c.value.Store(initial)
	return c, nil
}

// Acquire takes one unit, blocking until one is available or ctx is done.
func (c *Counting) Acquire(ctx context.Context) Outcome {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return interrupted(ctx)
	}
	c.value.Add(-1)
	return Acquired
}

// TryAcquire takes one unit without blocking.
func (c *Counting) TryAcquire() bool {
	if !c.sem.TryAcquire(1) {
		return false
	}
	c.value.Add(-1)
	return true
}

// Release returns one unit. Releasing past the maximum panics.
func (c *Counting) Release() {
	c.value.Add(1)
	c.sem.Release(1)
}

// Value returns the number of units currently available.
func (c *Counting) Value() int64 {
	return c.value.Load()
}

// Max returns the upper bound of the signal.
func (c *Counting) Max() int64 {
	return c.max
}

// Mutex is a binary signal whose Lock can be interrupted.
type Mutex struct {
	sem  *semaphore.Weighted
	held atomic.Bool
}

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the mutex is acquired or ctx is done.
func (m *Mutex) Lock(ctx context.Context) Outcome {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return interrupted(ctx)
	}
	m.held.Store(true)
	return Acquired
}

// Unlock releases the mutex.
func (m *Mutex) Unlock() {
	m.held.Store(false)
	m.sem.Release(1)
}

// Held reports whether the mutex is currently locked.
func (m *Mutex) Held() bool {
	return m.held.Load()
}
