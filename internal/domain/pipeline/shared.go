package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/procwatch/internal/domain/ring"
	"github.com/GriffinCanCode/procwatch/internal/domain/signal"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
)

// Shared is the state one producer and its consumers operate on.
//
// Buffer indices and the aggregate statistics are only mutated while
// Triple.Lock is held.
type Shared struct {
	Triple *signal.Triple
	Buffer *ring.Buffer[*procs.Record]
	Stats  *Stats

	metrics  *monitoring.Metrics
	now      func() time.Time
	stopping atomic.Bool
}

// NewShared allocates the buffer and signals for the given capacity.
func NewShared(capacity int) (*Shared, error) {
	buf, err := ring.New[*procs.Record](capacity)
	if err != nil {
		return nil, fmt.Errorf("allocate buffer: %w", err)
	}
	triple, err := signal.NewTriple(capacity)
	if err != nil {
		return nil, fmt.Errorf("allocate signals: %w", err)
	}
	return &Shared{
		Triple: triple,
		Buffer: buf,
		Stats:  NewStats(),
		now:    time.Now,
	}, nil
}

// WithClock replaces the clock used to compute elapsed times
func (s *Shared) WithClock(now func() time.Time) *Shared {
	if now != nil {
		s.now = now
	}
	return s
}

// WithMetrics adds metrics tracking
func (s *Shared) WithMetrics(metrics *monitoring.Metrics) *Shared {
	s.metrics = metrics
	return s
}

// Stop raises the stop flag. Consumers check it before every iteration.
func (s *Shared) Stop() {
	s.stopping.Store(true)
}

// Stopping reports whether Stop was called.
func (s *Shared) Stopping() bool {
	return s.stopping.Load()
}

// Capacity returns the buffer capacity.
func (s *Shared) Capacity() int {
	return s.Buffer.Cap()
}
