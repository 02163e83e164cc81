package pipeline

import (
	"sync/atomic"
	"time"
)

// Stats aggregates what the pipeline produced and consumed.
//
// Writers hold the pipeline lock. The counters are mirrored in atomics so
// Produced, Consumed and TotalElapsed can be read at any time; PerConsumer
// is only consistent once every consumer has returned.
type Stats struct {
	produced     atomic.Int64
	consumed     atomic.Int64
	totalElapsed atomic.Int64
	perConsumer  map[string]int64
}

// NewStats creates empty statistics.
func NewStats() *Stats {
	return &Stats{perConsumer: make(map[string]int64)}
}

func (s *Stats) addProduced() int64 {
	return s.produced.Add(1)
}

func (s *Stats) addConsumed(consumer string, elapsed time.Duration) int64 {
	s.perConsumer[consumer]++
	s.totalElapsed.Add(int64(elapsed))
	return s.consumed.Add(1)
}

// Produced returns the number of items inserted into the buffer.
func (s *Stats) Produced() int64 {
	return s.produced.Load()
}

// Consumed returns the number of items removed from the buffer.
func (s *Stats) Consumed() int64 {
	return s.consumed.Load()
}

// TotalElapsed returns the summed elapsed time of every consumed item.
func (s *Stats) TotalElapsed() time.Duration {
	return time.Duration(s.totalElapsed.Load())
}

// PerConsumer returns a copy of the per-consumer counts.
func (s *Stats) PerConsumer() map[string]int64 {
	out := make(map[string]int64, len(s.perConsumer))
	for name, n := range s.perConsumer {
		out[name] = n
	}
	return out
}
