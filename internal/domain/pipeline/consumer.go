package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/procwatch/internal/domain/signal"
	"github.com/GriffinCanCode/procwatch/internal/shared/utils"
)

// ConsumerName returns the display name of the n-th consumer, counting from 1.
func ConsumerName(n int) string {
	return fmt.Sprintf("Consumer-%d", n)
}

// Consumer removes items from the buffer and accounts their elapsed time.
type Consumer struct {
	name   string
	shared *Shared
	logger *zap.Logger

	consumed int64
}

// NewConsumer creates the n-th consumer.
func NewConsumer(n int, shared *Shared, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		name:   ConsumerName(n),
		shared: shared,
		logger: logger,
	}
}

// Name returns the display name.
func (c *Consumer) Name() string {
	return c.name
}

// Run consumes until the stop flag is raised or a wait is interrupted, and
// returns the outcome that ended the loop. An empty buffer blocks it.
func (c *Consumer) Run(ctx context.Context) signal.Outcome {
	s := c.shared
	for {
		if s.Stopping() {
			return signal.Stopped
		}
		if out := s.Triple.Filled.Acquire(ctx); out != signal.Acquired {
			return out
		}
		if out := s.Triple.Lock.Lock(ctx); out != signal.Acquired {
			return out
		}

		rec, idx := s.Buffer.Remove()
		elapsed := rec.Elapsed(s.now())
		total := s.Stats.addConsumed(c.name, elapsed)
		c.consumed++
		c.logger.Info(
			fmt.Sprintf("[%s] Consumed Item#-%d on buffer index:%d PID:%d Elapsed Time- %s",
				c.name, total, idx, rec.PID, utils.FormatHMS(elapsed)),
			zap.String("worker", c.name),
			zap.Int64("item", total),
			zap.Int("index", idx),
			zap.Int32("pid", rec.PID),
			zap.Duration("elapsed", elapsed),
		)

		s.Triple.Lock.Unlock()
		s.Triple.Free.Release()
		s.metrics.RecordConsumed(c.name, elapsed)
	}
}

// Consumed returns how many items this consumer removed.
// Only meaningful after Run returned.
func (c *Consumer) Consumed() int64 {
	return c.consumed
}
