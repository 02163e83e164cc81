package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/procwatch/internal/domain/signal"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
)

// ProducerName is the display name of the single producer.
const ProducerName = "Producer-1"

// Producer walks the process table once and inserts every process owned by
// the target uid.
type Producer struct {
	shared    *Shared
	source    procs.Source
	targetUID uint32
	logger    *zap.Logger

	produced int64
	outcome  signal.Outcome
}

// NewProducer creates a producer for the given shared state.
func NewProducer(shared *Shared, source procs.Source, targetUID uint32, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		shared:    shared,
		source:    source,
		targetUID: targetUID,
		logger:    logger,
	}
}

// Run performs the single pass. It returns nil when the table was exhausted
// or the pass was interrupted; only source failures are errors.
func (p *Producer) Run(ctx context.Context) error {
	p.outcome = signal.Acquired

	err := p.source.Walk(ctx, func(rec *procs.Record) bool {
		if rec.UID != p.targetUID {
			return true
		}
		return p.insert(ctx, rec)
	})

	fields := []zap.Field{
		zap.String("worker", ProducerName),
		zap.Int64("produced", p.produced),
	}
	switch {
	case p.outcome != signal.Acquired:
		p.logger.Debug("producer interrupted", append(fields, zap.Stringer("outcome", p.outcome))...)
		return nil
	case err != nil && ctx.Err() != nil:
		p.logger.Debug("producer interrupted", append(fields, zap.Error(err))...)
		return nil
	case err != nil:
		p.logger.Error("process scan failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("scan processes: %w", err)
	}

	p.logger.Debug("producer finished", fields...)
	return nil
}

func (p *Producer) insert(ctx context.Context, rec *procs.Record) bool {
	s := p.shared

	if out := s.Triple.Free.Acquire(ctx); out != signal.Acquired {
		p.outcome = out
		return false
	}
	// An interrupted lock wait leaves the free unit taken.
	if out := s.Triple.Lock.Lock(ctx); out != signal.Acquired {
		p.outcome = out
		return false
	}

	idx := s.Buffer.Insert(rec)
	p.produced++
	s.Stats.addProduced()
	p.logger.Info(
		fmt.Sprintf("[%s] Produced Item#-%d at buffer index:%d for PID:%d", ProducerName, p.produced, idx, rec.PID),
		zap.String("worker", ProducerName),
		zap.Int64("item", p.produced),
		zap.Int("index", idx),
		zap.Int32("pid", rec.PID),
	)

	s.Triple.Lock.Unlock()
	s.Triple.Filled.Release()
	s.metrics.RecordProduced()
	return true
}

// Produced returns how many items this producer inserted.
// Only meaningful after Run returned.
func (p *Producer) Produced() int64 {
	return p.produced
}

// Outcome returns Acquired when the pass ran to completion, or the outcome
// of the wait that interrupted it. Only meaningful after Run returned.
func (p *Producer) Outcome() signal.Outcome {
	return p.outcome
}
