package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/procwatch/internal/domain/pipeline"
	"github.com/GriffinCanCode/procwatch/internal/domain/signal"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
	"github.com/GriffinCanCode/procwatch/internal/shared/id"
	"github.com/GriffinCanCode/procwatch/internal/shared/utils"
)

const drainPollInterval = 5 * time.Millisecond

// Manager owns one pipeline: its buffer, signals, statistics and tasks.
// Several managers can run side by side.
type Manager struct {
	cfg     Config
	source  procs.Source
	logger  *zap.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
	runID   id.RunID

	mu           sync.Mutex // serializes Start and Stop
	state        atomic.Int32
	shared       atomic.Pointer[pipeline.Shared]
	cancel       context.CancelCauseFunc
	tasks        *errgroup.Group
	producerDone chan struct{}
	producerErr  error // written before producerDone is closed
	startedAt    time.Time
	report       *Report
}

// Snapshot is a point-in-time view of a running pipeline.
type Snapshot struct {
	RunID        string `json:"run_id"`
	State        string `json:"state"`
	TargetUID    uint32 `json:"target_uid"`
	Capacity     int    `json:"capacity"`
	Free         int64  `json:"free"`
	Filled       int64  `json:"filled"`
	Produced     int64  `json:"produced"`
	Consumed     int64  `json:"consumed"`
	Consumers    int    `json:"consumers"`
	ProducerDone bool   `json:"producer_done"`
	TotalElapsed string `json:"total_elapsed"`
}

// NewManager creates a manager. source may be nil when cfg.Producers is 0.
func NewManager(cfg Config, source procs.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		source:       source,
		logger:       logger,
		now:          time.Now,
		runID:        id.NewRunID(),
		producerDone: make(chan struct{}),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithClock replaces the clock used for elapsed times and report stamps
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.now = now
	}
	return m
}

// WithRunID overrides the generated run identifier
func (m *Manager) WithRunID(runID id.RunID) *Manager {
	m.runID = runID
	return m
}

// RunID returns the run identifier attached to every log line.
func (m *Manager) RunID() id.RunID {
	return m.runID
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
	m.metrics.SetState(int(s))
}

func (m *Manager) log() *zap.Logger {
	return m.logger.With(zap.String("run_id", m.runID.String()))
}

// Start validates the configuration, allocates the buffer and signals and
// launches the consumers and the producer. On error the manager stays
// Unstarted, unless the start context ended while tasks were being launched;
// that partial start is torn down and leaves the manager Stopped.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() != Unstarted {
		return ErrAlreadyStarted
	}
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if m.cfg.Producers == 1 && m.source == nil {
		return fmt.Errorf("%w: a producer needs a process source", ErrInvalidConfig)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	shared, err := pipeline.NewShared(m.cfg.BufferSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	shared.WithClock(m.now).WithMetrics(m.metrics)

	logger := m.log()
	runCtx, cancel := context.WithCancelCause(ctx)
	m.shared.Store(shared)
	m.cancel = cancel
	m.tasks = &errgroup.Group{}
	m.startedAt = m.now()
	m.metrics.SetCapacity(m.cfg.BufferSize)

	logger.Info("procwatch pipeline loaded",
		zap.Int("buffer_size", m.cfg.BufferSize),
		zap.Int("producers", m.cfg.Producers),
		zap.Int("consumers", m.cfg.Consumers),
		zap.Uint32("target_uid", m.cfg.TargetUID),
	)

	tasks := m.cfg.Consumers + m.cfg.Producers
	ready := make(chan struct{}, tasks)

	for i := 1; i <= m.cfg.Consumers; i++ {
		c := pipeline.NewConsumer(i, shared, logger.Named("consumer"))
		m.tasks.Go(func() error {
			m.metrics.IncConsumers()
			defer m.metrics.DecConsumers()
			ready <- struct{}{}

			out := c.Run(runCtx)
			logger.Debug("consumer exited",
				zap.String("worker", c.Name()),
				zap.Stringer("outcome", out),
				zap.Int64("consumed", c.Consumed()),
			)
			return nil
		})
	}

	if m.cfg.Producers == 1 {
		p := pipeline.NewProducer(shared, m.source, m.cfg.TargetUID, logger.Named("producer"))
		go func() {
			defer close(m.producerDone)
			ready <- struct{}{}
			m.producerErr = p.Run(runCtx)
		}()
	} else {
		close(m.producerDone)
	}

	for n := 0; n < tasks; n++ {
		select {
		case <-ready:
		case <-ctx.Done():
			err := fmt.Errorf("%w: %w", ErrSpawn, context.Cause(ctx))
			logger.Error("startup aborted", zap.Int("started", n), zap.Int("tasks", tasks), zap.Error(err))
			m.shutdown()
			return err
		}
	}

	m.setState(Running)
	return nil
}

// Stop raises the stop flag, wakes every blocked task, waits for all of them
// and emits the final report. Stop is idempotent: later calls return the
// same report. Stopping an unstarted manager reports zero.
func (m *Manager) Stop() *Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.State() {
	case Stopped:
		return m.report
	case Unstarted:
		close(m.producerDone)
		m.setState(Stopped)
		m.report = m.buildReport(nil)
		m.emit()
		return m.report
	}

	m.shutdown()
	return m.report
}

// shutdown tears down a started pipeline. Callers hold m.mu.
func (m *Manager) shutdown() {
	m.setState(ShuttingDown)

	shared := m.shared.Load()
	shared.Stop()
	m.cancel(signal.ErrStopping)

	_ = m.tasks.Wait()
	<-m.producerDone

	m.report = m.buildReport(shared)
	shared.Buffer.Reset()

	m.setState(Stopped)
	m.report.State = Stopped.String()
	m.emit()
}

func (m *Manager) buildReport(shared *pipeline.Shared) *Report {
	r := &Report{
		RunID:       m.runID.String(),
		TargetUID:   m.cfg.TargetUID,
		PerConsumer: map[string]int64{},
		StartedAt:   m.startedAt,
		StoppedAt:   m.now(),
		State:       m.State().String(),
	}
	if shared != nil {
		r.Produced = shared.Stats.Produced()
		r.Consumed = shared.Stats.Consumed()
		r.TotalElapsed = shared.Stats.TotalElapsed()
		r.PerConsumer = shared.Stats.PerConsumer()
	}
	if m.producerErr != nil {
		r.ScanError = m.producerErr.Error()
	}
	r.Elapsed = r.TotalElapsedHMS()
	return r
}

func (m *Manager) emit() {
	r := m.report
	m.log().Info(r.Summary(),
		zap.Uint32("target_uid", r.TargetUID),
		zap.Int64("produced", r.Produced),
		zap.Int64("consumed", r.Consumed),
		zap.Duration("total_elapsed", r.TotalElapsed),
	)
}

// Snapshot returns the current counters. It never blocks, including while
// Stop is in progress.
func (m *Manager) Snapshot() Snapshot {
	snap := Snapshot{
		RunID:        m.runID.String(),
		State:        m.State().String(),
		TargetUID:    m.cfg.TargetUID,
		Capacity:     m.cfg.BufferSize,
		Consumers:    m.cfg.Consumers,
		TotalElapsed: utils.FormatHMS(0),
	}
	select {
	case <-m.producerDone:
		snap.ProducerDone = true
	default:
	}
	if s := m.shared.Load(); s != nil {
		snap.Free = s.Triple.Free.Value()
		snap.Filled = s.Triple.Filled.Value()
		snap.Produced = s.Stats.Produced()
		snap.Consumed = s.Stats.Consumed()
		snap.TotalElapsed = utils.FormatHMS(s.Stats.TotalElapsed())
	}
	return snap
}

// WaitProducer blocks until the producer pass has finished and returns its
// scan error, if any. With no producer it returns once started.
func (m *Manager) WaitProducer(ctx context.Context) error {
	select {
	case <-m.producerDone:
		return m.producerErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitDrained blocks until the producer pass has finished and every
// produced item has been consumed and its slot returned.
func (m *Manager) WaitDrained(ctx context.Context) error {
	if err := m.WaitProducer(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for {
		s := m.shared.Load()
		if s == nil || m.State() == Stopped {
			return nil
		}
		if s.Stats.Consumed() == s.Stats.Produced() && s.Triple.Balanced() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
