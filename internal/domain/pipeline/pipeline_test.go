package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/procwatch/internal/domain/signal"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return base }

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func startedAgo(pid int32, uid uint32, ago time.Duration) *procs.Record {
	return &procs.Record{PID: pid, UID: uid, StartTime: base.Add(-ago)}
}

func newShared(t *testing.T, capacity int) *Shared {
	t.Helper()
	s, err := NewShared(capacity)
	require.NoError(t, err)
	return s.WithClock(fixedClock)
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Walk(ctx context.Context, fn func(*procs.Record) bool) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func TestNewSharedRejectsBadCapacity(t *testing.T) {
	_, err := NewShared(0)
	assert.Error(t, err)

	s, err := NewShared(3)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Capacity())
	assert.Equal(t, int64(3), s.Triple.Free.Value())
	assert.Equal(t, int64(0), s.Triple.Filled.Value())
	assert.False(t, s.Stopping())
}

func TestProducerConsumerScenario(t *testing.T) {
	s := newShared(t, 2)
	logger, logs := observed()

	src := procs.NewStaticSource(
		startedAgo(101, 1000, 10*time.Second),
		startedAgo(200, 0, time.Hour),
		startedAgo(102, 1000, 5*time.Second),
		startedAgo(103, 1000, time.Second),
	)

	ctx, cancel := context.WithCancelCause(context.Background())
	consumer := NewConsumer(1, s, logger)
	done := make(chan signal.Outcome, 1)
	go func() { done <- consumer.Run(ctx) }()

	producer := NewProducer(s, src, 1000, logger)
	require.NoError(t, producer.Run(ctx))
	assert.Equal(t, int64(3), producer.Produced())
	assert.Equal(t, signal.Acquired, producer.Outcome())

	require.Eventually(t, func() bool { return s.Stats.Consumed() == 3 }, 2*time.Second, time.Millisecond)

	s.Stop()
	cancel(signal.ErrStopping)
	assert.Equal(t, signal.Stopped, <-done)

	assert.Equal(t, int64(3), consumer.Consumed())
	assert.Equal(t, 16*time.Second, s.Stats.TotalElapsed())
	assert.Equal(t, map[string]int64{"Consumer-1": 3}, s.Stats.PerConsumer())

	var produced, consumed []string
	var indices []int64
	for _, e := range logs.All() {
		switch e.ContextMap()["worker"] {
		case ProducerName:
			if _, ok := e.ContextMap()["index"]; ok {
				produced = append(produced, e.Message)
				indices = append(indices, e.ContextMap()["index"].(int64))
			}
		case "Consumer-1":
			if _, ok := e.ContextMap()["index"]; ok {
				consumed = append(consumed, e.Message)
			}
		}
	}

	assert.Equal(t, []int64{0, 1, 0}, indices)
	assert.Equal(t, []string{
		"[Producer-1] Produced Item#-1 at buffer index:0 for PID:101",
		"[Producer-1] Produced Item#-2 at buffer index:1 for PID:102",
		"[Producer-1] Produced Item#-3 at buffer index:0 for PID:103",
	}, produced)
	assert.Equal(t, []string{
		"[Consumer-1] Consumed Item#-1 on buffer index:0 PID:101 Elapsed Time- 00:00:10",
		"[Consumer-1] Consumed Item#-2 on buffer index:1 PID:102 Elapsed Time- 00:00:05",
		"[Consumer-1] Consumed Item#-3 on buffer index:0 PID:103 Elapsed Time- 00:00:01",
	}, consumed)
}

func TestProducerBlocksWhenFullAndStops(t *testing.T) {
	s := newShared(t, 2)
	src := procs.NewStaticSource(
		startedAgo(1, 7, time.Second),
		startedAgo(2, 7, time.Second),
		startedAgo(3, 7, time.Second),
	)

	ctx, cancel := context.WithCancelCause(context.Background())
	producer := NewProducer(s, src, 7, nil)

	done := make(chan error, 1)
	go func() { done <- producer.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Stats.Produced() == 2 }, 2*time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("producer should block on a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	cancel(signal.ErrStopping)
	require.NoError(t, <-done)

	assert.Equal(t, int64(2), producer.Produced())
	assert.Equal(t, signal.Stopped, producer.Outcome())
	assert.Equal(t, 2, s.Buffer.Len())
	assert.True(t, s.Triple.Balanced())
}

func TestProducerReportsSourceErrors(t *testing.T) {
	s := newShared(t, 1)
	src := &mockSource{}
	boom := errors.New("proc table unreadable")
	src.On("Walk", mock.Anything, mock.Anything).Return(boom)

	err := NewProducer(s, src, 0, nil).Run(context.Background())
	assert.ErrorIs(t, err, boom)
	src.AssertExpectations(t)
}

func TestProducerTreatsCancelledWalkAsInterruption(t *testing.T) {
	s := newShared(t, 1)
	src := &mockSource{}
	src.On("Walk", mock.Anything, mock.Anything).Return(context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, NewProducer(s, src, 0, nil).Run(ctx))
}

func TestProducerSkipsOtherOwners(t *testing.T) {
	s := newShared(t, 1)
	src := procs.NewStaticSource(
		startedAgo(1, 0, time.Second),
		startedAgo(2, 501, time.Second),
	)

	producer := NewProducer(s, src, 42, nil)
	require.NoError(t, producer.Run(context.Background()))

	assert.Equal(t, int64(0), producer.Produced())
	assert.Equal(t, int64(1), s.Triple.Free.Value())
}

func TestConsumerExitsOnStopFlag(t *testing.T) {
	s := newShared(t, 1)
	s.Stop()

	c := NewConsumer(4, s, nil)
	assert.Equal(t, "Consumer-4", c.Name())
	assert.Equal(t, signal.Stopped, c.Run(context.Background()))
}

func TestConsumersWakeOnBroadcast(t *testing.T) {
	s := newShared(t, 4)
	ctx, cancel := context.WithCancelCause(context.Background())

	const n = 6
	outcomes := make(chan signal.Outcome, n)
	for i := 1; i <= n; i++ {
		c := NewConsumer(i, s, nil)
		go func() { outcomes <- c.Run(ctx) }()
	}

	s.Stop()
	cancel(signal.ErrStopping)

	for i := 0; i < n; i++ {
		select {
		case out := <-outcomes:
			assert.Equal(t, signal.Stopped, out)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d consumers woke", i, n)
		}
	}
	assert.True(t, s.Triple.Balanced())
}

func TestFIFOAcrossPool(t *testing.T) {
	s := newShared(t, 3)
	logger, logs := observed()
	metrics := monitoring.NewMetrics()
	s.WithMetrics(metrics)

	var records []*procs.Record
	for pid := int32(1); pid <= 50; pid++ {
		records = append(records, startedAgo(pid, 1000, time.Duration(pid)*time.Second))
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		c := NewConsumer(i, s, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Run(ctx)
		}()
	}

	producer := NewProducer(s, procs.NewStaticSource(records...), 1000, logger)
	require.NoError(t, producer.Run(ctx))
	require.Eventually(t, func() bool { return s.Stats.Consumed() == 50 }, 5*time.Second, time.Millisecond)

	s.Stop()
	cancel(signal.ErrStopping)
	wg.Wait()

	var pids []int32
	var items []int64
	for _, e := range logs.All() {
		fields := e.ContextMap()
		if fields["worker"] == ProducerName {
			continue
		}
		if pid, ok := fields["pid"]; ok {
			pids = append(pids, pid.(int32))
			items = append(items, fields["item"].(int64))
		}
	}
	require.Len(t, pids, 50)
	for i := range pids {
		assert.Equal(t, int32(i+1), pids[i], "removal order")
		assert.Equal(t, int64(i+1), items[i], "consumed count")
	}

	var sum int64
	for _, n := range s.Stats.PerConsumer() {
		sum += n
	}
	assert.Equal(t, int64(50), sum)
	assert.Equal(t, 1275*time.Second, s.Stats.TotalElapsed())
	assert.True(t, s.Triple.Balanced())
	assert.Equal(t, 0, s.Buffer.Len())
}
