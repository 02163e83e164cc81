/*
Package lifecycle runs one producer/consumer pipeline from start to report.

# States

A Manager moves Unstarted → Running → ShuttingDown → Stopped. Start
validates the Config, allocates the buffer and its signals and launches the
tasks; Stop is terminal and idempotent.

# Shutdown

Stop raises the stop flag and cancels the shared context with
signal.ErrStopping. Every task blocked on a signal or on the lock wakes
with the Stopped outcome, so any number of idle consumers terminate without
a matching number of releases. The producer is woken the same way, which
keeps Stop from hanging when no consumer is draining the buffer.

# Usage

	m := lifecycle.NewManager(cfg, source, logger).WithMetrics(metrics)
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()
*/
package lifecycle
