/*
Package signal provides the interruptible synchronization primitives used by
the bounded-buffer pipeline.

# Overview

Counting signals and the buffer lock are built on golang.org/x/sync/semaphore,
whose Acquire honours a context. Every blocking acquisition returns an
Outcome instead of an error:

  - Acquired: the unit was taken and must be released later
  - Cancelled: the caller's context was cancelled from outside
  - Stopped: the context was cancelled with cause ErrStopping

Callers treat any outcome other than Acquired as an immediate exit from the
current loop iteration.

# Shutdown fan-out

Releasing a counting signal wakes at most one waiter. Shutdown therefore does
not release units; it cancels the shared context with ErrStopping, which wakes
every goroutine blocked in Acquire or Lock at once.

# Usage

	t, _ := signal.NewTriple(10)
	ctx, cancel := context.WithCancelCause(context.Background())

	if t.Free.Acquire(ctx) != signal.Acquired {
		return
	}
	if t.Lock.Lock(ctx) != signal.Acquired {
		return
	}
	// ... touch the buffer ...
	t.Lock.Unlock()
	t.Filled.Release()

	cancel(signal.ErrStopping) // wakes every waiter
*/
package signal
