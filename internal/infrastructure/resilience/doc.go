/*
Package resilience provides the circuit breaker that guards process-table
scans.

# Overview

A scan reads owner and start time for every listed process. Reads fail now
and then because a process exits between listing and reading, and those
entries are simply skipped. When reads fail many times in a row the table is
effectively unreadable (for example /proc mounted with hidepid), and the
breaker opens so the scan aborts with ErrCircuitOpen instead of silently
producing nothing.

# States

- Closed: reads pass through, failures are counted
- Open: every further read is refused until Reset

	Closed --[ReadyToTrip]-> Open --[Reset]-> Closed

# Usage

	guard := resilience.New("procfs", resilience.ConsecutiveFailures(32))

	err := guard.Execute(func() error {
		return readProcess(pid)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		// abort the scan
	}
*/
package resilience
