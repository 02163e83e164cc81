// Package procs enumerates the host process table.
//
// Two sources are provided: a portable one backed by gopsutil and a Linux one
// backed by prometheus/procfs that can read an alternate mount such as
// /host/proc. Both report start times as wall-clock instants, so elapsed time
// is computed against time.Now.
//
// Processes that cannot be read (they exited mid-scan, or permissions hide
// them) are skipped. A run of DefaultFailureThreshold consecutive failures
// aborts the walk with resilience.ErrCircuitOpen.
package procs
