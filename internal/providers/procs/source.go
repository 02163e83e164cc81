package procs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/procwatch/internal/infrastructure/resilience"
)

// Source kinds accepted by New.
const (
	KindGopsutil = "gopsutil"
	KindProcfs   = "procfs"
)

// DefaultFailureThreshold is the number of consecutive unreadable processes
// after which a walk is aborted.
const DefaultFailureThreshold = 32

var ErrUnknownSource = errors.New("unknown process source")

// Record is one entry of the process table.
//
// Records are owned by the source. The pipeline passes them around by
// pointer and never mutates them.
type Record struct {
	PID       int32
	UID       uint32
	Name      string
	StartTime time.Time
}

// Elapsed returns how long the process has been running at now.
// Start times in the future clamp to zero.
func (r *Record) Elapsed(now time.Time) time.Duration {
	d := now.Sub(r.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Source enumerates live processes.
type Source interface {
	// Walk calls fn once per readable process, in the order the underlying
	// table yields them, until fn returns false, ctx is done, or the table is
	// exhausted. A walk stopped by fn returns nil; one stopped by ctx returns
	// ctx.Err().
	Walk(ctx context.Context, fn func(*Record) bool) error
}

// SkipFunc is told about processes that could not be read during a walk.
type SkipFunc func(pid int32, err error)

// Options configures the sources built by New.
type Options struct {
	// Root is the procfs mount point. Empty means /proc.
	Root string
	// FailureThreshold aborts a walk after this many consecutive read
	// failures. Zero means DefaultFailureThreshold, negative disables it.
	FailureThreshold int
	// OnSkip, if set, is called for every skipped process.
	OnSkip SkipFunc
}

func (o Options) guard(name string) *resilience.Breaker {
	n := o.FailureThreshold
	if n == 0 {
		n = DefaultFailureThreshold
	}
	return resilience.New(name, resilience.ConsecutiveFailures(n))
}

func (o Options) skip(pid int32, err error) {
	if o.OnSkip != nil {
		o.OnSkip(pid, err)
	}
}

// New builds the source named by kind.
func New(kind string, opts Options) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindGopsutil, "":
		return NewGopsutilSource(opts), nil
	case KindProcfs:
		return NewProcfsSource(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, kind)
	}
}

// Kinds lists the source kinds accepted by New.
func Kinds() []string {
	return []string{KindGopsutil, KindProcfs}
}

// readGuarded runs read through guard. It returns (nil, nil) for a skipped
// process and a non-nil error only when the walk must stop.
func readGuarded(guard *resilience.Breaker, opts Options, pid int32, read func() (*Record, error)) (*Record, error) {
	var rec *Record
	err := guard.Execute(func() error {
		r, err := read()
		rec = r
		return err
	})
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, resilience.ErrCircuitOpen):
		return nil, fmt.Errorf("process table unreadable after %d consecutive failures: %w",
			guard.Counts().ConsecutiveFailures, err)
	default:
		opts.skip(pid, err)
		return nil, nil
	}
}
