package procs

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// GopsutilSource reads the process table through gopsutil, which works on
// every platform gopsutil supports.
type GopsutilSource struct {
	opts Options
}

// NewGopsutilSource creates a portable process source.
func NewGopsutilSource(opts Options) *GopsutilSource {
	return &GopsutilSource{opts: opts}
}

// Walk implements Source.
func (s *GopsutilSource) Walk(ctx context.Context, fn func(*Record) bool) error {
	list, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	guard := s.opts.guard(KindGopsutil)
	for _, p := range list {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := readGuarded(guard, s.opts, p.Pid, func() (*Record, error) {
			return readGopsutil(ctx, p)
		})
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		if !fn(rec) {
			return nil
		}
	}
	return nil
}

func readGopsutil(ctx context.Context, p *process.Process) (*Record, error) {
	uids, err := p.UidsWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("uids: %w", err)
	}
	if len(uids) == 0 {
		return nil, fmt.Errorf("uids: empty")
	}

	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("create time: %w", err)
	}

	// Name is informational only.
	name, _ := p.NameWithContext(ctx)

	return &Record{
		PID:       p.Pid,
		UID:       uint32(uids[0]),
		Name:      name,
		StartTime: time.UnixMilli(created),
	}, nil
}
