package procs

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/procfs"
)

// ProcfsSource reads /proc directly. Root may point at a host mount such as
// /host/proc when running inside a container.
type ProcfsSource struct {
	fs   procfs.FS
	root string
	opts Options
}

// NewProcfsSource opens the procfs mount named by opts.Root.
func NewProcfsSource(opts Options) (*ProcfsSource, error) {
	root := opts.Root
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", root, err)
	}
	return &ProcfsSource{fs: fs, root: root, opts: opts}, nil
}

// Root returns the procfs mount point in use.
func (s *ProcfsSource) Root() string {
	return s.root
}

// Walk implements Source.
func (s *ProcfsSource) Walk(ctx context.Context, fn func(*Record) bool) error {
	list, err := s.fs.AllProcs()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	guard := s.opts.guard(KindProcfs)
	for _, p := range list {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := readGuarded(guard, s.opts, int32(p.PID), func() (*Record, error) {
			return readProcfs(p)
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

func readProcfs(p procfs.Proc) (*Record, error) {
	status, err := p.NewStatus()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	stat, err := p.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	started, err := stat.StartTime()
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}

	return &Record{
		PID:       int32(p.PID),
		UID:       uint32(status.UIDs[0]),
		Name:      status.Name,
		StartTime: unixSeconds(started),
	}, nil
}

func unixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
