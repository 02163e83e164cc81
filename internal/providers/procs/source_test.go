package procs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/procwatch/internal/infrastructure/resilience"
)

func TestStaticSourceWalkOrder(t *testing.T) {
	now := time.Now()
	src := NewStaticSource(
		&Record{PID: 3, UID: 0, StartTime: now},
		&Record{PID: 1, UID: 1000, StartTime: now},
		&Record{PID: 2, UID: 0, StartTime: now},
	)
	assert.Equal(t, 3, src.Len())

	var pids []int32
	err := src.Walk(context.Background(), func(r *Record) bool {
		pids = append(pids, r.PID)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 2}, pids)
}

func TestStaticSourceStopsEarly(t *testing.T) {
	src := NewStaticSource(&Record{PID: 1}, &Record{PID: 2}, &Record{PID: 3})

	var seen int
	err := src.Walk(context.Background(), func(r *Record) bool {
		seen++
		return r.PID < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}

func TestStaticSourceHonoursContext(t *testing.T) {
	src := NewStaticSource(&Record{PID: 1}, &Record{PID: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := src.Walk(ctx, func(*Record) bool {
		called = true
		return true
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRecordElapsed(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	r := &Record{StartTime: now.Add(-90 * time.Second)}
	assert.Equal(t, 90*time.Second, r.Elapsed(now))

	future := &Record{StartTime: now.Add(time.Minute)}
	assert.Equal(t, time.Duration(0), future.Elapsed(now))
}

func TestNewUnknownSource(t *testing.T) {
	_, err := New("kvm", Options{})
	assert.True(t, errors.Is(err, ErrUnknownSource))
}

func TestNewDefaultsToGopsutil(t *testing.T) {
	src, err := New("", Options{})
	require.NoError(t, err)
	assert.IsType(t, &GopsutilSource{}, src)

	src, err = New(" GOPSUTIL ", Options{})
	require.NoError(t, err)
	assert.IsType(t, &GopsutilSource{}, src)
}

func TestReadGuardedSkipsAndTrips(t *testing.T) {
	var skipped []int32
	opts := Options{
		FailureThreshold: 2,
		OnSkip:           func(pid int32, err error) { skipped = append(skipped, pid) },
	}
	guard := opts.guard("test")
	fail := func() (*Record, error) { return nil, errors.New("gone") }

	rec, err := readGuarded(guard, opts, 10, fail)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = readGuarded(guard, opts, 11, func() (*Record, error) { return &Record{PID: 11}, nil })
	require.NoError(t, err)
	assert.Equal(t, int32(11), rec.PID)

	_, _ = readGuarded(guard, opts, 12, fail)
	_, _ = readGuarded(guard, opts, 13, fail)
	_, err = readGuarded(guard, opts, 14, fail)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, []int32{10, 12, 13}, skipped)
}

// writeProcFixture lays out a minimal procfs tree with one process.
func writeProcFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"stat": "cpu  301854 612 111922 8979004 3552 2 3944 0 0 0\n" +
			"btime 1418183276\n",
		"26231/status": "Name:\tvim\n" +
			"Umask:\t0002\n" +
			"State:\tR (running)\n" +
			"Tgid:\t26231\n" +
			"Pid:\t26231\n" +
			"PPid:\t5392\n" +
			"Uid:\t1000\t1000\t1000\t1000\n" +
			"Gid:\t1000\t1000\t1000\t1000\n",
		"26231/stat": "26231 (vim) R 5392 7446 5392 34835 7446 4218880 32533 309516 26 82 1677 44 158 99 20 0 1 0 82375 56274944 1981 18446744073709551615 4194304 6294284 140736914091744 140736914087944 139965136429984 0 0 12288 1870679807 0 0 0 17 0 0 0 31 0 0 8391624 8481048 16420864 140736914093252 140736914093279 140736914093279 140736914096107 0\n",
	}
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestProcfsSourceReadsFixture(t *testing.T) {
	root := writeProcFixture(t)

	src, err := New(KindProcfs, Options{Root: root})
	require.NoError(t, err)
	assert.Equal(t, root, src.(*ProcfsSource).Root())

	var got []*Record
	err = src.Walk(context.Background(), func(r *Record) bool {
		got = append(got, r)
		return true
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, int32(26231), got[0].PID)
	assert.Equal(t, uint32(1000), got[0].UID)
	assert.Equal(t, "vim", got[0].Name)

	// btime plus 82375 ticks at USER_HZ=100.
	want := time.Unix(1418183276+823, int64(750*time.Millisecond))
	assert.WithinDuration(t, want, got[0].StartTime, time.Millisecond)
}

func TestProcfsSourceMissingRoot(t *testing.T) {
	_, err := NewProcfsSource(Options{Root: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestGopsutilSourceSeesCurrentProcess(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("uid lookup is not meaningful on " + runtime.GOOS)
	}

	src := NewGopsutilSource(Options{FailureThreshold: -1})
	self := int32(os.Getpid())

	var found *Record
	err := src.Walk(context.Background(), func(r *Record) bool {
		if r.PID == self {
			found = r
			return false
		}
		return true
	})
	if err != nil {
		t.Skipf("process table not readable here: %v", err)
	}
	require.NotNil(t, found)
	assert.Equal(t, uint32(os.Getuid()), found.UID)
	assert.True(t, found.StartTime.Before(time.Now().Add(time.Second)))
}
