package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/procwatch/internal/infrastructure/config"
)

// writeProcFixture lays out a procfs tree with two processes of uid 1000
// and one of uid 0.
func writeProcFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	proc := func(pid, name, uid string) map[string]string {
		return map[string]string{
			pid + "/status": "Name:\t" + name + "\nPid:\t" + pid + "\n" +
				"Uid:\t" + uid + "\t" + uid + "\t" + uid + "\t" + uid + "\n",
			pid + "/stat": pid + " (" + name + ") S 1 1 1 0 -1 4194560 0 0 0 0 0 0 0 0 20 0 1 0 100 0 0 " +
				"18446744073709551615 0 0 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0 0 0 0 0 0 0 0 0\n",
		}
	}

	files := map[string]string{"stat": "btime 1418183276\n"}
	for _, p := range []map[string]string{
		proc("10", "sshd", "0"),
		proc("20", "vim", "1000"),
		proc("30", "bash", "1000"),
	} {
		for k, v := range p {
			files[k] = v
		}
	}

	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestRunDrainWritesReport(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.BufferSize = 1
	cfg.Pipeline.Consumers = 2
	cfg.Pipeline.TargetUID = 1000
	cfg.Source.Kind = "procfs"
	cfg.Source.Root = writeProcFixture(t)
	cfg.Logging.Level = "error"
	cfg.Report.Path = filepath.Join(t.TempDir(), "report.json")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, run(ctx, cfg, true))

	data, err := os.ReadFile(cfg.Report.Path)
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &report))
	assert.Equal(t, float64(1000), report["target_uid"])
	assert.Equal(t, float64(2), report["produced"])
	assert.Equal(t, float64(2), report["consumed"])
	assert.Equal(t, "stopped", report["state"])
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Producers = 0
	cfg.Pipeline.Consumers = 3
	cfg.Logging.Level = "error"
	cfg.Status.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, false) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"

	cfg.Source.Kind = "kvm"
	assert.Error(t, run(context.Background(), cfg, true))

	cfg.Source.Kind = "procfs"
	cfg.Source.Root = t.TempDir()
	cfg.Pipeline.BufferSize = 0
	assert.Error(t, run(context.Background(), cfg, true))

	cfg = config.Default()
	cfg.Logging.Level = "loud"
	assert.Error(t, run(context.Background(), cfg, true))
}

func TestApplyFlags(t *testing.T) {
	require.NoError(t, rootCmd.ParseFlags([]string{
		"--buffer-size", "3",
		"--consumers", "5",
		"--uid", "501",
		"--source", "procfs",
		"--dev",
	}))

	cfg := config.Default()
	cfg.Pipeline.Producers = 0
	applyFlags(rootCmd, cfg)

	assert.Equal(t, 3, cfg.Pipeline.BufferSize)
	assert.Equal(t, 5, cfg.Pipeline.Consumers)
	assert.Equal(t, uint32(501), cfg.Pipeline.TargetUID)
	assert.Equal(t, "procfs", cfg.Source.Kind)
	assert.True(t, cfg.Logging.Development)

	// Flags left at their defaults do not override the config.
	assert.Equal(t, 0, cfg.Pipeline.Producers)
	assert.Equal(t, "info", cfg.Logging.Level)
}
