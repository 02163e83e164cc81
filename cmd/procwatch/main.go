package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/procwatch/internal/infrastructure/config"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
)

var (
	version = "0.1.0"

	configFlag     string
	bufferSizeFlag int
	producersFlag  int
	consumersFlag  int
	uidFlag        uint32
	sourceFlag     string
	procRootFlag   string
	statusAddrFlag string
	reportFlag     string
	logLevelFlag   string
	drainFlag      bool
	devFlag        bool

	rootCmd = &cobra.Command{
		Use:   "procwatch",
		Short: "procwatch - account the running time of one user's processes",
		Long: "procwatch walks the process table once, queues every process owned by the\n" +
			"target uid in a bounded buffer and lets a pool of consumers add up how long\n" +
			"each one has been running. It stops on SIGINT/SIGTERM, or with --drain once\n" +
			"every queued process was consumed, and prints the total.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, drainFlag)
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := sonic.ConfigStd.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of procwatch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "procwatch version %s\n", version)
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "YAML configuration file")
	flags.IntVarP(&bufferSizeFlag, "buffer-size", "b", 10, "Number of buffer slots")
	flags.IntVar(&producersFlag, "producers", 1, "Run the producer (1) or not (0)")
	flags.IntVarP(&consumersFlag, "consumers", "n", 1, "Number of consumer tasks")
	flags.Uint32VarP(&uidFlag, "uid", "u", 0, "Owner uid whose processes are scanned")
	flags.StringVar(&sourceFlag, "source", procs.KindGopsutil, fmt.Sprintf("Process source %v", procs.Kinds()))
	flags.StringVar(&procRootFlag, "proc-root", "", "procfs mount point for the procfs source (e.g. /host/proc)")
	flags.StringVar(&statusAddrFlag, "status-addr", "", "Serve /healthz, /stats and /metrics on this address")
	flags.StringVar(&reportFlag, "report", "", "Write the final report as JSON to this path")
	flags.StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&devFlag, "dev", false, "Human readable development logging")
	rootCmd.Flags().BoolVar(&drainFlag, "drain", false,
		"Stop on its own once the scan finished and every process was consumed")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers .env, the config file, the environment and then any
// flag given explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFile(configFlag)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("buffer-size") {
		cfg.Pipeline.BufferSize = bufferSizeFlag
	}
	if flags.Changed("producers") {
		cfg.Pipeline.Producers = producersFlag
	}
	if flags.Changed("consumers") {
		cfg.Pipeline.Consumers = consumersFlag
	}
	if flags.Changed("uid") {
		cfg.Pipeline.TargetUID = uidFlag
	}
	if flags.Changed("source") {
		cfg.Source.Kind = sourceFlag
	}
	if flags.Changed("proc-root") {
		cfg.Source.Root = procRootFlag
	}
	if flags.Changed("status-addr") {
		cfg.Status.Addr = statusAddrFlag
	}
	if flags.Changed("report") {
		cfg.Report.Path = reportFlag
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevelFlag
	}
	if flags.Changed("dev") {
		cfg.Logging.Development = devFlag
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
