package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/procwatch/internal/api/http"
	"github.com/GriffinCanCode/procwatch/internal/api/middleware"
	"github.com/GriffinCanCode/procwatch/internal/domain/lifecycle"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/config"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/logging"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/procwatch/internal/providers/procs"
)

const shutdownTimeout = 5 * time.Second

// run executes one scan. It returns once ctx is done, or with drain once the
// scan has been fully consumed, after the report has been emitted.
func run(ctx context.Context, cfg *config.Config, drain bool) error {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	metrics := monitoring.NewMetrics()
	scanLog := logger.Named("scan")

	source, err := procs.New(cfg.Source.Kind, procs.Options{
		Root:             cfg.Source.Root,
		FailureThreshold: cfg.Source.FailureThreshold,
		OnSkip: func(pid int32, err error) {
			metrics.RecordSkipped()
			scanLog.Debug("skipped unreadable process", zap.Int32("pid", pid), zap.Error(err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open process source: %w", err)
	}

	manager := lifecycle.NewManager(lifecycle.Config{
		BufferSize: cfg.Pipeline.BufferSize,
		Producers:  cfg.Pipeline.Producers,
		Consumers:  cfg.Pipeline.Consumers,
		TargetUID:  cfg.Pipeline.TargetUID,
	}, source, logger.Logger).WithMetrics(metrics)

	var status *apihttp.Server
	if cfg.Status.Addr != "" {
		status = apihttp.NewServer(apihttp.Config{
			Addr: cfg.Status.Addr,
			RateLimit: middleware.RateLimitConfig{
				RequestsPerSecond: cfg.Status.RequestsPerSecond,
				Burst:             cfg.Status.Burst,
			},
			CORS:        middleware.DefaultCORSConfig(cfg.Status.CORSOrigins...),
			Development: cfg.Logging.Development,
		}, manager, metrics, logger.Named("http"))
		if err := status.Start(); err != nil {
			return err
		}
		defer shutdownStatus(status, logger.Logger)
	}

	// Only Stop tears the pipeline down; a signal just ends the wait below.
	if err := manager.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}

	if drain {
		if err := manager.WaitDrained(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Scan ended with an error", zap.Error(err))
		}
	} else {
		<-ctx.Done()
	}

	report := manager.Stop()
	if cfg.Report.Path != "" {
		if err := report.WriteJSON(cfg.Report.Path); err != nil {
			return err
		}
		logger.Info("Report written", zap.String("path", cfg.Report.Path))
	}
	return nil
}

func shutdownStatus(status *apihttp.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := status.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down status server", zap.Error(err))
	}
}
