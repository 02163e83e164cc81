// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Setting Config.File tees every entry into a size-rotated JSON file managed
// by lumberjack. Close flushes and closes that file.
//
// Pipeline events keep their classic one-line message and add structured
// fields, so both grep and log processors work:
//
//	[Consumer-1] Consumed Item#-3 on buffer index:0 PID:4242 Elapsed Time- 00:00:10
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info", File: "/var/log/procwatch.log"})
//	if err != nil {
//		return err
//	}
//	defer logger.Close()
//	logger.Info("scan started", zap.Uint32("uid", 1000))
package logging
