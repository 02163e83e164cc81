// Package config provides 12-factor configuration management for procwatch.
//
// Configuration is layered, lowest precedence first:
//   - Default(): built-in defaults
//   - an optional YAML file (LoadFile)
//   - environment variables, optionally seeded from a .env file (LoadDotEnv)
//   - CLI flags, applied by cmd/procwatch
//
// Configuration Sections:
//   - Pipeline: buffer size, producer count (0 or 1), consumer count, target uid
//   - Source: process table reader (gopsutil or procfs) and its failure guard
//   - Status: optional HTTP status server and its rate limit
//   - Logging: log level, output format and rotating file sink
//   - Report: path for the JSON run report
//
// Example Usage:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.LoadFile("procwatch.yaml")
//
// Environment Variables:
//   - BUFFER_SIZE, PRODUCERS, CONSUMERS, TARGET_UID
//   - PROC_SOURCE, PROC_ROOT, SCAN_FAILURE_THRESHOLD
//   - STATUS_ADDR, STATUS_RPS, STATUS_BURST
//   - LOG_LEVEL, LOG_DEV, LOG_FILE, LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS
//   - REPORT_PATH
package config
