package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
//
// Fields carry no envconfig default tags: defaults come from Default(), so a
// value read from a YAML file is not overwritten by a tag default when the
// matching environment variable is unset.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Source   SourceConfig   `yaml:"source" json:"source"`
	Status   StatusConfig   `yaml:"status" json:"status"`
	Logging  LogConfig      `yaml:"logging" json:"logging"`
	Report   ReportConfig   `yaml:"report" json:"report"`
}

// PipelineConfig holds the producer/consumer tunables.
type PipelineConfig struct {
	BufferSize int    `envconfig:"BUFFER_SIZE" yaml:"buffer_size" json:"buffer_size"`
	Producers  int    `envconfig:"PRODUCERS" yaml:"producers" json:"producers"`
	Consumers  int    `envconfig:"CONSUMERS" yaml:"consumers" json:"consumers"`
	TargetUID  uint32 `envconfig:"TARGET_UID" yaml:"target_uid" json:"target_uid"`
}

// SourceConfig selects and tunes the process table reader.
type SourceConfig struct {
	Kind             string `envconfig:"PROC_SOURCE" yaml:"kind" json:"kind"`
	Root             string `envconfig:"PROC_ROOT" yaml:"root" json:"root"`
	FailureThreshold int    `envconfig:"SCAN_FAILURE_THRESHOLD" yaml:"failure_threshold" json:"failure_threshold"`
}

// StatusConfig holds the optional status HTTP server configuration.
type StatusConfig struct {
	Addr              string `envconfig:"STATUS_ADDR" yaml:"addr" json:"addr"`
	RequestsPerSecond int    `envconfig:"STATUS_RPS" yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int    `envconfig:"STATUS_BURST" yaml:"burst" json:"burst"`
	// CORSOrigins enables CORS for the listed origins; empty disables it.
	CORSOrigins []string `envconfig:"STATUS_CORS_ORIGINS" yaml:"cors_origins" json:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" json:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" json:"development"`
	File        string `envconfig:"LOG_FILE" yaml:"file" json:"file"`
	MaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups  int    `envconfig:"LOG_MAX_BACKUPS" yaml:"max_backups" json:"max_backups"`
}

// ReportConfig controls where the final report is written.
type ReportConfig struct {
	Path string `envconfig:"REPORT_PATH" yaml:"path" json:"path"`
}

// Load loads configuration from environment variables on top of defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file on top of defaults, then applies environment
// variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Variables
// that are already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BufferSize: 10,
			Producers:  1,
			Consumers:  1,
			TargetUID:  0,
		},
		Source: SourceConfig{
			Kind:             "gopsutil",
			Root:             "",
			FailureThreshold: 32,
		},
		Status: StatusConfig{
			Addr:              "",
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			MaxSizeMB:   10,
			MaxBackups:  3,
		},
	}
}
