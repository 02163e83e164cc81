package lifecycle

import "fmt"

// Config is the immutable pipeline configuration.
type Config struct {
	BufferSize int    `json:"buffer_size"`
	Producers  int    `json:"producers"`
	Consumers  int    `json:"consumers"`
	TargetUID  uint32 `json:"target_uid"`
}

// DefaultConfig returns one producer and one consumer over ten slots,
// scanning processes owned by root.
func DefaultConfig() Config {
	return Config{
		BufferSize: 10,
		Producers:  1,
		Consumers:  1,
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.BufferSize < 1 {
		return fmt.Errorf("%w: buffer size must be at least 1, got %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.Producers != 0 && c.Producers != 1 {
		return fmt.Errorf("%w: producers must be 0 or 1, got %d", ErrInvalidConfig, c.Producers)
	}
	if c.Consumers < 0 {
		return fmt.Errorf("%w: consumers must not be negative, got %d", ErrInvalidConfig, c.Consumers)
	}
	return nil
}
