package batch

import (
	"time"

	"github.com/yanun0323/errors"
)

const (
	defaultBatchSize     = 500
	defaultQueueSize     = 8192
	defaultFlushInterval = time.Second
	defaultFlushTimeout  = 10 * time.Second
)

// Config controls batch writer behavior.
type Config struct {
	Name          string        `mapstructure:"name"`
	BatchSize     int           `mapstructure:"batch_size"`
	QueueSize     int           `mapstructure:"queue_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	FlushTimeout  time.Duration `mapstructure:"flush_timeout"`
}

// DefaultConfig returns a baseline configuration named for metrics and logs.
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		BatchSize:     defaultBatchSize,
		QueueSize:     defaultQueueSize,
		FlushInterval: defaultFlushInterval,
		FlushTimeout:  defaultFlushTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "batch"
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FlushTimeout == 0 {
		c.FlushTimeout = defaultFlushTimeout
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("invalid batch config: BatchSize must be > 0")
	}
	if c.QueueSize <= 0 {
		return errors.New("invalid batch config: QueueSize must be > 0")
	}
	if c.QueueSize < c.BatchSize {
		return errors.Errorf("invalid batch config: QueueSize %d must be >= BatchSize %d", c.QueueSize, c.BatchSize)
	}
	if c.FlushInterval < 0 {
		return errors.New("invalid batch config: FlushInterval must be >= 0")
	}
	if c.FlushTimeout < 0 {
		return errors.New("invalid batch config: FlushTimeout must be >= 0")
	}
	return nil
}
