package ocelli

import (
	"fmt"
	"time"
)

// Config is the configuration for a PartitionedBalancer.
//
// All duration fields accept standard Go duration strings like "5s", "1m"
// when unmarshalled from YAML.
type Config struct {
	// Name is the balancer's display name, used in log fields and as the
	// prefix of per-partition balancer names ("<name>_<key>").
	Name string `yaml:"name"`

	// FeedBufferSize is the buffer size of each partition's private event
	// feed. Larger buffers absorb bursts at the cost of memory per
	// partition. Recommended: 64.
	FeedBufferSize int `yaml:"feedBufferSize"`

	// ResolveTimeout bounds a single partitioner resolution.
	// Recommended: 5 seconds.
	ResolveTimeout time.Duration `yaml:"resolveTimeout"`

	// PublishTimeout bounds delivery of one event into one partition feed.
	// A delivery that cannot complete within the timeout is dropped and
	// counted. Recommended: 5 seconds.
	PublishTimeout time.Duration `yaml:"publishTimeout"`

	// QuarantineDelay is the fixed delay the default quarantine strategy
	// keeps a failed host out of its pool. Ignored when WithQuarantineDelay
	// supplies a custom strategy. Recommended: 10 seconds.
	QuarantineDelay time.Duration `yaml:"quarantineDelay"`

	// ShutdownTimeout is the recommended bound for Stop; pass it via the
	// Stop context. Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Name:            "<unnamed>",
		FeedBufferSize:  64,
		ResolveTimeout:  5 * time.Second,
		PublishTimeout:  5 * time.Second,
		QuarantineDelay: 10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production
// defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Name == "" {
		cfg.Name = defaults.Name
	}
	if cfg.FeedBufferSize == 0 {
		cfg.FeedBufferSize = defaults.FeedBufferSize
	}
	if cfg.ResolveTimeout == 0 {
		cfg.ResolveTimeout = defaults.ResolveTimeout
	}
	if cfg.PublishTimeout == 0 {
		cfg.PublishTimeout = defaults.PublishTimeout
	}
	if cfg.QuarantineDelay == 0 {
		cfg.QuarantineDelay = defaults.QuarantineDelay
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// Validate checks configuration constraints and returns an error for
// invalid values.
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.FeedBufferSize < 1 {
		return fmt.Errorf("FeedBufferSize must be >= 1, got %d", cfg.FeedBufferSize)
	}
	if cfg.ResolveTimeout <= 0 {
		return fmt.Errorf("ResolveTimeout must be > 0, got %v", cfg.ResolveTimeout)
	}
	if cfg.PublishTimeout <= 0 {
		return fmt.Errorf("PublishTimeout must be > 0, got %v", cfg.PublishTimeout)
	}
	if cfg.QuarantineDelay < 0 {
		return fmt.Errorf("QuarantineDelay must be >= 0, got %v", cfg.QuarantineDelay)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Timings are 10-100x faster than production defaults to enable rapid
// iteration. Use DefaultConfig() for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.FeedBufferSize = 16
	cfg.ResolveTimeout = 500 * time.Millisecond
	cfg.PublishTimeout = 500 * time.Millisecond
	cfg.QuarantineDelay = 50 * time.Millisecond
	cfg.ShutdownTimeout = 1 * time.Second

	return cfg
}
