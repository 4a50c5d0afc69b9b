package logger

import (
	"fmt"
	"strings"
	"time"
)

// Environment is the process-wide runtime environment. It is fixed at startup
// and decides which destinations are active.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvTest        Environment = "test"
)

// ParseEnvironment converts a case-insensitive environment name.
func ParseEnvironment(name string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(name)))
	switch env {
	case EnvDevelopment, EnvProduction, EnvStaging, EnvTest:
		return env, nil
	default:
		return "", fmt.Errorf("unknown environment %q", name)
	}
}

// Config represents logging configuration
type Config struct {
	Environment     Environment   `yaml:"environment" json:"environment"`           // development, production, staging, test
	LogDir          string        `yaml:"log_dir" json:"log_dir"`                   // directory holding <environment>.log
	StoreURL        string        `yaml:"store_url" json:"store_url"`               // datastore connection string
	QueueSize       int           `yaml:"queue_size" json:"queue_size"`             // per-destination delivery queue capacity
	BlockOnFull     bool          `yaml:"block_on_full" json:"block_on_full"`       // wait instead of dropping when a queue is full
	JanitorInterval time.Duration `yaml:"janitor_interval" json:"janitor_interval"` // how often expired store records are purged
}

// Default values for logging configuration.
// These match the defaults in conf/defaults.go.
const (
	DefaultLogDir          = "logs"
	DefaultQueueSize       = 1024
	DefaultJanitorInterval = time.Hour
)

// applyConfigDefaults fills zero values of cfg with defaults.
func applyConfigDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = DefaultJanitorInterval
	}
}
