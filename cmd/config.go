package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

// Report buffer defaults, sized for the classic 2000-character status
// window.
const defaultMaxBytes = 2000

// Config is the primestat configuration, unmarshaled from the config
// file, environment, and flags.
type Config struct {
	// Dir is the engine's working directory.
	Dir string `mapstructure:"dir"`
	// Workers is the number of worker threads the engine is configured
	// with; the work file groups its entries by worker.
	Workers int `mapstructure:"workers"`
	// StatusLines is the total line budget of the queue report; zero
	// derives it from the buffer size.
	StatusLines int `mapstructure:"status-lines"`
	// ErrorRate is the chance a completed LL test returned a wrong
	// residue.
	ErrorRate float64 `mapstructure:"error-rate"`
	// PRPErrorRate is the same for PRP tests.
	PRPErrorRate float64 `mapstructure:"prp-error-rate"`
	// MaxBytes bounds both report buffers.
	MaxBytes int `mapstructure:"max-bytes"`
	// Worktodo is the work file name, relative to Dir unless absolute.
	Worktodo string `mapstructure:"worktodo"`
	LogLevel string `mapstructure:"log-level"`
}

func setConfigDefaults() {
	viper.SetDefault("dir", ".")
	viper.SetDefault("workers", 1)
	viper.SetDefault("status-lines", 0)
	viper.SetDefault("error-rate", 0.018)
	viper.SetDefault("prp-error-rate", 0.0001)
	viper.SetDefault("max-bytes", defaultMaxBytes)
	viper.SetDefault("worktodo", "worktodo.txt")
}

// ParseConfig returns the effective configuration.
func ParseConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.MaxBytes < 1 {
		config.MaxBytes = defaultMaxBytes
	}

	return &config, nil
}
