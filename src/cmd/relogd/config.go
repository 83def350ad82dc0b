// FILE: relog/src/cmd/relogd/config.go
package main

import (
	"fmt"
	"os"
	"strings"

	"relog/src/relog"

	lconfig "github.com/lixenwraith/config"
)

// Config is relogd's runtime configuration.
type Config struct {
	// Listen address
	Addr string `toml:"addr"`

	// Log level: "debug", "info", "warning", "error"
	Level string `toml:"level"`

	// Color mode: "auto", "on", "off"
	Colorize string `toml:"colorize"`

	// Log stack traces on handler panics
	Backtraces bool `toml:"backtraces"`

	// Reporter pending write queue capacity (0 = default)
	QueueSize int64 `toml:"queue_size"`

	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled            bool  `toml:"enabled"`
	RequestsPerSec     int64 `toml:"requests_per_sec"`
	BurstSize          int64 `toml:"burst_size"`
	CleanupIntervalSec int64 `toml:"cleanup_interval_sec"`
}

func defaults() *Config {
	return &Config{
		Addr:       ":8080",
		Level:      "info",
		Colorize:   "auto",
		Backtraces: true,
		RateLimit: RateLimitConfig{
			Enabled:            false,
			RequestsPerSec:     100,
			BurstSize:          200,
			CleanupIntervalSec: 60,
		},
	}
}

func loadConfig(cliArgs []string) (*Config, error) {
	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("RELOGD_").
		WithFile(configPath()).
		WithArgs(cliArgs).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.validate()
}

func configPath() string {
	if configFile := os.Getenv("RELOGD_CONFIG_FILE"); configFile != "" {
		return configFile
	}
	return "relogd.toml"
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if _, err := relog.ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Colorize {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid colorize mode: %s (valid: auto, on, off)", c.Colorize)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSec <= 0 {
			return fmt.Errorf("rate_limit.requests_per_sec must be positive")
		}
		if c.RateLimit.BurstSize <= 0 {
			return fmt.Errorf("rate_limit.burst_size must be positive")
		}
	}
	return nil
}

// logOptions translates the config into library options.
func (c *Config) logOptions() relog.Options {
	level, _ := relog.ParseLevel(c.Level)

	opts := relog.Options{
		Level:      level,
		Backtraces: &c.Backtraces,
		QueueSize:  int(c.QueueSize),
	}
	switch c.Colorize {
	case "on":
		on := true
		opts.Colorize = &on
	case "off":
		off := false
		opts.Colorize = &off
	}
	return opts
}
