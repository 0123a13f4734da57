// Package config loads optinet's CLI configuration: rewrite budget,
// worker count, tracing, and result cache size, from flags,
// OPTINET_* environment variables, and a config file, in that order of
// precedence via viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the settings cmd/optinet needs to run a reduction.
type Config struct {
	Workers       int  `mapstructure:"workers"`
	Budget        int  `mapstructure:"budget"`
	TraceCapacity int  `mapstructure:"trace"`
	CacheEnabled  bool `mapstructure:"cache"`
	CacheSize     int  `mapstructure:"cache_size"`
}

// Load builds a Config from viper's merged view of defaults, an
// optional config file, and OPTINET_*-prefixed environment variables.
// v is expected to already have cobra's persistent flags bound to it.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("OPTINET")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Workers defaults to 0 (the engine resolves 0 to runtime.NumCPU()
	// itself) rather than baking the CPU count in here, since viper
	// would otherwise let a bound flag's own zero value shadow this
	// default whenever neither a config file nor an env var sets it.
	v.SetDefault("workers", 0)
	v.SetDefault("budget", 0)
	v.SetDefault("trace", 0)
	v.SetDefault("cache", false)
	v.SetDefault("cache_size", 128)
}

// Validate rejects settings that would make a reduction meaningless.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Budget < 0 {
		return fmt.Errorf("budget must not be negative, got %d", c.Budget)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be at least 1, got %d", c.CacheSize)
	}
	return nil
}
