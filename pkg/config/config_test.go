package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultValues(t *testing.T) {
	v := viper.New()
	v.AddConfigPath(t.TempDir()) // empty dir: ReadInConfig finds nothing

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 0, cfg.Budget)
	assert.Equal(t, 0, cfg.TraceCapacity)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 128, cfg.CacheSize)
}

func TestLoadCustomValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "optinet.yaml")
	content := `
workers: 4
budget: 10000
cache: true
cache_size: 64
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	v := viper.New()
	v.SetConfigFile(configFile)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 10000, cfg.Budget)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 64, cfg.CacheSize)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("OPTINET_BUDGET", "500")

	v := viper.New()
	v.AddConfigPath(t.TempDir())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Budget)
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	cfg := &Config{Workers: -1, CacheSize: 128}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "workers must not be negative")
}

func TestValidateRejectsNegativeBudget(t *testing.T) {
	cfg := &Config{Budget: -1, CacheSize: 128}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "budget must not be negative")
}

func TestValidateRejectsTooSmallCache(t *testing.T) {
	cfg := &Config{CacheSize: 0}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "cache_size must be at least 1")
}
