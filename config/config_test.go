package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.MaxConcurrentRegions)
	assert.Equal(t, 5, cfg.MaxConcurrentServices)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2.0, cfg.RetryBackoff)
	assert.Equal(t, 10.0, cfg.RequestsPerSecond)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.RetryDelayDuration())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kartta.yaml")
	content := `
max_concurrent_regions: 4
max_concurrent_services: 2
max_retries: 5
retry_delay: 500ms
retry_backoff: 1.5
requests_per_second: 20
skip_regions:
  - us-west-1
only_services:
  - ec2
  - rds
output_format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxConcurrentRegions)
	assert.Equal(t, 2, cfg.MaxConcurrentServices)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelayDuration())
	assert.Equal(t, 1.5, cfg.RetryBackoff)
	assert.Equal(t, []string{"us-west-1"}, cfg.SkipRegions)
	assert.Equal(t, []string{"ec2", "rds"}, cfg.OnlyServices)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero regions", func(c *Config) { c.MaxConcurrentRegions = -1 }},
		{"zero services", func(c *Config) { c.MaxConcurrentServices = -1 }},
		{"zero retries", func(c *Config) { c.MaxRetries = -1 }},
		{"bad delay", func(c *Config) { c.RetryDelay = "soon" }},
		{"negative delay", func(c *Config) { c.RetryDelay = "-1s" }},
		{"backoff below one", func(c *Config) { c.RetryBackoff = 0.5 }},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFilterRegions_DenyWins(t *testing.T) {
	cfg := Default()
	cfg.SkipRegions = []string{"us-east-1"}
	cfg.OnlyRegions = []string{"us-east-1", "eu-west-1"}

	got := cfg.FilterRegions([]string{"us-east-1", "eu-west-1", "ap-south-1"})
	assert.Equal(t, []string{"eu-west-1"}, got)
}

func TestFilterRegions_SkipOnly(t *testing.T) {
	cfg := Default()
	cfg.SkipRegions = []string{"us-west-2"}

	got := cfg.FilterRegions([]string{"us-east-1", "us-west-2", "eu-west-1"})
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, got)
}

func TestFilterServices_OnlyList(t *testing.T) {
	cfg := Default()
	cfg.OnlyServices = []string{"s3"}

	got := cfg.FilterServices([]string{"ec2", "s3", "rds"})
	assert.Equal(t, []string{"s3"}, got)
}

func TestFilter_EmptyResult(t *testing.T) {
	cfg := Default()
	cfg.OnlyRegions = []string{"mars-north-1"}

	got := cfg.FilterRegions([]string{"us-east-1", "eu-west-1"})
	assert.Empty(t, got)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KARTTA_MAX_CONCURRENT_REGIONS", "7")
	t.Setenv("KARTTA_SKIP_REGIONS", "us-east-1, eu-west-1")

	path := filepath.Join(t.TempDir(), "kartta.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxConcurrentRegions)
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.SkipRegions)
}
