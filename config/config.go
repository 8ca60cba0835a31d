// Package config loads and validates scanner configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls scan concurrency, retries, rate limiting and filtering.
// It is immutable after Load and passed by value.
//
// Up to MaxConcurrentServices * MaxConcurrentRegions API calls can be in
// flight at once; the per-service rate limiter is what actually protects
// provider quotas.
type Config struct {
	MaxConcurrentRegions  int     `yaml:"max_concurrent_regions"`
	MaxConcurrentServices int     `yaml:"max_concurrent_services"`
	MaxRetries            int     `yaml:"max_retries"`
	RetryDelay            string  `yaml:"retry_delay"`
	RetryBackoff          float64 `yaml:"retry_backoff"`
	RequestsPerSecond     float64 `yaml:"requests_per_second"`

	SkipRegions  []string `yaml:"skip_regions"`
	OnlyRegions  []string `yaml:"only_regions"`
	SkipServices []string `yaml:"skip_services"`
	OnlyServices []string `yaml:"only_services"`

	OutputFormat string `yaml:"output_format"`
	OutputPath   string `yaml:"output_path"`
	HistoryPath  string `yaml:"history_path"`
	LogLevel     string `yaml:"log_level"`

	retryDelay time.Duration
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file, applies env overrides and validates.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxConcurrentRegions == 0 {
		c.MaxConcurrentRegions = 10
	}
	if c.MaxConcurrentServices == 0 {
		c.MaxConcurrentServices = 5
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "1s"
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 2.0
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 10
	}
	if c.OutputFormat == "" {
		c.OutputFormat = "markdown"
	}
	if c.HistoryPath == "" {
		c.HistoryPath = defaultHistoryPath()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kartta.db"
	}
	return home + "/.kartta/history.db"
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KARTTA_MAX_CONCURRENT_REGIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrentRegions = n
		}
	}
	if v := os.Getenv("KARTTA_MAX_CONCURRENT_SERVICES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrentServices = n
		}
	}
	if v := os.Getenv("KARTTA_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("KARTTA_SKIP_REGIONS"); v != "" {
		c.SkipRegions = splitList(v)
	}
	if v := os.Getenv("KARTTA_ONLY_REGIONS"); v != "" {
		c.OnlyRegions = splitList(v)
	}
	if v := os.Getenv("KARTTA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that every knob is in a usable range.
func (c *Config) Validate() error {
	if c.MaxConcurrentRegions < 1 {
		return fmt.Errorf("max_concurrent_regions must be >= 1, got %d", c.MaxConcurrentRegions)
	}
	if c.MaxConcurrentServices < 1 {
		return fmt.Errorf("max_concurrent_services must be >= 1, got %d", c.MaxConcurrentServices)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1, got %d", c.MaxRetries)
	}
	delay, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return fmt.Errorf("retry_delay: %w", err)
	}
	if delay <= 0 {
		return fmt.Errorf("retry_delay must be positive, got %s", c.RetryDelay)
	}
	c.retryDelay = delay
	if c.RetryBackoff < 1 {
		return fmt.Errorf("retry_backoff must be >= 1, got %v", c.RetryBackoff)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}

// RetryDelayDuration returns the parsed retry_delay. Validate must have
// been called first; Load does this.
func (c Config) RetryDelayDuration() time.Duration {
	if c.retryDelay == 0 {
		d, err := time.ParseDuration(c.RetryDelay)
		if err != nil {
			return time.Second
		}
		return d
	}
	return c.retryDelay
}

// FilterRegions applies skip then only lists. A region on both lists is
// excluded: deny wins.
func (c Config) FilterRegions(regions []string) []string {
	return filter(regions, c.SkipRegions, c.OnlyRegions)
}

// FilterServices applies skip then only lists to service names. Deny wins.
func (c Config) FilterServices(services []string) []string {
	return filter(services, c.SkipServices, c.OnlyServices)
}

func filter(items, skip, only []string) []string {
	skipSet := toSet(skip)
	onlySet := toSet(only)

	var out []string
	for _, item := range items {
		if skipSet[item] {
			continue
		}
		if len(onlySet) > 0 && !onlySet[item] {
			continue
		}
		out = append(out, item)
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
