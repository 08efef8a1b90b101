package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backend selection.
const (
	BackendDisk   = "disk"
	BackendMemory = "memory"
)

// Config represents the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
}

// ServerConfig contains listener-related configuration.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Backend     string `yaml:"backend"`
	MetricsPort int    `yaml:"metrics_port"`
}

// CacheConfig contains cache-related configuration.
type CacheConfig struct {
	// TTLSeconds is how long entries stay fresh.
	TTLSeconds int `yaml:"ttl"`
	// Dir is where disk entries are persisted.
	Dir string `yaml:"dir"`
	// Backend selects the store implementation, "disk" or "memory".
	Backend string `yaml:"backend"`
}

// Default returns a config with the stock defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 3000},
		Cache: CacheConfig{
			TTLSeconds: 300,
			Dir:        "/tmp/proxy_cache",
			Backend:    BackendDisk,
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return config, nil
}

// TTL returns the cache TTL as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.Backend == "" {
		return fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(c.Server.Backend)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend URL must be http or https, got: %s", c.Server.Backend)
	}
	if u.Host == "" {
		return fmt.Errorf("backend URL is missing a host: %s", c.Server.Backend)
	}

	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %d", c.Cache.TTLSeconds)
	}

	switch c.Cache.Backend {
	case BackendDisk:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache dir is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("cache backend must be %q or %q, got: %s", BackendDisk, BackendMemory, c.Cache.Backend)
	}

	return nil
}
