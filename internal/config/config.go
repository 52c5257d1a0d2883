// Package config loads content-proxy configuration from YAML and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config represents the application configuration
type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig describes the upstream content API
type APIConfig struct {
	BaseURL    string `yaml:"base_url"`
	UserAgent  string `yaml:"user_agent"`
	AdminToken string `yaml:"admin_token"`
	Timeout    string `yaml:"timeout"` // empty: no transport timeout
}

// ServerConfig contains proxy server configuration
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CacheConfig selects and tunes the response cache
type CacheConfig struct {
	Backend  string `yaml:"backend"` // "memory" or "redis"
	TTL      string `yaml:"ttl"`
	RedisURL string `yaml:"redis_url"`
}

// LogConfig configures zerolog
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			UserAgent: "content-client/0.1.0",
		},
		Server: ServerConfig{Port: 8080},
		Cache: CacheConfig{
			Backend: BackendMemory,
			TTL:     "5m",
		},
		Log: LogConfig{
			Level:  string(logging.LevelInfo),
			Format: string(logging.FormatJSON),
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnv overrides fields from environment variables:
// CONTENT_BASE_URL, CONTENT_ADMIN_TOKEN, USER_AGENT, CACHE_TTL, REDIS_URL
// (also selects the redis backend), PORT and LOG_LEVEL.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("CONTENT_BASE_URL"); ok {
		c.API.BaseURL = v
	}
	if v, ok := get("CONTENT_ADMIN_TOKEN"); ok {
		c.API.AdminToken = v
	}
	if v, ok := get("USER_AGENT"); ok {
		c.API.UserAgent = v
	}
	if v, ok := get("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}
	if v, ok := get("REDIS_URL"); ok {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	return nil
}

// CacheTTL parses the cache TTL.
func (c *Config) CacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// Timeout parses the transport timeout; empty means none.
func (c *Config) Timeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.API.Timeout)
}

// RedisOptions converts RedisURL to client options. Both redis:// URLs
// and bare host:port addresses are accepted.
func (c *Config) RedisOptions() (*redis.Options, error) {
	raw := c.Cache.RedisURL
	if raw == "" {
		raw = "localhost:6379"
	}
	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}
	return redis.ParseURL(raw)
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = logging.Format(c.Log.Format)
	cfg.Service = "content-proxy"
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required (or set CONTENT_BASE_URL)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base_url must be an absolute URL, got: %s", c.API.BaseURL)
	}

	if c.API.UserAgent == "" {
		return fmt.Errorf("api user_agent is required")
	}

	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("invalid api timeout format: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	ttl, err := c.CacheTTL()
	if err != nil {
		return fmt.Errorf("invalid cache TTL format: %w", err)
	}
	if ttl < 0 {
		return fmt.Errorf("cache TTL must be >= 0, got: %s", ttl)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if _, err := c.RedisOptions(); err != nil {
			return fmt.Errorf("invalid redis_url: %w", err)
		}
	default:
		return fmt.Errorf("cache backend must be 'memory' or 'redis', got: %s", c.Cache.Backend)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != string(logging.FormatJSON) && c.Log.Format != string(logging.FormatConsole) {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", c.Log.Format)
	}

	return nil
}
