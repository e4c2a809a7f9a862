package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/facetdex/internal/domain"
)

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds the facetdex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	File  string `yaml:"file"`  // log file for the terminal front-end
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int    `yaml:"port"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
	PageTitle       string `yaml:"page_title"`
}

// DatabaseConfig holds KV store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds catalog API settings.
type CatalogConfig struct {
	BaseURL           string           `yaml:"base_url"`
	TimeoutSec        int              `yaml:"timeout_sec"`
	SchemaCacheTTLSec int              `yaml:"schema_cache_ttl_sec"` // 0 disables the cache
	UserAgent         string           `yaml:"user_agent"`
	Endpoints         CatalogEndpoints `yaml:"endpoints"`
}

// CatalogEndpoints overrides catalog API paths. Empty values keep the client defaults.
type CatalogEndpoints struct {
	SearchFields string `yaml:"search_fields"`
	Filters      string `yaml:"filters"`
	SearchModule string `yaml:"search_module"`
	BenchAdd     string `yaml:"bench_add"`
}

// SessionConfig holds panel session settings.
type SessionConfig struct {
	CookieName       string `yaml:"cookie_name"`
	CookieSecure     bool   `yaml:"cookie_secure"`
	IdleTimeoutSec   int    `yaml:"idle_timeout_sec"`
	MaxSessions      int    `yaml:"max_sessions"`
	SweepIntervalSec int    `yaml:"sweep_interval_sec"`
	BenchTTLSec      int    `yaml:"bench_ttl_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// ReadinessTimeoutDuration returns how long startup waits for the store.
func (c DatabaseConfig) ReadinessTimeoutDuration() time.Duration { return seconds(c.ReadinessTimeout) }

// Timeout returns the catalog call timeout.
func (c CatalogConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }

// SchemaCacheTTL returns how long a fetched schema is reused.
func (c CatalogConfig) SchemaCacheTTL() time.Duration { return seconds(c.SchemaCacheTTLSec) }

// IdleTimeout returns how long an untouched session lives.
func (c SessionConfig) IdleTimeout() time.Duration { return seconds(c.IdleTimeoutSec) }

// SweepInterval returns the idle-session sweep period.
func (c SessionConfig) SweepInterval() time.Duration { return seconds(c.SweepIntervalSec) }

// BenchTTL returns the lifetime of a session's bench counter.
func (c SessionConfig) BenchTTL() time.Duration { return seconds(c.BenchTTLSec) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, and validates it.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 10
	}
	if c.Catalog.SchemaCacheTTLSec < 0 {
		c.Catalog.SchemaCacheTTLSec = 0
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "facetdex_session"
	}
	if c.Session.IdleTimeoutSec <= 0 {
		c.Session.IdleTimeoutSec = 1800
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = 10000
	}
	if c.Session.SweepIntervalSec <= 0 {
		c.Session.SweepIntervalSec = 60
	}
	if c.Session.BenchTTLSec <= 0 {
		c.Session.BenchTTLSec = 86400
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.DefaultKeyPrefix
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", DriverRedis)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverRedis, DriverMemory, c.Database.Driver)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("catalog.base_url must be an http(s) URL, got %q", c.Catalog.BaseURL)
	}
	if b := c.Catalog.Endpoints.BenchAdd; b != "" && !strings.Contains(b, "{id}") {
		return fmt.Errorf("catalog.endpoints.bench_add must contain {id}, got %q", b)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
