package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cameronmore/go-apiauth/auth"
	"github.com/cameronmore/go-apiauth/env"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read by Load when it exists.
const DefaultEnvFile = ".env"

// Config is the root configuration for the API. Values come from defaults, an
// optional YAML file, an optional .env file and the process environment, each
// overriding the one before.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig contains HTTP listener settings. Timeouts are in seconds.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeout     int    `yaml:"read_timeout"`
	WriteTimeout    int    `yaml:"write_timeout"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the SQL backend for users and persisted sessions.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig selects and tunes the authentication strategy.
type AuthConfig struct {
	Type string `yaml:"type"`
	// SessionName is the session cookie name.
	SessionName string `yaml:"session_name"`
	// SessionDuration is the session lifetime in seconds; zero or less never
	// expires.
	SessionDuration int `yaml:"session_duration"`
	// SessionBackend is where persisted sessions live: "sql" or "redis".
	SessionBackend string   `yaml:"session_backend"`
	CookieSecret   string   `yaml:"cookie_secret"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	BcryptCost     int      `yaml:"bcrypt_cost"`
	ExcludedPaths  []string `yaml:"excluded_paths"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultExcludedPaths are the routes reachable without credentials.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/api/v1/auth_session/login/",
	"/api/v1/sessions",
	"/api/v1/register",
	"/api/v1/reset_password",
	"/metrics",
}

// Load builds the configuration from the YAML file at path (skipped when path
// is empty), the .env file in the working directory and the environment.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, DefaultEnvFile)
}

// LoadWithEnvFile is Load with an explicit .env location. A missing .env file
// is not an error.
func LoadWithEnvFile(path, envFile string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		parsed, err := env.ProcessEnv(envFile)
		switch {
		case err == nil:
			dotenv = parsed
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading env file: %w", err)
		}
	}

	applyEnvOverrides(cfg, func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./apiauth.db",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			Type:           string(auth.StrategySession),
			SessionName:    "session_id",
			SessionBackend: "sql",
			ExcludedPaths:  append([]string(nil), DefaultExcludedPaths...),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("API_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getenv("API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := getenv("AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := getenv("SESSION_NAME"); v != "" {
		cfg.Auth.SessionName = v
	}
	if v := getenv("SESSION_DURATION"); v != "" {
		// A value that is not a whole number of seconds disables expiry.
		d, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			d = 0
		}
		cfg.Auth.SessionDuration = d
	}
	if v := getenv("SESSION_BACKEND"); v != "" {
		cfg.Auth.SessionBackend = v
	}
	if v := getenv("COOKIE_SECRET"); v != "" {
		cfg.Auth.CookieSecret = v
	}

	if v := getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if _, err := auth.ParseStrategy(c.Auth.Type); err != nil {
		errs = append(errs, fmt.Sprintf("auth.type %q is not a known strategy", c.Auth.Type))
	}
	switch c.Auth.SessionBackend {
	case "sql", "redis":
	default:
		errs = append(errs, "auth.session_backend must be sql or redis")
	}
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, "database.driver must be sqlite3 or postgres")
	}
	if c.Database.DSN == "" {
		errs = append(errs, "database.dsn is required")
	}
	if c.Auth.SessionBackend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required for the redis session backend")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Strategy returns the parsed authentication strategy.
func (c *Config) Strategy() auth.Strategy {
	s, _ := auth.ParseStrategy(c.Auth.Type)
	return s
}

// SessionDuration returns the session lifetime.
func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.Auth.SessionDuration) * time.Second
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeout) * time.Second
}

func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeout) * time.Second
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}
