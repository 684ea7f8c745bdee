package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		StaticDir    string `yaml:"static_dir" env:"SERVER_STATIC_DIR"`

		// AllowedOrigins restricts websocket upgrades; empty allows any origin
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		TxMaxAttempts   int    `yaml:"tx_max_attempts" env:"DB_TX_MAX_ATTEMPTS"`
		TxRetryDelay    string `yaml:"tx_retry_delay" env:"DB_TX_RETRY_DELAY"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	Session struct {
		MaxAge          string `yaml:"max_age" env:"SESSION_MAX_AGE"`
		CleanupInterval string `yaml:"cleanup_interval" env:"SESSION_CLEANUP_INTERVAL"`
		UserCookie      string `yaml:"user_cookie" env:"SESSION_USER_COOKIE"`
		MagicCookie     string `yaml:"magic_cookie" env:"SESSION_MAGIC_COOKIE"`
	} `yaml:"session"`

	Schedule struct {
		Timezone    string `yaml:"timezone" env:"SCHEDULE_TIMEZONE"`
		MinCapacity int    `yaml:"min_capacity" env:"SCHEDULE_MIN_CAPACITY"`
		MaxCapacity int    `yaml:"max_capacity" env:"SCHEDULE_MAX_CAPACITY"`
	} `yaml:"schedule"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// Values already present in the environment win over the .env file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	envFile := GetEnv("SKILLTRACK_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"
	config.Server.StaticDir = "./web"

	// Database defaults
	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "skilltrack"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.TxMaxAttempts = 5
	config.Database.TxRetryDelay = "20ms"
	config.Database.AutoMigrate = true

	// Session defaults
	config.Session.MaxAge = "24h"
	config.Session.CleanupInterval = "10m"
	config.Session.UserCookie = "u_cookie"
	config.Session.MagicCookie = "m_cookie"

	// Schedule defaults
	config.Schedule.Timezone = "Local"
	config.Schedule.MinCapacity = 1
	config.Schedule.MaxCapacity = 10

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.Database.TxMaxAttempts < 1 {
		return fmt.Errorf("database tx_max_attempts must be at least 1")
	}

	durations := map[string]string{
		"server.read_timeout":        config.Server.ReadTimeout,
		"server.write_timeout":       config.Server.WriteTimeout,
		"database.conn_max_lifetime": config.Database.ConnMaxLifetime,
		"database.tx_retry_delay":    config.Database.TxRetryDelay,
		"session.max_age":            config.Session.MaxAge,
		"session.cleanup_interval":   config.Session.CleanupInterval,
	}
	for name, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s duration format: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	if strings.TrimSpace(config.Session.UserCookie) == "" || strings.TrimSpace(config.Session.MagicCookie) == "" {
		return fmt.Errorf("session cookie names are required")
	}
	if config.Session.UserCookie == config.Session.MagicCookie {
		return fmt.Errorf("session cookie names must differ")
	}

	if config.Schedule.MinCapacity < 1 || config.Schedule.MaxCapacity < config.Schedule.MinCapacity {
		return fmt.Errorf("schedule capacity range [%d,%d] is invalid", config.Schedule.MinCapacity, config.Schedule.MaxCapacity)
	}

	if _, err := time.LoadLocation(config.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid schedule timezone: %w", err)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Location returns the timezone class start times are entered in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SessionMaxAge returns the absolute session lifetime; zero disables expiry
func (c *Config) SessionMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.Session.MaxAge)
	return d
}

// SessionCleanupInterval returns how often expired sessions are purged
func (c *Config) SessionCleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.Session.CleanupInterval)
	return d
}

// TxRetryDelay returns the base backoff between transaction attempts
func (c *Config) TxRetryDelay() time.Duration {
	d, _ := time.ParseDuration(c.Database.TxRetryDelay)
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
