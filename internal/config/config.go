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

// Storage drivers
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Identity provider drivers
const (
	IdentityDriverLocal  = "local"
	IdentityDriverGoTrue = "gotrue"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		URL             string `yaml:"url" env:"DATABASE_URL"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	Storage struct {
		Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
	} `yaml:"storage"`

	Identity struct {
		Driver         string `yaml:"driver" env:"IDENTITY_DRIVER"`
		BcryptCost     int    `yaml:"bcrypt_cost" env:"IDENTITY_BCRYPT_COST"`
		GoTrueURL      string `yaml:"gotrue_url" env:"GOTRUE_URL"`
		ServiceKey     string `yaml:"service_key" env:"GOTRUE_SERVICE_KEY"`
		AnonKey        string `yaml:"anon_key" env:"GOTRUE_ANON_KEY"`
		RequestTimeout string `yaml:"request_timeout" env:"GOTRUE_REQUEST_TIMEOUT"`
	} `yaml:"identity"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Redis struct {
		Address      string `yaml:"address" env:"REDIS_ADDRESS"`
		URL          string `yaml:"url" env:"REDIS_URL"`
		Password     string `yaml:"password" env:"REDIS_PASSWORD"`
		DB           int    `yaml:"db" env:"REDIS_DB"`
		PoolSize     int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
		DialTimeout  string `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
		RateLimit    int    `yaml:"rate_limit" env:"REDIS_RATE_LIMIT"`
		RateWindow   string `yaml:"rate_window" env:"REDIS_RATE_WINDOW"`
		KeyNamespace string `yaml:"key_namespace" env:"REDIS_KEY_NAMESPACE"`
	} `yaml:"redis"`

	Reconciler struct {
		BackendTimeout       string `yaml:"backend_timeout" env:"RECONCILER_BACKEND_TIMEOUT"`
		MaxStudentIDAttempts int    `yaml:"max_student_id_attempts" env:"RECONCILER_MAX_STUDENT_ID_ATTEMPTS"`
	} `yaml:"reconciler"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" env:"SEED_ENABLED"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in increasing order of precedence
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

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

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "uniportal"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.Storage.Driver = StorageDriverPostgres

	config.Identity.Driver = IdentityDriverLocal
	config.Identity.BcryptCost = 12
	config.Identity.RequestTimeout = "10s"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "uniportal"

	config.Redis.PoolSize = 10
	config.Redis.DialTimeout = "5s"
	config.Redis.RateLimit = 20
	config.Redis.RateWindow = "1m"
	config.Redis.KeyNamespace = "uniportal"

	config.Reconciler.BackendTimeout = "10s"
	config.Reconciler.MaxStudentIDAttempts = 100

	config.Seed.Enabled = true
	config.Seed.AdminEmail = "admin@uniportal.edu"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Storage.Driver {
	case StorageDriverPostgres:
		if config.Database.URL == "" && config.Database.Host == "" {
			return fmt.Errorf("database host or url is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.Identity.Driver {
	case IdentityDriverLocal:
	case IdentityDriverGoTrue:
		if config.Identity.GoTrueURL == "" || config.Identity.ServiceKey == "" {
			return fmt.Errorf("gotrue_url and service_key are required for the gotrue identity driver")
		}
		if _, err := time.ParseDuration(config.Identity.RequestTimeout); err != nil {
			return fmt.Errorf("invalid identity request timeout: %w", err)
		}
	default:
		return fmt.Errorf("unknown identity driver %q", config.Identity.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Reconciler.BackendTimeout); err != nil {
		return fmt.Errorf("invalid reconciler backend timeout: %w", err)
	}

	if config.Reconciler.MaxStudentIDAttempts <= 0 {
		return fmt.Errorf("reconciler max_student_id_attempts must be positive")
	}

	if config.Redis.RateLimit < 0 {
		return fmt.Errorf("redis rate_limit must not be negative")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

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

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
