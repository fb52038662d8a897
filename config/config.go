// Package config loads service configuration from the environment.
//
// A .env file in the working directory is read first (if present); real
// environment variables always win over values from the file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the root configuration for the forum service.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Hashing   HashingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	// ShutdownTimeout bounds graceful HTTP shutdown, e.g. "10s".
	ShutdownTimeout string
	// ReadinessDrainDelay is how long /ready reports 503 before the server stops, e.g. "5s".
	ReadinessDrainDelay string
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string
}

// DatabaseConfig holds PostgreSQL connection settings for user and post records.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// SessionConfig holds MongoDB session store and cookie settings.
type SessionConfig struct {
	MongoURI      string
	MongoDatabase string
	Collection    string
	CookieName    string
	TTL           time.Duration
}

// HashingConfig holds argon2id cost parameters as read from the environment.
// Values are range-checked by Validate before any narrowing conversion.
type HashingConfig struct {
	MemoryKB    int
	Iterations  int
	Parallelism int
}

// Upper bounds for ARGON2_* settings.
const (
	MaxArgon2MemoryKB    = 1 << 20 // 1 GiB
	MaxArgon2Iterations  = 16
	MaxArgon2Parallelism = 255
)

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from .env (optional) and the process environment.
func Load() *Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "forum-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("ENV", "development"),
			Port:    getEnv("PORT", "4000"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USERNAME", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "reddit"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Session: SessionConfig{
			MongoURI:      getEnv("SESSION_MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("SESSION_MONGO_DATABASE", "reddit"),
			Collection:    getEnv("SESSION_COLLECTION", "sessions"),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "qid"),
			TTL:           getEnvDuration("SESSION_TTL", time.Hour),
		},
		Hashing: HashingConfig{
			MemoryKB:    getEnvInt("ARGON2_MEMORY_KB", 64*1024),
			Iterations:  getEnvInt("ARGON2_ITERATIONS", 1),
			Parallelism: getEnvInt("ARGON2_PARALLELISM", 4),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040"),
		},
		ShutdownTimeout:     getEnv("SHUTDOWN_TIMEOUT", "10s"),
		ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if p, err := strconv.Atoi(c.Service.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", c.Service.Port))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.Database.MaxConns))
	}
	if c.Session.MongoURI == "" {
		errs = append(errs, errors.New("SESSION_MONGO_URI is required"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL))
	}
	if h := c.Hashing; h.Parallelism < 1 || h.Parallelism > MaxArgon2Parallelism {
		errs = append(errs, fmt.Errorf("ARGON2_PARALLELISM must be within [1,%d], got %d", MaxArgon2Parallelism, h.Parallelism))
	} else if h.MemoryKB < 8*h.Parallelism || h.MemoryKB > MaxArgon2MemoryKB {
		errs = append(errs, fmt.Errorf("ARGON2_MEMORY_KB must be within [%d,%d], got %d", 8*h.Parallelism, MaxArgon2MemoryKB, h.MemoryKB))
	}
	if h := c.Hashing; h.Iterations < 1 || h.Iterations > MaxArgon2Iterations {
		errs = append(errs, fmt.Errorf("ARGON2_ITERATIONS must be within [1,%d], got %d", MaxArgon2Iterations, h.Iterations))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate))
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if _, err := time.ParseDuration(c.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("READINESS_DRAIN_DELAY: %w", err))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Service.Env, "production")
}

// DSN builds the PostgreSQL connection string for pgxpool.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	q.Set("pool_max_conns", strconv.Itoa(d.MaxConns))
	u.RawQuery = q.Encode()
	return u.String()
}

// GetShutdownTimeoutDuration returns ShutdownTimeout, falling back to 10s.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetReadinessDrainDelayDuration returns ReadinessDrainDelay, or 0 when unset or invalid.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.ReadinessDrainDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("1h") or plain seconds ("3600").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
