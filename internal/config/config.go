package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Claude LLM configuration
	Claude ClaudeConfig

	// Server configuration
	Server ServerConfig

	// Query pipeline configuration
	Query QueryConfig

	// Session configuration
	Session SessionConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ClaudeConfig holds Claude API configuration
type ClaudeConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port    string
	GinMode string
}

// QueryConfig holds query pipeline configuration
type QueryConfig struct {
	MaxResults       int
	SummarySampleMax int
	ExampleLimit     int
}

// SessionConfig holds session tracking configuration
type SessionConfig struct {
	Expiry time.Duration
}

// Loader handles loading configuration from various sources
type Loader struct {
	provider SecretProvider
}

// NewLoader creates a new configuration loader with the given secret provider
func NewLoader(provider SecretProvider) *Loader {
	return &Loader{
		provider: provider,
	}
}

// NewDefaultLoader creates a loader with the default provider chain:
// 1. Kubernetes secrets (if available)
// 2. File-based secrets (if available)
// 3. Environment variables (fallback)
func NewDefaultLoader() *Loader {
	providers := []SecretProvider{
		NewK8sProvider("", ""),          // Auto-detect K8s environment
		NewFileProvider("/var/secrets"), // Common secret mount path
		NewEnvProvider(),                // Always available fallback
	}

	return &Loader{
		provider: NewChainProvider(providers...),
	}
}

// Load loads the complete configuration
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	cfg.Database = DatabaseConfig{
		Host:     l.getString(ctx, "DB_HOST", "localhost"),
		Port:     l.getString(ctx, "DB_PORT", "5432"),
		Database: l.getString(ctx, "DB_NAME", "apexion_cx"),
		Username: l.getString(ctx, "DB_USER", "cx_copilot"),
		Password: l.getString(ctx, "DB_PASSWORD", ""),
		SSLMode:  l.getString(ctx, "DB_SSLMODE", "disable"),
	}

	cfg.Redis = RedisConfig{
		Addr:     l.getString(ctx, "REDIS_ADDR", "localhost:6379"),
		Password: l.getString(ctx, "REDIS_PASSWORD", ""),
		DB:       l.getInt(ctx, "REDIS_DB", 0),
	}

	cfg.Claude = ClaudeConfig{
		APIKey:  l.getString(ctx, "CLAUDE_API_KEY", ""),
		Model:   l.getString(ctx, "CLAUDE_MODEL", "claude-3-haiku-20240307"),
		Timeout: l.getDuration(ctx, "CLAUDE_TIMEOUT", 30*time.Second),
	}

	cfg.Server = ServerConfig{
		Port:    l.getString(ctx, "PORT", "8080"),
		GinMode: l.getString(ctx, "GIN_MODE", "debug"),
	}

	cfg.Query = QueryConfig{
		MaxResults:       l.getInt(ctx, "MAX_QUERY_RESULTS", 100),
		SummarySampleMax: l.getInt(ctx, "SUMMARY_SAMPLE_MAX", 5),
		ExampleLimit:     l.getInt(ctx, "EXAMPLE_LIMIT", 3),
	}

	cfg.Session = SessionConfig{
		Expiry: l.getDuration(ctx, "SESSION_EXPIRY", 7*24*time.Hour),
	}

	return cfg, nil
}

// Helper methods for retrieving and parsing configuration values

func (l *Loader) getString(ctx context.Context, key, defaultValue string) string {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}
	return value
}

func (l *Loader) getInt(ctx context.Context, key string, defaultValue int) int {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

func (l *Loader) getDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	value, err := l.provider.GetSecret(ctx, key)
	if err != nil || value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// MustLoad loads configuration and panics on error
// Useful for application startup
func (l *Loader) MustLoad(ctx context.Context) *Config {
	cfg, err := l.Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// ConnString builds a lib/pq connection string from the database config
func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
}

// URL builds a postgres:// URL for migration tooling
func (d DatabaseConfig) URL() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, sslMode)
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation error(s):\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Database.Host == "" {
		errs = append(errs, ValidationError{Field: "Database.Host", Message: "database host is required"})
	}
	if c.Database.Port == "" {
		errs = append(errs, ValidationError{Field: "Database.Port", Message: "database port is required"})
	}
	if c.Database.Database == "" {
		errs = append(errs, ValidationError{Field: "Database.Database", Message: "database name is required"})
	}
	if c.Database.Username == "" {
		errs = append(errs, ValidationError{Field: "Database.Username", Message: "database username is required"})
	}

	if c.Redis.Addr == "" {
		errs = append(errs, ValidationError{Field: "Redis.Addr", Message: "redis address is required"})
	}

	if c.Claude.APIKey == "" {
		errs = append(errs, ValidationError{Field: "Claude.APIKey", Message: "claude api key is required"})
	}
	if c.Claude.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "Claude.Timeout", Message: "claude timeout must be positive"})
	}

	if c.Server.Port == "" {
		errs = append(errs, ValidationError{Field: "Server.Port", Message: "server port is required"})
	}

	if c.Query.MaxResults <= 0 {
		errs = append(errs, ValidationError{Field: "Query.MaxResults", Message: "max results must be positive"})
	}
	if c.Query.SummarySampleMax <= 0 {
		errs = append(errs, ValidationError{Field: "Query.SummarySampleMax", Message: "summary sample size must be positive"})
	}

	if errs.HasErrors() {
		return errs
	}

	return nil
}
