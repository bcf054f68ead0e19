// Package config provides configuration management for the citation
// verification service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the citation verification service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Registries contains external bibliographic registry settings.
	Registries RegistriesConfig `mapstructure:"registries"`
	// Verification contains batch-processing policy.
	Verification VerificationConfig `mapstructure:"verification"`
	// Abbreviations extends the built-in journal abbreviation table.
	// Keys are short forms, values canonical full names.
	Abbreviations map[string]string `mapstructure:"abbreviations"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBatchBytes caps the request body size for verification batches.
	MaxBatchBytes int64 `mapstructure:"max_batch_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace is the metric name prefix.
	Namespace string `mapstructure:"namespace"`
}

// RegistryConfig holds settings for one external registry client.
type RegistryConfig struct {
	// BaseURL overrides the registry endpoint, mainly for testing.
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int `mapstructure:"burst_size"`
}

// RegistriesConfig holds settings for the external bibliographic registries.
type RegistriesConfig struct {
	// DOIResolver configures the DOI redirect service client.
	DOIResolver RegistryConfig `mapstructure:"doi_resolver"`
	// CrossRef configures the CrossRef REST API client.
	CrossRef RegistryConfig `mapstructure:"crossref"`
	// OpenLibrary configures the Open Library books API client.
	OpenLibrary RegistryConfig `mapstructure:"openlibrary"`
	// WebProbe configures the URL reachability probe.
	WebProbe RegistryConfig `mapstructure:"webprobe"`
	// Email is the contact address sent to registries that support a
	// polite pool (CrossRef).
	Email string `mapstructure:"email"`
}

// VerificationConfig holds batch-processing policy.
type VerificationConfig struct {
	// CitationDelay is the pause between citations in sequential mode.
	CitationDelay time.Duration `mapstructure:"citation_delay"`
	// Workers bounds concurrent citation processing (<= 1 is sequential).
	Workers int `mapstructure:"workers"`
	// MinCitationLength is the minimum line length treated as a citation.
	MinCitationLength int `mapstructure:"min_citation_length"`
	// DefaultStyle is the citation style assumed when a request names none.
	DefaultStyle string `mapstructure:"default_style"`
}

// HTTPAddress returns the host:port address for the HTTP server.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the host:port address for the metrics server.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load reads configuration from defaults, an optional config.yaml, and
// REFAUDIT_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("REFAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/citation-verification-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_batch_bytes", 1<<20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "citation_verification")

	// Registry defaults
	v.SetDefault("registries.email", "")
	v.SetDefault("registries.doi_resolver.base_url", "https://doi.org")
	v.SetDefault("registries.doi_resolver.timeout", "15s")
	v.SetDefault("registries.doi_resolver.rate_limit", 5.0)
	v.SetDefault("registries.doi_resolver.burst_size", 5)
	v.SetDefault("registries.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("registries.crossref.timeout", "15s")
	v.SetDefault("registries.crossref.rate_limit", 2.0)
	v.SetDefault("registries.crossref.burst_size", 2)
	v.SetDefault("registries.openlibrary.base_url", "https://openlibrary.org")
	v.SetDefault("registries.openlibrary.timeout", "15s")
	v.SetDefault("registries.openlibrary.rate_limit", 3.0)
	v.SetDefault("registries.openlibrary.burst_size", 3)
	v.SetDefault("registries.webprobe.timeout", "10s")
	v.SetDefault("registries.webprobe.rate_limit", 5.0)
	v.SetDefault("registries.webprobe.burst_size", 5)

	// Verification defaults
	v.SetDefault("verification.citation_delay", "1s")
	v.SetDefault("verification.workers", 1)
	v.SetDefault("verification.min_citation_length", 20)
	v.SetDefault("verification.default_style", "apa")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.MaxBatchBytes <= 0 {
		return fmt.Errorf("max_batch_bytes must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	for name, registry := range map[string]RegistryConfig{
		"doi_resolver": c.Registries.DOIResolver,
		"crossref":     c.Registries.CrossRef,
		"openlibrary":  c.Registries.OpenLibrary,
		"webprobe":     c.Registries.WebProbe,
	} {
		if registry.Timeout <= 0 {
			return fmt.Errorf("registry %s timeout must be positive", name)
		}
		if registry.RateLimit <= 0 {
			return fmt.Errorf("registry %s rate_limit must be positive", name)
		}
		if registry.BurstSize <= 0 {
			return fmt.Errorf("registry %s burst_size must be positive", name)
		}
	}

	if c.Verification.CitationDelay < 0 {
		return fmt.Errorf("citation_delay must not be negative")
	}
	if c.Verification.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Verification.MinCitationLength <= 0 {
		return fmt.Errorf("min_citation_length must be positive")
	}

	return nil
}
