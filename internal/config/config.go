// Package config loads and validates server configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root server configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Identity      IdentityConfig      `yaml:"identity"`
	AppConfig     AppConfigSource     `yaml:"app_config"`
	Store         StoreConfig         `yaml:"store"`
	Reference     ReferenceConfig     `yaml:"reference"`
	Search        SearchConfig        `yaml:"search"`
	Wizard        WizardConfig        `yaml:"wizard"`
	Idempotency   IdempotencyConfig   `yaml:"idempotency"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// IdentityConfig describes the JWT settings for tokens issued by the login
// endpoint and verified by the auth middleware. Tokens are HMAC-signed; the
// secret is read from the environment variable named by SecretEnv.
type IdentityConfig struct {
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	SecretEnv string        `yaml:"secret_env"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Leeway    time.Duration `yaml:"leeway"`
}

// AppConfigSource describes where the declarative AppConfig comes from.
type AppConfigSource struct {
	// File is a path to a local app config JSON document.
	File string `yaml:"file"`
	// RemoteBaseURL, when set, takes precedence over File. The runtime polls
	// GET {RemoteBaseURL}/app-version/latest?project_id={ProjectID}.
	RemoteBaseURL string              `yaml:"remote_base_url"`
	ProjectID     string              `yaml:"project_id"`
	PollInterval  time.Duration       `yaml:"poll_interval"`
	Timeout       time.Duration       `yaml:"timeout"`
	Breaker       CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig describes circuit breaker settings for the remote
// config source.
type CircuitBreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// StoreConfig describes record store persistence settings. Driver selection
// here overrides the app config's settings.persistenceMode when non-empty.
type StoreConfig struct {
	Driver          string        `yaml:"driver"` // memory|file|postgres
	SQLitePath      string        `yaml:"sqlite_path"`
	DSNEnv          string        `yaml:"dsn_env"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ReferenceConfig describes reference resolver cache settings.
type ReferenceConfig struct {
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// SearchConfig describes cross-resource search settings.
type SearchConfig struct {
	MaxResultsPerResource int           `yaml:"max_results_per_resource"`
	Timeout               time.Duration `yaml:"timeout"`
}

// WizardConfig describes wizard session settings.
type WizardConfig struct {
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// IdempotencyConfig describes idempotency store settings.
type IdempotencyConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type",
					"X-Correlation-Id", "X-Idempotency-Key"},
				MaxAge: 86400,
			},
		},
		Identity: IdentityConfig{
			Issuer:    "oneshot-runtime",
			Audience:  "oneshot-ui",
			SecretEnv: "ONESHOT_AUTH_SECRET",
			TokenTTL:  12 * time.Hour,
			Leeway:    30 * time.Second,
		},
		AppConfig: AppConfigSource{
			File:         "app.config.json",
			PollInterval: 30 * time.Second,
			Timeout:      10 * time.Second,
			Breaker: CircuitBreakerConfig{
				FailureThreshold: 5,
				SuccessThreshold: 2,
				Timeout:          30 * time.Second,
			},
		},
		Store: StoreConfig{
			SQLitePath:      "oneshot.db",
			DSNEnv:          "ONESHOT_STORE_DSN",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Reference: ReferenceConfig{
			CacheTTL:   5 * time.Minute,
			MaxEntries: 1000,
		},
		Search: SearchConfig{
			MaxResultsPerResource: 50,
			Timeout:               3 * time.Second,
		},
		Wizard: WizardConfig{
			SessionTTL:      time.Hour,
			CleanupInterval: 60 * time.Second,
		},
		Idempotency: IdempotencyConfig{
			Enabled:    true,
			DefaultTTL: 24 * time.Hour,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Identity.Issuer == "" {
		errs = append(errs, "identity.issuer is required")
	}
	if c.Identity.Audience == "" {
		errs = append(errs, "identity.audience is required")
	}
	if c.AppConfig.RemoteBaseURL != "" && c.AppConfig.ProjectID == "" {
		errs = append(errs, "app_config.project_id is required when remote_base_url is set")
	}
	switch c.Store.Driver {
	case "", "memory", "file", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not one of memory, file, postgres", c.Store.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads ONESHOT_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ONESHOT_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ONESHOT_APP_CONFIG_FILE"); v != "" {
		cfg.AppConfig.File = v
	}
	if v := os.Getenv("ONESHOT_APP_CONFIG_REMOTE_BASE_URL"); v != "" {
		cfg.AppConfig.RemoteBaseURL = v
	}
	if v := os.Getenv("ONESHOT_APP_CONFIG_PROJECT_ID"); v != "" {
		cfg.AppConfig.ProjectID = v
	}
	if v := os.Getenv("ONESHOT_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("ONESHOT_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
