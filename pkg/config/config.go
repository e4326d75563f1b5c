// Package config provides unified configuration for opexcore commands.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (OPEX_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/rhuss/opexcore/pkg/api"
	"github.com/rhuss/opexcore/pkg/panel"
)

// Config holds all configuration for an opexcore command.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Auth          AuthConfig          `yaml:"auth"`
	Panels        []PanelProfile      `yaml:"panels"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ServerConfig holds HTTP server settings for the tool server.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`           // default: "127.0.0.1:8090"
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
}

// LogConfig holds logging settings. OPEX_LOG_LEVEL and OPEX_DEBUG win
// over these values.
type LogConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma separated debug categories
}

// AuthConfig controls who may call the tool server.
type AuthConfig struct {
	Type              string         `yaml:"type"`                // "none" or "apikey", default: "none"
	APIKeys           []APIKeyConfig `yaml:"api_keys"`            // entries for type=apikey
	RequestsPerMinute int            `yaml:"requests_per_minute"` // default per-caller rate, 0 = unlimited
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key               string   `yaml:"key"`
	KeyFile           string   `yaml:"key_file"` // _file variant for key
	Subject           string   `yaml:"subject"`
	Profiles          []string `yaml:"profiles"` // empty = every profile
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

// PanelProfile names one panel installation and the credentials used to
// log in to it.
type PanelProfile struct {
	Name         string        `yaml:"name"`
	Kind         string        `yaml:"kind"`
	Host         string        `yaml:"host"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	PasswordFile string        `yaml:"password_file"` // _file variant for password
	Timeout      time.Duration `yaml:"timeout"`       // 0 = transport default
	MaxRetries   int           `yaml:"max_retries"`
	RateLimit    float64       `yaml:"rate_limit"` // calls per second, 0 = unlimited
	Burst        int           `yaml:"burst"`
}

// BackendKind returns the parsed backend kind of the profile.
func (p PanelProfile) BackendKind() (api.Kind, error) {
	return api.ParseKind(p.Kind)
}

// PanelConfig converts the profile into adapter settings.
func (p PanelProfile) PanelConfig() panel.Config {
	return panel.Config{
		Timeout:    p.Timeout,
		MaxRetries: p.MaxRetries,
		RateLimit:  p.RateLimit,
		Burst:      p.Burst,
		UserAgent:  "opexcore",
	}
}

// Profile returns the panel profile with the given name.
func (c *Config) Profile(name string) (*PanelProfile, bool) {
	for i := range c.Panels {
		if c.Panels[i].Name == name {
			return &c.Panels[i], true
		}
	}
	return nil, false
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Listen:          "127.0.0.1:8090",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
