package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rhuss/opexcore/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, OPEX_CONFIG env, ./opex.yaml, /etc/opex/config.yaml)
//  3. Environment variable overrides, after merging a dotenv file
//     (OPEX_ENV_FILE or ./.env) into the process environment
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	debug.Log("config", "configuration ready", "panels", len(cfg.Panels), "auth", cfg.Auth.Type)
	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. OPEX_CONFIG environment variable
// 3. ./opex.yaml in the current directory
// 4. /etc/opex/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("OPEX_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"opex.yaml",
		"/etc/opex/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadDotEnv merges a dotenv file into the environment. Variables already
// set in the process win. A missing ./.env is not an error; a missing
// OPEX_ENV_FILE is.
func loadDotEnv() error {
	path := os.Getenv("OPEX_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	debug.Log("config", "loaded env file", "path", path)
	return nil
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The list
// variables hold JSON, which the YAML decoder reads with the same field
// names as the config file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("OPEX_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("OPEX_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("OPEX_DEBUG"); v != "" {
		cfg.Log.Debug = v
	}
	if v := os.Getenv("OPEX_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}

	if v := os.Getenv("OPEX_PANELS"); v != "" {
		var panels []PanelProfile
		if err := yaml.Unmarshal([]byte(v), &panels); err != nil {
			return fmt.Errorf("parsing OPEX_PANELS: %w", err)
		}
		cfg.Panels = panels
	}

	if v := os.Getenv("OPEX_API_KEYS"); v != "" {
		var keys []APIKeyConfig
		if err := yaml.Unmarshal([]byte(v), &keys); err != nil {
			return fmt.Errorf("parsing OPEX_API_KEYS: %w", err)
		}
		cfg.Auth.APIKeys = keys
	}

	return nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// panels[*].password_file -> panels[*].password
	for i := range cfg.Panels {
		if cfg.Panels[i].PasswordFile != "" && cfg.Panels[i].Password == "" {
			val, err := readSecretFile(cfg.Panels[i].PasswordFile)
			if err != nil {
				return fmt.Errorf("panels[%d].password_file: %w", i, err)
			}
			cfg.Panels[i].Password = val
		}
	}

	// auth.api_keys[*].key_file -> auth.api_keys[*].key
	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
