package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var logLevels = map[string]bool{"TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true}

// Validate checks the configuration for required fields and valid values.
// Every problem is reported, each with a descriptive field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Listen == "" {
		errs = append(errs, fmt.Errorf("server.listen is required"))
	}

	if c.Log.Level != "" && !logLevels[strings.ToUpper(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Log.Level))
	}

	if len(c.Panels) == 0 {
		errs = append(errs, fmt.Errorf("panels: at least one profile is required"))
	}

	names := make(map[string]bool, len(c.Panels))
	for i, p := range c.Panels {
		errs = append(errs, p.validate(fmt.Sprintf("panels[%d]", i))...)
		if p.Name == "" {
			continue
		}
		if names[p.Name] {
			errs = append(errs, fmt.Errorf("panels[%d].name %q is used by another profile", i, p.Name))
		}
		names[p.Name] = true
	}

	switch c.Auth.Type {
	case "none":
	case "apikey":
		if len(c.Auth.APIKeys) == 0 {
			errs = append(errs, fmt.Errorf("auth.api_keys is required when auth.type is \"apikey\""))
		}
		for i, k := range c.Auth.APIKeys {
			if k.Key == "" && k.KeyFile == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key or key_file is required", i))
			}
			if k.Subject == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d].subject is required", i))
			}
			for _, name := range k.Profiles {
				if !names[name] {
					errs = append(errs, fmt.Errorf("auth.api_keys[%d].profiles: unknown profile %q", i, name))
				}
			}
		}
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\" or \"apikey\", got %q", c.Auth.Type))
	}

	if c.Auth.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.requests_per_minute must be >= 0, got %d", c.Auth.RequestsPerMinute))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}

func (p PanelProfile) validate(path string) []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, fmt.Errorf("%s.name is required", path))
	}
	if _, err := p.BackendKind(); err != nil {
		errs = append(errs, fmt.Errorf("%s.kind: %w", path, err))
	}

	if p.Host == "" {
		errs = append(errs, fmt.Errorf("%s.host is required", path))
	} else if u, err := url.Parse(p.Host); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%s.host must be an http(s) URL, got %q", path, p.Host))
	}

	if p.Username == "" {
		errs = append(errs, fmt.Errorf("%s.username is required", path))
	}
	if p.Password == "" && p.PasswordFile == "" {
		errs = append(errs, fmt.Errorf("%s: password or password_file is required", path))
	}

	if p.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s.timeout must be >= 0, got %v", path, p.Timeout))
	}
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s.max_retries must be >= 0, got %d", path, p.MaxRetries))
	}
	if p.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s.rate_limit must be >= 0, got %v", path, p.RateLimit))
	}

	return errs
}
