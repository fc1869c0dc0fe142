package capture

import (
	"fmt"
	"os"
	"time"
)

// Config points the snapshot source at network cameras. A facing without a
// URL is reported as unavailable.
type Config struct {
	EnvironmentURL string `toml:"environment_url"`
	DefaultURL     string `toml:"default_url"`
	Timeout        string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	EnvironmentURL string
	DefaultURL     string
	Timeout        string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.EnvironmentURL != "" {
		c.EnvironmentURL = overlay.EnvironmentURL
	}
	if overlay.DefaultURL != "" {
		c.DefaultURL = overlay.DefaultURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.EnvironmentURL != "" {
		if v := os.Getenv(env.EnvironmentURL); v != "" {
			c.EnvironmentURL = v
		}
	}
	if env.DefaultURL != "" {
		if v := os.Getenv(env.DefaultURL); v != "" {
			c.DefaultURL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
