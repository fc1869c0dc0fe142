package history

import (
	"fmt"
	"os"
	"strconv"
)

// Config names the key the log is stored under and its maximum length.
type Config struct {
	Key   string `toml:"key"`
	Limit int    `toml:"limit"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Key   string
	Limit string
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
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.Limit != 0 {
		c.Limit = overlay.Limit
	}
}

func (c *Config) loadDefaults() {
	if c.Key == "" {
		c.Key = "cyf-history-v3"
	}
	if c.Limit == 0 {
		c.Limit = 40
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Key != "" {
		if v := os.Getenv(env.Key); v != "" {
			c.Key = v
		}
	}
	if env.Limit != "" {
		if v := os.Getenv(env.Limit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Limit = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Key == "" {
		return fmt.Errorf("key required")
	}
	if c.Limit < 1 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}
