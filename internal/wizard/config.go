package wizard

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config bounds the number and lifetime of open inspections.
type Config struct {
	SessionTTL      string `toml:"session_ttl"`
	JanitorInterval string `toml:"janitor_interval"`
	MaxSessions     int    `toml:"max_sessions"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	SessionTTL      string
	JanitorInterval string
	MaxSessions     string
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
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.JanitorInterval != "" {
		c.JanitorInterval = overlay.JanitorInterval
	}
	if overlay.MaxSessions != 0 {
		c.MaxSessions = overlay.MaxSessions
	}
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *Config) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// JanitorIntervalDuration returns JanitorInterval as a time.Duration.
func (c *Config) JanitorIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.JanitorInterval)
	return d
}

func (c *Config) loadDefaults() {
	if c.SessionTTL == "" {
		c.SessionTTL = "4h"
	}
	if c.JanitorInterval == "" {
		c.JanitorInterval = "5m"
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = 1000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.SessionTTL != "" {
		if v := os.Getenv(env.SessionTTL); v != "" {
			c.SessionTTL = v
		}
	}
	if env.JanitorInterval != "" {
		if v := os.Getenv(env.JanitorInterval); v != "" {
			c.JanitorInterval = v
		}
	}
	if env.MaxSessions != "" {
		if v := os.Getenv(env.MaxSessions); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxSessions = n
			}
		}
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.SessionTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid session_ttl: %q", c.SessionTTL)
	}
	if d, err := time.ParseDuration(c.JanitorInterval); err != nil || d <= 0 {
		return fmt.Errorf("invalid janitor_interval: %q", c.JanitorInterval)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be positive")
	}
	return nil
}
