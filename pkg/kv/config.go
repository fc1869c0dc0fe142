package kv

import (
	"fmt"
	"os"
)

// Backends accepted by Config.Backend.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config selects and parameterizes the key-value backend.
type Config struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	Table   string `toml:"table"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend string
	Path    string
	Table   string
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
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.Table != "" {
		c.Table = overlay.Table
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPostgres
	}
	if c.Path == "" {
		c.Path = "flatcheck.db"
	}
	if c.Table == "" {
		c.Table = "kv_entries"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = v
		}
	}
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if env.Table != "" {
		if v := os.Getenv(env.Table); v != "" {
			c.Table = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendPostgres, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unsupported backend: %s", c.Backend)
	}
	if !tablePattern.MatchString(c.Table) {
		return fmt.Errorf("invalid table name: %s", c.Table)
	}
	return nil
}
