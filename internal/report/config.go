package report

import (
	"fmt"
	"os"
	"strconv"
)

// Contact is a support contact printed on the optional contact card.
type Contact struct {
	Name  string `toml:"name" json:"name"`
	Firm  string `toml:"firm" json:"firm"`
	Phone string `toml:"phone" json:"phone"`
	Email string `toml:"email" json:"email"`
	Note  string `toml:"note" json:"note"`
}

func (c Contact) empty() bool {
	return c.Name == "" && c.Firm == ""
}

// Config holds report rendering parameters.
type Config struct {
	Workers        int     `toml:"workers"`
	PhotoMaxWidth  int     `toml:"photo_max_width"`
	PhotoMaxHeight int     `toml:"photo_max_height"`
	Legal          Contact `toml:"legal"`
	Finance        Contact `toml:"finance"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers string
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
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.PhotoMaxWidth != 0 {
		c.PhotoMaxWidth = overlay.PhotoMaxWidth
	}
	if overlay.PhotoMaxHeight != 0 {
		c.PhotoMaxHeight = overlay.PhotoMaxHeight
	}
	if !overlay.Legal.empty() {
		c.Legal = overlay.Legal
	}
	if !overlay.Finance.empty() {
		c.Finance = overlay.Finance
	}
}

func (c *Config) loadDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.PhotoMaxWidth <= 0 {
		c.PhotoMaxWidth = 1200
	}
	if c.PhotoMaxHeight <= 0 {
		c.PhotoMaxHeight = 900
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
