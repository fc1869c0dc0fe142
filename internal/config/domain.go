package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/flatcheck/internal/capture"
	"github.com/JaimeStill/flatcheck/internal/history"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/wizard"
	"github.com/JaimeStill/flatcheck/pkg/kv"
)

const EnvCatalog = "FLATCHECK_CATALOG"

var kvEnv = &kv.Env{
	Backend: "FLATCHECK_KV_BACKEND",
	Path:    "FLATCHECK_KV_PATH",
	Table:   "FLATCHECK_KV_TABLE",
}

var captureEnv = &capture.Env{
	EnvironmentURL: "FLATCHECK_CAPTURE_ENVIRONMENT_URL",
	DefaultURL:     "FLATCHECK_CAPTURE_DEFAULT_URL",
	Timeout:        "FLATCHECK_CAPTURE_TIMEOUT",
}

var reportEnv = &report.Env{
	Workers: "FLATCHECK_REPORT_WORKERS",
}

var historyEnv = &history.Env{
	Key:   "FLATCHECK_HISTORY_KEY",
	Limit: "FLATCHECK_HISTORY_LIMIT",
}

var wizardEnv = &wizard.Env{
	SessionTTL:      "FLATCHECK_WIZARD_SESSION_TTL",
	JanitorInterval: "FLATCHECK_WIZARD_JANITOR_INTERVAL",
	MaxSessions:     "FLATCHECK_WIZARD_MAX_SESSIONS",
}

// DomainConfig holds the settings of the inspection systems.
type DomainConfig struct {
	// Catalog is the path of a TOML field catalog. Empty uses the built-in one.
	Catalog string         `toml:"catalog"`
	KV      kv.Config      `toml:"kv"`
	Capture capture.Config `toml:"capture"`
	Report  report.Config  `toml:"report"`
	History history.Config `toml:"history"`
	Wizard  wizard.Config  `toml:"wizard"`
}

// Finalize finalizes every nested config.
func (c *DomainConfig) Finalize() error {
	if v := os.Getenv(EnvCatalog); v != "" {
		c.Catalog = v
	}
	if err := c.KV.Finalize(kvEnv); err != nil {
		return fmt.Errorf("kv: %w", err)
	}
	if err := c.Capture.Finalize(captureEnv); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := c.Report.Finalize(reportEnv); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := c.History.Finalize(historyEnv); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := c.Wizard.Finalize(wizardEnv); err != nil {
		return fmt.Errorf("wizard: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *DomainConfig) Merge(overlay *DomainConfig) {
	if overlay.Catalog != "" {
		c.Catalog = overlay.Catalog
	}
	c.KV.Merge(&overlay.KV)
	c.Capture.Merge(&overlay.Capture)
	c.Report.Merge(&overlay.Report)
	c.History.Merge(&overlay.History)
	c.Wizard.Merge(&overlay.Wizard)
}
