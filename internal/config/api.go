package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/flatcheck/pkg/auth"
	"github.com/JaimeStill/flatcheck/pkg/formatting"
	"github.com/JaimeStill/flatcheck/pkg/middleware"
	"github.com/JaimeStill/flatcheck/pkg/pagination"
)

const (
	EnvAPIBasePath      = "FLATCHECK_API_BASE_PATH"
	EnvAPIMaxUploadSize = "FLATCHECK_API_MAX_UPLOAD_SIZE"

	defaultMaxUploadSize = 20 * 1024 * 1024
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "FLATCHECK_CORS_ENABLED",
	Origins:          "FLATCHECK_CORS_ORIGINS",
	AllowedMethods:   "FLATCHECK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "FLATCHECK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "FLATCHECK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "FLATCHECK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "FLATCHECK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "FLATCHECK_PAGINATION_MAX_PAGE_SIZE",
}

var authEnv = &auth.Env{
	Enabled:   "FLATCHECK_AUTH_ENABLED",
	IssuerURL: "FLATCHECK_AUTH_ISSUER_URL",
	JWKSURL:   "FLATCHECK_AUTH_JWKS_URL",
	ClientID:  "FLATCHECK_AUTH_CLIENT_ID",
}

// APIConfig holds API routing, upload limits, CORS, pagination, and
// bearer-token settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	Auth          auth.Config           `toml:"auth"`
}

// MaxUploadSizeBytes applies to exposé PDFs and photo uploads alike.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}
