// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, blob storage, key-value
// state, authentication) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/flatcheck/internal/config"
	"github.com/JaimeStill/flatcheck/pkg/auth"
	"github.com/JaimeStill/flatcheck/pkg/database"
	"github.com/JaimeStill/flatcheck/pkg/kv"
	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	KV        kv.System
	Auth      *auth.Authenticator
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("version", cfg.Version)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	state, err := kv.New(&cfg.Domain.KV, db.Connection(), logger)
	if err != nil {
		return nil, fmt.Errorf("kv init failed: %w", err)
	}

	authn := auth.New(context.Background(), &cfg.API.Auth, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		KV:        state,
		Auth:      authn,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.KV.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("kv start failed: %w", err)
	}
	return nil
}
