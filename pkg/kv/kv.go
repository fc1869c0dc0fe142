// Package kv provides a small string-keyed document store with PostgreSQL,
// SQLite, and in-memory backends.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
)

// ErrNotFound indicates no value is stored under the requested key.
var ErrNotFound = errors.New("key not found")

var tablePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store reads and writes opaque values by key.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// System is a Store with lifecycle hooks.
type System interface {
	Store
	Start(lc *lifecycle.Coordinator) error
}

// New creates the backend selected by cfg. The postgres backend shares db;
// the sqlite backend opens its own database file at cfg.Path.
func New(cfg *Config, db *sql.DB, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "kv", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendMemory:
		return &memorySystem{Memory: NewMemory(), logger: logger}, nil
	case BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		return newSQL(db, postgres(cfg.Table), logger, false), nil
	case BackendSQLite:
		conn, err := openSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return newSQL(conn, sqliteDialect(cfg.Table), logger, true), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

type memorySystem struct {
	*Memory
	logger *slog.Logger
}

func (m *memorySystem) Start(lc *lifecycle.Coordinator) error {
	m.logger.Info("using in-memory store, values are lost on restart")
	return nil
}
