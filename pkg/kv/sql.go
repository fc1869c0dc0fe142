package kv

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
	"github.com/JaimeStill/flatcheck/pkg/repository"
)

type dialect struct {
	name   string
	get    string
	put    string
	delete string
	schema []string
}

func postgres(table string) dialect {
	return dialect{
		name: BackendPostgres,
		get:  fmt.Sprintf("SELECT value FROM %s WHERE key = $1", table),
		put: fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, table),
		delete: fmt.Sprintf("DELETE FROM %s WHERE key = $1", table),
	}
}

func sqliteDialect(table string) dialect {
	return dialect{
		name: BackendSQLite,
		get:  fmt.Sprintf("SELECT value FROM %s WHERE key = ?", table),
		put: fmt.Sprintf(`
			INSERT INTO %s (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE
			SET value = excluded.value, updated_at = excluded.updated_at`, table),
		delete: fmt.Sprintf("DELETE FROM %s WHERE key = ?", table),
		schema: []string{
			`PRAGMA journal_mode=WAL;`,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);`, table),
		},
	}
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	owned   bool
}

func newSQL(db *sql.DB, d dialect, logger *slog.Logger, owned bool) *sqlStore {
	return &sqlStore{
		db:      db,
		dialect: d,
		logger:  logger,
		owned:   owned,
	}
}

// Start creates the table for self-managed backends and closes owned
// connections on shutdown. The postgres table is created by cmd/migrate.
func (s *sqlStore) Start(lc *lifecycle.Coordinator) error {
	if len(s.dialect.schema) > 0 {
		if err := s.migrate(lc.Context()); err != nil {
			return err
		}
	}

	if s.owned {
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			if err := s.db.Close(); err != nil {
				s.logger.Error("close store failed", "error", err)
				return
			}
			s.logger.Info("store closed")
		})
	}

	return nil
}

func (s *sqlStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s schema: %w", s.dialect.name, err)
		}
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := repository.QueryOne(ctx, s.db, s.dialect.get, []any{key}, scanValue)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, err)
	}
	return []byte(value), nil
}

func (s *sqlStore) Put(ctx context.Context, key string, value []byte) error {
	if err := repository.ExecExpectOne(ctx, s.db, s.dialect.put, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	n, err := repository.Exec(ctx, s.db, s.dialect.delete, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if n > 0 {
		s.logger.Debug("key deleted", "key", key)
	}
	return nil
}

func scanValue(s repository.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}
