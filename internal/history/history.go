// Package history keeps the list of approved reports, newest first, as one
// JSON document in the key-value store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/flatcheck/pkg/kv"
)

// Entry records one approved report.
type Entry struct {
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generated_at"`
	Address     string    `json:"address"`
	Validator   string    `json:"validator"`
	StorageKey  string    `json:"storage_key,omitempty"`
}

// Log is a bounded, newest-first list of entries.
type Log struct {
	store  kv.Store
	key    string
	limit  int
	logger *slog.Logger

	mu sync.Mutex
}

// New returns a log persisted under cfg.Key in store.
func New(store kv.Store, cfg *Config, logger *slog.Logger) *Log {
	return &Log{
		store:  store,
		key:    cfg.Key,
		limit:  cfg.Limit,
		logger: logger.With("system", "history"),
	}
}

// Append puts e first and drops the oldest entries beyond the limit. A store
// read failure aborts the append so existing entries are never overwritten.
func (l *Log) Append(ctx context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prior, err := l.read(ctx)
	if err != nil {
		return err
	}

	list := append([]Entry{e}, prior...)
	if len(list) > l.limit {
		list = list[:l.limit]
	}

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := l.store.Put(ctx, l.key, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	l.logger.Info("history entry appended", "filename", e.Filename, "entries", len(list))
	return nil
}

// List returns every entry, newest first. Missing or unreadable content
// reads as an empty list.
func (l *Log) List(ctx context.Context) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Find returns the newest entry stored under the given blob key.
func (l *Log) Find(ctx context.Context, storageKey string) (Entry, bool) {
	for _, e := range l.List(ctx) {
		if e.StorageKey != "" && e.StorageKey == storageKey {
			return e, true
		}
	}
	return Entry{}, false
}

// Clear removes every entry.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, l.key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	l.logger.Info("history cleared")
	return nil
}

func (l *Log) load(ctx context.Context) []Entry {
	list, err := l.read(ctx)
	if err != nil {
		l.logger.Warn("history unavailable", "error", err)
		return []Entry{}
	}
	return list
}

// read treats a missing key or undecodable content as an empty list and
// reports every other store failure.
func (l *Log) read(ctx context.Context) ([]Entry, error) {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var list []Entry
	if err := json.Unmarshal(data, &list); err != nil {
		l.logger.Warn("history content unreadable", "error", err)
		return []Entry{}, nil
	}
	if list == nil {
		return []Entry{}, nil
	}
	return list, nil
}
