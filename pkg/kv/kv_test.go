package kv_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/flatcheck/pkg/kv"
	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLite(t *testing.T) kv.System {
	t.Helper()

	cfg := &kv.Config{
		Backend: kv.BackendSQLite,
		Path:    filepath.Join(t.TempDir(), "kv.db"),
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sys, err := kv.New(cfg, nil, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	return sys
}

func newMemory(t *testing.T) kv.System {
	t.Helper()
	sys, err := kv.New(&kv.Config{Backend: kv.BackendMemory}, nil, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return sys
}

func TestStores(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) kv.System
	}{
		{"memory", newMemory},
		{"sqlite", newSQLite},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			store := b.open(t)

			t.Run("missing key", func(t *testing.T) {
				if _, err := store.Get(ctx, "absent"); !errors.Is(err, kv.ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("put then get", func(t *testing.T) {
				if err := store.Put(ctx, "history", []byte(`[{"filename":"a.pdf"}]`)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := store.Get(ctx, "history")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `[{"filename":"a.pdf"}]` {
					t.Errorf("Get() = %s", got)
				}
			})

			t.Run("put replaces", func(t *testing.T) {
				if err := store.Put(ctx, "history", []byte(`[]`)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := store.Get(ctx, "history")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `[]` {
					t.Errorf("Get() = %s, want []", got)
				}
			})

			t.Run("delete", func(t *testing.T) {
				if err := store.Delete(ctx, "history"); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if _, err := store.Get(ctx, "history"); !errors.Is(err, kv.ErrNotFound) {
					t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
				}
				if err := store.Delete(ctx, "history"); err != nil {
					t.Errorf("Delete() of missing key error = %v", err)
				}
			})
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	cfg := &kv.Config{Backend: kv.BackendSQLite, Path: path}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	open := func() (kv.System, *lifecycle.Coordinator) {
		sys, err := kv.New(cfg, nil, discardLogger())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		lc := lifecycle.New()
		if err := sys.Start(lc); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		return sys, lc
	}

	first, lc := open()
	if err := first.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	second, lc := open()
	defer lc.Shutdown(5 * time.Second)

	got, err := second.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %s, want v", got)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()

	value := []byte("abc")
	m.Put(ctx, "k", value)
	value[0] = 'z'

	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}
}

func TestPostgresRequiresConnection(t *testing.T) {
	if _, err := kv.New(&kv.Config{Backend: kv.BackendPostgres, Table: "kv_entries"}, nil, discardLogger()); err == nil {
		t.Error("expected error without database connection")
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := kv.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Backend != kv.BackendPostgres {
			t.Errorf("backend: got %s, want postgres", cfg.Backend)
		}
		if cfg.Table != "kv_entries" {
			t.Errorf("table: got %s, want kv_entries", cfg.Table)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_KV_BACKEND", "sqlite")
		cfg := kv.Config{}
		if err := cfg.Finalize(&kv.Env{Backend: "TEST_KV_BACKEND"}); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.Backend != kv.BackendSQLite {
			t.Errorf("backend: got %s, want sqlite", cfg.Backend)
		}
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		cfg := kv.Config{Backend: "redis"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error for unknown backend")
		}
	})

	t.Run("rejects unsafe table name", func(t *testing.T) {
		cfg := kv.Config{Table: "kv; DROP TABLE x"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error for invalid table name")
		}
	})
}
