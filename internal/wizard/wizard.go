// Package wizard drives inspections through the three wizard steps: load an
// exposé, fill in the comparison table, then sign and export the report.
// Each inspection is an explicit Session; the System keeps them in memory
// and evicts idle ones.
package wizard

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/capture"
	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/history"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/validation"
	"github.com/JaimeStill/flatcheck/pkg/lifecycle"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

// System manages open inspections.
type System interface {
	Handler(maxUploadSize int64) *Handler
	Start(lc *lifecycle.Coordinator) error

	Catalog() *catalog.Catalog
	// Create opens a new inspection. signer prefills the inspector name.
	Create(signer string) (*Session, error)
	Session(id uuid.UUID) (*Session, error)
	Discard(id uuid.UUID) error

	// Upload stores an exposé PDF and makes it the inspection's source.
	Upload(ctx context.Context, id uuid.UUID, cmd expose.CreateCommand) (View, error)
	// Generate renders a report preview for the inspection. When the export
	// gates fail, the validation result is returned with the error.
	Generate(ctx context.Context, id uuid.UUID, contacts []report.ContactKind) (*report.Document, *validation.Result, error)
	// Approve stores the pending report and records it in the history.
	Approve(ctx context.Context, id uuid.UUID) (*history.Entry, error)
}

// Deps are the systems an inspection reaches out to.
type Deps struct {
	Catalog  *catalog.Catalog
	Exposes  expose.System
	Storage  storage.System
	History  *history.Log
	Exporter *report.Exporter
	Camera   capture.Source
}

type wizard struct {
	cfg    *Config
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// New creates the inspection system.
func New(cfg *Config, deps Deps, logger *slog.Logger) System {
	return &wizard{
		cfg:      cfg,
		deps:     deps,
		logger:   logger.With("system", "wizard"),
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (w *wizard) Handler(maxUploadSize int64) *Handler {
	return NewHandler(w, w.logger, maxUploadSize)
}

// Start registers the idle-session janitor and releases every session on
// shutdown.
func (w *wizard) Start(lc *lifecycle.Coordinator) error {
	w.logger.Info("starting wizard system", "session_ttl", w.cfg.SessionTTL)

	ttl := w.cfg.SessionTTLDuration()
	lc.Every(w.cfg.JanitorIntervalDuration(), func(ctx context.Context) {
		w.evict(time.Now().Add(-ttl))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		w.closeAll()
	})
	return nil
}

func (w *wizard) Catalog() *catalog.Catalog {
	return w.deps.Catalog
}

func (w *wizard) Create(signer string) (*Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.sessions) >= w.cfg.MaxSessions {
		return nil, ErrSessionLimit
	}

	s := newSession(w.deps.Catalog, w.deps.Camera, signer, w.logger)
	w.sessions[s.id] = s
	w.logger.Info("inspection created", "id", s.id, "open", len(w.sessions))
	return s, nil
}

func (w *wizard) Session(id uuid.UUID) (*Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (w *wizard) Discard(id uuid.UUID) error {
	w.mu.Lock()
	s, ok := w.sessions[id]
	delete(w.sessions, id)
	w.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	return nil
}

func (w *wizard) Upload(ctx context.Context, id uuid.UUID, cmd expose.CreateCommand) (View, error) {
	s, err := w.Session(id)
	if err != nil {
		return View{}, err
	}

	doc, err := w.deps.Exposes.Create(ctx, cmd)
	if err != nil {
		return View{}, err
	}

	view, err := s.LoadUpload(doc)
	if err != nil {
		if derr := w.deps.Exposes.Delete(ctx, doc.ID); derr != nil {
			w.logger.Error("failed to remove orphaned exposé", "id", doc.ID, "error", derr)
		}
		return View{}, err
	}
	return view, nil
}

func (w *wizard) Generate(ctx context.Context, id uuid.UUID, contacts []report.ContactKind) (*report.Document, *validation.Result, error) {
	s, err := w.Session(id)
	if err != nil {
		return nil, nil, err
	}
	return s.Generate(ctx, w.deps.Exporter, contacts)
}

func (w *wizard) Approve(ctx context.Context, id uuid.UUID) (*history.Entry, error) {
	s, err := w.Session(id)
	if err != nil {
		return nil, err
	}

	var entry history.Entry
	_, err = s.approve(func(doc *report.Document) error {
		key := ReportKey(id, doc.Filename)
		if err := w.deps.Storage.Upload(ctx, key, bytes.NewReader(doc.Data), "application/pdf"); err != nil {
			return fmt.Errorf("store report: %w", err)
		}

		entry = history.Entry{
			Filename:    doc.Filename,
			GeneratedAt: doc.GeneratedAt,
			Address:     doc.Address,
			Validator:   doc.Signer,
			StorageKey:  key,
		}
		if err := w.deps.History.Append(ctx, entry); err != nil {
			if derr := w.deps.Storage.Delete(ctx, key); derr != nil {
				w.logger.Error("failed to remove orphaned report", "key", key, "error", derr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.logger.Info("report approved", "inspection", id, "filename", entry.Filename, "key", entry.StorageKey)
	return &entry, nil
}

// ReportKey is the blob key an approved report is stored under.
func ReportKey(id uuid.UUID, filename string) string {
	return path.Join("reports", id.String(), path.Base(filename))
}

func (w *wizard) evict(cutoff time.Time) {
	w.mu.Lock()
	var stale []*Session
	for id, s := range w.sessions {
		if s.idle(cutoff) {
			stale = append(stale, s)
			delete(w.sessions, id)
		}
	}
	w.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	if len(stale) > 0 {
		w.logger.Info("idle inspections evicted", "count", len(stale))
	}
}

func (w *wizard) closeAll() {
	w.mu.Lock()
	all := slices.Collect(maps.Values(w.sessions))
	clear(w.sessions)
	w.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	w.logger.Info("wizard system shut down", "closed", len(all))
}
