package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/capture"
	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/imaging"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/table"
	"github.com/JaimeStill/flatcheck/internal/validation"
)

// Session is one inspection in progress. It owns the comparison table, the
// step gate, the camera, and at most one pending report. Every method holds
// the session lock for its whole duration, so requests for one session run
// one at a time.
type Session struct {
	id      uuid.UUID
	catalog *catalog.Catalog
	logger  *slog.Logger
	created time.Time

	mu        sync.Mutex
	touched   time.Time
	closed    bool
	table     *table.Table
	gate      Gate
	values    expose.Values
	source    *expose.Source
	signer    string
	signature string
	camera    *capture.Session
	pending   *report.Document
}

func newSession(c *catalog.Catalog, camera capture.Source, signer string, logger *slog.Logger) *Session {
	id := uuid.New()
	logger = logger.With("inspection", id)
	now := time.Now()

	return &Session{
		id:      id,
		catalog: c,
		logger:  logger,
		created: now,
		touched: now,
		table:   table.New(),
		gate:    NewGate(),
		values:  expose.Blank(c),
		signer:  signer,
		camera:  capture.NewSession(camera, logger),
	}
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID { return s.id }

// StepView is the JSON shape of the gate.
type StepView struct {
	Current int `json:"current"`
	Max     int `json:"max"`
	Count   int `json:"count"`
}

// View is the JSON shape of a session.
type View struct {
	ID           uuid.UUID        `json:"id"`
	Step         StepView         `json:"step"`
	Source       *expose.Source   `json:"source,omitempty"`
	Values       expose.Values    `json:"values"`
	Rows         []table.View     `json:"rows"`
	Signer       string           `json:"signer"`
	HasSignature bool             `json:"has_signature"`
	Camera       bool             `json:"camera"`
	Report       *report.Document `json:"report,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// lock acquires the session and rejects sessions already discarded.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	s.touched = time.Now()
	return nil
}

// View returns a snapshot of the session.
func (s *Session) View() (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()
	return s.view(), nil
}

func (s *Session) view() View {
	return View{
		ID:           s.id,
		Step:         StepView{Current: s.gate.Current(), Max: s.gate.Max(), Count: Steps},
		Source:       s.source,
		Values:       s.values.Clone(),
		Rows:         s.table.Views(),
		Signer:       s.signer,
		HasSignature: s.signature != "",
		Camera:       s.camera.Active(),
		Report:       s.pending,
		CreatedAt:    s.created,
	}
}

// LoadExample fills the exposé with the built-in example, rebuilds the
// table, and moves on to the table step.
func (s *Session) LoadExample() (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	s.loadExpose(expose.Example(), expose.ExampleSource())
	s.gate.Unlock(StepTable)
	if err := s.gate.Navigate(StepTable); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// LoadUpload records an uploaded exposé PDF as the source. Its content is
// not parsed, so the exposé values are reset to blank.
func (s *Session) LoadUpload(doc *expose.Document) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	s.loadExpose(expose.Blank(s.catalog), expose.UploadSource(doc))
	s.gate.Unlock(StepTable)
	return s.view(), nil
}

func (s *Session) loadExpose(values expose.Values, source *expose.Source) {
	s.values = values
	s.source = source
	s.table.Build(s.catalog.Fields, s.values)
	s.releaseReport()
	s.logger.Info("exposé loaded", "source", source.Kind, "filename", source.Filename)
}

// Advance moves forward through the gate, running the current step's check.
// A failed table check returns the validation result for highlighting.
func (s *Session) Advance(target int) (View, *validation.Result, error) {
	if err := s.lock(); err != nil {
		return View{}, nil, err
	}
	defer s.mu.Unlock()

	var result *validation.Result
	err := s.gate.Advance(target, func(step int) error {
		switch step {
		case StepExpose:
			if s.source == nil {
				return ErrExposeMissing
			}
		case StepTable:
			res := validation.Rows(s.table, s.catalog.Placeholder)
			result = &res
			return res.Err()
		}
		return nil
	})
	if err != nil {
		return View{}, result, err
	}
	return s.view(), result, nil
}

// Navigate views an unlocked step.
func (s *Session) Navigate(target int) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	if err := s.gate.Navigate(target); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Validate runs the mandatory-field check without moving the gate.
func (s *Session) Validate() (validation.Result, error) {
	if err := s.lock(); err != nil {
		return validation.Result{}, err
	}
	defer s.mu.Unlock()
	return validation.Rows(s.table, s.catalog.Placeholder), nil
}

// Autofill fills empty rows with sample notes.
func (s *Session) Autofill() (View, int, error) {
	if err := s.lock(); err != nil {
		return View{}, 0, err
	}
	defer s.mu.Unlock()

	n := s.table.Autofill(s.catalog)
	return s.view(), n, nil
}

// AddCustom appends a custom note row.
func (s *Session) AddCustom(title string) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()
	return table.ViewOf(s.table.AddCustom(title)), nil
}

// AddPhoto appends a photo row.
func (s *Session) AddPhoto(title string) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()
	return table.ViewOf(s.table.AddPhoto(title)), nil
}

// RowUpdate carries the fields of a row edit. Nil fields are left alone.
type RowUpdate struct {
	Reality *string `json:"reality,omitempty"`
	Title   *string `json:"title,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// UpdateRow applies an edit. All fields are checked before any is written.
func (s *Session) UpdateRow(id uuid.UUID, u RowUpdate) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()

	r, err := s.table.Find(id)
	if err != nil {
		return table.View{}, err
	}

	if u.Title != nil {
		if _, ok := r.(*table.CatalogRow); ok {
			return table.View{}, fmt.Errorf("%w: catalog rows cannot be renamed", table.ErrNotApplicable)
		}
	}
	if u.Comment != nil {
		if _, ok := r.(*table.PhotoRow); !ok {
			return table.View{}, fmt.Errorf("%w: only photo rows have comments", table.ErrNotApplicable)
		}
	}
	if u.Reality != nil {
		if cr, ok := r.(*table.CatalogRow); ok && cr.Field.Kind == catalog.Enumerated &&
			*u.Reality != catalog.Blank && !cr.Field.HasOption(*u.Reality) {
			return table.View{}, fmt.Errorf("%w: %q", table.ErrInvalidOption, *u.Reality)
		}
	}

	if u.Reality != nil {
		if err := s.table.SetReality(id, *u.Reality); err != nil {
			return table.View{}, err
		}
	}
	if u.Title != nil {
		if err := s.table.SetTitle(id, *u.Title); err != nil {
			return table.View{}, err
		}
	}
	if u.Comment != nil {
		if err := s.table.SetComment(id, *u.Comment); err != nil {
			return table.View{}, err
		}
	}
	return table.ViewOf(r), nil
}

// RemoveRow deletes a row after confirmation.
func (s *Session) RemoveRow(id uuid.UUID, confirmed bool) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.table.Remove(id, confirmed)
}

// MoveRow moves a row to index.
func (s *Session) MoveRow(id uuid.UUID, index int) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	if err := s.table.Reorder(id, index); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// CopyExpose copies a row's exposé value into its reality and reports
// whether anything was copied.
func (s *Session) CopyExpose(id uuid.UUID) (table.View, bool, error) {
	if err := s.lock(); err != nil {
		return table.View{}, false, err
	}
	defer s.mu.Unlock()

	ok, err := s.table.CopyExpose(id)
	if err != nil {
		return table.View{}, false, err
	}
	r, _ := s.table.Find(id)
	return table.ViewOf(r), ok, nil
}

// SetPhoto stores an image data URL in a photo row after checking it decodes.
func (s *Session) SetPhoto(id uuid.UUID, dataURL string) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()

	if _, err := imaging.Decode(dataURL); err != nil {
		return table.View{}, err
	}
	return s.setImage(id, dataURL)
}

// RotatePhoto turns a photo row's image 90 degrees clockwise.
func (s *Session) RotatePhoto(id uuid.UUID) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()

	src, err := s.table.Image(id)
	if err != nil {
		return table.View{}, err
	}
	if src == "" {
		return table.View{}, fmt.Errorf("%w: row has no photo", ErrInvalidRequest)
	}

	rotated, err := imaging.RotateDataURL(src)
	if err != nil {
		return table.View{}, err
	}
	return s.setImage(id, rotated)
}

func (s *Session) setImage(id uuid.UUID, dataURL string) (table.View, error) {
	if err := s.table.SetImage(id, dataURL); err != nil {
		return table.View{}, err
	}
	r, _ := s.table.Find(id)
	return table.ViewOf(r), nil
}

// OpenCamera opens the camera, releasing any stream already open.
func (s *Session) OpenCamera(ctx context.Context) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	return s.camera.Open(ctx)
}

// CloseCamera releases the camera.
func (s *Session) CloseCamera() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()
	s.camera.Close()
	return nil
}

// Capture takes a still with the open camera into a photo row. The row is
// checked first so a capture never happens for a row that cannot take it;
// the camera is released whether or not the capture succeeds.
func (s *Session) Capture(ctx context.Context, id uuid.UUID) (table.View, error) {
	if err := s.lock(); err != nil {
		return table.View{}, err
	}
	defer s.mu.Unlock()

	if _, err := s.table.Image(id); err != nil {
		s.camera.Close()
		return table.View{}, err
	}

	dataURL, err := s.camera.Capture(ctx)
	if err != nil {
		return table.View{}, err
	}
	return s.setImage(id, dataURL)
}

// SetSigner records the inspector's name and an optional PNG signature.
func (s *Session) SetSigner(name, signature string) (View, error) {
	if err := s.lock(); err != nil {
		return View{}, err
	}
	defer s.mu.Unlock()

	if signature != "" {
		mediaType, _, err := imaging.ParseDataURL(signature)
		if err != nil {
			return View{}, err
		}
		if mediaType != "image/png" {
			return View{}, fmt.Errorf("%w: signature must be image/png", imaging.ErrNotImage)
		}
	}

	s.signer = strings.TrimSpace(name)
	s.signature = signature
	return s.view(), nil
}

// Generate renders a report preview, replacing any pending one. Both export
// gates are checked first; on failure the result is returned for highlighting.
func (s *Session) Generate(ctx context.Context, exp *report.Exporter, contacts []report.ContactKind) (*report.Document, *validation.Result, error) {
	if err := s.lock(); err != nil {
		return nil, nil, err
	}
	defer s.mu.Unlock()

	res, err := validation.Export(s.table, s.catalog.Placeholder, s.signer)
	if err != nil {
		return nil, &res, err
	}

	s.releaseReport()

	sourceName := ""
	if s.source != nil {
		sourceName = s.source.Filename
	}

	doc, err := exp.Export(ctx, report.Request{
		Table:       s.table,
		Values:      s.values,
		AddressID:   s.catalog.AddressID,
		Placeholder: s.catalog.Placeholder,
		Signer:      s.signer,
		Signature:   s.signature,
		SourceName:  sourceName,
		Contacts:    contacts,
		Time:        time.Now(),
	})
	if err != nil {
		return nil, nil, err
	}

	s.pending = doc
	return doc, nil, nil
}

// Report returns the pending report.
func (s *Session) Report() (*report.Document, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, ErrNoReport
	}
	return s.pending, nil
}

// CancelReport discards the pending report.
func (s *Session) CancelReport() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if s.pending == nil {
		return ErrNoReport
	}
	s.releaseReport()
	return nil
}

// approve hands the pending report to fn and releases it when fn succeeds.
func (s *Session) approve(fn func(doc *report.Document) error) (*report.Document, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, ErrNoReport
	}

	doc := s.pending
	if err := fn(doc); err != nil {
		return nil, err
	}
	s.releaseReport()
	return doc, nil
}

func (s *Session) releaseReport() {
	s.pending = nil
}

// idle reports whether the session was last used before cutoff. A session
// that is busy is never idle.
func (s *Session) idle(cutoff time.Time) bool {
	if !s.mu.TryLock() {
		return false
	}
	defer s.mu.Unlock()
	return s.touched.Before(cutoff)
}

// close releases every resource. Later calls fail with ErrSessionNotFound.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.camera.Close()
	s.releaseReport()
	s.logger.Info("inspection closed")
}
