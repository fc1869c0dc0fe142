// Package report renders an inspection into a PDF document: a header band,
// the meta block, every non-empty row of the comparison table with photos,
// the inspector's signature, and an optional support contact card.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/imaging"
	"github.com/JaimeStill/flatcheck/internal/table"
	"github.com/JaimeStill/flatcheck/internal/validation"
	"github.com/JaimeStill/flatcheck/pkg/formatting"
)

// ContactKind selects which support contacts appear on the report.
type ContactKind string

const (
	LegalContact   ContactKind = "legal"
	FinanceContact ContactKind = "finance"
)

// Request carries everything one export needs.
type Request struct {
	Table       *table.Table
	Values      expose.Values
	AddressID   string
	Placeholder string
	Signer      string
	// Signature is an optional PNG data URL.
	Signature  string
	SourceName string
	Contacts   []ContactKind
	Time       time.Time
}

// Address returns the advertised address used in the filename and meta block.
func (r *Request) Address() string {
	return r.Values[r.AddressID]
}

// Document is a rendered report. The exporter keeps no copy.
type Document struct {
	Filename    string    `json:"filename"`
	Address     string    `json:"address"`
	Signer      string    `json:"signer"`
	GeneratedAt time.Time `json:"generated_at"`
	PageCount   int       `json:"page_count"`
	SizeBytes   int64     `json:"size_bytes"`
	Data        []byte    `json:"-"`
}

// Exporter renders reports through a fresh Sink per export.
type Exporter struct {
	cfg     *Config
	newSink func() Sink
	logger  *slog.Logger
}

// New returns an exporter. newSink is called once per export.
func New(cfg *Config, newSink func() Sink, logger *slog.Logger) *Exporter {
	return &Exporter{
		cfg:     cfg,
		newSink: newSink,
		logger:  logger.With("system", "report"),
	}
}

// Export validates the request and renders it. Nothing is persisted.
func (e *Exporter) Export(ctx context.Context, req Request) (*Document, error) {
	if _, err := validation.Export(req.Table, req.Placeholder, req.Signer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if req.Time.IsZero() {
		req.Time = time.Now()
	}

	entries, err := e.prepare(ctx, req.Table.Rows(), req.Placeholder)
	if err != nil {
		return nil, err
	}

	var signature []byte
	if req.Signature != "" {
		_, signature, err = imaging.ParseDataURL(req.Signature)
		if err != nil {
			return nil, fmt.Errorf("%w: signature: %w", ErrInvalidPhoto, err)
		}
	}

	sink := e.newSink()
	l := &layout{sink: sink}
	l.header()
	l.meta(req)
	if err := l.rows(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := l.signature(signature); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	l.contacts(e.contacts(req.Contacts))

	data, pages, err := sink.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	doc := &Document{
		Filename:    Filename(req.Address(), req.Time),
		Address:     req.Address(),
		Signer:      strings.TrimSpace(req.Signer),
		GeneratedAt: req.Time,
		PageCount:   pages,
		SizeBytes:   int64(len(data)),
		Data:        data,
	}

	e.logger.Info("report rendered",
		"filename", doc.Filename,
		"rows", len(entries),
		"pages", doc.PageCount,
		"size", formatting.FormatBytes(doc.SizeBytes, 1),
	)
	return doc, nil
}

var nonWord = regexp.MustCompile(`[^\w]+`)

// Filename derives the report filename from the address and time: every run
// of non-word characters becomes "_", an empty address becomes "Flat", and
// the local hour and minute are appended.
func Filename(address string, at time.Time) string {
	if address == "" {
		address = "Flat"
	}
	base := nonWord.ReplaceAllString(address, "_")
	if base == "" {
		base = "Flat"
	}
	return base + "_" + at.Format("1504") + ".pdf"
}

// entry is one row reduced to what the layout prints.
type entry struct {
	label   string
	reality string
	photo   []byte
}

// prepare flattens the rows, drops empty ones, and downscales photos
// concurrently.
func (e *Exporter) prepare(ctx context.Context, rows []table.Row, placeholder string) ([]entry, error) {
	entries := make([]entry, 0, len(rows))
	photos := make(map[int]string)

	for _, r := range rows {
		var en entry
		switch r := r.(type) {
		case *table.CatalogRow:
			en = entry{label: r.Field.Label, reality: printable(r.Reality, placeholder)}
		case *table.CustomRow:
			en = entry{label: r.Title, reality: printable(r.Reality, placeholder)}
		case *table.PhotoRow:
			en = entry{label: r.Title, reality: strings.TrimSpace(r.Comment)}
			if r.Image != "" {
				photos[len(entries)] = r.Image
			}
		}

		if en.reality == "" {
			if _, ok := photos[len(entries)]; !ok {
				continue
			}
		}
		entries = append(entries, en)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, src := range photos {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			img, err := imaging.Decode(src)
			if err != nil {
				return fmt.Errorf("%w: row %q: %w", ErrInvalidPhoto, entries[i].label, err)
			}

			data, err := imaging.EncodeJPEG(imaging.Fit(img, e.cfg.PhotoMaxWidth, e.cfg.PhotoMaxHeight))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrRender, err)
			}

			entries[i].photo = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func printable(reality, placeholder string) string {
	if !table.Filled(reality, placeholder) {
		return ""
	}
	return table.Normalize(reality)
}

// contacts returns the configured contacts requested by kinds, legal first.
func (e *Exporter) contacts(kinds []ContactKind) []card {
	var cards []card
	if slices.Contains(kinds, LegalContact) && !e.cfg.Legal.empty() {
		cards = append(cards, card{kind: LegalContact, contact: e.cfg.Legal})
	}
	if slices.Contains(kinds, FinanceContact) && !e.cfg.Finance.empty() {
		cards = append(cards, card{kind: FinanceContact, contact: e.cfg.Finance})
	}
	return cards
}
