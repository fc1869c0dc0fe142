// Package table implements the comparison table: an ordered list of rows
// comparing the advertised exposé against what the inspector finds on site.
// Order is export order; row identity is independent of position.
package table

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/expose"
)

// Table is the ordered row list of one inspection. It is not safe for
// concurrent use; the owning session serializes access.
type Table struct {
	rows []Row
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Rows returns the rows in order. The slice is a copy; the rows are shared.
func (t *Table) Rows() []Row {
	return slices.Clone(t.rows)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Views returns the JSON shape of every row in order.
func (t *Table) Views() []View {
	views := make([]View, len(t.rows))
	for i, r := range t.rows {
		views[i] = ViewOf(r)
	}
	return views
}

// Build discards every row and creates one catalog row per field, in catalog
// order, with the exposé value copied in.
func (t *Table) Build(fields []catalog.Field, values expose.Values) {
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, &CatalogRow{
			ID:     uuid.New(),
			Field:  f,
			Expose: values[f.ID],
		})
	}
	t.rows = rows
}

// AddCustom appends a custom note row. An empty title uses DefaultCustomTitle.
func (t *Table) AddCustom(title string) *CustomRow {
	if Normalize(title) == "" {
		title = DefaultCustomTitle
	}
	r := &CustomRow{ID: uuid.New(), Title: title}
	t.rows = append(t.rows, r)
	return r
}

// AddPhoto appends a photo row. An empty title uses DefaultPhotoTitle.
func (t *Table) AddPhoto(title string) *PhotoRow {
	if Normalize(title) == "" {
		title = DefaultPhotoTitle
	}
	r := &PhotoRow{ID: uuid.New(), Title: title}
	t.rows = append(t.rows, r)
	return r
}

// Find returns the row with the given id.
func (t *Table) Find(id uuid.UUID) (Row, error) {
	i := t.index(id)
	if i < 0 {
		return nil, ErrRowNotFound
	}
	return t.rows[i], nil
}

// Remove deletes exactly one row. The caller must pass confirmed = true, and
// mandatory catalog rows are never removed.
func (t *Table) Remove(id uuid.UUID, confirmed bool) error {
	i := t.index(id)
	if i < 0 {
		return ErrRowNotFound
	}
	if cr, ok := t.rows[i].(*CatalogRow); ok && cr.Mandatory() {
		return ErrMandatoryRow
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return nil
}

// Reorder moves one row to index, clamped to the table bounds. The other
// rows keep their relative order. An absent id changes nothing.
func (t *Table) Reorder(id uuid.UUID, index int) error {
	i := t.index(id)
	if i < 0 {
		return ErrRowNotFound
	}
	index = max(0, min(index, len(t.rows)-1))
	if index == i {
		return nil
	}

	r := t.rows[i]
	t.rows = slices.Delete(t.rows, i, i+1)
	t.rows = slices.Insert(t.rows, index, r)
	return nil
}

// Autofill fills every empty row with sample content and returns how many
// rows changed. Free-text catalog rows get the note keyed by their field id;
// custom rows get the default note; enumerated rows without a selection get
// the option equal to the exposé value, if one exists. Entered values are
// never overwritten, so a second call changes nothing.
func (t *Table) Autofill(c *catalog.Catalog) int {
	changed := 0
	for _, r := range t.rows {
		switch r := r.(type) {
		case *CatalogRow:
			switch r.Field.Kind {
			case catalog.Enumerated:
				if r.Reality != catalog.Blank {
					continue
				}
				if o, ok := ExactOption(r.Field.Options, r.Expose); ok {
					r.Reality = o
					changed++
				}
			default:
				if Filled(r.Reality, c.Placeholder) {
					continue
				}
				r.Reality = c.Note(r.Field.ID)
				changed++
			}
		case *CustomRow:
			if Filled(r.Reality, c.Placeholder) {
				continue
			}
			r.Reality = c.DefaultNote
			changed++
		}
	}
	return changed
}

// CopyExpose copies the exposé value of a catalog row into its reality.
// Free-text rows take the value as is. Enumerated rows take the exactly
// matching option, else the first option the value contains; without a
// match the selection is left unchanged and false is returned.
func (t *Table) CopyExpose(id uuid.UUID) (bool, error) {
	cr, err := t.catalogRow(id)
	if err != nil {
		return false, err
	}

	if cr.Field.Kind != catalog.Enumerated {
		cr.Reality = cr.Expose
		return true, nil
	}

	o, ok := MatchOption(cr.Field.Options, cr.Expose)
	if !ok {
		return false, nil
	}
	cr.Reality = o
	return true, nil
}

// SetReality writes the inspector's value into a catalog or custom row.
// Enumerated rows accept only their options or the blank sentinel.
func (t *Table) SetReality(id uuid.UUID, value string) error {
	r, err := t.Find(id)
	if err != nil {
		return err
	}

	switch r := r.(type) {
	case *CatalogRow:
		if r.Field.Kind == catalog.Enumerated && value != catalog.Blank && !r.Field.HasOption(value) {
			return fmt.Errorf("%w: %q for %s", ErrInvalidOption, value, r.Field.ID)
		}
		r.Reality = value
	case *CustomRow:
		r.Reality = value
	case *PhotoRow:
		r.Comment = value
	}
	return nil
}

// SetTitle renames a custom or photo row.
func (t *Table) SetTitle(id uuid.UUID, title string) error {
	r, err := t.Find(id)
	if err != nil {
		return err
	}

	switch r := r.(type) {
	case *CustomRow:
		r.Title = title
	case *PhotoRow:
		r.Title = title
	default:
		return ErrNotApplicable
	}
	return nil
}

// SetComment sets the comment of a photo row.
func (t *Table) SetComment(id uuid.UUID, comment string) error {
	pr, err := t.photoRow(id)
	if err != nil {
		return err
	}
	pr.Comment = comment
	return nil
}

// SetImage replaces the image of a photo row with a data URL.
func (t *Table) SetImage(id uuid.UUID, dataURL string) error {
	pr, err := t.photoRow(id)
	if err != nil {
		return err
	}
	pr.Image = dataURL
	return nil
}

// Image returns the data URL held by a photo row.
func (t *Table) Image(id uuid.UUID) (string, error) {
	pr, err := t.photoRow(id)
	if err != nil {
		return "", err
	}
	return pr.Image, nil
}

func (t *Table) index(id uuid.UUID) int {
	return slices.IndexFunc(t.rows, func(r Row) bool { return r.RowID() == id })
}

func (t *Table) catalogRow(id uuid.UUID) (*CatalogRow, error) {
	r, err := t.Find(id)
	if err != nil {
		return nil, err
	}
	cr, ok := r.(*CatalogRow)
	if !ok {
		return nil, ErrNotApplicable
	}
	return cr, nil
}

func (t *Table) photoRow(id uuid.UUID) (*PhotoRow, error) {
	r, err := t.Find(id)
	if err != nil {
		return nil, err
	}
	pr, ok := r.(*PhotoRow)
	if !ok {
		return nil, ErrNotApplicable
	}
	return pr, nil
}
