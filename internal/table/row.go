package table

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/catalog"
)

// RowType discriminates the row variants on the wire.
type RowType string

const (
	TypeCatalog RowType = "catalog"
	TypeCustom  RowType = "custom"
	TypePhoto   RowType = "photo"
)

// Default titles for rows added by the inspector.
const (
	DefaultCustomTitle = "Custom note"
	DefaultPhotoTitle  = "Photo / comment"
)

// Row is one line of the comparison table. The set of implementations is
// closed: *CatalogRow, *CustomRow, and *PhotoRow.
type Row interface {
	RowID() uuid.UUID
	Type() RowType
	row()
}

// CatalogRow compares one catalog field against the exposé.
type CatalogRow struct {
	ID      uuid.UUID
	Field   catalog.Field
	Expose  string
	Reality string
}

// CustomRow is a free-form note added by the inspector.
type CustomRow struct {
	ID      uuid.UUID
	Title   string
	Reality string
}

// PhotoRow carries an image as a data URL plus a comment.
type PhotoRow struct {
	ID      uuid.UUID
	Title   string
	Image   string
	Comment string
}

func (r *CatalogRow) RowID() uuid.UUID { return r.ID }
func (r *CustomRow) RowID() uuid.UUID  { return r.ID }
func (r *PhotoRow) RowID() uuid.UUID   { return r.ID }

func (r *CatalogRow) Type() RowType { return TypeCatalog }
func (r *CustomRow) Type() RowType  { return TypeCustom }
func (r *PhotoRow) Type() RowType   { return TypePhoto }

func (*CatalogRow) row() {}
func (*CustomRow) row()  {}
func (*PhotoRow) row()   {}

// Mandatory reports whether the row's field must be filled before export.
func (r *CatalogRow) Mandatory() bool { return r.Field.Mandatory }

// View is the JSON shape of any row.
type View struct {
	ID        uuid.UUID    `json:"id"`
	Type      RowType      `json:"type"`
	FieldID   string       `json:"field_id,omitempty"`
	Label     string       `json:"label"`
	Kind      catalog.Kind `json:"kind,omitempty"`
	Options   []string     `json:"options,omitempty"`
	Mandatory bool         `json:"mandatory"`
	Expose    string       `json:"expose,omitempty"`
	Reality   string       `json:"reality"`
	Image     string       `json:"image,omitempty"`
}

// ViewOf flattens a row into its JSON shape.
func ViewOf(r Row) View {
	switch r := r.(type) {
	case *CatalogRow:
		return View{
			ID:        r.ID,
			Type:      TypeCatalog,
			FieldID:   r.Field.ID,
			Label:     r.Field.Label,
			Kind:      r.Field.Kind,
			Options:   r.Field.Options,
			Mandatory: r.Field.Mandatory,
			Expose:    r.Expose,
			Reality:   r.Reality,
		}
	case *CustomRow:
		return View{ID: r.ID, Type: TypeCustom, Label: r.Title, Reality: r.Reality}
	case *PhotoRow:
		return View{ID: r.ID, Type: TypePhoto, Label: r.Title, Reality: r.Comment, Image: r.Image}
	default:
		panic("table: unknown row type")
	}
}

func (r *CatalogRow) MarshalJSON() ([]byte, error) { return json.Marshal(ViewOf(r)) }
func (r *CustomRow) MarshalJSON() ([]byte, error)  { return json.Marshal(ViewOf(r)) }
func (r *PhotoRow) MarshalJSON() ([]byte, error)   { return json.Marshal(ViewOf(r)) }
