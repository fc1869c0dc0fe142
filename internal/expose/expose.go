// Package expose holds the advertised ("exposé") side of an inspection: the
// baseline values per catalog field, and the uploaded exposé PDFs kept in
// blob storage.
package expose

import (
	"maps"

	"github.com/JaimeStill/flatcheck/internal/catalog"
)

// Values maps catalog field ids to the advertised value. Missing ids read as "".
type Values map[string]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	return maps.Clone(v)
}

// Blank returns an empty value for every field in c.
func Blank(c *catalog.Catalog) Values {
	v := make(Values, len(c.Fields))
	for _, f := range c.Fields {
		v[f.ID] = ""
	}
	return v
}

// ExampleName labels the built-in example wherever a source filename is shown.
const ExampleName = "Example exposé: Kantstraße 123, 10625 Berlin"

// Example returns a fixed Berlin listing used for demos and training.
// The heating value keeps the irregular spacing found in real listings.
func Example() Values {
	return Values{
		"adresse":          "Kantstraße 123, 10625 Berlin",
		"objekttyp":        "Etagenwohnung",
		"baujahr":          "1960",
		"wohnflaeche":      "ca. 67 m²",
		"grundstueck":      "",
		"etage":            "2",
		"vollgeschosse":    "5",
		"keller":           "Kellerabteil vorhanden",
		"fassade_daemmung": "",
		"dachgeschoss":     "",
		"straenge":         "",
		"fenster_material": "",
		"fenster_verglas":  "",
		"baujahr_fenster":  "",
		"heizung":          "Fernwärme   (Gas)",
		"baujahr_heizung":  "",
		"warmwasser":       "zentral (mit Warmwasser)",
	}
}

// SourceKind tells where the exposé values came from.
type SourceKind string

const (
	SourceExample SourceKind = "example"
	SourceUpload  SourceKind = "upload"
)

// Source records which exposé an inspection compares against.
type Source struct {
	Kind     SourceKind `json:"kind"`
	Filename string     `json:"filename"`
	Document *Document  `json:"document,omitempty"`
}

// ExampleSource is the Source for the built-in example.
func ExampleSource() *Source {
	return &Source{Kind: SourceExample, Filename: ExampleName}
}

// UploadSource is the Source for a stored exposé document.
func UploadSource(doc *Document) *Source {
	return &Source{Kind: SourceUpload, Filename: doc.Filename, Document: doc}
}
