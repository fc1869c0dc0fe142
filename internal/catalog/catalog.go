// Package catalog defines the inspection field catalog: which properties of a
// flat are compared, how each is entered, and which must be filled before the
// report can be exported.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Kind distinguishes free-text fields from fields restricted to a fixed option list.
type Kind string

const (
	FreeText   Kind = "free_text"
	Enumerated Kind = "enumerated"
)

// Blank is the "nothing selected" sentinel of an enumerated field.
const Blank = ""

// Field describes one comparable property of a flat.
type Field struct {
	ID        string   `json:"id" toml:"id" yaml:"id"`
	Label     string   `json:"label" toml:"label" yaml:"label"`
	Kind      Kind     `json:"kind" toml:"kind" yaml:"kind"`
	Options   []string `json:"options,omitempty" toml:"options" yaml:"options"`
	Mandatory bool     `json:"mandatory" toml:"mandatory" yaml:"mandatory"`
}

// HasOption reports whether v is one of the field's concrete options.
func (f Field) HasOption(v string) bool {
	return slices.Contains(f.Options, v)
}

// Catalog is the ordered field list plus the demo notes used by autofill.
type Catalog struct {
	Fields      []Field           `json:"fields" toml:"fields" yaml:"fields"`
	SampleNotes map[string]string `json:"sample_notes" toml:"sample_notes" yaml:"sample_notes"`
	DefaultNote string            `json:"default_note" toml:"default_note" yaml:"default_note"`
	Placeholder string            `json:"placeholder" toml:"placeholder" yaml:"placeholder"`
	AddressID   string            `json:"address_id" toml:"address_id" yaml:"address_id"`
}

// Field returns the definition with the given id.
func (c *Catalog) Field(id string) (Field, bool) {
	i := slices.IndexFunc(c.Fields, func(f Field) bool { return f.ID == id })
	if i < 0 {
		return Field{}, false
	}
	return c.Fields[i], true
}

// Note returns the sample note for a field id, falling back to DefaultNote.
func (c *Catalog) Note(id string) string {
	if n, ok := c.SampleNotes[id]; ok && n != "" {
		return n
	}
	return c.DefaultNote
}

// Validate checks structural consistency of the catalog.
func (c *Catalog) Validate() error {
	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.ID == "" {
			return fmt.Errorf("%w: field without id", ErrInvalid)
		}
		if seen[f.ID] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalid, f.ID)
		}
		seen[f.ID] = true

		switch f.Kind {
		case FreeText:
			if len(f.Options) > 0 {
				return fmt.Errorf("%w: free text field %q has options", ErrInvalid, f.ID)
			}
		case Enumerated:
			if len(f.Options) == 0 {
				return fmt.Errorf("%w: enumerated field %q has no options", ErrInvalid, f.ID)
			}
			if f.HasOption(Blank) {
				return fmt.Errorf("%w: enumerated field %q lists the blank sentinel", ErrInvalid, f.ID)
			}
		default:
			return fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalid, f.ID, f.Kind)
		}
	}

	if c.AddressID != "" && !seen[c.AddressID] {
		return fmt.Errorf("%w: address field %q not in catalog", ErrInvalid, c.AddressID)
	}
	return nil
}

// Load reads a catalog from a TOML file, or a YAML file when the extension is
// .yaml or .yml. Unset notes and placeholder are taken from the built-in catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		err = toml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	def := Default()
	if c.Placeholder == "" {
		c.Placeholder = def.Placeholder
	}
	if c.DefaultNote == "" {
		c.DefaultNote = def.DefaultNote
	}
	if c.SampleNotes == nil {
		c.SampleNotes = map[string]string{}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
