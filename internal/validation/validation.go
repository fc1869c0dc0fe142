// Package validation gates progression through the wizard: mandatory catalog
// rows must carry an entered value, and an export needs a signer.
package validation

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/table"
)

var (
	ErrMandatoryMissing = errors.New("mandatory fields are missing")
	ErrSignerRequired   = errors.New("signer name is required")
)

// Result reports the outcome for every row. Rows maps row ids to their pass
// flag; First points at the first failing row in table order.
type Result struct {
	OK    bool               `json:"ok"`
	Rows  map[uuid.UUID]bool `json:"rows"`
	First *uuid.UUID         `json:"first,omitempty"`
}

// Err returns ErrMandatoryMissing when the result failed.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return ErrMandatoryMissing
}

// Rows checks every mandatory catalog row. Free-text rows pass when their
// value is non-empty after whitespace normalization and differs from the
// placeholder; enumerated rows pass with any concrete option. Custom and
// photo rows always pass.
func Rows(t *table.Table, placeholder string) Result {
	res := Result{OK: true, Rows: make(map[uuid.UUID]bool, t.Len())}

	for _, r := range t.Rows() {
		ok := true
		if cr, isCatalog := r.(*table.CatalogRow); isCatalog && cr.Mandatory() {
			ok = filled(cr, placeholder)
		}

		res.Rows[r.RowID()] = ok
		if !ok && res.OK {
			id := r.RowID()
			res.OK = false
			res.First = &id
		}
	}

	return res
}

func filled(cr *table.CatalogRow, placeholder string) bool {
	if cr.Field.Kind == catalog.Enumerated {
		return cr.Reality != catalog.Blank
	}
	return table.Filled(cr.Reality, placeholder)
}

// Signer requires a non-blank signer name.
func Signer(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrSignerRequired
	}
	return nil
}

// Export runs both export gates and reports every failure.
func Export(t *table.Table, placeholder, signer string) (Result, error) {
	res := Rows(t, placeholder)
	return res, errors.Join(res.Err(), Signer(signer))
}
