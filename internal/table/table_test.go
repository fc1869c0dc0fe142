package table_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/table"
)

func smallFields() []catalog.Field {
	return []catalog.Field{
		{ID: "address", Label: "Address", Kind: catalog.FreeText, Mandatory: true},
		{ID: "type", Label: "Type", Kind: catalog.Enumerated, Options: []string{"A", "B"}},
	}
}

func ids(t *table.Table) []uuid.UUID {
	var out []uuid.UUID
	for _, r := range t.Rows() {
		out = append(out, r.RowID())
	}
	return out
}

func realities(t *table.Table) []string {
	var out []string
	for _, v := range t.Views() {
		out = append(out, v.Reality)
	}
	return out
}

func TestBuild(t *testing.T) {
	tbl := table.New()
	tbl.Build(smallFields(), expose.Values{"address": "Main St 1"})

	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}

	first, ok := rows[0].(*table.CatalogRow)
	if !ok {
		t.Fatalf("row 0 type %T, want *CatalogRow", rows[0])
	}
	if first.Field.ID != "address" || first.Expose != "Main St 1" || first.Reality != "" {
		t.Errorf("row 0 = %+v", first)
	}

	second := rows[1].(*table.CatalogRow)
	if second.Expose != "" {
		t.Errorf("missing exposé value: got %q, want empty", second.Expose)
	}
}

func TestBuildReplacesRows(t *testing.T) {
	tbl := table.New()
	tbl.Build(smallFields(), nil)
	tbl.AddCustom("")
	tbl.Build(smallFields(), nil)

	if tbl.Len() != 2 {
		t.Errorf("len = %d, want 2", tbl.Len())
	}
}

func TestAddDefaults(t *testing.T) {
	tbl := table.New()
	c := tbl.AddCustom("  ")
	p := tbl.AddPhoto("")
	named := tbl.AddCustom("Balcony")

	if c.Title != table.DefaultCustomTitle {
		t.Errorf("custom title = %q", c.Title)
	}
	if p.Title != table.DefaultPhotoTitle {
		t.Errorf("photo title = %q", p.Title)
	}
	if named.Title != "Balcony" {
		t.Errorf("named title = %q", named.Title)
	}
	if c.ID == p.ID || c.ID == named.ID {
		t.Error("row ids must be distinct")
	}
}

func TestRemove(t *testing.T) {
	tbl := table.New()
	tbl.Build(smallFields(), nil)
	rows := tbl.Rows()
	mandatory := rows[0].RowID()
	optional := rows[1].RowID()
	custom := tbl.AddCustom("").ID

	tests := []struct {
		name      string
		id        uuid.UUID
		confirmed bool
		err       error
	}{
		{"unconfirmed", custom, false, table.ErrConfirmationRequired},
		{"mandatory", mandatory, true, table.ErrMandatoryRow},
		{"missing", uuid.New(), true, table.ErrRowNotFound},
		{"custom", custom, true, nil},
		{"optional catalog", optional, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tbl.Remove(tt.id, tt.confirmed)
			if !errors.Is(err, tt.err) {
				t.Errorf("Remove() = %v, want %v", err, tt.err)
			}
		})
	}

	if got := ids(tbl); len(got) != 1 || got[0] != mandatory {
		t.Errorf("remaining rows = %v, want [%v]", got, mandatory)
	}
}

func TestReorder(t *testing.T) {
	build := func() (*table.Table, []uuid.UUID) {
		tbl := table.New()
		tbl.AddCustom("a")
		tbl.AddCustom("b")
		tbl.AddCustom("c")
		tbl.AddCustom("d")
		return tbl, ids(tbl)
	}

	tests := []struct {
		name  string
		from  int
		to    int
		order []int
	}{
		{"forward", 0, 2, []int{1, 2, 0, 3}},
		{"backward", 3, 1, []int{0, 3, 1, 2}},
		{"same", 2, 2, []int{0, 1, 2, 3}},
		{"clamp high", 1, 99, []int{0, 2, 3, 1}},
		{"clamp low", 2, -5, []int{2, 0, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, orig := build()
			if err := tbl.Reorder(orig[tt.from], tt.to); err != nil {
				t.Fatalf("Reorder: %v", err)
			}
			got := ids(tbl)
			for i, j := range tt.order {
				if got[i] != orig[j] {
					t.Fatalf("position %d: got row %v, want row %d", i, got[i], j)
				}
			}
		})
	}
}

func TestRemoveThenReorderIsNoop(t *testing.T) {
	tbl := table.New()
	tbl.AddCustom("a")
	gone := tbl.AddCustom("b").ID
	tbl.AddCustom("c")

	if err := tbl.Remove(gone, true); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	before := ids(tbl)

	err := tbl.Reorder(gone, 0)
	if !errors.Is(err, table.ErrRowNotFound) {
		t.Fatalf("Reorder() = %v, want ErrRowNotFound", err)
	}

	after := ids(tbl)
	if len(after) != len(before) {
		t.Fatalf("len changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("position %d changed", i)
		}
	}
}

func TestAutofill(t *testing.T) {
	c := catalog.Default()
	tbl := table.New()
	tbl.Build(c.Fields, expose.Example())
	custom := tbl.AddCustom("")
	tbl.AddPhoto("")

	if err := tbl.SetReality(tbl.Rows()[0].RowID(), "Kantstr. 123 checked"); err != nil {
		t.Fatal(err)
	}

	changed := tbl.Autofill(c)
	if changed == 0 {
		t.Fatal("first autofill changed nothing")
	}

	byField := map[string]string{}
	for _, v := range tbl.Views() {
		if v.FieldID != "" {
			byField[v.FieldID] = v.Reality
		}
	}

	tests := []struct {
		field string
		want  string
	}{
		{"adresse", "Kantstr. 123 checked"},
		{"wohnflaeche", c.SampleNotes["wohnflaeche"]},
		{"etage", c.DefaultNote},
		{"objekttyp", "Etagenwohnung"},
		{"heizung", "Fernwärme (Gas)"},
		{"warmwasser", "zentral (mit Warmwasser)"},
		{"dachgeschoss", ""},
	}
	for _, tt := range tests {
		if got := byField[tt.field]; got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
	}

	if custom.Reality != c.DefaultNote {
		t.Errorf("custom reality = %q", custom.Reality)
	}
}

func TestAutofillIdempotent(t *testing.T) {
	c := catalog.Default()
	tbl := table.New()
	tbl.Build(c.Fields, expose.Example())
	tbl.AddCustom("")

	tbl.Autofill(c)
	once := realities(tbl)

	if n := tbl.Autofill(c); n != 0 {
		t.Errorf("second autofill changed %d rows", n)
	}
	twice := realities(tbl)

	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("row %d: %q -> %q", i, once[i], twice[i])
		}
	}
}

func TestAutofillReplacesPlaceholder(t *testing.T) {
	c := catalog.Default()
	tbl := table.New()
	row := tbl.AddCustom("")
	row.Reality = "  " + c.Placeholder + " "

	tbl.Autofill(c)
	if row.Reality != c.DefaultNote {
		t.Errorf("reality = %q, want default note", row.Reality)
	}
}

func TestCopyExpose(t *testing.T) {
	fields := []catalog.Field{
		{ID: "type", Kind: catalog.Enumerated, Options: []string{"A", "B"}},
		{ID: "other", Kind: catalog.Enumerated, Options: []string{"A", "B"}},
		{ID: "heating", Kind: catalog.Enumerated, Options: []string{"Gas", "Fernwärme"}},
		{ID: "note", Kind: catalog.FreeText},
	}
	values := expose.Values{
		"type":    "B",
		"other":   "Unknown-Text",
		"heating": "Fernwärme aus Kraftwerk",
		"note":    "as advertised",
	}

	tests := []struct {
		name    string
		field   string
		matched bool
		want    string
	}{
		{"exact", "type", true, "B"},
		{"no match", "other", false, ""},
		{"contains", "heating", true, "Fernwärme"},
		{"free text", "note", true, "as advertised"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := table.New()
			tbl.Build(fields, values)

			var id uuid.UUID
			for _, v := range tbl.Views() {
				if v.FieldID == tt.field {
					id = v.ID
				}
			}

			matched, err := tbl.CopyExpose(id)
			if err != nil {
				t.Fatalf("CopyExpose: %v", err)
			}
			if matched != tt.matched {
				t.Errorf("matched = %v, want %v", matched, tt.matched)
			}

			r, _ := tbl.Find(id)
			if got := r.(*table.CatalogRow).Reality; got != tt.want {
				t.Errorf("reality = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCopyExposeNotApplicable(t *testing.T) {
	tbl := table.New()
	custom := tbl.AddCustom("").ID
	photo := tbl.AddPhoto("").ID

	for _, id := range []uuid.UUID{custom, photo} {
		if _, err := tbl.CopyExpose(id); !errors.Is(err, table.ErrNotApplicable) {
			t.Errorf("CopyExpose() = %v, want ErrNotApplicable", err)
		}
	}
}

func TestSetReality(t *testing.T) {
	tbl := table.New()
	tbl.Build(smallFields(), nil)
	enum := tbl.Rows()[1].RowID()

	if err := tbl.SetReality(enum, "C"); !errors.Is(err, table.ErrInvalidOption) {
		t.Errorf("invalid option: got %v", err)
	}
	if err := tbl.SetReality(enum, "A"); err != nil {
		t.Errorf("valid option: %v", err)
	}
	if err := tbl.SetReality(enum, catalog.Blank); err != nil {
		t.Errorf("blank: %v", err)
	}
	if err := tbl.SetReality(uuid.New(), "x"); !errors.Is(err, table.ErrRowNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestPhotoSetters(t *testing.T) {
	tbl := table.New()
	p := tbl.AddPhoto("")
	custom := tbl.AddCustom("")

	if err := tbl.SetImage(p.ID, "data:image/jpeg;base64,AA=="); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetComment(p.ID, "crack in tile"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetTitle(p.ID, "Bathroom"); err != nil {
		t.Fatal(err)
	}
	if p.Image == "" || p.Comment != "crack in tile" || p.Title != "Bathroom" {
		t.Errorf("photo row = %+v", p)
	}

	if err := tbl.SetImage(custom.ID, "x"); !errors.Is(err, table.ErrNotApplicable) {
		t.Errorf("SetImage on custom row: %v", err)
	}
}

func TestRowJSON(t *testing.T) {
	tbl := table.New()
	tbl.Build(smallFields(), expose.Values{"address": "Main St 1"})

	data, err := json.Marshal(tbl.Rows()[0])
	if err != nil {
		t.Fatal(err)
	}

	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v["type"] != "catalog" || v["field_id"] != "address" || v["mandatory"] != true {
		t.Errorf("json = %s", data)
	}
}
