package expose_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/catalog"
	"github.com/JaimeStill/flatcheck/internal/expose"
)

func TestExampleCoversCatalog(t *testing.T) {
	values := expose.Example()
	for _, f := range catalog.Default().Fields {
		if _, ok := values[f.ID]; !ok {
			t.Errorf("example missing field %s", f.ID)
		}
	}
	if values["adresse"] != "Kantstraße 123, 10625 Berlin" {
		t.Errorf("adresse = %q", values["adresse"])
	}
}

func TestBlank(t *testing.T) {
	c := catalog.Default()
	values := expose.Blank(c)
	if len(values) != len(c.Fields) {
		t.Fatalf("len = %d, want %d", len(values), len(c.Fields))
	}
	for id, v := range values {
		if v != "" {
			t.Errorf("%s = %q, want empty", id, v)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := expose.Example()
	clone := original.Clone()
	clone["adresse"] = "changed"

	if original["adresse"] == "changed" {
		t.Error("Clone shares storage with original")
	}
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	tests := []struct {
		filename string
		want     string
	}{
		{"listing.pdf", "exposes/550e8400-e29b-41d4-a716-446655440000/listing.pdf"},
		{"../../etc/passwd", "exposes/550e8400-e29b-41d4-a716-446655440000/passwd"},
		{"..", "exposes/550e8400-e29b-41d4-a716-446655440000/expose.pdf"},
		{"draft...final.pdf", "exposes/550e8400-e29b-41d4-a716-446655440000/draft.final.pdf"},
		{"", "exposes/550e8400-e29b-41d4-a716-446655440000/expose.pdf"},
		{"Kant straße.pdf", "exposes/550e8400-e29b-41d4-a716-446655440000/Kant%20stra%C3%9Fe.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := expose.StorageKey(id, tt.filename); got != tt.want {
				t.Errorf("StorageKey(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSources(t *testing.T) {
	ex := expose.ExampleSource()
	if ex.Kind != expose.SourceExample || ex.Document != nil {
		t.Errorf("example source = %+v", ex)
	}

	doc := &expose.Document{ID: uuid.New(), Filename: "listing.pdf"}
	up := expose.UploadSource(doc)
	if up.Kind != expose.SourceUpload || up.Filename != "listing.pdf" || up.Document != doc {
		t.Errorf("upload source = %+v", up)
	}
}
