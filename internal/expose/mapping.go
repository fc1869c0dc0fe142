package expose

import (
	"net/url"

	"github.com/JaimeStill/flatcheck/pkg/query"
	"github.com/JaimeStill/flatcheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "exposes", "e").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("uploaded_by", "UploadedBy").
	Project("uploaded_at", "UploadedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters narrows exposé listings. Nil fields are ignored.
type Filters struct {
	Filename   *string `json:"filename,omitempty"`
	UploadedBy *string `json:"uploaded_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Filename", f.Filename).
		WhereEquals("UploadedBy", f.UploadedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if by := values.Get("uploaded_by"); by != "" {
		f.UploadedBy = &by
	}
	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.ContentType,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.UploadedBy,
		&d.UploadedAt,
	)
	return d, err
}
