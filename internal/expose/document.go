package expose

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded exposé PDF and its blob storage reference.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	StorageKey  string    `json:"storage_key"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// CreateCommand carries an uploaded file. Data holds the raw bytes.
type CreateCommand struct {
	Data       []byte
	Filename   string
	PageCount  *int
	UploadedBy string
}
