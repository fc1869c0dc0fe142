package expose

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/pkg/pagination"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

// System defines the operations on stored exposé documents.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Document], error)
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Open streams the stored PDF. The caller must close the blob body.
	Open(ctx context.Context, id uuid.UUID) (*Document, *storage.Blob, error)
}
