package history

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/flatcheck/pkg/handlers"
	"github.com/JaimeStill/flatcheck/pkg/pagination"
	"github.com/JaimeStill/flatcheck/pkg/routes"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

// ErrNotFound indicates the requested report is not in the history.
var ErrNotFound = errors.New("report not found in history")

// Handler serves the history list and downloads of approved reports.
type Handler struct {
	log        *Log
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler over log and the blob store holding reports.
func NewHandler(log *Log, store storage.System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		log:        log,
		storage:    store,
		logger:     logger.With("handler", "history"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for history endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/history",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "DELETE", Pattern: "", Handler: h.Clear},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.Download},
		},
	}
}

// List returns a page of entries, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	handlers.RespondJSON(w, http.StatusOK, pagination.Slice(h.log.List(r.Context()), page))
}

// Clear removes every entry. Stored reports are kept.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.log.Clear(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Download streams a stored report. Only keys recorded in the history are served.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, ok := h.log.Find(r.Context(), key)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	blob, err := h.storage.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Filename))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, blob.Body)
}
