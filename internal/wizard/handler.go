package wizard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/imaging"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/table"
	"github.com/JaimeStill/flatcheck/internal/validation"
	"github.com/JaimeStill/flatcheck/pkg/auth"
	"github.com/JaimeStill/flatcheck/pkg/handlers"
	"github.com/JaimeStill/flatcheck/pkg/middleware"
	"github.com/JaimeStill/flatcheck/pkg/routes"
)

// Handler provides HTTP endpoints for inspections and the field catalog.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "inspections"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for inspection endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/inspections",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Discard},
			{Method: "POST", Pattern: "/{id}/expose/example", Handler: h.LoadExample},
			{Method: "POST", Pattern: "/{id}/advance", Handler: h.Advance},
			{Method: "POST", Pattern: "/{id}/navigate", Handler: h.Navigate},
			{Method: "POST", Pattern: "/{id}/validate", Handler: h.Validate},
			{Method: "POST", Pattern: "/{id}/autofill", Handler: h.Autofill},
			{Method: "POST", Pattern: "/{id}/rows/custom", Handler: h.AddCustom},
			{Method: "POST", Pattern: "/{id}/rows/photo", Handler: h.AddPhoto},
			{Method: "PUT", Pattern: "/{id}/rows/{rowId}", Handler: h.UpdateRow},
			{Method: "DELETE", Pattern: "/{id}/rows/{rowId}", Handler: h.RemoveRow},
			{Method: "POST", Pattern: "/{id}/rows/{rowId}/move", Handler: h.MoveRow},
			{Method: "POST", Pattern: "/{id}/rows/{rowId}/copy-expose", Handler: h.CopyExpose},
			{Method: "POST", Pattern: "/{id}/rows/{rowId}/rotate", Handler: h.RotatePhoto},
			{Method: "POST", Pattern: "/{id}/rows/{rowId}/capture", Handler: h.Capture},
			{Method: "POST", Pattern: "/{id}/camera", Handler: h.OpenCamera},
			{Method: "DELETE", Pattern: "/{id}/camera", Handler: h.CloseCamera},
			{Method: "PUT", Pattern: "/{id}/signer", Handler: h.SetSigner},
			{Method: "POST", Pattern: "/{id}/report", Handler: h.Generate},
			{Method: "GET", Pattern: "/{id}/report", Handler: h.DownloadReport},
			{Method: "DELETE", Pattern: "/{id}/report", Handler: h.CancelReport},
			{Method: "POST", Pattern: "/{id}/report/approve", Handler: h.Approve},
		},
		Children: []routes.Group{
			{
				Middleware: []func(http.Handler) http.Handler{
					middleware.MaxBytes(expose.BodyLimit(h.maxUploadSize)),
				},
				Routes: []routes.Route{
					{Method: "POST", Pattern: "/{id}/expose/upload", Handler: h.UploadExpose},
					{Method: "POST", Pattern: "/{id}/rows/{rowId}/photo", Handler: h.UploadPhoto},
				},
			},
		},
	}
}

// CatalogRoutes returns the read-only catalog endpoint.
func (h *Handler) CatalogRoutes() routes.Group {
	return routes.Group{
		Prefix: "/catalog",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Catalog},
		},
	}
}

// Catalog returns the field catalog.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Catalog())
}

// Create opens a new inspection, prefilling the signer from the caller's identity.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	signer := ""
	if id, ok := auth.FromContext(r.Context()); ok {
		signer = id.DisplayName()
	}

	s, err := h.sys.Create(signer)
	if err != nil {
		h.fail(w, err)
		return
	}

	view, err := s.View()
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, view)
}

// Find returns the inspection state.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondView(w, s.View)
}

// Discard closes an inspection and releases its resources.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrSessionNotFound)
		return
	}
	if err := h.sys.Discard(id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadExample loads the built-in example exposé and rebuilds the table.
func (h *Handler) LoadExample(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondView(w, s.LoadExample)
}

// UploadExpose stores a PDF exposé and makes it the inspection's source.
func (h *Handler) UploadExpose(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrSessionNotFound)
		return
	}

	uploadedBy := ""
	if ident, ok := auth.FromContext(r.Context()); ok {
		uploadedBy = ident.DisplayName()
	}

	cmd, err := expose.ReadUpload(r, h.maxUploadSize, uploadedBy, h.logger)
	if err != nil {
		h.fail(w, err)
		return
	}

	view, err := h.sys.Upload(r.Context(), id, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

type stepRequest struct {
	Step int `json:"step"`
}

// Advance moves forward through the steps. A failed table check responds
// with the per-row flags.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[stepRequest](r)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	view, res, err := s.Advance(req.Step)
	if err != nil {
		h.failValidation(w, err, res)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// Navigate views an unlocked step.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[stepRequest](r)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	view, err := s.Navigate(req.Step)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

// Validate runs the mandatory-field check.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := s.Validate()
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, res)
}

type autofillResponse struct {
	Changed int  `json:"changed"`
	State   View `json:"state"`
}

// Autofill fills empty rows with sample notes.
func (h *Handler) Autofill(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	view, n, err := s.Autofill()
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, autofillResponse{Changed: n, State: view})
}

type titleRequest struct {
	Title string `json:"title"`
}

// AddCustom appends a custom note row.
func (h *Handler) AddCustom(w http.ResponseWriter, r *http.Request) {
	h.addRow(w, r, (*Session).AddCustom)
}

// AddPhoto appends a photo row.
func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	h.addRow(w, r, (*Session).AddPhoto)
}

func (h *Handler) addRow(w http.ResponseWriter, r *http.Request, add func(*Session, string) (table.View, error)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req titleRequest
	if r.ContentLength != 0 {
		decoded, err := handlers.DecodeJSON[titleRequest](r)
		if err != nil {
			h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
			return
		}
		req = decoded
	}

	row, err := add(s, req.Title)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, row)
}

// UpdateRow edits a row's reality, title, or comment.
func (h *Handler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	u, err := handlers.DecodeJSON[RowUpdate](r)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	row, err := s.UpdateRow(rowID, u)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

// RemoveRow deletes a row. The request must carry confirm=true.
func (h *Handler) RemoveRow(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := s.RemoveRow(rowID, confirmed); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Index int `json:"index"`
}

// MoveRow moves a row to a new position.
func (h *Handler) MoveRow(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[moveRequest](r)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	view, err := s.MoveRow(rowID, req.Index)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

type copyResponse struct {
	Matched bool       `json:"matched"`
	Row     table.View `json:"row"`
}

// CopyExpose copies the exposé value of a row into its reality.
func (h *Handler) CopyExpose(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	row, matched, err := s.CopyExpose(rowID)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, copyResponse{Matched: matched, Row: row})
}

// UploadPhoto reads the "file" part of a multipart form into a photo row.
// Any image/* type is accepted.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.fail(w, expose.FormError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, fmt.Errorf("%w: missing file", ErrInvalidRequest))
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.fail(w, expose.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		h.fail(w, fmt.Errorf("%w: empty file", ErrInvalidRequest))
		return
	}

	mediaType := imageType(header.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(mediaType, "image/") {
		h.fail(w, fmt.Errorf("%w: %s", imaging.ErrNotImage, mediaType))
		return
	}

	row, err := s.SetPhoto(rowID, imaging.DataURL(mediaType, data))
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

func imageType(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// RotatePhoto turns a photo 90 degrees clockwise.
func (h *Handler) RotatePhoto(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	row, err := s.RotatePhoto(rowID)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

// OpenCamera opens the camera for the inspection.
func (h *Handler) OpenCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.OpenCamera(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.respondView(w, s.View)
}

// CloseCamera releases the camera.
func (h *Handler) CloseCamera(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.CloseCamera(); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Capture takes a still with the open camera into a photo row.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	s, rowID, ok := h.row(w, r)
	if !ok {
		return
	}

	row, err := s.Capture(r.Context(), rowID)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, row)
}

type signerRequest struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
}

// SetSigner records the inspector's name and signature.
func (h *Handler) SetSigner(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	req, err := handlers.DecodeJSON[signerRequest](r)
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}

	view, err := s.SetSigner(req.Name, req.Signature)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

type generateRequest struct {
	Contacts []report.ContactKind `json:"contacts"`
}

// Generate renders a report preview.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrSessionNotFound)
		return
	}

	var req generateRequest
	if r.ContentLength != 0 {
		decoded, err := handlers.DecodeJSON[generateRequest](r)
		if err != nil {
			h.fail(w, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
			return
		}
		req = decoded
	}

	doc, res, err := h.sys.Generate(r.Context(), id, req.Contacts)
	if err != nil {
		h.failValidation(w, err, res)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// DownloadReport streams the pending report.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	doc, err := s.Report()
	if err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// CancelReport discards the pending report.
func (h *Handler) CancelReport(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.CancelReport(); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve stores the pending report and records it in the history.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrSessionNotFound)
		return
	}

	entry, err := h.sys.Approve(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrSessionNotFound)
		return nil, false
	}

	s, err := h.sys.Session(id)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) row(w http.ResponseWriter, r *http.Request) (*Session, uuid.UUID, bool) {
	s, ok := h.session(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}

	rowID, err := uuid.Parse(r.PathValue("rowId"))
	if err != nil {
		h.fail(w, fmt.Errorf("%w: row id", ErrInvalidRequest))
		return nil, uuid.Nil, false
	}
	return s, rowID, true
}

func (h *Handler) respondView(w http.ResponseWriter, fn func() (View, error)) {
	view, err := fn()
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

type validationError struct {
	Error      string             `json:"error"`
	Validation *validation.Result `json:"validation"`
}

// failValidation reports a failed check together with the per-row flags.
func (h *Handler) failValidation(w http.ResponseWriter, err error, res *validation.Result) {
	if res == nil || res.OK || !errors.Is(err, validation.ErrMandatoryMissing) {
		h.fail(w, err)
		return
	}
	h.logger.Warn("validation failed", "error", err, "first", res.First)
	handlers.RespondJSON(w, MapHTTPStatus(err), validationError{Error: err.Error(), Validation: res})
}
