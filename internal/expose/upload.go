package expose

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const pdfContentType = "application/pdf"

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

// BodyLimit returns the request body cap for uploads of at most maxUpload bytes.
func BodyLimit(maxUpload int64) int64 {
	return maxUpload + multipartOverhead
}

// FormError maps a multipart parse failure: a body over the cap is
// ErrFileTooLarge, anything else ErrInvalidFile.
func FormError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrFileTooLarge
	}
	return fmt.Errorf("%w: %v", ErrInvalidFile, err)
}

// ReadUpload reads the "file" part of a multipart request and checks that it
// is a PDF. The page count is extracted with pdfcpu when the document parses;
// a PDF pdfcpu cannot read is still accepted without a page count.
func ReadUpload(r *http.Request, maxSize int64, uploadedBy string, logger *slog.Logger) (CreateCommand, error) {
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return CreateCommand{}, FormError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return CreateCommand{}, ErrInvalidFile
	}
	defer file.Close()

	if header.Size > maxSize {
		return CreateCommand{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return CreateCommand{}, ErrInvalidFile
	}

	if detectContentType(header.Header.Get("Content-Type"), data) != pdfContentType {
		return CreateCommand{}, ErrNotPDF
	}

	return CreateCommand{
		Data:       data,
		Filename:   header.Filename,
		PageCount:  pageCount(logger, data),
		UploadedBy: uploadedBy,
	}, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
		return header
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

func pageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
