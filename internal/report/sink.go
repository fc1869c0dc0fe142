package report

import "image/color"

// Font selects the text style for Sink.Text. Size is in points.
type Font struct {
	Size  int
	Bold  bool
	Color color.RGBA
}

// ImageFormat names the encoding of bytes passed to Sink.Image.
type ImageFormat string

const (
	JPEG ImageFormat = "jpg"
	PNG  ImageFormat = "png"
)

// Sink is a page-based drawing surface. All coordinates are millimetres
// from the top-left corner of the current page.
type Sink interface {
	PageSize() (width, height float64)
	AddPage()
	FillRect(x, y, w, h float64, c color.RGBA)
	Line(x1, y1, x2, y2, width float64, c color.RGBA)
	Text(x, y float64, s string, f Font)
	Image(x, y, w, h float64, data []byte, format ImageFormat) error
	// Output finalizes the document and returns its bytes and page count.
	Output() ([]byte, int, error)
}
