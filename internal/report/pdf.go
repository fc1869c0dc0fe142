package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const ptPerMM = 72 / 25.4

// PDFSink renders through pdfcpu's JSON content description. Pages are
// collected in memory and rendered in one pass by Output.
type PDFSink struct {
	pages  []*pdfContent
	images []pendingImage
}

type pendingImage struct {
	ref  *pdfImage
	data []byte
	ext  ImageFormat
}

type pdfDocument struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content *pdfContent `json:"content"`
}

type pdfContent struct {
	Box   []pdfBox    `json:"box,omitempty"`
	Text  []pdfText   `json:"text,omitempty"`
	Image []*pdfImage `json:"image,omitempty"`
}

type pdfBox struct {
	Pos       [2]float64 `json:"pos"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	FillColor string     `json:"fillColor"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfFont struct {
	Name  string `json:"name"`
	Size  int    `json:"size"`
	Color string `json:"color"`
}

type pdfImage struct {
	Src    string     `json:"src"`
	Pos    [2]float64 `json:"pos"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
}

// NewPDFSink returns an empty A4 document.
func NewPDFSink() Sink {
	return &PDFSink{}
}

func (s *PDFSink) PageSize() (float64, float64) {
	return pageWidth, pageHeight
}

func (s *PDFSink) AddPage() {
	s.pages = append(s.pages, &pdfContent{})
}

func (s *PDFSink) FillRect(x, y, w, h float64, c color.RGBA) {
	p := s.current()
	p.Box = append(p.Box, pdfBox{Pos: pos(x, y), Width: w * ptPerMM, Height: h * ptPerMM, FillColor: hex(c)})
}

// Line draws horizontal or vertical rules as thin filled boxes.
func (s *PDFSink) Line(x1, y1, x2, y2, width float64, c color.RGBA) {
	x, y := min(x1, x2), min(y1, y2)
	w, h := max(x1, x2)-x, max(y1, y2)-y
	if w < width {
		w = width
	}
	if h < width {
		h = width
	}
	s.FillRect(x, y, w, h, c)
}

func (s *PDFSink) Text(x, y float64, text string, f Font) {
	name := "Helvetica"
	if f.Bold {
		name = "Helvetica-Bold"
	}
	p := s.current()
	p.Text = append(p.Text, pdfText{
		Value: text,
		Pos:   pos(x, y),
		Font:  pdfFont{Name: name, Size: f.Size, Color: hex(f.Color)},
	})
}

func (s *PDFSink) Image(x, y, w, h float64, data []byte, format ImageFormat) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image")
	}
	img := &pdfImage{Pos: pos(x, y), Width: w * ptPerMM, Height: h * ptPerMM}
	p := s.current()
	p.Image = append(p.Image, img)
	s.images = append(s.images, pendingImage{ref: img, data: data, ext: format})
	return nil
}

// Output writes pending images to a temporary directory, renders the
// document, and removes the directory again.
func (s *PDFSink) Output() ([]byte, int, error) {
	if len(s.pages) == 0 {
		s.AddPage()
	}

	dir, err := os.MkdirTemp("", "flatcheck-report-*")
	if err != nil {
		return nil, 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	for i, img := range s.images {
		path := filepath.Join(dir, fmt.Sprintf("image-%d.%s", i, img.ext))
		if err := os.WriteFile(path, img.data, 0600); err != nil {
			return nil, 0, fmt.Errorf("write image %d: %w", i, err)
		}
		img.ref.Src = path
	}

	doc := pdfDocument{
		Paper:  "A4P",
		Origin: "UpperLeft",
		Pages:  make(map[string]pdfPage, len(s.pages)),
	}
	for i, p := range s.pages {
		doc.Pages[strconv.Itoa(i+1)] = pdfPage{Content: p}
	}

	desc, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal layout: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(desc), &buf, nil); err != nil {
		return nil, 0, fmt.Errorf("render pdf: %w", err)
	}

	count, err := api.PageCount(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("count pages: %w", err)
	}
	return buf.Bytes(), count, nil
}

func (s *PDFSink) current() *pdfContent {
	if len(s.pages) == 0 {
		s.AddPage()
	}
	return s.pages[len(s.pages)-1]
}

func pos(x, y float64) [2]float64 {
	return [2]float64{x * ptPerMM, y * ptPerMM}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
