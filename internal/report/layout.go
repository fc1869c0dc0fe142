package report

import (
	"image/color"
	"strings"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 12.0
	usableBottom = 270.0
	topOfPage    = 20.0
	lineHeight   = 5.0
	textWidth    = 180.0
	photoWidth   = 60.0
	photoHeight  = 45.0
)

var (
	brandDark  = color.RGBA{30, 12, 60, 255}
	brandLight = color.RGBA{255, 184, 92, 255}
	ink        = color.RGBA{20, 12, 40, 255}
	rowInk     = color.RGBA{30, 20, 60, 255}
	rule       = color.RGBA{180, 170, 230, 255}
	white      = color.RGBA{255, 255, 255, 255}
	cardLeft   = color.RGBA{255, 201, 119, 255}
	cardRight  = color.RGBA{255, 136, 174, 255}
)

// card is one contact printed on the support card.
type card struct {
	kind    ContactKind
	contact Contact
}

// layout walks the report top to bottom, keeping a running cursor and
// starting a new page whenever content would pass the usable height.
type layout struct {
	sink Sink
	y    float64
}

func (l *layout) header() {
	l.sink.AddPage()
	l.sink.FillRect(0, 0, pageWidth, 25, brandDark)
	l.sink.Text(margin, 12, "Check Your Flat", Font{Size: 12, Bold: true, Color: white})
	l.sink.Text(margin, 20, "Inspection report", Font{Size: 15, Bold: true, Color: white})
	l.sink.FillRect(180, 5, 16, 14, brandLight)
	l.sink.Text(183.5, 14, "CYF", Font{Size: 9, Bold: true, Color: brandDark})
	l.y = 38
}

func (l *layout) meta(req Request) {
	l.metaLine("Address:", req.Address())
	l.metaLine("Generated:", req.Time.Format("02.01.2006 15:04"))
	l.metaLine("Source exposé:", req.SourceName)
	l.metaLine("Validator (inspector):", strings.TrimSpace(req.Signer))
	l.y += 4

	l.sink.Text(margin, l.y, "Maske Inspektion – inspector notes", Font{Size: 12, Bold: true, Color: brandDark})
	l.sink.Line(margin, l.y+2, pageWidth-margin, l.y+2, 0.3, rule)
	l.y += 9
}

func (l *layout) metaLine(label, value string) {
	if value == "" {
		return
	}
	l.sink.Text(margin, l.y, label, Font{Size: 11, Bold: true, Color: ink})
	l.sink.Text(20, l.y+5, value, Font{Size: 11, Color: ink})
	l.y += 11
}

func (l *layout) rows(entries []entry) error {
	for _, en := range entries {
		l.breakIf(l.y > usableBottom)

		l.sink.Text(margin, l.y, "• "+en.label, Font{Size: 9, Bold: true, Color: rowInk})
		l.y += lineHeight

		for _, line := range wrap(en.reality, textWidth, 9) {
			l.breakIf(l.y > usableBottom)
			l.sink.Text(18, l.y, line, Font{Size: 9, Color: rowInk})
			l.y += lineHeight
		}

		if en.photo != nil {
			l.breakIf(l.y+photoHeight > usableBottom)
			if err := l.sink.Image(18, l.y, photoWidth, photoHeight, en.photo, JPEG); err != nil {
				return err
			}
			l.y += photoHeight + lineHeight
		}
	}
	return nil
}

func (l *layout) signature(png []byte) error {
	if len(png) == 0 {
		return nil
	}
	l.breakIf(l.y+30 > usableBottom)

	l.sink.Text(margin, l.y, "Signature:", Font{Size: 9, Bold: true, Color: rowInk})
	if err := l.sink.Image(40, l.y-10, 40, 20, png, PNG); err != nil {
		return err
	}
	l.y += 26
	return nil
}

// contacts prints the support card on a fresh page, anchored to the bottom.
func (l *layout) contacts(cards []card) {
	if len(cards) == 0 {
		return
	}
	l.sink.AddPage()

	const (
		height = 40.0
		border = 1.2
	)
	width := pageWidth - 2*margin
	x, y := margin, pageHeight-height-margin

	l.sink.FillRect(x, y, width/2, height, cardLeft)
	l.sink.FillRect(x+width/2, y, width/2, height, cardRight)
	l.sink.FillRect(x+border, y+border, width-2*border, height-2*border, white)

	l.sink.Text(x+6, y+10, cardTitle(cards), Font{Size: 11, Bold: true, Color: ink})

	ty := y + 17
	body := Font{Size: 9, Color: ink}
	for i, c := range cards {
		if i > 0 {
			ty += 2
		}
		l.sink.Text(x+6, ty, c.contact.Name+" – "+c.contact.Firm, body)
		ty += 4
		l.sink.Text(x+6, ty, "Phone: "+c.contact.Phone, body)
		ty += 4
		l.sink.Text(x+6, ty, "Email: "+c.contact.Email, body)
		ty += 4
		for _, line := range wrap(c.contact.Note, width-12, 9) {
			l.sink.Text(x+6, ty, line, body)
			ty += 4
		}
		ty += 2
	}
}

func cardTitle(cards []card) string {
	if len(cards) > 1 {
		return "Legal & Finance support"
	}
	if cards[0].kind == LegalContact {
		return "Legal support"
	}
	return "Finance support"
}

func (l *layout) breakIf(cond bool) {
	if cond {
		l.sink.AddPage()
		l.y = topOfPage
	}
}

// wrap splits text into lines no wider than width millimetres at the given
// point size, using the average Helvetica glyph width.
func wrap(text string, width float64, size int) []string {
	charWidth := float64(size) * 0.5 * 25.4 / 72
	limit := max(1, int(width/charWidth))

	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > limit {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:limit]))
			w = w[limit:]
		}

		switch {
		case len(line) == 0:
			line = w
		case len(line)+1+len(w) <= limit:
			line = append(append(line, ' '), w...)
		default:
			lines = append(lines, string(line))
			line = w
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
