package render

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/itinerary"
)

const (
	bodySize    = 10.0
	bodyLeading = 14.0

	tableSize    = 10.0
	tableLeading = 13.0
	cellPad      = 4.0

	panelTextWidth  = 4 * inch
	panelImageWidth = 2.8 * inch
	panelPad        = 10.0
	panelGap        = 15.0
)

func (r *renderer) title(text string) {
	const lh = 30.0
	w := r.contentWidth()
	r.setFont("B", 26, navy)
	lines := r.wrap(r.text(text), w, w)
	r.ensure(float64(len(lines)) * lh)
	r.mark()
	r.lines(lines, marginLeft, w, lh, "C")
	r.y += 20
}

// heading keeps itself together with at least two body lines
func (r *renderer) heading(text string, size float64, c rgb, before, after float64) {
	lh := size * 1.25
	w := r.contentWidth()
	r.setFont("B", size, c)
	lines := r.wrap(r.text(text), w, w)
	r.ensure(before + float64(len(lines))*lh + 2*bodyLeading)
	if !r.fresh {
		r.y += before
	}
	r.mark()
	r.lines(lines, marginLeft, w, lh, "L")
	r.y += after
}

func (r *renderer) paragraph(text string) {
	w := r.contentWidth()
	r.setFont("", bodySize, black)
	lines := r.wrap(r.text(text), w, w)
	r.ensure(bodyLeading)
	r.mark()
	r.lines(lines, marginLeft, w, bodyLeading, "L")
	r.y += 4
}

func (r *renderer) rule() {
	r.ensure(12)
	r.y += 2
	r.mark()
	r.pdf.SetDrawColor(gold.r, gold.g, gold.b)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(marginLeft, r.y, marginLeft+r.contentWidth(), r.y)
	r.y += 10
}

// lines draws one cell per line from r.y down, moving to a new page when the
// bottom margin is reached
func (r *renderer) lines(lines []string, x, w, lh float64, align string) {
	for _, l := range lines {
		if r.y+lh > r.bottom() {
			r.newPage()
		}
		r.pdf.SetXY(x, r.y)
		r.pdf.CellFormat(w, lh, l, "", 0, align, false, 0, "")
		r.y += lh
	}
}

type cellStyle struct {
	fill  *rgb
	color rgb
	bold  bool
}

type tableStyle struct {
	widths    [2]float64
	grid      rgb
	gridWidth float64
	cell      func(header bool, col int) cellStyle
}

var timelineStyle = tableStyle{
	widths:    [2]float64{1 * inch, 5.5 * inch},
	grid:      lightGrey,
	gridWidth: 0.5,
	cell: func(header bool, _ int) cellStyle {
		if header {
			return cellStyle{fill: &navy, color: whitesmoke, bold: true}
		}
		return cellStyle{color: black}
	},
}

var factsStyle = tableStyle{
	widths:    [2]float64{2 * inch, 4 * inch},
	grid:      grey,
	gridWidth: 1,
	cell: func(_ bool, col int) cellStyle {
		if col == 0 {
			return cellStyle{fill: &navy, color: white, bold: true}
		}
		return cellStyle{color: black}
	},
}

func (s cellStyle) font() string {
	if s.bold {
		return "B"
	}
	return ""
}

// table draws row by row; rows break between pages, never inside
func (r *renderer) table(t *document.Table, st tableStyle) {
	rows := t.Rows
	if t.Header != nil {
		rows = append([][2]string{*t.Header}, rows...)
	}

	for idx, cells := range rows {
		header := t.Header != nil && idx == 0

		var wrapped [2][]string
		n := 1
		for c := range cells {
			cs := st.cell(header, c)
			r.setFont(cs.font(), tableSize, cs.color)
			inner := st.widths[c] - 2*cellPad
			wrapped[c] = r.wrap(r.text(cells[c]), inner, inner)
			n = max(n, len(wrapped[c]))
		}
		rowH := float64(n)*tableLeading + 2*cellPad
		if header {
			rowH += 6
		}

		r.ensure(rowH)
		if idx == 0 {
			r.mark()
		}

		x := marginLeft
		for c := range cells {
			cs := st.cell(header, c)
			r.pdf.SetLineWidth(st.gridWidth)
			r.pdf.SetDrawColor(st.grid.r, st.grid.g, st.grid.b)
			style := "D"
			if cs.fill != nil {
				r.pdf.SetFillColor(cs.fill.r, cs.fill.g, cs.fill.b)
				style = "FD"
			}
			r.pdf.Rect(x, r.y, st.widths[c], rowH, style)

			r.setFont(cs.font(), tableSize, cs.color)
			ty := r.y + cellPad
			for _, l := range wrapped[c] {
				r.pdf.SetXY(x+cellPad, ty)
				r.pdf.CellFormat(st.widths[c]-2*cellPad, tableLeading, l, "", 0, "L", false, 0, "")
				ty += tableLeading
			}
			x += st.widths[c]
		}
		r.y += rowH
	}
	r.y += 10
}

// span is one paragraph of a panel's text column
type span struct {
	label string // bold prefix on the first line
	text  string
	bold  bool
	link  string
	gap   float64 // space above

	labelW float64
	lines  []string
}

func panelSpans(s itinerary.StopRecord) []span {
	spans := []span{{text: s.PlaceName, bold: true}}
	if s.BestTime != "" {
		spans = append(spans, span{label: "Best Time:", text: s.BestTime})
	}
	if s.Logistics != "" {
		spans = append(spans, span{label: "Logistics:", text: s.Logistics})
	}
	for _, d := range s.Description {
		spans = append(spans, span{text: d})
	}
	if len(s.Food) > 0 {
		spans = append(spans, span{text: "Nearby Eats:", bold: true, gap: 5})
		for _, f := range s.Food {
			spans = append(spans, span{text: f})
		}
	}
	if s.MapURL != "" {
		spans = append(spans, span{text: "Open Map", link: s.MapURL, gap: 3})
	}
	return spans
}

func (s *span) font() (string, rgb) {
	switch {
	case s.link != "":
		return "U", navy
	case s.bold:
		return "B", black
	default:
		return "", black
	}
}

// measure wraps every span to width w and returns the column height
func (r *renderer) measure(spans []span, w float64) float64 {
	var h float64
	for i := range spans {
		s := &spans[i]
		first := w
		if s.label != "" {
			s.label = r.text(s.label)
			r.setFont("B", bodySize, black)
			s.labelW = r.pdf.GetStringWidth(s.label + " ")
			first -= s.labelW
		}
		style, c := s.font()
		r.setFont(style, bodySize, c)
		s.lines = r.wrap(r.text(s.text), first, w)
		h += s.gap + float64(len(s.lines))*bodyLeading
	}
	return h
}

// panel writes the text | image pair for one stop. It is measured first and
// moved to a new page as a unit when it does not fit.
func (r *renderer) panel(i int, p *document.StopPanel) {
	textW := panelTextWidth - panelPad
	spans := panelSpans(p.Stop)
	textH := r.measure(spans, textW)

	imgW, imgH := 0.0, 0.0
	if p.Image != nil && p.Image.AspectRatio() > 0 {
		imgW = panelImageWidth
		imgH = imgW * p.Image.AspectRatio()
		if limit := r.bottom() - marginTop; imgH > limit {
			imgH = limit
			imgW = imgH / p.Image.AspectRatio()
		}
	}

	r.ensure(max(textH, imgH))
	r.mark()
	top, page := r.y, r.pdf.PageNo()

	if imgW > 0 {
		name := fmt.Sprintf("stop-%d", i)
		opts := fpdf.ImageOptions{ImageType: p.Image.Type}
		r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(p.Image.Data))
		r.pdf.ImageOptions(name, marginLeft+panelTextWidth, top, imgW, imgH, false, opts, 0, "")
	}

	for _, s := range spans {
		r.y += s.gap
		r.spanLines(&s, marginLeft, textW)
	}

	if r.pdf.PageNo() == page {
		r.y = max(r.y, top+imgH)
	}
	r.y += panelGap
}

func (r *renderer) spanLines(s *span, x, w float64) {
	style, c := s.font()
	for n, l := range s.lines {
		if r.y+bodyLeading > r.bottom() {
			r.newPage()
		}
		lx := x
		if n == 0 && s.label != "" {
			r.setFont("B", bodySize, black)
			r.pdf.SetXY(x, r.y)
			r.pdf.CellFormat(s.labelW, bodyLeading, s.label, "", 0, "L", false, 0, "")
			lx += s.labelW
		}
		r.setFont(style, bodySize, c)
		r.pdf.SetXY(lx, r.y)
		r.pdf.CellFormat(x+w-lx, bodyLeading, l, "", 0, "L", false, 0, s.link)
		r.y += bodyLeading
	}
}
