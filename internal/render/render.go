// Package render lays a composed block list out onto A4 pages and produces
// the PDF bytes.
package render

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gubarz/tripdoc/internal/document"
)

// DefaultProductLabel is printed bottom right on every page
const DefaultProductLabel = "Luxe Travel Guide"

const (
	inch = 72.0

	marginLeft   = 40.0
	marginTop    = 50.0
	marginRight  = 40.0
	marginBottom = 50.0

	borderInset = 20.0
	borderWidth = 2.0
	footerDrop  = 30.0 // footer baseline, measured up from the page bottom
)

type rgb struct{ r, g, b int }

var (
	navy       = rgb{26, 35, 126}
	gold       = rgb{212, 175, 55}
	whitesmoke = rgb{245, 245, 245}
	white      = rgb{255, 255, 255}
	black      = rgb{0, 0, 0}
	lightGrey  = rgb{211, 211, 211}
	grey       = rgb{128, 128, 128}
	darkGrey   = rgb{169, 169, 169}
)

// Options controls page decoration and metadata
type Options struct {
	Recipient    string // shown in the footer as "Prepared for ..."
	ProductLabel string
	Title        string // PDF metadata title
}

// Placement records where a block ended up
type Placement struct {
	Block   int
	Kind    document.Kind
	Page    int
	EndPage int
	Top     float64
	Bottom  float64
}

// Document is a finished PDF
type Document struct {
	Bytes  []byte
	Pages  int
	Layout []Placement
}

type renderer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options

	w, h    float64
	y       float64
	fresh   bool // nothing drawn on the current page yet
	pending bool // a page break waits for the next drawn block
	cur     Placement
	layout  []Placement
}

// Render writes the blocks in order. Page breaks are applied lazily so a
// trailing break or a break on an untouched page never yields a blank page.
func Render(blocks []document.Block, opts Options) (*Document, error) {
	if opts.ProductLabel == "" {
		opts.ProductLabel = DefaultProductLabel
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetCellMargin(0)
	pdf.SetCreator(opts.ProductLabel, true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}

	r := &renderer{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
	}
	r.w, r.h = pdf.GetPageSize()
	pdf.SetFooterFunc(r.decorate)
	r.newPage()

	for i, b := range blocks {
		if b.Kind == document.KindPageBreak {
			r.pending = true
			continue
		}
		if r.pending {
			if !r.fresh {
				r.newPage()
			}
			r.pending = false
		}
		if err := r.block(i, b); err != nil {
			return nil, fmt.Errorf("rendering block %d (%s): %w", i, b.Kind, err)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("rendering block %d (%s): %w", i, b.Kind, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return &Document{
		Bytes:  buf.Bytes(),
		Pages:  pdf.PageNo(),
		Layout: r.layout,
	}, nil
}

func (r *renderer) block(i int, b document.Block) error {
	switch b.Kind {
	case document.KindTitle:
		r.place(i, b.Kind, func() { r.title(b.Text) })
	case document.KindSectionHeader:
		r.place(i, b.Kind, func() { r.heading(b.Text, 16, gold, 15, 6) })
	case document.KindDayHeading:
		r.place(i, b.Kind, func() { r.heading(b.Text, 14, navy, 15, 5) })
	case document.KindParagraph:
		r.place(i, b.Kind, func() { r.paragraph(b.Text) })
	case document.KindRule:
		r.place(i, b.Kind, r.rule)
	case document.KindTimelineTable:
		if b.Table == nil {
			return fmt.Errorf("timeline table without rows")
		}
		r.place(i, b.Kind, func() { r.table(b.Table, timelineStyle) })
	case document.KindFactsTable:
		if b.Table == nil {
			return fmt.Errorf("facts table without rows")
		}
		r.place(i, b.Kind, func() { r.table(b.Table, factsStyle) })
	case document.KindStopPanel:
		if b.Panel == nil {
			return fmt.Errorf("stop panel without stop")
		}
		r.place(i, b.Kind, func() { r.panel(i, b.Panel) })
	default:
		return fmt.Errorf("unknown block kind %d", b.Kind)
	}
	return nil
}

// place runs draw and records the extent it covered. Drawers call mark once
// they have settled on the page they start on.
func (r *renderer) place(i int, kind document.Kind, draw func()) {
	r.cur = Placement{Block: i, Kind: kind, Page: r.pdf.PageNo(), Top: r.y}
	draw()
	p := r.cur
	p.EndPage = r.pdf.PageNo()
	p.Bottom = r.y
	r.layout = append(r.layout, p)
	r.fresh = false
}

func (r *renderer) mark() {
	r.cur.Page = r.pdf.PageNo()
	r.cur.Top = r.y
}

func (r *renderer) newPage() {
	r.pdf.AddPage()
	r.y = marginTop
	r.fresh = true
}

func (r *renderer) bottom() float64 {
	return r.h - marginBottom
}

func (r *renderer) contentWidth() float64 {
	return r.w - marginLeft - marginRight
}

// ensure starts a new page when h more points do not fit on this one.
// A fresh page is never abandoned, whatever h is.
func (r *renderer) ensure(h float64) {
	if r.y+h > r.bottom() && !r.fresh {
		r.newPage()
	}
}

// decorate draws the border and footer. fpdf calls it as each page closes.
func (r *renderer) decorate() {
	pdf := r.pdf
	pdf.SetDrawColor(navy.r, navy.g, navy.b)
	pdf.SetLineWidth(borderWidth)
	pdf.Rect(borderInset, borderInset, r.w-2*borderInset, r.h-2*borderInset, "D")

	pdf.SetFont("Times", "I", 9)
	pdf.SetTextColor(darkGrey.r, darkGrey.g, darkGrey.b)
	baseline := r.h - footerDrop
	if r.opts.Recipient != "" {
		pdf.Text(marginLeft, baseline, r.text("Prepared for "+r.opts.Recipient))
	}
	label := r.text(r.opts.ProductLabel)
	pdf.Text(r.w-marginRight-pdf.GetStringWidth(label), baseline, label)
}

func (r *renderer) setFont(style string, size float64, c rgb) {
	r.pdf.SetFont("Helvetica", style, size)
	r.pdf.SetTextColor(c.r, c.g, c.b)
}
