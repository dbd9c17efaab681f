// Package document defines the block list the composer produces and the
// renderer lays out onto pages.
package document

import "github.com/gubarz/tripdoc/internal/itinerary"

// Kind identifies the variant held by a Block
type Kind int

const (
	KindTitle Kind = iota
	KindSectionHeader
	KindDayHeading
	KindParagraph
	KindRule
	KindTimelineTable
	KindFactsTable
	KindStopPanel
	KindPageBreak
)

var kindNames = [...]string{
	KindTitle:         "title",
	KindSectionHeader: "section-header",
	KindDayHeading:    "day-heading",
	KindParagraph:     "paragraph",
	KindRule:          "rule",
	KindTimelineTable: "timeline-table",
	KindFactsTable:    "facts-table",
	KindStopPanel:     "stop-panel",
	KindPageBreak:     "page-break",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText lets kinds appear by name in YAML dumps
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is one element of the composed document
type Block struct {
	Kind  Kind       `yaml:"kind"`
	Text  string     `yaml:"text,omitempty"`
	Table *Table     `yaml:"table,omitempty"`
	Panel *StopPanel `yaml:"panel,omitempty"`
}

// Table is a fixed two-column table. Header is optional.
type Table struct {
	Header *[2]string  `yaml:"header,omitempty"`
	Rows   [][2]string `yaml:"rows"`
}

// StopPanel is the text | image unit for a single stop
type StopPanel struct {
	Stop  itinerary.StopRecord `yaml:"stop"`
	Image *Image               `yaml:"image,omitempty"`
}

// Image is a decoded, size-normalized picture ready for embedding
type Image struct {
	Data   []byte `yaml:"-"`
	Type   string `yaml:"type"` // JPG or PNG
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// AspectRatio returns height over width, or 0 for an empty image
func (img *Image) AspectRatio() float64 {
	if img == nil || img.Width <= 0 {
		return 0
	}
	return float64(img.Height) / float64(img.Width)
}

func Title(text string) Block         { return Block{Kind: KindTitle, Text: text} }
func SectionHeader(text string) Block { return Block{Kind: KindSectionHeader, Text: text} }
func DayHeading(text string) Block    { return Block{Kind: KindDayHeading, Text: text} }
func Paragraph(text string) Block     { return Block{Kind: KindParagraph, Text: text} }
func Rule() Block                     { return Block{Kind: KindRule} }
func PageBreak() Block                { return Block{Kind: KindPageBreak} }

// TimelineTable builds a table with a header row and one row per timeline entry
func TimelineTable(left, right string, rows []itinerary.TimelineRow) Block {
	t := &Table{Header: &[2]string{left, right}}
	for _, r := range rows {
		t.Rows = append(t.Rows, [2]string{r.DayLabel, r.Summary})
	}
	return Block{Kind: KindTimelineTable, Table: t}
}

// FactsTable builds a headerless key/value table
func FactsTable(rows [][2]string) Block {
	return Block{Kind: KindFactsTable, Table: &Table{Rows: rows}}
}

// Panel builds a stop panel. img may be nil.
func Panel(stop itinerary.StopRecord, img *Image) Block {
	return Block{Kind: KindStopPanel, Panel: &StopPanel{Stop: stop, Image: img}}
}

// Count returns how many blocks of the given kind are in the list
func Count(blocks []Block, kind Kind) int {
	n := 0
	for _, b := range blocks {
		if b.Kind == kind {
			n++
		}
	}
	return n
}
