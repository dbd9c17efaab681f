package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

// RecordKind identifies the variant held by a Record
type RecordKind int

const (
	RecordTitle RecordKind = iota
	RecordSectionHeader
	RecordParagraph
	RecordTimeline
	RecordDay
	RecordStop
	RecordPageBreak
)

var recordKindNames = [...]string{
	RecordTitle:         "title",
	RecordSectionHeader: "section-header",
	RecordParagraph:     "paragraph",
	RecordTimeline:      "timeline",
	RecordDay:           "day",
	RecordStop:          "stop",
	RecordPageBreak:     "page-break",
}

func (k RecordKind) String() string {
	if int(k) >= 0 && int(k) < len(recordKindNames) {
		return recordKindNames[k]
	}
	return "unknown"
}

// MarshalText lets record kinds appear by name in dumps
func (k RecordKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Record is one structured unit recovered from the input stream
type Record struct {
	Kind RecordKind              `yaml:"kind"`
	Text string                  `yaml:"text,omitempty"` // Title, SectionHeader, Paragraph, Day
	Rows []itinerary.TimelineRow `yaml:"rows,omitempty"` // Timeline
	Stop *itinerary.StopRecord   `yaml:"stop,omitempty"` // Stop
}

// Diagnostic describes a line that was ignored while parsing
type Diagnostic struct {
	Line    int     `yaml:"line"`
	Section Section `yaml:"section"`
	Text    string  `yaml:"text"`
	Reason  string  `yaml:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d (%s): %s: %q", d.Line, d.Section, d.Reason, d.Text)
}

// Result holds everything a parse produced
type Result struct {
	Records     []Record
	Diagnostics []Diagnostic
	Section     Section // Section active at end of stream
}

// Count returns how many records of the given kind were produced
func (r *Result) Count(kind RecordKind) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

// Fixed headings emitted by section transitions
const (
	HeadingTimeline  = "Trip at a Glance"
	HeadingItinerary = "Detailed Visual Guide"
	HeadingOverview  = "Trip Overview"
	HeadingTips      = "Travel Tips"
)

// Parser is the line-oriented state machine. Feed it lines in order and call
// Finish at end of stream.
type Parser struct {
	ctx      itinerary.BuildContext
	section  Section
	stop     StopBuffer
	rows     []itinerary.TimelineRow
	records  []Record
	diags    []Diagnostic
	lineNo   int
	finished bool
}

// New creates a parser for one document
func New(ctx itinerary.BuildContext) *Parser {
	return &Parser{ctx: ctx}
}

// Parse reads the whole stream and returns the finished result
func Parse(ctx itinerary.BuildContext, r io.Reader) (*Result, error) {
	p := New(ctx)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		p.Feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return p.Finish(), nil
}

// ParseString parses an in-memory document
func ParseString(ctx itinerary.BuildContext, text string) *Result {
	p := New(ctx)
	for _, line := range strings.Split(text, "\n") {
		p.Feed(line)
	}
	return p.Finish()
}

// State returns the active section
func (p *Parser) State() Section {
	return p.section
}

// OpenStop reports whether a stop is buffered and not yet flushed
func (p *Parser) OpenStop() bool {
	return p.stop.Len() > 0
}

// Feed processes one raw line
func (p *Parser) Feed(raw string) {
	p.lineNo++
	line := strings.TrimSpace(raw)
	if line == "" || p.finished {
		return
	}

	kind := Classify(p.section, line)
	switch kind {
	case KindTimelineStart:
		if p.section == SectionTimeline {
			p.note(line, "timeline already open")
			return
		}
		p.leaveSection()
		p.section = SectionTimeline
		p.emit(Record{Kind: RecordSectionHeader, Text: HeadingTimeline})

	case KindTimelineEnd:
		if p.section != SectionTimeline {
			p.note(line, "timeline end without start")
			return
		}
		p.closeTimeline(true)
		p.section = SectionGeneral

	case KindItineraryStart:
		if p.section == SectionItinerary {
			p.note(line, "itinerary already open")
			return
		}
		p.leaveSection()
		p.section = SectionItinerary
		p.emit(Record{Kind: RecordSectionHeader, Text: HeadingItinerary})

	case KindItineraryEnd:
		if p.section != SectionItinerary {
			p.note(line, "itinerary end without start")
			return
		}
		p.flushStop()
		p.section = SectionGeneral

	case KindTimelineRow:
		label, summary, _ := strings.Cut(line, ":")
		p.rows = append(p.rows, itinerary.TimelineRow{
			DayLabel: strings.TrimSpace(label),
			Summary:  strings.TrimSpace(summary),
		})

	case KindDay:
		p.flushStop()
		p.emit(Record{Kind: RecordDay, Text: line})

	case KindStop:
		p.flushStop()
		p.stop.Open(line)

	case KindTitle:
		title := strings.TrimSpace(strings.Replace(line, MarkerTitle, "", 1))
		p.emit(Record{Kind: RecordTitle, Text: title})

	case KindOverview:
		p.emit(Record{Kind: RecordSectionHeader, Text: HeadingOverview})

	case KindGettingThere:
		p.emit(Record{Kind: RecordSectionHeader, Text: gettingThereHeading(p.ctx.Destination)})

	case KindTravelTips:
		p.emit(Record{Kind: RecordPageBreak})
		p.emit(Record{Kind: RecordSectionHeader, Text: HeadingTips})

	case KindIgnored:
		p.note(line, "timeline line without colon")

	case KindText:
		if p.section == SectionItinerary {
			if !p.stop.Append(line) {
				p.note(line, "content outside a stop")
			}
			return
		}
		p.emit(Record{Kind: RecordParagraph, Text: line})
	}
}

// Finish flushes whatever is still buffered and returns the result.
// Calling it again returns the same records.
func (p *Parser) Finish() *Result {
	if !p.finished {
		switch p.section {
		case SectionTimeline:
			p.note(MarkerTimelineEnd, "section not closed at end of input")
			p.closeTimeline(false)
		case SectionItinerary:
			p.note(MarkerItineraryEnd, "section not closed at end of input")
			p.flushStop()
		}
		p.finished = true
	}

	return &Result{
		Records:     p.records,
		Diagnostics: p.diags,
		Section:     p.section,
	}
}

// leaveSection closes the current section when a start marker arrives
// before its end marker
func (p *Parser) leaveSection() {
	switch p.section {
	case SectionTimeline:
		p.note(MarkerTimelineEnd, "section closed implicitly")
		p.closeTimeline(false)
	case SectionItinerary:
		p.note(MarkerItineraryEnd, "section closed implicitly")
		p.flushStop()
	}
}

func (p *Parser) closeTimeline(pageBreak bool) {
	p.emit(Record{Kind: RecordTimeline, Rows: p.rows})
	p.rows = nil
	if pageBreak {
		p.emit(Record{Kind: RecordPageBreak})
	}
}

func (p *Parser) flushStop() {
	if rec, ok := p.stop.Flush(); ok {
		p.emit(Record{Kind: RecordStop, Stop: &rec})
	}
}

func (p *Parser) emit(rec Record) {
	p.records = append(p.records, rec)
}

func (p *Parser) note(line, reason string) {
	p.diags = append(p.diags, Diagnostic{
		Line:    p.lineNo,
		Section: p.section,
		Text:    line,
		Reason:  reason,
	})
}

func gettingThereHeading(destination string) string {
	if destination == "" {
		return "How to Get There"
	}
	return "How to Reach " + destination
}
