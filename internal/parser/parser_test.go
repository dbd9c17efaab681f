package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

var paris = itinerary.BuildContext{Destination: "Paris", Recipient: "traveler@example.com"}

func TestClassify(t *testing.T) {
	tests := []struct {
		section Section
		line    string
		want    LineKind
	}{
		{SectionGeneral, "TIMELINE_START", KindTimelineStart},
		{SectionItinerary, "**TIMELINE_START**", KindTimelineStart},
		{SectionTimeline, "TIMELINE_END", KindTimelineEnd},
		{SectionGeneral, "ITINERARY_START", KindItineraryStart},
		{SectionItinerary, "ITINERARY_END", KindItineraryEnd},
		{SectionGeneral, "TITLE: Journey to Paris", KindTitle},
		{SectionGeneral, "OVERVIEW: A week of art", KindOverview},
		{SectionGeneral, "GETTING_THERE: Fly direct", KindGettingThere},
		{SectionGeneral, "TRAVEL_TIPS:", KindTravelTips},
		{SectionGeneral, "Day 1: Arrival", KindText},
		{SectionGeneral, "Pack light.", KindText},
		{SectionTimeline, "Day 1: Arrival", KindTimelineRow},
		{SectionTimeline, "no colon here", KindIgnored},
		{SectionItinerary, "Day 1: Arrival", KindDay},
		{SectionItinerary, "STOP: Louvre", KindStop},
		{SectionItinerary, "TITLE: inside itinerary", KindText},
		{SectionItinerary, "BEST TIME: 9 AM", KindText},
	}

	for _, tt := range tests {
		t.Run(tt.section.String()+"/"+tt.line, func(t *testing.T) {
			if got := Classify(tt.section, tt.line); got != tt.want {
				t.Errorf("Classify(%s, %q) = %s, want %s", tt.section, tt.line, got, tt.want)
			}
		})
	}
}

func TestBalancedMarkersReturnToGeneral(t *testing.T) {
	inputs := []string{
		"TIMELINE_START\nDay 1: a\nTIMELINE_END",
		"ITINERARY_START\nDay 1: x\nSTOP: A\nITINERARY_END",
		"TITLE: T\nTIMELINE_START\nTIMELINE_END\nITINERARY_START\nSTOP: A\nITINERARY_END\nTRAVEL_TIPS:\nx",
	}
	for _, in := range inputs {
		res := ParseString(paris, in)
		if res.Section != SectionGeneral {
			t.Errorf("input %q ended in %s, want GENERAL", in, res.Section)
		}
	}
}

func TestTimelineRowSplitsOnFirstColon(t *testing.T) {
	res := ParseString(paris, "TIMELINE_START\nDay 2: Louvre and Seine walk\nDay 3: Versailles: gardens\nTIMELINE_END")

	var rows []itinerary.TimelineRow
	for _, rec := range res.Records {
		if rec.Kind == RecordTimeline {
			rows = rec.Rows
		}
	}
	want := []itinerary.TimelineRow{
		{DayLabel: "Day 2", Summary: "Louvre and Seine walk"},
		{DayLabel: "Day 3", Summary: "Versailles: gardens"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %+v, want %+v", rows, want)
	}
}

func TestTimelineLineWithoutColonIsIgnored(t *testing.T) {
	res := ParseString(paris, "TIMELINE_START\njust words\nDay 1: a\nTIMELINE_END")
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Reason != "timeline line without colon" {
		t.Fatalf("diagnostics = %v", res.Diagnostics)
	}
	if res.Records[1].Kind != RecordTimeline || len(res.Records[1].Rows) != 1 {
		t.Errorf("unexpected timeline record %+v", res.Records[1])
	}
}

func TestConsecutiveStopsDoNotLeak(t *testing.T) {
	res := ParseString(paris, "ITINERARY_START\nDay 1: Art\nSTOP: Louvre\nSTOP: Orsay\nBEST TIME: 2 PM\nITINERARY_END")

	var stops []*itinerary.StopRecord
	for _, rec := range res.Records {
		if rec.Kind == RecordStop {
			stops = append(stops, rec.Stop)
		}
	}
	if len(stops) != 2 {
		t.Fatalf("got %d stops, want 2", len(stops))
	}
	if stops[0].PlaceName != "Louvre" || stops[0].BestTime != "" {
		t.Errorf("first stop leaked content: %+v", stops[0])
	}
	if stops[1].PlaceName != "Orsay" || stops[1].BestTime != "2 PM" {
		t.Errorf("second stop = %+v", stops[1])
	}
}

func TestDayMarkerFlushesOpenStop(t *testing.T) {
	input := strings.Join([]string{
		"ITINERARY_START",
		"Day 1: Arrival",
		"STOP: A",
		"STOP: B",
		"Day 2: Museums",
		"STOP: C",
		"Day 3: Rest",
		"Day 4: Departure",
		"STOP: D",
		"STOP: E",
		"STOP: F",
		"ITINERARY_END",
	}, "\n")
	res := ParseString(paris, input)

	var perDay []int
	for _, rec := range res.Records {
		switch rec.Kind {
		case RecordDay:
			perDay = append(perDay, 0)
		case RecordStop:
			perDay[len(perDay)-1]++
		}
	}
	if want := []int{2, 1, 0, 3}; !reflect.DeepEqual(perDay, want) {
		t.Errorf("stops per day = %v, want %v", perDay, want)
	}
}

func TestEndToEndRecordOrder(t *testing.T) {
	input := "TITLE: Paris Trip\nOVERVIEW: Great city\nTIMELINE_START\nDay 1: Arrival\nTIMELINE_END\n" +
		"ITINERARY_START\nDay 1: Arrival Day\nSTOP: Eiffel Tower\nBEST TIME: 9 AM\nITINERARY_END\n" +
		"TRAVEL_TIPS:\nBring a coat"
	res := ParseString(paris, input)

	type step struct {
		kind RecordKind
		text string
	}
	want := []step{
		{RecordTitle, "Paris Trip"},
		{RecordSectionHeader, HeadingOverview},
		{RecordSectionHeader, HeadingTimeline},
		{RecordTimeline, ""},
		{RecordPageBreak, ""},
		{RecordSectionHeader, HeadingItinerary},
		{RecordDay, "Day 1: Arrival Day"},
		{RecordStop, ""},
		{RecordPageBreak, ""},
		{RecordSectionHeader, HeadingTips},
		{RecordParagraph, "Bring a coat"},
	}

	if len(res.Records) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(res.Records), len(want), res.Records)
	}
	for i, w := range want {
		got := res.Records[i]
		if got.Kind != w.kind || got.Text != w.text {
			t.Errorf("record %d = (%s, %q), want (%s, %q)", i, got.Kind, got.Text, w.kind, w.text)
		}
	}

	rows := res.Records[3].Rows
	if len(rows) != 1 || rows[0] != (itinerary.TimelineRow{DayLabel: "Day 1", Summary: "Arrival"}) {
		t.Errorf("timeline rows = %+v", rows)
	}
	stop := res.Records[7].Stop
	if stop.PlaceName != "Eiffel Tower" || stop.BestTime != "9 AM" {
		t.Errorf("stop = %+v", stop)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestGettingThereUsesDestination(t *testing.T) {
	res := ParseString(paris, "GETTING_THERE: Fly to CDG")
	if len(res.Records) != 1 || res.Records[0].Text != "How to Reach Paris" {
		t.Errorf("records = %+v", res.Records)
	}

	res = ParseString(itinerary.BuildContext{}, "GETTING_THERE:")
	if res.Records[0].Text != "How to Get There" {
		t.Errorf("heading without destination = %q", res.Records[0].Text)
	}
}

func TestContentBeforeFirstStopIsDropped(t *testing.T) {
	res := ParseString(paris, "ITINERARY_START\nDay 1: Arrival\nSettle into the hotel.\nSTOP: Louvre\nITINERARY_END")

	if got := res.Count(RecordStop); got != 1 {
		t.Fatalf("got %d stops", got)
	}
	for _, rec := range res.Records {
		if rec.Kind == RecordParagraph {
			t.Errorf("preamble leaked as paragraph: %q", rec.Text)
		}
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Reason != "content outside a stop" {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestUnterminatedSectionsAreFlushedAtEnd(t *testing.T) {
	res := ParseString(paris, "ITINERARY_START\nDay 1: x\nSTOP: Louvre\nBEST TIME: 10 AM")
	if res.Section != SectionItinerary {
		t.Errorf("section = %s, want ITINERARY", res.Section)
	}
	if res.Count(RecordStop) != 1 {
		t.Errorf("open stop was not flushed: %+v", res.Records)
	}
	if len(res.Diagnostics) != 1 {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}

	res = ParseString(paris, "TIMELINE_START\nDay 1: a")
	if res.Count(RecordTimeline) != 1 || res.Count(RecordPageBreak) != 0 {
		t.Errorf("open timeline flushed wrong: %+v", res.Records)
	}
}

func TestStrayEndMarkersAreIgnored(t *testing.T) {
	res := ParseString(paris, "TIMELINE_END\nITINERARY_END\nHello")
	if len(res.Records) != 1 || res.Records[0].Kind != RecordParagraph {
		t.Errorf("records = %+v", res.Records)
	}
	if len(res.Diagnostics) != 2 {
		t.Errorf("diagnostics = %v", res.Diagnostics)
	}
}

func TestSectionSwitchClosesOpenSection(t *testing.T) {
	res := ParseString(paris, "ITINERARY_START\nSTOP: A\nTIMELINE_START\nDay 1: a\nTIMELINE_END")
	kinds := make([]RecordKind, 0, len(res.Records))
	for _, rec := range res.Records {
		kinds = append(kinds, rec.Kind)
	}
	want := []RecordKind{RecordSectionHeader, RecordStop, RecordSectionHeader, RecordTimeline, RecordPageBreak}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	p := New(paris)
	for _, line := range []string{"ITINERARY_START", "STOP: A"} {
		p.Feed(line)
	}
	first := p.Finish()
	second := p.Finish()
	if len(first.Records) != len(second.Records) {
		t.Errorf("second Finish changed records: %d vs %d", len(first.Records), len(second.Records))
	}
}

func TestParseReader(t *testing.T) {
	res, err := Parse(paris, strings.NewReader("  TITLE:   Spaced Out  \n\n\n   \nHello\r\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Records) != 2 || res.Records[0].Text != "Spaced Out" || res.Records[1].Text != "Hello" {
		t.Errorf("records = %+v", res.Records)
	}
}

func TestStopBufferFlushIsIdempotent(t *testing.T) {
	var b StopBuffer
	if _, ok := b.Flush(); ok {
		t.Fatal("flushing an empty buffer reported a stop")
	}
	if b.Append("orphan") {
		t.Fatal("append without an open stop should fail")
	}

	b.Open("STOP: Louvre")
	b.Append("Big museum")
	rec, ok := b.Flush()
	if !ok || rec.PlaceName != "Louvre" {
		t.Fatalf("flush = %+v, %v", rec, ok)
	}
	if _, ok := b.Flush(); ok {
		t.Error("second flush produced a duplicate stop")
	}
	if _, ok := b.Flush(); ok {
		t.Error("third flush produced a duplicate stop")
	}
}

func TestMaterialize(t *testing.T) {
	lines := []string{
		"STOP: Eiffel Tower - Morning",
		"BEST TIME: 09:00 AM",
		"LOGISTICS: Metro line 6 to Bir-Hakeim",
		`DETAILS: Iconic iron tower. <link href="http://maps.google.com/?q=Paris+Eiffel" color="blue">Open Map</link>`,
		"Book tickets ahead.",
		"FOOD:",
		"- Veg: Le Potager (French)",
		"- Non-Veg: Le Jules Verne (French)",
	}
	rec := Materialize(lines)

	want := itinerary.StopRecord{
		PlaceName:   "Eiffel Tower - Morning",
		BestTime:    "09:00 AM",
		Logistics:   "Metro line 6 to Bir-Hakeim",
		Description: []string{"Iconic iron tower.", "Book tickets ahead."},
		Food:        []string{"- Veg: Le Potager (French)", "- Non-Veg: Le Jules Verne (French)"},
		MapURL:      "http://maps.google.com/?q=Paris+Eiffel",
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("Materialize =\n%+v\nwant\n%+v", rec, want)
	}
}

func TestMaterializeInlineFood(t *testing.T) {
	rec := Materialize([]string{"STOP: Market", "FOOD: Crepes stand", "Cheese shop"})
	if !reflect.DeepEqual(rec.Food, []string{"Crepes stand", "Cheese shop"}) {
		t.Errorf("Food = %v", rec.Food)
	}
	if len(rec.Description) != 0 {
		t.Errorf("Description = %v", rec.Description)
	}
}

func TestMaterializeLinkOnlyLineIsDropped(t *testing.T) {
	rec := Materialize([]string{
		"STOP: Louvre",
		"DETAILS: World class art.",
		`<link href="http://maps.google.com/?q=Paris+Louvre">Open Map</link>`,
	})
	if !reflect.DeepEqual(rec.Description, []string{"World class art."}) {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.MapURL != "http://maps.google.com/?q=Paris+Louvre" {
		t.Errorf("MapURL = %q", rec.MapURL)
	}
}
