package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gubarz/tripdoc/internal/document"
	"github.com/gubarz/tripdoc/internal/imagery"
	"github.com/gubarz/tripdoc/internal/itinerary"
	"github.com/gubarz/tripdoc/internal/parser"
)

var paris = itinerary.BuildContext{Destination: "Paris", Recipient: "traveler@example.com"}

const parisInput = "TITLE: Paris Trip\nOVERVIEW: Great city\nTIMELINE_START\nDay 1: Arrival\nTIMELINE_END\n" +
	"ITINERARY_START\nDay 1: Arrival Day\nSTOP: Eiffel Tower\nBEST TIME: 9 AM\nITINERARY_END\n" +
	"TRAVEL_TIPS:\nBring a coat"

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solidPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func kinds(blocks []document.Block) []document.Kind {
	out := make([]document.Kind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func TestComposeEndToEnd(t *testing.T) {
	res := parser.ParseString(paris, parisInput)
	blocks, err := New(imagery.None, DefaultOptions()).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	want := []struct {
		kind document.Kind
		text string
	}{
		{document.KindTitle, "Paris Trip"},
		{document.KindSectionHeader, "Trip Overview"},
		{document.KindSectionHeader, "Trip at a Glance"},
		{document.KindTimelineTable, ""},
		{document.KindPageBreak, ""},
		{document.KindSectionHeader, "Detailed Visual Guide"},
		{document.KindDayHeading, "Day 1: Arrival Day"},
		{document.KindRule, ""},
		{document.KindStopPanel, ""},
		{document.KindPageBreak, ""},
		{document.KindSectionHeader, "Travel Tips"},
		{document.KindParagraph, "Bring a coat"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("got kinds %v", kinds(blocks))
	}
	for i, w := range want {
		if blocks[i].Kind != w.kind || blocks[i].Text != w.text {
			t.Errorf("block %d = (%s, %q), want (%s, %q)", i, blocks[i].Kind, blocks[i].Text, w.kind, w.text)
		}
	}

	table := blocks[3].Table
	if table.Header == nil || *table.Header != [2]string{"Day", "Summary"} {
		t.Errorf("timeline header = %v", table.Header)
	}
	if len(table.Rows) != 1 || table.Rows[0] != [2]string{"Day 1", "Arrival"} {
		t.Errorf("timeline rows = %v", table.Rows)
	}

	panel := blocks[8].Panel
	if panel.Stop.PlaceName != "Eiffel Tower" || panel.Stop.BestTime != "9 AM" {
		t.Errorf("panel stop = %+v", panel.Stop)
	}
	if panel.Image != nil {
		t.Error("panel has an image although the resolver never returns one")
	}
	if !panel.Stop.HasText() {
		t.Error("panel lost its text")
	}
}

func TestImageAvailabilityDoesNotChangeBlockCount(t *testing.T) {
	res := parser.ParseString(paris, parisInput)
	photo := solidPNG(64, 48)
	always := imagery.Func(func(context.Context, string) ([]byte, bool) { return photo, true })

	without, err := New(imagery.None, DefaultOptions()).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatal(err)
	}
	with, err := New(always, DefaultOptions()).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatal(err)
	}

	if len(with) != len(without) {
		t.Errorf("block count changed with images: %d vs %d", len(with), len(without))
	}
	img := with[8].Panel.Image
	if img == nil || img.Width != 64 || img.Height != 48 {
		t.Fatalf("panel image = %+v", img)
	}
	if got := img.AspectRatio(); got != 0.75 {
		t.Errorf("aspect ratio = %v", got)
	}
}

func TestQueryCombinesDestinationAndPlace(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	record := imagery.Func(func(_ context.Context, q string) ([]byte, bool) {
		mu.Lock()
		defer mu.Unlock()
		queries = append(queries, q)
		return nil, false
	})

	res := parser.ParseString(paris, "ITINERARY_START\nSTOP: Louvre Museum\nITINERARY_END")
	if _, err := New(record, Options{Concurrency: 1}).WithLogger(quiet()).Compose(context.Background(), paris, res.Records); err != nil {
		t.Fatal(err)
	}
	if len(queries) != 1 || queries[0] != "Paris Louvre Museum" {
		t.Errorf("queries = %v", queries)
	}
	if got := Query("  ", " Louvre "); got != "Louvre" {
		t.Errorf("Query without destination = %q", got)
	}
}

func TestConcurrentLookupsKeepStopOrder(t *testing.T) {
	var lines []string
	lines = append(lines, "ITINERARY_START", "Day 1: Many stops")
	const stops = 8
	for i := 0; i < stops; i++ {
		lines = append(lines, "STOP: Stop "+strconv.Itoa(i))
	}
	lines = append(lines, "ITINERARY_END")
	res := parser.ParseString(paris, strings.Join(lines, "\n"))

	// Later stops answer first; the width encodes the stop number.
	resolver := imagery.Func(func(_ context.Context, q string) ([]byte, bool) {
		n, err := strconv.Atoi(q[strings.LastIndex(q, " ")+1:])
		if err != nil {
			return nil, false
		}
		time.Sleep(time.Duration(stops-n) * 5 * time.Millisecond)
		return solidPNG(10+n, 10), true
	})

	blocks, err := New(resolver, Options{Concurrency: 4, Timeout: time.Second}).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	for _, b := range blocks {
		if b.Kind != document.KindStopPanel {
			continue
		}
		if b.Panel.Stop.PlaceName != "Stop "+strconv.Itoa(n) {
			t.Errorf("panel %d is %q", n, b.Panel.Stop.PlaceName)
		}
		if b.Panel.Image == nil || b.Panel.Image.Width != 10+n {
			t.Errorf("panel %d has wrong image %+v", n, b.Panel.Image)
		}
		n++
	}
	if n != stops {
		t.Errorf("got %d panels, want %d", n, stops)
	}
}

func TestSlowResolverDegradesToNoImage(t *testing.T) {
	slow := imagery.Func(func(context.Context, string) ([]byte, bool) {
		time.Sleep(500 * time.Millisecond)
		return solidPNG(4, 4), true
	})

	res := parser.ParseString(paris, "ITINERARY_START\nSTOP: A\nSTOP: B\nITINERARY_END")
	start := time.Now()
	blocks, err := New(slow, Options{Concurrency: 2, Timeout: 20 * time.Millisecond}).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatalf("timeout must not abort the build: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("compose waited for the slow resolver: %v", elapsed)
	}
	if document.Count(blocks, document.KindStopPanel) != 2 {
		t.Fatalf("kinds = %v", kinds(blocks))
	}
	for _, b := range blocks {
		if b.Kind == document.KindStopPanel && b.Panel.Image != nil {
			t.Error("timed-out panel has an image")
		}
	}
}

func TestUndecodableImageDegrades(t *testing.T) {
	junk := imagery.Func(func(context.Context, string) ([]byte, bool) { return []byte("<html>quota</html>"), true })
	res := parser.ParseString(paris, "ITINERARY_START\nSTOP: A\nITINERARY_END")
	blocks, err := New(junk, DefaultOptions()).WithLogger(quiet()).Compose(context.Background(), paris, res.Records)
	if err != nil {
		t.Fatal(err)
	}
	if blocks[1].Panel.Image != nil {
		t.Error("junk bytes became an image")
	}
}

func TestCancelledContextAbortsCompose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := parser.ParseString(paris, parisInput)
	_, err := New(imagery.None, DefaultOptions()).WithLogger(quiet()).Compose(ctx, paris, res.Records)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestComposePlan(t *testing.T) {
	plan := &itinerary.Plan{
		Summary:  itinerary.PlanSummary{Title: "Rome in Style", Overview: "Ancient and modern"},
		Overview: []itinerary.PlanTheme{{Day: 1, Theme: "Antiquity"}, {Day: 2, Theme: "Vatican"}},
		Days: []itinerary.PlanDay{
			{Day: 1, Stops: []itinerary.PlanStop{
				{TimeOfDay: "Morning", Title: "Colosseum", SearchQuery: "Colosseum Rome"},
				{TimeOfDay: "Evening", Title: "Trastevere"},
			}},
			{Day: 2, Stops: []itinerary.PlanStop{{Title: "St Peter's Basilica"}}},
		},
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	resolver := imagery.Func(func(_ context.Context, q string) ([]byte, bool) {
		mu.Lock()
		seen[q] = true
		mu.Unlock()
		return nil, false
	})

	bc := itinerary.BuildContext{Destination: "Rome"}
	blocks, err := New(resolver, DefaultOptions()).WithLogger(quiet()).ComposePlan(context.Background(), bc, plan)
	if err != nil {
		t.Fatal(err)
	}

	want := []document.Kind{
		document.KindTitle, document.KindParagraph, document.KindFactsTable,
		document.KindSectionHeader, document.KindTimelineTable,
		document.KindPageBreak, document.KindDayHeading, document.KindRule, document.KindStopPanel, document.KindStopPanel,
		document.KindPageBreak, document.KindDayHeading, document.KindRule, document.KindStopPanel,
	}
	got := kinds(blocks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}

	if *blocks[4].Table.Header != [2]string{"Day", "Theme"} || blocks[4].Table.Rows[1] != [2]string{"Day 2", "Vatican"} {
		t.Errorf("overview table = %+v", blocks[4].Table)
	}
	facts := blocks[2].Table.Rows
	if len(facts) != 2 || facts[0] != [2]string{"Destination", "Rome"} || facts[1] != [2]string{"Duration", "2 Days"} {
		t.Errorf("facts = %v", facts)
	}
	if blocks[8].Panel.Stop.PlaceName != "Morning: Colosseum" {
		t.Errorf("first panel = %+v", blocks[8].Panel.Stop)
	}
	for _, q := range []string{"Colosseum Rome", "Rome Trastevere", "Rome St Peter's Basilica"} {
		if !seen[q] {
			t.Errorf("query %q was not issued; saw %v", q, seen)
		}
	}
}
