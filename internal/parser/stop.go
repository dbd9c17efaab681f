package parser

import (
	"regexp"
	"strings"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

// linkRegex matches the inline map link markup the model is asked to emit:
// <link href="http://maps.google.com/?q=..." color="blue">Open Map</link>
var linkRegex = regexp.MustCompile(`(?i)<link\s+href\s*=\s*["']([^"']+)["'][^>]*>(.*?)</link>`)

// StopBuffer holds the lines of the one stop that is currently open
type StopBuffer struct {
	lines []string
}

// Open starts a new stop with its STOP: line. Any unflushed content is discarded,
// so callers flush first.
func (b *StopBuffer) Open(line string) {
	b.lines = []string{line}
}

// Append adds a line to the open stop. It returns false when no stop is open.
func (b *StopBuffer) Append(line string) bool {
	if len(b.lines) == 0 {
		return false
	}
	b.lines = append(b.lines, line)
	return true
}

// Len returns the number of buffered lines
func (b *StopBuffer) Len() int {
	return len(b.lines)
}

// Flush materializes the buffered stop and clears the buffer.
// Flushing an empty buffer returns false and has no effect.
func (b *StopBuffer) Flush() (itinerary.StopRecord, bool) {
	if len(b.lines) == 0 {
		return itinerary.StopRecord{}, false
	}
	rec := Materialize(b.lines)
	b.lines = nil
	return rec, true
}

// Materialize interprets a stop's lines by marker prefix in a single pass.
// Free lines before FOOD: are description, free lines after it are food items.
func Materialize(lines []string) itinerary.StopRecord {
	var rec itinerary.StopRecord
	inFood := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, MarkerStop):
			rec.PlaceName = afterMarker(line, MarkerStop)
		case strings.HasPrefix(line, MarkerBestTime):
			rec.BestTime = afterMarker(line, MarkerBestTime)
		case strings.HasPrefix(line, MarkerLogistics):
			rec.Logistics = afterMarker(line, MarkerLogistics)
		case strings.HasPrefix(line, MarkerFood):
			inFood = true
			if rest := afterMarker(line, MarkerFood); rest != "" {
				rec.Food = append(rec.Food, rest)
			}
		case strings.HasPrefix(line, MarkerDetails):
			if text := extractLink(&rec, afterMarker(line, MarkerDetails)); text != "" {
				rec.Description = append(rec.Description, text)
			}
		default:
			text := extractLink(&rec, line)
			if text == "" {
				continue
			}
			if inFood {
				rec.Food = append(rec.Food, text)
			} else {
				rec.Description = append(rec.Description, text)
			}
		}
	}

	return rec
}

func afterMarker(line, marker string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, marker))
}

// extractLink removes link markup and keeps the first URL; the panel
// renders the map link on its own line
func extractLink(rec *itinerary.StopRecord, text string) string {
	matches := linkRegex.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return text
	}
	if rec.MapURL == "" {
		rec.MapURL = matches[0][1]
	}
	text = linkRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
