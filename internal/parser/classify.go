package parser

import "strings"

// Section is the parsing context a line is read in
type Section int

const (
	SectionGeneral Section = iota
	SectionTimeline
	SectionItinerary
)

func (s Section) String() string {
	switch s {
	case SectionTimeline:
		return "TIMELINE"
	case SectionItinerary:
		return "ITINERARY"
	default:
		return "GENERAL"
	}
}

// MarshalText lets sections appear by name in YAML and JSON dumps
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LineKind is the classification of a trimmed, non-empty line
type LineKind int

const (
	KindText LineKind = iota
	KindTimelineStart
	KindTimelineEnd
	KindItineraryStart
	KindItineraryEnd
	KindTitle
	KindOverview
	KindGettingThere
	KindTravelTips
	KindTimelineRow
	KindDay
	KindStop
	KindIgnored
)

var lineKindNames = map[LineKind]string{
	KindText:           "text",
	KindTimelineStart:  "timeline-start",
	KindTimelineEnd:    "timeline-end",
	KindItineraryStart: "itinerary-start",
	KindItineraryEnd:   "itinerary-end",
	KindTitle:          "title",
	KindOverview:       "overview",
	KindGettingThere:   "getting-there",
	KindTravelTips:     "travel-tips",
	KindTimelineRow:    "timeline-row",
	KindDay:            "day",
	KindStop:           "stop",
	KindIgnored:        "ignored",
}

func (k LineKind) String() string {
	if name, ok := lineKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Marker vocabulary
const (
	MarkerTimelineStart  = "TIMELINE_START"
	MarkerTimelineEnd    = "TIMELINE_END"
	MarkerItineraryStart = "ITINERARY_START"
	MarkerItineraryEnd   = "ITINERARY_END"
	MarkerTitle          = "TITLE:"
	MarkerOverview       = "OVERVIEW:"
	MarkerGettingThere   = "GETTING_THERE:"
	MarkerTravelTips     = "TRAVEL_TIPS:"
	MarkerDay            = "Day"
	MarkerStop           = "STOP:"
	MarkerBestTime       = "BEST TIME:"
	MarkerLogistics      = "LOGISTICS:"
	MarkerFood           = "FOOD:"
	MarkerDetails        = "DETAILS:"
)

// Classify decides what a line means in the given section.
// Section markers win in every section; everything else depends on where we are.
func Classify(section Section, line string) LineKind {
	switch {
	case strings.Contains(line, MarkerTimelineStart):
		return KindTimelineStart
	case strings.Contains(line, MarkerTimelineEnd):
		return KindTimelineEnd
	case strings.Contains(line, MarkerItineraryStart):
		return KindItineraryStart
	case strings.Contains(line, MarkerItineraryEnd):
		return KindItineraryEnd
	}

	switch section {
	case SectionTimeline:
		if strings.Contains(line, ":") {
			return KindTimelineRow
		}
		return KindIgnored
	case SectionItinerary:
		switch {
		case strings.HasPrefix(line, MarkerDay):
			return KindDay
		case strings.HasPrefix(line, MarkerStop):
			return KindStop
		}
		return KindText
	default:
		switch {
		case strings.Contains(line, MarkerTitle):
			return KindTitle
		case strings.Contains(line, MarkerOverview):
			return KindOverview
		case strings.Contains(line, MarkerGettingThere):
			return KindGettingThere
		case strings.Contains(line, MarkerTravelTips):
			return KindTravelTips
		}
		return KindText
	}
}
