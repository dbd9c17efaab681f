package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Plan is the structured entry format. When the generator returns JSON of this
// shape the line parser is bypassed entirely.
type Plan struct {
	Summary  PlanSummary `json:"trip_summary"`
	Overview []PlanTheme `json:"daily_overview"`
	Days     []PlanDay   `json:"detailed_itinerary"`
	Facts    []PlanFact  `json:"facts,omitempty"`
}

// PlanSummary is the title page content
type PlanSummary struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
}

// PlanTheme is one row of the daily overview table
type PlanTheme struct {
	Day   int    `json:"day"`
	Theme string `json:"theme"`
}

// PlanDay groups the stops of one day
type PlanDay struct {
	Day   int        `json:"day"`
	Stops []PlanStop `json:"stops"`
}

// PlanStop is a stop with explicit typed fields
type PlanStop struct {
	TimeOfDay   string      `json:"time_of_day"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	BestTime    string      `json:"best_time"`
	Logistics   string      `json:"logistics"`
	Food        FoodOptions `json:"food_options"`
	SearchQuery string      `json:"search_query"`
}

// FoodOptions lists nearby places to eat
type FoodOptions struct {
	Veg    FoodPlace `json:"veg"`
	NonVeg FoodPlace `json:"non_veg"`
}

// FoodPlace is a restaurant and a dish to order there
type FoodPlace struct {
	Name string `json:"name"`
	Dish string `json:"dish"`
}

// PlanFact is a key/value row of the trip facts table
type PlanFact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DecodePlan parses and sanity checks a structured plan
func DecodePlan(data []byte) (*Plan, error) {
	var p Plan
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decoding plan: %v", ErrUpstreamGeneration, err)
	}
	if strings.TrimSpace(p.Summary.Title) == "" && len(p.Days) == 0 {
		return nil, fmt.Errorf("%w: plan has no title and no days", ErrUpstreamGeneration)
	}
	return &p, nil
}

// Record converts the stop into the shape the composer renders
func (s PlanStop) Record() StopRecord {
	name := strings.TrimSpace(s.Title)
	if tod := strings.TrimSpace(s.TimeOfDay); tod != "" && name != "" {
		name = tod + ": " + name
	}

	rec := StopRecord{
		PlaceName: name,
		BestTime:  strings.TrimSpace(s.BestTime),
		Logistics: strings.TrimSpace(s.Logistics),
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		rec.Description = []string{d}
	}
	if line := s.Food.Veg.line("Veg"); line != "" {
		rec.Food = append(rec.Food, line)
	}
	if line := s.Food.NonVeg.line("Non-Veg"); line != "" {
		rec.Food = append(rec.Food, line)
	}
	if q := strings.TrimSpace(s.SearchQuery); q != "" {
		rec.MapURL = MapsSearchURL(q)
	}
	return rec
}

func (f FoodPlace) line(label string) string {
	name := strings.TrimSpace(f.Name)
	dish := strings.TrimSpace(f.Dish)
	switch {
	case name == "" && dish == "":
		return ""
	case dish == "":
		return label + ": " + name
	case name == "":
		return label + ": " + dish
	default:
		return label + ": " + dish + " at " + name
	}
}

// MapsSearchURL builds a Google Maps search link for a place
func MapsSearchURL(query string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
}
