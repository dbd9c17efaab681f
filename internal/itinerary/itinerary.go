package itinerary

import (
	"fmt"
	"net/mail"
	"strings"
)

// BuildContext carries the trip facts the parser and composer need.
// It replaces any reliance on form state read implicitly during a build.
type BuildContext struct {
	Destination string // Used in headings and image queries
	Recipient   string // Shown in the page footer
}

// TimelineRow is one line of the "trip at a glance" table
type TimelineRow struct {
	DayLabel string `yaml:"day" json:"day"`
	Summary  string `yaml:"summary" json:"summary"`
}

// StopRecord is a single point of interest within a day
type StopRecord struct {
	PlaceName   string   `yaml:"place" json:"place"`
	BestTime    string   `yaml:"best_time,omitempty" json:"best_time,omitempty"`
	Logistics   string   `yaml:"logistics,omitempty" json:"logistics,omitempty"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
	Food        []string `yaml:"food,omitempty" json:"food,omitempty"`
	MapURL      string   `yaml:"map_url,omitempty" json:"map_url,omitempty"`
}

// HasText reports whether the stop has anything to print in its text column
func (s StopRecord) HasText() bool {
	return s.PlaceName != "" || s.BestTime != "" || s.Logistics != "" ||
		len(s.Description) > 0 || len(s.Food) > 0
}

// TripRequest holds the parameters collected from the user before generation
type TripRequest struct {
	Source      string
	Destination string
	Days        int
	Budget      string
	Travelers   int
	Vibe        string
	Email       string
}

const (
	MinDays      = 1
	MaxDays      = 14
	MinTravelers = 1
	MaxTravelers = 20
)

// Validate checks the request the same way the form does
func (r TripRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Source) == "" {
		missing = append(missing, "source")
	}
	if strings.TrimSpace(r.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: email %q is not an address", ErrInvalidRequest, r.Email)
	}
	if r.Days < MinDays || r.Days > MaxDays {
		return fmt.Errorf("%w: days must be between %d and %d", ErrInvalidRequest, MinDays, MaxDays)
	}
	if r.Travelers < MinTravelers || r.Travelers > MaxTravelers {
		return fmt.Errorf("%w: travelers must be between %d and %d", ErrInvalidRequest, MinTravelers, MaxTravelers)
	}
	return nil
}

// Context derives the build context for this request
func (r TripRequest) Context() BuildContext {
	return BuildContext{
		Destination: strings.TrimSpace(r.Destination),
		Recipient:   strings.TrimSpace(r.Email),
	}
}

// FileName returns the PDF file name used for saving and attachments
func FileName(destination string) string {
	name := strings.Join(strings.Fields(destination), "_")
	if name == "" {
		name = "Trip"
	}
	return "Itinerary_" + name + ".pdf"
}
