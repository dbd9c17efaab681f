package generate

import (
	"strings"
	"text/template"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

var textPrompt = template.Must(template.New("text").Parse(`Act as an elite travel planner. Create a highly detailed {{.Days}}-day itinerary for {{.Destination}} departing from {{.Source}}.

Vibe: {{.Vibe}} | Budget: {{.Budget}} | Travelers: {{.Travelers}}

Follow this structure exactly. Marker words must start their line.

TITLE: Journey to {{.Destination}}
OVERVIEW: (brief summary of the experience)
GETTING_THERE: (best flights, trains or road route from {{.Source}})

TIMELINE_START
Day 1: [brief summary]
Day 2: [brief summary]
(one line per day)
TIMELINE_END

ITINERARY_START
Day 1: [day title]
STOP: [exact name of place or activity]
BEST TIME: [e.g. 09:00 AM]
LOGISTICS: [how to get here from the city center or the last stop]
DETAILS: [description with a map link like <link href="https://www.google.com/maps/search/?api=1&query={{.Query}}+PLACE_NAME">Open Map</link>]
FOOD:
- Veg: [name] (cuisine)
- Non-Veg: [name] (cuisine)
(2-3 STOP blocks per day, repeat for every day)
ITINERARY_END

TRAVEL_TIPS:
(bullet points on safety, weather, packing)
`))

var planPrompt = template.Must(template.New("plan").Parse(`You are a luxury travel agent. Create a detailed {{.Days}}-day itinerary for a trip from {{.Source}} to {{.Destination}}.

Budget: {{.Budget}}
Travelers: {{.Travelers}}
Vibe: {{.Vibe}}

Return ONLY valid JSON with this exact structure:

{
  "trip_summary": {"title": "Trip title", "overview": "Brief overview paragraph"},
  "daily_overview": [{"day": 1, "theme": "Day theme title"}],
  "detailed_itinerary": [
    {
      "day": 1,
      "stops": [
        {
          "time_of_day": "Morning",
          "title": "Activity or place name",
          "description": "Detailed description",
          "best_time": "09:00 AM",
          "logistics": "Transportation details",
          "food_options": {
            "veg": {"name": "Restaurant name", "dish": "Dish name"},
            "non_veg": {"name": "Restaurant name", "dish": "Dish name"}
          },
          "search_query": "Specific location name for image search"
        }
      ]
    }
  ]
}

Requirements:
- Create {{.Days}} days with 2-3 stops per day (Morning/Afternoon/Evening)
- Every stop has all fields filled
- Food options are real restaurants in {{.Destination}}
- search_query is specific (e.g. "Eiffel Tower Paris", not just "Paris")
- Logistics name actual transport options
- Best times are realistic`))

// PlanSystemPrompt keeps JSON mode models on track
const PlanSystemPrompt = "You are a luxury travel planning assistant. Always return valid JSON."

type promptData struct {
	itinerary.TripRequest
	Query string
}

func render(t *template.Template, req itinerary.TripRequest) string {
	var b strings.Builder
	data := promptData{
		TripRequest: req,
		Query:       strings.Join(strings.Fields(req.Destination), "+"),
	}
	_ = t.Execute(&b, data)
	return b.String()
}

// TextPrompt asks for the marker-based text format
func TextPrompt(req itinerary.TripRequest) string {
	return render(textPrompt, req)
}

// PlanPrompt asks for the structured JSON format
func PlanPrompt(req itinerary.TripRequest) string {
	return render(planPrompt, req)
}
