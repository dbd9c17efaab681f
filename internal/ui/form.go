package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/tripdoc/internal/itinerary"
)

// ErrCancelled is returned when the user leaves the form without submitting
var ErrCancelled = errors.New("trip form cancelled")

var (
	budgets = []string{"Standard", "High-End", "Luxury"}
	vibes   = []string{"Relaxing", "Adventure", "Cultural", "Foodie", "Family"}
)

// field is one form row: free text or a fixed set of choices
type field struct {
	label   string
	input   textinput.Model
	choices []string
	choice  int
}

func textField(label, placeholder, value string, limit int) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	ti.SetValue(value)
	return field{label: label, input: ti}
}

func choiceField(label string, choices []string, value string) field {
	f := field{label: label, choices: choices}
	for i, c := range choices {
		if strings.EqualFold(c, value) {
			f.choice = i
			return f
		}
	}
	if value != "" {
		f.choices = append([]string{value}, choices...)
	}
	return f
}

func (f field) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

const (
	fieldSource = iota
	fieldDestination
	fieldDays
	fieldBudget
	fieldTravelers
	fieldVibe
	fieldEmail
)

// formModel collects a TripRequest
type formModel struct {
	fields    []field
	focus     int
	width     int
	height    int
	err       error
	submitted bool
	cancelled bool
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func newFormModel(initial itinerary.TripRequest) formModel {
	if initial.Days == 0 {
		initial.Days = 3
	}
	if initial.Travelers == 0 {
		initial.Travelers = 2
	}
	m := formModel{fields: []field{
		textField("From", "New York", initial.Source, 100),
		textField("To", "Paris", initial.Destination, 100),
		textField("Days", "1-14", itoa(initial.Days), 2),
		choiceField("Budget", budgets, initial.Budget),
		textField("Travelers", "1-20", itoa(initial.Travelers), 2),
		choiceField("Vibe", vibes, initial.Vibe),
		textField("Email", "you@example.com", initial.Email, 254),
	}}
	m.setFocus(0)
	return m
}

// Init implements tea.Model
func (m formModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKeyPress(msg); handled {
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	f := &m.fields[m.focus]
	if f.choices != nil {
		return m, nil
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return m, cmd
}

// handleKeyPress processes navigation and submission keys
func (m *formModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return tea.Quit, true
	case "tab", "down":
		return m.setFocus(m.focus + 1), true
	case "shift+tab", "up":
		return m.setFocus(m.focus - 1), true
	case "left", "right":
		f := &m.fields[m.focus]
		if f.choices == nil {
			return nil, false
		}
		step := 1
		if msg.String() == "left" {
			step = len(f.choices) - 1
		}
		f.choice = (f.choice + step) % len(f.choices)
		return nil, true
	case "enter":
		if m.focus < len(m.fields)-1 {
			return m.setFocus(m.focus + 1), true
		}
		if m.err = m.request().Validate(); m.err != nil {
			return nil, true
		}
		m.submitted = true
		return tea.Quit, true
	}
	return nil, false
}

// setFocus moves focus, wrapping at both ends. Choice fields have no input.
func (m *formModel) setFocus(i int) tea.Cmd {
	n := len(m.fields)
	m.focus = (i%n + n) % n
	var cmd tea.Cmd
	for j := range m.fields {
		f := &m.fields[j]
		if f.choices != nil {
			continue
		}
		if j == m.focus {
			cmd = f.input.Focus()
		} else {
			f.input.Blur()
		}
	}
	return cmd
}

// request reads the current field values; unparsable numbers become 0
func (m formModel) request() itinerary.TripRequest {
	days, _ := strconv.Atoi(m.fields[fieldDays].value())
	travelers, _ := strconv.Atoi(m.fields[fieldTravelers].value())
	return itinerary.TripRequest{
		Source:      m.fields[fieldSource].value(),
		Destination: m.fields[fieldDestination].value(),
		Days:        days,
		Budget:      m.fields[fieldBudget].value(),
		Travelers:   travelers,
		Vibe:        m.fields[fieldVibe].value(),
		Email:       m.fields[fieldEmail].value(),
	}
}

// View implements tea.Model
func (m formModel) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Plan your trip"))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := fmt.Sprintf("%-10s", f.label)
		if i == m.focus {
			b.WriteString(styles.Cursor.Render("▶ "))
			b.WriteString(styles.Focused.Render(label))
		} else {
			b.WriteString("  ")
			b.WriteString(styles.Label.Render(label))
		}
		b.WriteString(" ")
		b.WriteString(m.renderValue(f, i == m.focus))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(Error(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Hint.Render("tab/↓ next • shift+tab/↑ back • ←/→ choose • enter submit • esc cancel"))

	return styles.Border.Render(b.String())
}

func (m formModel) renderValue(f field, focused bool) string {
	if f.choices == nil {
		return f.input.View()
	}
	if !focused {
		return f.choices[f.choice]
	}
	return styles.Dim.Render("‹ ") + styles.Focused.Render(f.choices[f.choice]) + styles.Dim.Render(" ›")
}

// RunForm shows the trip form and returns the validated request
func RunForm(initial itinerary.TripRequest) (itinerary.TripRequest, error) {
	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()

	p := tea.NewProgram(newFormModel(initial), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	if err != nil {
		return itinerary.TripRequest{}, err
	}

	result := finalModel.(formModel)
	if result.cancelled || !result.submitted {
		return itinerary.TripRequest{}, ErrCancelled
	}
	return result.request(), nil
}
