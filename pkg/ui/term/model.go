// Package term renders the month calendar in a terminal.
package term

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/djwarf/switchshell/pkg/calendar"
)

const cellWidth = 4

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9CA3AF"))
	weekStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
	dayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB"))
	otherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563"))
	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#7C3AED"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// weekToggle is the in-memory week number setting flipped with "w"
type weekToggle struct {
	on bool
}

func (w *weekToggle) WeekNumbersEnabled() bool { return w.on }

// eventsMsg carries event markers loaded for the grid starting at start
type eventsMsg struct {
	start time.Time
	days  calendar.DaySet
	err   error
}

// Options configures a Model
type Options struct {
	// Calendar is passed to calendar.New; its Settings are replaced
	Calendar        calendar.Options
	ShowWeekNumbers bool
	Events          calendar.EventSource
	EventTimeout    time.Duration
}

// Model is a bubbletea model around a calendar.Calendar
type Model struct {
	cal      *calendar.Calendar
	toggle   *weekToggle
	source   calendar.EventSource
	timeout  time.Duration
	err      error
	quitting bool
}

// New creates the terminal calendar
func New(opts Options) Model {
	toggle := &weekToggle{on: opts.ShowWeekNumbers}
	copts := opts.Calendar
	copts.Settings = toggle

	timeout := opts.EventTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return Model{
		cal:     calendar.New(copts),
		toggle:  toggle,
		source:  opts.Events,
		timeout: timeout,
	}
}

// Calendar returns the underlying calendar state
func (m Model) Calendar() *calendar.Calendar {
	return m.cal
}

// Init starts loading event markers
func (m Model) Init() tea.Cmd {
	return m.loadEvents()
}

// Update handles key and event messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			m.cal.PrevMonth()
			return m, m.loadEvents()
		case "right", "l":
			m.cal.NextMonth()
			return m, m.loadEvents()
		case "t":
			m.cal.Today()
			return m, m.loadEvents()
		case "w":
			m.toggle.on = !m.toggle.on
			m.cal.SettingsChanged()
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.cal.PrevMonth()
			return m, m.loadEvents()
		case tea.MouseButtonWheelDown:
			m.cal.NextMonth()
			return m, m.loadEvents()
		}

	case eventsMsg:
		start, _ := m.cal.VisibleRange()
		if !msg.start.Equal(start) {
			// the user moved on while this was loading
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.cal.SetEventDays(msg.days)
		}
	}

	return m, nil
}

func (m Model) loadEvents() tea.Cmd {
	if m.source == nil {
		return nil
	}
	source := m.source
	timeout := m.timeout
	start, end := m.cal.VisibleRange()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		days, err := source.EventDays(ctx, start, end)
		return eventsMsg{start: start, days: days, err: err}
	}
}

// View renders the month
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return Render(m.cal.View()) + m.footer()
}

func (m Model) footer() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("events: "+m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("←/h prev  →/l next  t today  w week numbers  q quit"))
	return b.String()
}

// Render draws a calendar view as text. Days with events carry a marker.
func Render(v calendar.View) string {
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)
	width := 7 * cellWidth
	if v.WeekNumbers {
		width += cellWidth
	}

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, titleStyle.Render(v.Title)))
	b.WriteString("\n")

	if v.WeekNumbers {
		b.WriteString(cell.Render(""))
	}
	for _, wd := range v.Weekdays {
		b.WriteString(cell.Render(headingStyle.Render(wd)))
	}
	b.WriteString("\n")

	for _, row := range v.Grid.Rows() {
		if v.WeekNumbers {
			week := ""
			for _, d := range row {
				if d.WeekNumber != 0 {
					week = strconv.Itoa(d.WeekNumber)
				}
			}
			b.WriteString(cell.Render(weekStyle.Render(week)))
		}
		for _, d := range row {
			b.WriteString(cell.Render(renderDay(d)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderDay(d calendar.Day) string {
	num := strconv.Itoa(d.Date.Day())
	switch d.Kind {
	case calendar.Today:
		num = todayStyle.Render(num)
	case calendar.OtherMonth:
		num = otherStyle.Render(num)
	default:
		num = dayStyle.Render(num)
	}
	if d.HasEvents {
		return num + markerStyle.Render("•")
	}
	return num + " "
}
