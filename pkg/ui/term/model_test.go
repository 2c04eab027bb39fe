package term

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/djwarf/switchshell/pkg/calendar"
)

type stubSource struct {
	days  calendar.DaySet
	err   error
	calls int
}

func (s *stubSource) EventDays(_ context.Context, start, end time.Time) (calendar.DaySet, error) {
	s.calls++
	return s.days, s.err
}

func newModel(t *testing.T, src calendar.EventSource) Model {
	t.Helper()
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	monday := time.Monday
	return New(Options{
		Calendar: calendar.Options{
			Now:       func() time.Time { return now },
			WeekStart: &monday,
		},
		Events: src,
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestNavigation(t *testing.T) {
	m := newModel(t, nil)
	require.Equal(t, time.March, m.Calendar().Date().Month())

	m, _ = press(t, m, "l")
	require.Equal(t, time.April, m.Calendar().Date().Month())
	m, _ = press(t, m, "right")
	require.Equal(t, time.May, m.Calendar().Date().Month())
	m, _ = press(t, m, "left")
	m, _ = press(t, m, "h")
	m, _ = press(t, m, "h")
	require.Equal(t, time.February, m.Calendar().Date().Month())

	m, _ = press(t, m, "t")
	require.Equal(t, time.March, m.Calendar().Date().Month())
	require.Equal(t, 15, m.Calendar().Date().Day())
}

func TestWeekNumberToggle(t *testing.T) {
	m := newModel(t, nil)
	require.False(t, m.Calendar().WeekNumbers())

	m, _ = press(t, m, "w")
	require.True(t, m.Calendar().WeekNumbers())
	lines := strings.Split(Render(m.Calendar().View()), "\n")
	// March 7 2024 is the Thursday of ISO week 10
	require.Equal(t, "10", strings.Fields(lines[3])[0])
	require.Equal(t, "4", strings.Fields(lines[3])[1])

	m, _ = press(t, m, "w")
	require.False(t, m.Calendar().WeekNumbers())
}

func TestQuit(t *testing.T) {
	m := newModel(t, nil)
	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	require.Equal(t, tea.QuitMsg{}, cmd())
	require.Empty(t, m.View())
}

func TestEventsLoadForVisibleGrid(t *testing.T) {
	days := calendar.DaySet{}
	days.Add(time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	src := &stubSource{days: days}
	m := newModel(t, src)

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(Model)
	require.Equal(t, 1, src.calls)

	var marked []int
	for _, d := range m.Calendar().View().Grid.Days {
		if d.HasEvents {
			marked = append(marked, d.Date.Day())
		}
	}
	require.Equal(t, []int{20}, marked)
	require.Contains(t, m.View(), "•")
}

func TestStaleEventsAreDropped(t *testing.T) {
	days := calendar.DaySet{}
	days.Add(time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC))
	m := newModel(t, &stubSource{days: days})

	msg := m.Init()()
	m, _ = press(t, m, "l")
	next, _ := m.Update(msg)
	m = next.(Model)

	for _, d := range m.Calendar().View().Grid.Days {
		require.False(t, d.HasEvents, d.Date)
	}
}

func TestEventErrorIsShown(t *testing.T) {
	m := newModel(t, &stubSource{err: errors.New("server unreachable")})
	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.Contains(t, m.View(), "server unreachable")
}

func TestRender(t *testing.T) {
	m := newModel(t, nil)
	out := Render(m.Calendar().View())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	require.Contains(t, lines[0], "March 2024")
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "Mon"))
	// Feb 26 .. Mar 31 is five weeks
	require.Len(t, lines, 2+5)
	require.Contains(t, lines[2], "26")
}
