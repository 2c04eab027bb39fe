package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type toggle struct{ on bool }

func (t *toggle) WeekNumbersEnabled() bool { return t.on }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCalendarNavigationRendersEveryStep(t *testing.T) {
	c := New(Options{Now: fixedNow(date(2024, time.January, 31))})

	var views []View
	c.OnRender(func(v View) { views = append(views, v) })

	c.NextMonth()
	require.Len(t, views, 1)
	require.Equal(t, "February 2024", views[0].Title)
	require.True(t, SameDay(date(2024, time.February, 29), c.Date()))

	c.PrevMonth()
	c.PrevMonth()
	require.Len(t, views, 3)
	require.Equal(t, "December 2023", views[2].Title)
	require.Equal(t, 2023, c.Date().Year())
}

func TestCalendarTwelveMonthsForward(t *testing.T) {
	c := New(Options{Now: fixedNow(date(2024, time.February, 29))})
	for i := 0; i < 12; i++ {
		c.NextMonth()
	}
	require.Equal(t, time.February, c.Date().Month())
	require.Equal(t, 2025, c.Date().Year())
}

func TestCalendarSetDateSameDayIsNoop(t *testing.T) {
	now := date(2024, time.May, 5)
	c := New(Options{Now: fixedNow(now)})

	renders := 0
	c.OnRender(func(View) { renders++ })

	c.SetDate(now.Add(3 * time.Hour))
	require.Zero(t, renders)

	c.SetDate(date(2024, time.July, 1))
	require.Equal(t, 1, renders)

	c.Today()
	require.Equal(t, 2, renders)
	require.True(t, SameDay(now, c.Date()))
}

func TestCalendarSettingsChangeRebuildsHeader(t *testing.T) {
	settings := &toggle{}
	c := New(Options{Settings: settings, Now: fixedNow(date(2026, time.January, 15))})
	require.False(t, c.WeekNumbers())

	var headers []Header
	var views []View
	c.OnHeader(func(h Header) { headers = append(headers, h) })
	c.OnRender(func(v View) { views = append(views, v) })

	settings.on = true
	c.SettingsChanged()

	require.Len(t, headers, 1)
	require.True(t, headers[0].WeekNumbers)
	require.Len(t, views, 1)
	require.True(t, views[0].WeekNumbers)

	var numbered int
	for _, d := range views[0].Grid.Days {
		if d.WeekNumber > 0 {
			numbered++
		}
	}
	require.Equal(t, len(views[0].Grid.Days)/7, numbered)
}

func TestCalendarLocaleHeader(t *testing.T) {
	cat, err := NewCatalog("hu")
	require.NoError(t, err)

	c := New(Options{Translator: cat, Now: fixedNow(date(2024, time.March, 10))})
	v := c.View()
	require.Equal(t, "2024 március", v.Title)
	require.Equal(t, time.Monday, c.WeekStart())
	require.Equal(t, []string{"H", "K", "Sze", "Cs", "P", "Szo", "V"}, v.Weekdays)
	require.Equal(t, time.Monday, v.Grid.Days[0].Date.Weekday())
}

func TestCalendarWeekStartOverride(t *testing.T) {
	ws := time.Saturday
	c := New(Options{WeekStart: &ws, Now: fixedNow(date(2024, time.March, 10))})
	require.Equal(t, time.Saturday, c.WeekStart())
	require.Equal(t, "Sat", c.Header().Weekdays[0])

	bad := time.Weekday(9)
	c = New(Options{WeekStart: &bad, Now: fixedNow(date(2024, time.March, 10))})
	require.Equal(t, time.Sunday, c.WeekStart())
}

func TestCalendarVisibleRangeAndEvents(t *testing.T) {
	c := New(Options{Now: fixedNow(date(2024, time.June, 10))})
	start, end := c.VisibleRange()
	require.Equal(t, time.Date(2024, time.May, 26, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2024, time.July, 7, 0, 0, 0, 0, time.UTC), end)

	var last View
	c.OnRender(func(v View) { last = v })
	days := DaySet{}
	days.Add(date(2024, time.June, 21))
	c.SetEventDays(days)

	var marked int
	for _, d := range last.Grid.Days {
		if d.HasEvents {
			marked++
		}
	}
	require.Equal(t, 1, marked)
}
