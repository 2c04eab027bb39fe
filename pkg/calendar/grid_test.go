package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestGridWholeWeeksContainingMonth(t *testing.T) {
	today := date(2000, time.January, 1)
	for year := 2023; year <= 2025; year++ {
		for month := time.January; month <= time.December; month++ {
			for ws := time.Sunday; ws <= time.Saturday; ws++ {
				g := BuildGrid(date(year, month, 15), today, GridOptions{WeekStart: ws})

				require.Zero(t, len(g.Days)%7, "%d-%02d ws=%d", year, month, ws)
				require.Equal(t, ws, g.Days[0].Date.Weekday())
				require.Equal(t, 0, g.Days[0].Column)

				first := date(year, month, 1)
				last := AddMonths(first, 1).AddDate(0, 0, -1)
				require.False(t, g.Days[0].Date.After(first))
				require.False(t, g.Days[len(g.Days)-1].Date.Before(last))

				// No whole week outside the month
				require.Equal(t, month, g.Days[6].Date.Month())
				require.Equal(t, month, g.Days[len(g.Days)-7].Date.Month())

				for i, d := range g.Days {
					require.Equal(t, i/7, d.Row)
					require.Equal(t, i%7, d.Column)
					if i > 0 {
						require.Equal(t, 1, int(d.Date.Sub(g.Days[i-1].Date).Hours()/24))
					}
				}
			}
		}
	}
}

func TestGridMonthStartingOnWeekStartHasNoLeadingDays(t *testing.T) {
	// 1 September 2024 is a Sunday
	g := BuildGrid(date(2024, time.September, 10), date(2000, 1, 1), GridOptions{WeekStart: time.Sunday})
	require.True(t, SameDay(g.Days[0].Date, date(2024, time.September, 1)))
	require.Equal(t, CurrentMonth, g.Days[0].Kind)

	// With a Monday start the Sunday 1st is the last column of the first row
	g = BuildGrid(date(2024, time.September, 10), date(2000, 1, 1), GridOptions{WeekStart: time.Monday})
	require.True(t, SameDay(g.Days[0].Date, date(2024, time.August, 26)))
	require.True(t, SameDay(g.Days[6].Date, date(2024, time.September, 1)))
	require.Equal(t, OtherMonth, g.Days[0].Kind)
}

func TestGridLeapFebruaryMondayStart(t *testing.T) {
	g := BuildGrid(date(2024, time.February, 10), date(2000, 1, 1), GridOptions{WeekStart: time.Monday})

	var found bool
	for _, d := range g.Days {
		if SameDay(d.Date, date(2024, time.February, 29)) {
			found = true
			require.Equal(t, CurrentMonth, d.Kind)
			require.Equal(t, "current-month", d.Kind.String())
		}
	}
	require.True(t, found)
	require.Len(t, g.Days, 35)
	require.True(t, SameDay(g.Days[0].Date, date(2024, time.January, 29)))
}

func TestGridTagsTodayAndOtherMonth(t *testing.T) {
	today := date(2024, time.March, 5)
	g := BuildGrid(date(2024, time.March, 20), today, GridOptions{WeekStart: time.Sunday})

	var todays int
	for _, d := range g.Days {
		switch {
		case SameDay(d.Date, today):
			todays++
			require.Equal(t, Today, d.Kind)
		case d.Date.Month() != time.March:
			require.Equal(t, OtherMonth, d.Kind)
		default:
			require.Equal(t, CurrentMonth, d.Kind)
		}
	}
	require.Equal(t, 1, todays)
}

func TestGridTodayInLeadingDays(t *testing.T) {
	// Today takes precedence over the other-month tag
	today := date(2024, time.February, 29)
	g := BuildGrid(date(2024, time.March, 1), today, GridOptions{WeekStart: time.Sunday})
	require.Equal(t, Today, g.Days[4].Kind)
	require.True(t, SameDay(g.Days[4].Date, today))
}

func TestGridDecemberStopsInJanuary(t *testing.T) {
	g := BuildGrid(date(2025, time.December, 1), date(2000, 1, 1), GridOptions{WeekStart: time.Monday})
	last := g.Days[len(g.Days)-1].Date
	require.Equal(t, 2026, last.Year())
	require.Equal(t, time.January, last.Month())
	require.Equal(t, time.Sunday, last.Weekday())
}

func TestGridWeekNumbersOnThursdays(t *testing.T) {
	g := BuildGrid(date(2026, time.January, 10), date(2000, 1, 1), GridOptions{WeekStart: time.Monday, WeekNumbers: true})
	for _, d := range g.Days {
		if d.Date.Weekday() != time.Thursday {
			require.Zero(t, d.WeekNumber)
			continue
		}
		_, want := d.Date.ISOWeek()
		require.Equal(t, want, d.WeekNumber, d.Date.Format("2006-01-02"))
	}

	g = BuildGrid(date(2026, time.January, 10), date(2000, 1, 1), GridOptions{WeekStart: time.Monday})
	for _, d := range g.Days {
		require.Zero(t, d.WeekNumber)
	}
}

func TestGridRowsAndRange(t *testing.T) {
	g := BuildGrid(date(2024, time.June, 1), date(2000, 1, 1), GridOptions{WeekStart: time.Sunday})
	rows := g.Rows()
	require.Len(t, rows, len(g.Days)/7)
	for _, row := range rows {
		require.Len(t, row, 7)
	}
	require.True(t, SameDay(g.End(), g.Days[len(g.Days)-1].Date.AddDate(0, 0, 1)))
	require.True(t, SameDay(g.First(), date(2024, time.May, 26)))
}

func TestGridEventMarkers(t *testing.T) {
	events := DaySet{}
	events.Add(date(2024, time.June, 12))
	g := BuildGrid(date(2024, time.June, 1), date(2000, 1, 1), GridOptions{Events: events})
	for _, d := range g.Days {
		require.Equal(t, SameDay(d.Date, date(2024, time.June, 12)), d.HasEvents)
	}
}

func TestWeekNumberMatchesISO(t *testing.T) {
	d := date(1999, time.December, 1)
	end := date(2031, time.January, 31)
	for d.Before(end) {
		_, want := d.ISOWeek()
		require.Equal(t, want, WeekNumber(d), d.Format("2006-01-02 Mon"))
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekNumberJanuaryFirstBoundary(t *testing.T) {
	cases := []struct {
		day  time.Time
		want int
	}{
		{date(2021, time.January, 1), 53}, // Friday
		{date(2022, time.January, 1), 52}, // Saturday
		{date(2023, time.January, 1), 52}, // Sunday
		{date(2026, time.January, 1), 1},  // Thursday
		{date(2025, time.January, 1), 1},  // Wednesday
		{date(2024, time.December, 30), 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, WeekNumber(tc.day), tc.day.Format("2006-01-02 Mon"))
	}
}

func TestAddMonths(t *testing.T) {
	require.True(t, SameDay(date(2024, time.February, 29), AddMonths(date(2024, time.January, 31), 1)))
	require.True(t, SameDay(date(2023, time.February, 28), AddMonths(date(2023, time.January, 31), 1)))
	require.True(t, SameDay(date(2024, time.December, 15), AddMonths(date(2025, time.January, 15), -1)))
	require.True(t, SameDay(date(2025, time.January, 15), AddMonths(date(2024, time.December, 15), 1)))
	require.True(t, SameDay(date(2025, time.February, 28), AddMonths(date(2024, time.February, 29), 12)))

	for m := time.January; m <= time.December; m++ {
		start := date(2023, m, 28)
		moved := start
		for i := 0; i < 12; i++ {
			moved = AddMonths(moved, 1)
		}
		require.Equal(t, start.Month(), moved.Month())
		require.Equal(t, start.Year()+1, moved.Year())
	}
}
