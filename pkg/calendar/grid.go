package calendar

import (
	"math"
	"time"
)

const hoursInWeek = 7 * 24

// DayKind classifies a cell in the month grid
type DayKind int

const (
	CurrentMonth DayKind = iota
	OtherMonth
	Today
)

// String returns the style class suffix used by the front ends
func (k DayKind) String() string {
	switch k {
	case Today:
		return "today"
	case OtherMonth:
		return "other-month"
	default:
		return "current-month"
	}
}

// Day is one cell of the month grid
type Day struct {
	Date       time.Time
	Kind       DayKind
	Row        int
	Column     int
	WeekNumber int // set on Thursdays when week numbers are shown, 0 otherwise
	HasEvents  bool
}

// GridOptions controls grid generation
type GridOptions struct {
	WeekStart   time.Weekday
	WeekNumbers bool
	Events      DaySet
}

// Grid is the full set of cells for one displayed month
type Grid struct {
	Month     time.Time // first day of the displayed month, at noon
	WeekStart time.Weekday
	Days      []Day
}

// Rows returns the cells split into weeks
func (g Grid) Rows() [][]Day {
	rows := make([][]Day, 0, len(g.Days)/7)
	for i := 0; i+7 <= len(g.Days); i += 7 {
		rows = append(rows, g.Days[i:i+7])
	}
	return rows
}

// First returns the first cell's date
func (g Grid) First() time.Time {
	if len(g.Days) == 0 {
		return g.Month
	}
	return g.Days[0].Date
}

// End returns the day after the last cell
func (g Grid) End() time.Time {
	if len(g.Days) == 0 {
		return g.Month
	}
	return g.Days[len(g.Days)-1].Date.AddDate(0, 0, 1)
}

// BuildGrid generates the cells needed to show ref's month as whole weeks.
//
// The walk starts on the most recent weekStart on or before the 1st and
// stops on the first weekStart that lies after the month.
func BuildGrid(ref, today time.Time, opts GridOptions) Grid {
	weekStart := int(opts.WeekStart)
	if weekStart < 0 || weekStart > 6 {
		weekStart = 0
	}

	// Noon keeps AddDate clear of DST transitions
	first := time.Date(ref.Year(), ref.Month(), 1, 12, 0, 0, 0, ref.Location())
	back := (int(first.Weekday()) - weekStart + 7) % 7
	iter := first.AddDate(0, 0, -back)
	displayed := monthIndex(first)

	grid := Grid{Month: first, WeekStart: time.Weekday(weekStart)}
	row := 0
	for {
		day := Day{
			Date:   iter,
			Row:    row,
			Column: (7 + int(iter.Weekday()) - weekStart) % 7,
		}
		switch {
		case SameDay(iter, today):
			day.Kind = Today
		case monthIndex(iter) != displayed:
			day.Kind = OtherMonth
		default:
			day.Kind = CurrentMonth
		}
		if opts.WeekNumbers && iter.Weekday() == time.Thursday {
			day.WeekNumber = WeekNumber(iter)
		}
		if opts.Events != nil {
			day.HasEvents = opts.Events.Has(iter)
		}
		grid.Days = append(grid.Days, day)

		iter = iter.AddDate(0, 0, 1)
		if int(iter.Weekday()) == weekStart {
			if monthIndex(iter) > displayed {
				break
			}
			row++
		}
	}
	return grid
}

// WeekNumber returns the ISO-8601 week number of date.
//
// The number is computed on the Thursday of date's Monday-based week, so
// days before a year's first Thursday belong to the previous year's last
// week.
func WeekNumber(date time.Time) int {
	isoDay := (int(date.Weekday()) + 6) % 7 // Monday = 0
	thursday := time.Date(date.Year(), date.Month(), date.Day()+3-isoDay, 12, 0, 0, 0, time.UTC)
	return weekOfThursday(thursday)
}

// weekOfThursday applies the first-Thursday offset formula. t must be a
// Thursday at noon UTC.
func weekOfThursday(t time.Time) int {
	startOfYear := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	sday := int(startOfYear.Weekday())
	offset := 4 + 7*(sday/5) - sday
	firstThursday := time.Date(t.Year(), time.January, 1+offset, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(firstThursday).Hours() / hoursInWeek))
}

// AddMonths moves t by n calendar months. The day is clamped to the length
// of the target month, so Jan 31 + 1 is the last day of February.
func AddMonths(t time.Time, n int) time.Time {
	idx := monthIndex(t) + n
	year, month := idx/12, time.Month(idx%12+1)
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
